package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/saurus-othello/saurus/board"
	"github.com/saurus-othello/saurus/config"
	"github.com/saurus-othello/saurus/engine"
	"github.com/saurus-othello/saurus/engine/alphabeta"
	"github.com/saurus-othello/saurus/evaluation"
	"github.com/saurus-othello/saurus/move"
)

type Response struct {
	message string
}

type CmdOptions map[string]string

func (c CmdOptions) String(key string) string {
	return c[key]
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) Bool(key string) bool {
	return strings.ToLower(c[key]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

// searchResult is what `go -yaml true` prints.
type searchResult struct {
	Position string   `yaml:"position"`
	Depth    int      `yaml:"depth"`
	Eval     int      `yaml:"eval"`
	PV       []string `yaml:"pv"`
	Nodes    uint64   `yaml:"nodes,omitempty"`
}

func (sc *ShellController) about(cmd *shellcmd) (*Response, error) {
	return msg(sc.engine.About()), nil
}

func (sc *ShellController) setPosition(pos board.Position) {
	sc.history = append(sc.history, sc.engine.Position())
	sc.engine.SetPosition(pos)
}

func playAll(pos board.Position, notations []string) (board.Position, error) {
	moves, err := move.ParseList(notations)
	if err != nil {
		return pos, err
	}
	for _, m := range moves {
		pos, err = pos.Play(m)
		if err != nil {
			return pos, err
		}
	}
	return pos, nil
}

func (sc *ShellController) position(cmd *shellcmd) (*Response, error) {
	if sc.searching() {
		return nil, errSearchRunning
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: position [startpos | <board> <side>] [-moves \"d3 c5\"]")
	}
	pos, err := board.FromString(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	if movelist := cmd.options.String("moves"); movelist != "" {
		pos, err = playAll(pos, strings.Fields(movelist))
		if err != nil {
			return nil, err
		}
	}
	sc.setPosition(pos)
	return msg(pos.ToDisplayText()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.searching() {
		return nil, errSearchRunning
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: play <move> [<move> ...]")
	}
	pos, err := playAll(sc.engine.Position(), cmd.args)
	if err != nil {
		return nil, err
	}
	sc.setPosition(pos)
	return msg(pos.ToDisplayText()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.searching() {
		return nil, errSearchRunning
	}
	if len(sc.history) == 0 {
		return nil, errors.New("nothing to undo")
	}
	pos := sc.history[len(sc.history)-1]
	sc.history = sc.history[:len(sc.history)-1]
	sc.engine.SetPosition(pos)
	return msg(pos.ToDisplayText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.engine.Position().ToDisplayText()), nil
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	pos := sc.engine.Position()
	if pos.GameOver() {
		return msg("game over; no legal moves"), nil
	}
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return msg("no legal moves"), nil
	}
	notations := lo.Map(moves, func(m move.Move, _ int) string { return m.String() })
	return msg(fmt.Sprintf("%d moves: %s", len(moves), strings.Join(notations, " "))), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	pos := sc.engine.Position()
	if pos.GameOver() {
		return msg(fmt.Sprintf("eval: %d (final, %d-%d)",
			evaluation.Evaluate(pos), pos.BlackDiskCount(), pos.WhiteDiskCount())), nil
	}
	return msg(fmt.Sprintf("eval: %d (mobility)", evaluation.Evaluate(pos))), nil
}

func (sc *ShellController) setEngine(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.engine.About()), nil
	}
	if sc.searching() {
		return nil, errSearchRunning
	}
	name := cmd.args[0]
	if name != config.EngineAlphaBeta && name != config.EngineRandom {
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)",
			name, config.EngineAlphaBeta, config.EngineRandom)
	}
	pos := sc.engine.Position()
	sc.engine = newEngine(name)
	sc.engine.SetPosition(pos)
	return msg("engine set to " + sc.engine.About()), nil
}

func (sc *ShellController) searching() bool {
	sc.searchMu.Lock()
	defer sc.searchMu.Unlock()
	return sc.searchDone != nil
}

func (sc *ShellController) stopSearch() bool {
	sc.searchMu.Lock()
	defer sc.searchMu.Unlock()
	if sc.searchCancel == nil {
		return false
	}
	sc.searchCancel()
	return true
}

func (sc *ShellController) waitForSearch() {
	sc.searchMu.Lock()
	done := sc.searchDone
	sc.searchMu.Unlock()
	if done != nil {
		<-done
	}
}

func (sc *ShellController) stop(cmd *shellcmd) (*Response, error) {
	if !sc.stopSearch() {
		return nil, errNoSearchRunning
	}
	return msg(""), nil
}

func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	depth, err := cmd.options.IntDefault("depth", sc.config.GetInt(config.ConfigDefaultDepth))
	if err != nil {
		return nil, err
	}
	if depth < 0 || depth > sc.config.GetInt(config.ConfigMaxDepth) {
		return nil, fmt.Errorf("%w: %d (must be between 0 and %d)", engine.ErrInvalidDepth,
			depth, sc.config.GetInt(config.ConfigMaxDepth))
	}

	solver, isSolver := sc.engine.(*alphabeta.Solver)
	if cmd.options.Bool("log") && !isSolver {
		return nil, errNoSearchLog
	}

	sc.searchMu.Lock()
	if sc.searchDone != nil {
		sc.searchMu.Unlock()
		return nil, errSearchRunning
	}
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout := sc.config.GetDuration(config.ConfigSearchTimeout); timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	done := make(chan struct{})
	sc.searchCancel = cancel
	sc.searchDone = done
	sc.searchMu.Unlock()

	eng := sc.engine
	pos := eng.Position()

	var logfile *os.File
	if cmd.options.Bool("log") {
		logfile, err = os.Create(sc.config.GetString(config.ConfigSearchLogPath))
		if err != nil {
			sc.finishSearch()
			return nil, err
		}
		solver.SetLogStream(logfile)
	}
	asYAML := cmd.options.Bool("yaml")

	go func() {
		defer sc.finishSearch()
		if logfile != nil {
			defer func() {
				solver.SetLogStream(nil)
				logfile.Close()
				log.Info().Str("path", logfile.Name()).Msg("search-log-written")
			}()
		}
		tstart := time.Now()
		eval, pv, err := eng.Search(ctx, depth)
		if err != nil {
			if errors.Is(err, engine.ErrAborted) {
				sc.showMessage("search aborted")
				return
			}
			sc.showError(err)
			return
		}
		pvLine := engine.PVLine{Moves: pv, Score: eval}

		res := searchResult{
			Position: pos.String(),
			Depth:    depth,
			Eval:     eval,
			PV:       pvLine.Notation(),
		}
		if isSolver {
			res.Nodes = solver.Nodes()
		}
		if asYAML {
			out, err := yaml.Marshal(res)
			if err != nil {
				sc.showError(err)
				return
			}
			sc.showMessage(string(out))
			return
		}
		var sb strings.Builder
		if m, ok := pvLine.GetPVMove(); ok {
			fmt.Fprintf(&sb, "best move: %s\n", m)
		} else {
			sb.WriteString("best move: (none)\n")
		}
		sb.WriteString(pvLine.String())
		fmt.Fprintf(&sb, "depth %d, %d nodes, %.3fs", depth, res.Nodes, time.Since(tstart).Seconds())
		sc.showMessage(sb.String())
	}()

	if cmd.options.Bool("wait") {
		sc.waitForSearch()
	}
	return msg(""), nil
}

func (sc *ShellController) finishSearch() {
	sc.searchMu.Lock()
	defer sc.searchMu.Unlock()
	if sc.searchCancel != nil {
		sc.searchCancel()
	}
	if sc.searchDone != nil {
		close(sc.searchDone)
	}
	sc.searchCancel = nil
	sc.searchDone = nil
}
