package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/saurus-othello/saurus/board"
	"github.com/saurus-othello/saurus/config"
	"github.com/saurus-othello/saurus/engine"
	"github.com/saurus-othello/saurus/engine/alphabeta"
	"github.com/saurus-othello/saurus/engine/random"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errSearchRunning     = errors.New("a search is already running; `stop` it first")
	errNoSearchRunning   = errors.New("no running search to stop")
	errNoSearchLog       = errors.New("search trace (-log) is only available for the alphabeta engine")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l      *readline.Instance
	config *config.Config
	out    io.Writer
	outMu  sync.Mutex

	execPath   string
	gitVersion string

	engine  engine.Engine
	history []board.Position

	searchMu     sync.Mutex
	searchCancel context.CancelFunc
	searchDone   chan struct{}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := &ShellController{
		config:     cfg,
		out:        os.Stderr,
		execPath:   execPath,
		gitVersion: gitVersion,
	}
	sc.engine = newEngine(cfg.GetString(config.ConfigEngine))
	return sc
}

func newEngine(name string) engine.Engine {
	if name == config.EngineRandom {
		return random.NewEngine()
	}
	return alphabeta.NewSolver()
}

// SetOutput redirects everything the shell prints.
func (sc *ShellController) SetOutput(w io.Writer) {
	sc.outMu.Lock()
	defer sc.outMu.Unlock()
	sc.out = w
}

func (sc *ShellController) showMessage(msg string) {
	sc.outMu.Lock()
	defer sc.outMu.Unlock()
	io.WriteString(sc.out, msg)
	if !strings.HasSuffix(msg, "\n") {
		io.WriteString(sc.out, "\n")
	}
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sc.stopSearch()
		sig <- syscall.SIGINT
		return nil, errors.New("sending quit signal")
	case "help":
		if len(cmd.args) == 0 {
			return usage("standard")
		}
		return usageTopic(cmd.args[0])
	case "about":
		return sc.about(cmd)
	case "position":
		return sc.position(cmd)
	case "play":
		return sc.play(cmd)
	case "undo":
		return sc.undo(cmd)
	case "show":
		return sc.show(cmd)
	case "moves":
		return sc.moves(cmd)
	case "eval":
		return sc.eval(cmd)
	case "go":
		return sc.search(cmd)
	case "stop":
		return sc.stop(cmd)
	case "engine":
		return sc.setEngine(cmd)
	default:
		log.Debug().Msgf("you said: %v", strconv.Quote(line))
		return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
	}
}

// Execute runs a single command line and waits for any search it starts.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	sc.waitForSearch()
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32msaurus>\033[0m ",
		HistoryFile:     sc.config.GetString(config.ConfigHistoryFile),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.SetOutput(l.Stderr())
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if err != nil {
			if cmd, _ := extractFields(line); cmd != nil && (cmd.cmd == "exit" || cmd.cmd == "bye") {
				break
			}
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops any running search.
func (sc *ShellController) Cleanup() {
	sc.stopSearch()
	sc.waitForSearch()
}
