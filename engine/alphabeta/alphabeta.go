// Package alphabeta implements the Saurus search: depth-limited minimax
// with alpha-beta pruning over Othello bitboards.
package alphabeta

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/saurus-othello/saurus/board"
	"github.com/saurus-othello/saurus/engine"
	"github.com/saurus-othello/saurus/evaluation"
	"github.com/saurus-othello/saurus/move"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
(* Initial call *)
alphabeta(origin, depth, −∞, +∞, TRUE)
**/

const (
	Name    = "Saurus"
	Version = "1.0.0"
	Author  = "Curtis Barlow-Wilkes"
)

var _ engine.Engine = (*Solver)(nil)

// Solver implements the minimax + alphabeta algorithm. Black is the
// maximizing player.
type Solver struct {
	currPos   board.Position
	evaluator evaluation.Evaluator

	disablePruning bool
	nodes          atomic.Uint64
	tickInterval   time.Duration

	logStream io.Writer
}

// NewSolver returns a solver set up on the start position.
func NewSolver() *Solver {
	return &Solver{
		currPos:      board.StartPosition(),
		evaluator:    evaluation.Default,
		tickInterval: time.Second,
	}
}

// About returns the engine's name, version and author.
func (s *Solver) About() string {
	return fmt.Sprintf("%s %s - developed by %s", Name, Version, Author)
}

// SetPosition changes the position the engine works with.
func (s *Solver) SetPosition(pos board.Position) {
	s.currPos = pos
}

// Position returns the current position of the engine.
func (s *Solver) Position() board.Position {
	return s.currPos
}

// SetEvaluator replaces the static evaluation. nil restores the default.
func (s *Solver) SetEvaluator(e evaluation.Evaluator) {
	if e == nil {
		e = evaluation.Default
	}
	s.evaluator = e
}

func (s *Solver) evaluate(pos board.Position) int {
	if s.evaluator == nil {
		return evaluation.Default.Evaluate(pos)
	}
	return s.evaluator.Evaluate(pos)
}

// SetPruningDisabled turns the search into a plain exhaustive minimax. Move
// ordering and tie-breaks are unchanged, so the result must be identical.
func (s *Solver) SetPruningDisabled(d bool) {
	s.disablePruning = d
}

// SetLogStream makes the solver write a YAML-shaped trace of the tree it
// explores. Pass nil to turn it off.
func (s *Solver) SetLogStream(l io.Writer) {
	s.logStream = l
}

// Nodes returns how many nodes the last search visited.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// Search finds the best line for the current position, searching depth
// plies. The position is captured when Search is called; changing it with
// SetPosition during a search has no effect on that search.
func (s *Solver) Search(ctx context.Context, depth int) (int, []move.Move, error) {
	if depth < 0 {
		return 0, nil, fmt.Errorf("%w: %d", engine.ErrInvalidDepth, depth)
	}
	pos := s.currPos
	tick := s.tickInterval
	if tick <= 0 {
		tick = time.Second
	}
	log.Debug().
		Int("depth", depth).
		Bool("pruning", !s.disablePruning).
		Uint64("pos-hash", pos.Hash()).
		Str("pos", pos.String()).
		Msg("alphabeta-search-config")

	tstart := time.Now()
	s.nodes.Store(0)

	var pv engine.PVLine
	g := &errgroup.Group{}
	done := make(chan struct{})

	g.Go(func() error {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		defer close(done)
		var err error
		pv, err = s.alphabeta(ctx, math.MinInt, math.MaxInt, depth, pos, 0)
		return err
	})

	err := g.Wait()
	if err != nil {
		log.Debug().Err(err).Uint64("nodes", s.nodes.Load()).Msg("alphabeta-search-failed")
		return 0, nil, err
	}
	log.Info().
		Int("depth", depth).
		Uint64("nodes", s.nodes.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Str("pv", pv.NLBString()).
		Msg("search-returning")
	return pv.Score, pv.Moves, nil
}

// orderMoves returns the moves sorted by the static evaluation of the
// position each one leads to, lowest first. Equal scores keep their
// generation order.
func (s *Solver) orderMoves(pos board.Position, moves []move.Move) []move.Move {
	estimates := make(map[move.Move]int, len(moves))
	for _, m := range moves {
		estimates[m] = s.evaluate(pos.Apply(m))
	}
	sorted := make([]move.Move, len(moves))
	copy(sorted, moves)
	sort.SliceStable(sorted, func(i, j int) bool {
		return estimates[sorted[i]] < estimates[sorted[j]]
	})
	return sorted
}

func (s *Solver) alphabeta(ctx context.Context, α, β, depth int, pos board.Position,
	ply int) (engine.PVLine, error) {

	if err := ctx.Err(); err != nil {
		return engine.PVLine{}, fmt.Errorf("%w: %w", engine.ErrAborted, err)
	}
	s.nodes.Add(1)

	if depth == 0 || pos.GameOver() {
		return engine.PVLine{Score: s.evaluate(pos)}, nil
	}
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return engine.PVLine{}, fmt.Errorf("%w: %v", engine.ErrInvariantViolation, pos)
	}
	children := s.orderMoves(pos, moves)

	maximizing := pos.BlackTurn()
	indent := strings.Repeat(" ", 2*ply)
	if s.logStream != nil {
		fmt.Fprintf(s.logStream, "%vplays:\n", indent)
	}

	var best engine.PVLine
	if maximizing {
		best.Score = math.MinInt
	} else {
		best.Score = math.MaxInt
	}
	for _, child := range children {
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "%v- play: %v\n", indent, child)
		}
		childPV, err := s.alphabeta(ctx, α, β, depth-1, pos.Apply(child), ply+1)
		if err != nil {
			return engine.PVLine{}, err
		}
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "%v  value: %v\n", indent, childPV.Score)
		}
		if maximizing {
			if childPV.Score > best.Score {
				best.Update(child, childPV, childPV.Score)
			}
			α = max(α, best.Score)
		} else {
			if childPV.Score < best.Score {
				best.Update(child, childPV, childPV.Score)
			}
			β = min(β, best.Score)
		}
		if !s.disablePruning && β <= α {
			if s.logStream != nil {
				fmt.Fprintf(s.logStream, "%v  cutoff: [%v, %v]\n", indent, α, β)
			}
			break
		}
	}
	return best, nil
}
