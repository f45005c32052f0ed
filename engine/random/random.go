// Package random is an engine that plays a random legal line. It is useful
// as a sparring partner and for testing drivers.
package random

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/saurus-othello/saurus/board"
	"github.com/saurus-othello/saurus/engine"
	"github.com/saurus-othello/saurus/evaluation"
	"github.com/saurus-othello/saurus/move"
)

var _ engine.Engine = (*Engine)(nil)

type Engine struct {
	currPos board.Position
}

func NewEngine() *Engine {
	return &Engine{currPos: board.StartPosition()}
}

func (e *Engine) About() string {
	return "Random mover"
}

func (e *Engine) SetPosition(pos board.Position) {
	e.currPos = pos
}

func (e *Engine) Position() board.Position {
	return e.currPos
}

// Search plays up to depth random moves and returns the evaluation of the
// position it ends up in.
func (e *Engine) Search(ctx context.Context, depth int) (int, []move.Move, error) {
	if depth < 0 {
		return 0, nil, fmt.Errorf("%w: %d", engine.ErrInvalidDepth, depth)
	}
	pos := e.currPos
	var line []move.Move
	for i := 0; i < depth && !pos.GameOver(); i++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, fmt.Errorf("%w: %w", engine.ErrAborted, err)
		}
		moves := pos.LegalMoves()
		if len(moves) == 0 {
			return 0, nil, fmt.Errorf("%w: %v", engine.ErrInvariantViolation, pos)
		}
		m := moves[frand.Intn(len(moves))]
		line = append(line, m)
		pos = pos.Apply(m)
	}
	v := evaluation.Evaluate(pos)
	log.Debug().Int("eval", v).Strs("line", move.ToNotation(line)).Msg("random-line")
	return v, line, nil
}
