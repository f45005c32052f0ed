// Package engine defines what an Othello search engine looks like to the
// code that drives it (the shell, the HTTP server).
package engine

import (
	"context"
	"errors"

	"github.com/saurus-othello/saurus/board"
	"github.com/saurus-othello/saurus/move"
)

var (
	// ErrAborted is returned when a search is cancelled before it finishes.
	// There is no partial result.
	ErrAborted = errors.New("search aborted")
	// ErrInvariantViolation means a position that is not over has no legal
	// moves for the side to move. Positions produced by Apply never do this.
	ErrInvariantViolation = errors.New("position invariant violated: game not over but no legal moves")
	ErrInvalidDepth       = errors.New("invalid search depth")
)

// Engine searches the position it was last given.
type Engine interface {
	About() string
	SetPosition(pos board.Position)
	Position() board.Position
	// Search returns the evaluation of the current position (positive
	// favors black) and the principal variation, root move first.
	Search(ctx context.Context, depth int) (int, []move.Move, error)
}
