// Package evaluation scores Othello positions from black's point of view.
// Positive values favor black, the maximizing side.
package evaluation

import (
	"github.com/saurus-othello/saurus/board"
)

// DiskWeight scales the final disk differential so that a finished game
// always outweighs any mobility score.
const DiskWeight = 1000

// Evaluator scores a position.
type Evaluator interface {
	Evaluate(pos board.Position) int
}

// Func adapts a plain function to the Evaluator interface.
type Func func(pos board.Position) int

func (f Func) Evaluate(pos board.Position) int {
	return f(pos)
}

// Default is the two-mode evaluation used by the engines.
var Default Evaluator = Func(Evaluate)

// Evaluate returns the hard evaluation of a finished game and the soft
// evaluation otherwise.
func Evaluate(pos board.Position) int {
	if pos.GameOver() {
		return Hard(pos)
	}
	return Soft(pos)
}

// Hard is the disk differential of a finished game, weighted by DiskWeight.
func Hard(pos board.Position) int {
	return (pos.BlackDiskCount() - pos.WhiteDiskCount()) * DiskWeight
}

// Soft is the in-game heuristic. It is just mobility for now.
func Soft(pos board.Position) int {
	return Mobility(pos)
}

// Mobility is black's legal move count minus white's, regardless of who is
// on turn. The count for the side not on turn is taken from the same disk
// layout with the turn flipped; no move is played.
func Mobility(pos board.Position) int {
	reversed := board.NewPosition(pos.Black(), pos.White(), !pos.BlackTurn())
	if pos.BlackTurn() {
		return pos.LegalMoveCount() - reversed.LegalMoveCount()
	}
	return reversed.LegalMoveCount() - pos.LegalMoveCount()
}
