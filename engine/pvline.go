package engine

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/saurus-othello/saurus/move"
)

// PVLine is a principal variation and the score it leads to.
type PVLine struct {
	Moves []move.Move
	Score int
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = nil
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(m move.Move, newPVLine PVLine, score int) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.Score = score
}

// GetPVMove returns the first move of the line. ok is false for an empty
// line.
func (pvLine PVLine) GetPVMove() (move.Move, bool) {
	if len(pvLine.Moves) == 0 {
		return move.Move{}, false
	}
	return pvLine.Moves[0], true
}

// Notation returns the moves as coordinates.
func (pvLine PVLine) Notation() []string {
	return lo.Map(pvLine.Moves, func(m move.Move, _ int) string {
		return m.String()
	})
}

// Convert the principal variation line to a string.
func (pvLine PVLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PV; val %d\n", pvLine.Score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&sb, "%d: %s\n", i+1, m)
	}
	return sb.String()
}

func (pvLine PVLine) NLBString() string {
	// no line breaks
	return fmt.Sprintf("PV; val %d; %s", pvLine.Score, strings.Join(pvLine.Notation(), " "))
}
