package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/saurus-othello/saurus/move"
)

func mv(t *testing.T, s string) move.Move {
	m, err := move.FromNotation(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestStartPosition(t *testing.T) {
	is := is.New(t)
	p := StartPosition()
	is.True(p.BlackTurn())
	is.Equal(p.BlackDiskCount(), 2)
	is.Equal(p.WhiteDiskCount(), 2)
	is.Equal(p.EmptyCount(), 60)
	is.True(!p.GameOver())
	is.Equal(move.ToNotation(p.LegalMoves()), []string{"D3", "C4", "F5", "E6"})
	is.Equal(p.LegalMoveCount(), 4)
}

func TestApplyFlipsAndPassesTurn(t *testing.T) {
	is := is.New(t)
	p := StartPosition().Apply(mv(t, "D3"))
	is.True(!p.BlackTurn())
	is.Equal(p.BlackDiskCount(), 4)
	is.Equal(p.WhiteDiskCount(), 1)
	is.Equal(move.ToNotation(p.LegalMoves()), []string{"C3", "E3", "C5"})
	// Black would have three replies too if it were black's turn.
	is.Equal(p.WithSideToMove(true).LegalMoveCount(), 3)
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	is := is.New(t)
	p := StartPosition()
	before := p.LegalMoves()
	blackBefore, whiteBefore := p.BlackDiskCount(), p.WhiteDiskCount()
	cp := p
	for _, m := range before {
		_ = cp.Apply(m)
	}
	is.Equal(p.LegalMoves(), before)
	is.Equal(p.BlackDiskCount(), blackBefore)
	is.Equal(p.WhiteDiskCount(), whiteBefore)
	is.Equal(p, StartPosition())
}

func TestOpponentPasses(t *testing.T) {
	is := is.New(t)
	// black A1 A3, white B1 B3. After black C1, white has no reply but
	// black can still play C3.
	a1, a3 := mv(t, "A1").BitMask(), mv(t, "A3").BitMask()
	b1, b3 := mv(t, "B1").BitMask(), mv(t, "B3").BitMask()
	p := NewPosition(a1|a3, b1|b3, true)
	next := p.Apply(mv(t, "C1"))
	is.True(next.BlackTurn())
	is.True(!next.GameOver())
	is.Equal(move.ToNotation(next.LegalMoves()), []string{"C3"})
	is.Equal(next.WithSideToMove(false).LegalMoveCount(), 0)
}

func TestGameOverAfterLastMove(t *testing.T) {
	is := is.New(t)
	h8, g8 := mv(t, "H8").BitMask(), mv(t, "G8").BitMask()
	p := NewPosition(^(h8 | g8), g8, true)
	is.True(!p.GameOver())
	is.Equal(move.ToNotation(p.LegalMoves()), []string{"H8"})
	end := p.Apply(mv(t, "H8"))
	is.True(end.GameOver())
	is.Equal(end.BlackDiskCount(), 64)
	is.Equal(end.WhiteDiskCount(), 0)
}

func TestEmptyBoardIsGameOver(t *testing.T) {
	is := is.New(t)
	is.True(NewPosition(0, 0, true).GameOver())
}

func TestStuckSideIsNotGameOver(t *testing.T) {
	is := is.New(t)
	// white A1, black B1: black cannot move, white can play C1.
	p := NewPosition(mv(t, "B1").BitMask(), mv(t, "A1").BitMask(), true)
	is.True(!p.GameOver())
	is.Equal(p.LegalMoveCount(), 0)
	is.Equal(move.ToNotation(p.WithSideToMove(false).LegalMoves()), []string{"C1"})
}

func TestPlayRejectsIllegalMoves(t *testing.T) {
	p := StartPosition()
	for _, s := range []string{"A1", "D4", "E3"} {
		_, err := p.Play(mv(t, s))
		assert.True(t, errors.Is(err, ErrIllegalMove), s)
	}
	_, err := p.Play(move.FromBitMask(0))
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = p.Play(move.FromBitMask(0x3))
	assert.ErrorIs(t, err, ErrIllegalMove)

	next, err := p.Play(mv(t, "F5"))
	assert.NoError(t, err)
	assert.Equal(t, 4, next.BlackDiskCount())
}

func TestFromStringRoundTrip(t *testing.T) {
	is := is.New(t)
	p := StartPosition().Apply(mv(t, "F5")).Apply(mv(t, "F6"))
	parsed, err := FromString(p.String())
	is.NoErr(err)
	is.Equal(parsed, p)

	sp, err := FromString("startpos")
	is.NoErr(err)
	is.Equal(sp, StartPosition())

	rows := []string{
		"........", "........", "........", "...OX...",
		"...XO...", "........", "........", "........",
	}
	spaced, err := FromString(strings.Join(rows, " ") + " B")
	is.NoErr(err)
	is.Equal(spaced, StartPosition())
}

func TestFromStringAlternateDiskChars(t *testing.T) {
	is := is.New(t)
	rows := []string{
		"--------", "--------", "--------", "---wb---",
		"---*o---", "--------", "--------", "--------",
	}
	p, err := FromString(strings.Join(rows, "") + " black")
	is.NoErr(err)
	is.Equal(p, StartPosition())
}

func TestFromStringErrors(t *testing.T) {
	cases := []string{
		"",
		"X",
		strings.Repeat("-", 63) + " X",
		strings.Repeat("-", 64) + " Z",
		strings.Repeat("?", 64) + " X",
	}
	for _, c := range cases {
		_, err := FromString(c)
		assert.ErrorIs(t, err, ErrMalformedPosition, c)
	}
}

func TestHashAndSwap(t *testing.T) {
	is := is.New(t)
	p := StartPosition()
	is.Equal(p.Hash(), StartPosition().Hash())
	is.True(p.Hash() != p.WithSideToMove(false).Hash())

	sw := p.SwapColors()
	is.Equal(sw.Black(), p.White())
	is.Equal(sw.White(), p.Black())
	is.True(!sw.BlackTurn())
	is.Equal(sw.SwapColors(), p)
}

func TestToDisplayText(t *testing.T) {
	is := is.New(t)
	txt := StartPosition().ToDisplayText()
	is.True(strings.HasPrefix(txt, "   A B C D E F G H\n"))
	is.True(strings.Contains(txt, " 4 - - . O X - - -"))
	is.True(strings.Contains(txt, "black to move"))
}
