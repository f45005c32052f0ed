package board

import (
	"fmt"
	"strings"

	"github.com/saurus-othello/saurus/move"
)

const (
	StartPosString = "startpos"

	blackChar = 'X'
	whiteChar = 'O'
	emptyChar = '-'
)

// FromString parses a position. It accepts "startpos", or 64 board
// characters in reading order (A1, B1, ... H8) followed by the side to move,
// e.g. "---...--- X". Black disks are X, B or '*', white disks are O or W,
// empty squares are - or '.'. Letters may be lower case. Whitespace inside
// the board part is ignored.
func FromString(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, StartPosString) {
		return StartPosition(), nil
	}
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Position{}, fmt.Errorf("%w: need a board and a side to move", ErrMalformedPosition)
	}
	boardPart := strings.Join(fields[:len(fields)-1], "")
	sidePart := fields[len(fields)-1]
	if len(boardPart) != move.BoardDim*move.BoardDim {
		return Position{}, fmt.Errorf("%w: board has %d squares, expected %d",
			ErrMalformedPosition, len(boardPart), move.BoardDim*move.BoardDim)
	}
	var black, white uint64
	for i, c := range []byte(boardPart) {
		sq := move.FromRowCol(i/move.BoardDim, i%move.BoardDim).BitMask()
		switch c {
		case 'X', 'x', 'B', 'b', '*':
			black |= sq
		case 'O', 'o', 'W', 'w':
			white |= sq
		case '-', '.':
		default:
			return Position{}, fmt.Errorf("%w: unexpected character %q", ErrMalformedPosition, c)
		}
	}
	var blackTurn bool
	switch strings.ToUpper(sidePart) {
	case "X", "B", "BLACK":
		blackTurn = true
	case "O", "W", "WHITE":
		blackTurn = false
	default:
		return Position{}, fmt.Errorf("%w: unknown side to move %q", ErrMalformedPosition, sidePart)
	}
	return NewPosition(black, white, blackTurn), nil
}

func (p Position) squareChar(row, col int) byte {
	sq := move.FromRowCol(row, col).BitMask()
	switch {
	case p.black&sq != 0:
		return blackChar
	case p.white&sq != 0:
		return whiteChar
	}
	return emptyChar
}

// String returns the position in the format FromString reads.
func (p Position) String() string {
	var sb strings.Builder
	for row := 0; row < move.BoardDim; row++ {
		for col := 0; col < move.BoardDim; col++ {
			sb.WriteByte(p.squareChar(row, col))
		}
	}
	sb.WriteByte(' ')
	if p.blackTurn {
		sb.WriteByte(blackChar)
	} else {
		sb.WriteByte(whiteChar)
	}
	return sb.String()
}

// SideToMoveString is "black" or "white".
func (p Position) SideToMoveString() string {
	if p.blackTurn {
		return "black"
	}
	return "white"
}

// ToDisplayText renders the position for a terminal. Legal moves for the
// side to move are marked with a dot.
func (p Position) ToDisplayText() string {
	legal := p.LegalMoveBits()
	var sb strings.Builder
	sb.WriteString("   A B C D E F G H\n")
	for row := 0; row < move.BoardDim; row++ {
		fmt.Fprintf(&sb, "%2d ", row+1)
		for col := 0; col < move.BoardDim; col++ {
			c := p.squareChar(row, col)
			if c == emptyChar && legal&move.FromRowCol(row, col).BitMask() != 0 {
				c = '.'
			}
			sb.WriteByte(c)
			if col != move.BoardDim-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "X (black): %d  O (white): %d\n", p.BlackDiskCount(), p.WhiteDiskCount())
	if p.GameOver() {
		sb.WriteString("Game over\n")
	} else {
		fmt.Fprintf(&sb, "%s to move\n", p.SideToMoveString())
	}
	return sb.String()
}
