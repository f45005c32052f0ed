package move

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash"
)

const (
	// BoardDim is the number of rows (and columns) on an Othello board.
	BoardDim = 8

	rowMask = uint64(0xff)
	colMask = uint64(0x8080808080808080)
)

var ErrMalformedNotation = errors.New("malformed move notation")

// Move is a single Othello move. It is a bitmask over the 8x8 board with
// exactly one bit set. Bit index r*8 + 7 - c holds row r (0 is row "1") and
// column c (0 is column "A"), so A1 is bit 7 and H8 is bit 56.
type Move struct {
	mask uint64
}

// FromBitMask creates a move from a bitmask. The mask is not validated; the
// caller must make sure exactly one bit is set.
func FromBitMask(mask uint64) Move {
	return Move{mask: mask}
}

// FromRowCol creates a move from a 0-based row and column.
func FromRowCol(row, col int) Move {
	return Move{mask: uint64(1) << (row*BoardDim + BoardDim - 1 - col)}
}

// FromNotation parses a coordinate like "D3". The column letter may be
// lower case.
func FromNotation(notation string) (Move, error) {
	if len(notation) != 2 {
		return Move{}, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}
	colLetter := notation[0]
	if colLetter >= 'a' && colLetter <= 'h' {
		colLetter -= 'a' - 'A'
	}
	if colLetter < 'A' || colLetter > 'H' || notation[1] < '1' || notation[1] > '8' {
		return Move{}, fmt.Errorf("%w: %q", ErrMalformedNotation, notation)
	}
	return FromRowCol(int(notation[1]-'1'), int(colLetter-'A')), nil
}

// BitMask returns the bitmask of the move.
func (m Move) BitMask() uint64 {
	return m.mask
}

// RowCol returns the 0-based row and column of the move. It returns
// (-1, -1) for an empty mask.
func (m Move) RowCol() (int, int) {
	if m.mask == 0 {
		return -1, -1
	}
	idx := bits.TrailingZeros64(m.mask)
	return idx / BoardDim, BoardDim - 1 - idx%BoardDim
}

// String renders the move in coordinate notation, e.g. "F5".
func (m Move) String() string {
	var x, y int
	rm := rowMask
	for y = 0; y < BoardDim; y++ {
		if m.mask&rm != 0 {
			break
		}
		rm <<= BoardDim
	}
	cm := colMask
	for x = 0; x < BoardDim; x++ {
		if m.mask&cm != 0 {
			break
		}
		cm >>= 1
	}
	if x == BoardDim || y == BoardDim {
		return "(none)"
	}
	return fmt.Sprintf("%c%d", 'A'+x, y+1)
}

// Hash returns a hash of the move. Equal moves hash equally.
func (m Move) Hash() uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], m.mask)
	return xxhash.Sum64(buf[:])
}

// Equals is the same as ==; it is here for readability at call sites that
// deal with move slices.
func (m Move) Equals(o Move) bool {
	return m.mask == o.mask
}

// ToNotation converts a list of moves to a list of coordinates.
func ToNotation(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

// ParseList parses a list of coordinates, failing at the first bad one.
func ParseList(notations []string) ([]Move, error) {
	moves := make([]Move, 0, len(notations))
	for _, n := range notations {
		m, err := FromNotation(n)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}
