// Package board holds the Othello position: two bitboards and a
// side-to-move flag. Positions are immutable values; playing a move
// returns a new Position.
package board

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash"

	"github.com/saurus-othello/saurus/move"
)

const (
	notColA = ^uint64(0x8080808080808080)
	notColH = ^uint64(0x0101010101010101)

	startBlack = uint64(0x0000001008000000) // E4, D5
	startWhite = uint64(0x0000000810000000) // D4, E5
)

var (
	ErrIllegalMove       = errors.New("illegal move")
	ErrMalformedPosition = errors.New("malformed position")
)

type direction uint8

const (
	north direction = iota
	northEast
	east
	southEast
	south
	southWest
	west
	northWest
	numDirections
)

// shift moves every disk one step in the given direction, dropping disks
// that would wrap around the board edge.
func shift(b uint64, d direction) uint64 {
	switch d {
	case north:
		return b >> 8
	case northEast:
		return (b >> 9) & notColA
	case east:
		return (b >> 1) & notColA
	case southEast:
		return (b << 7) & notColA
	case south:
		return b << 8
	case southWest:
		return (b << 9) & notColH
	case west:
		return (b << 1) & notColH
	case northWest:
		return (b >> 7) & notColH
	}
	return 0
}

// Position is an Othello position.
type Position struct {
	black     uint64
	white     uint64
	blackTurn bool
}

// NewPosition builds a position from raw bitboards. Nothing is normalized:
// the side to move may have no legal moves.
func NewPosition(black, white uint64, blackTurn bool) Position {
	return Position{black: black, white: white, blackTurn: blackTurn}
}

// StartPosition returns the standard opening position with black to move.
func StartPosition() Position {
	return NewPosition(startBlack, startWhite, true)
}

func (p Position) Black() uint64   { return p.black }
func (p Position) White() uint64   { return p.white }
func (p Position) BlackTurn() bool { return p.blackTurn }

func (p Position) BlackDiskCount() int { return bits.OnesCount64(p.black) }
func (p Position) WhiteDiskCount() int { return bits.OnesCount64(p.white) }

func (p Position) EmptyCount() int {
	return bits.OnesCount64(^(p.black | p.white))
}

// sides returns (side to move, opponent) bitboards.
func (p Position) sides() (uint64, uint64) {
	if p.blackTurn {
		return p.black, p.white
	}
	return p.white, p.black
}

func legalMoveBits(own, opp uint64) uint64 {
	empty := ^(own | opp)
	var moves uint64
	for d := direction(0); d < numDirections; d++ {
		x := shift(own, d) & opp
		for i := 0; i < 5; i++ {
			x |= shift(x, d) & opp
		}
		moves |= shift(x, d) & empty
	}
	return moves
}

// LegalMoveBits returns a bitboard of every legal move for the side to move.
func (p Position) LegalMoveBits() uint64 {
	own, opp := p.sides()
	return legalMoveBits(own, opp)
}

// LegalMoveCount returns the number of legal moves for the side to move.
func (p Position) LegalMoveCount() int {
	return bits.OnesCount64(p.LegalMoveBits())
}

// LegalMoves lists the legal moves for the side to move in reading order
// (A1, B1, ... H1, A2, ... H8).
func (p Position) LegalMoves() []move.Move {
	mb := p.LegalMoveBits()
	moves := make([]move.Move, 0, bits.OnesCount64(mb))
	for row := 0; row < move.BoardDim; row++ {
		rowBits := (mb >> (row * move.BoardDim)) & 0xff
		for rowBits != 0 {
			// highest bit in the byte is column A
			hi := 7 - bits.LeadingZeros8(uint8(rowBits))
			moves = append(moves, move.FromBitMask(uint64(1)<<(row*move.BoardDim+hi)))
			rowBits &^= 1 << hi
		}
	}
	return moves
}

// IsLegal returns whether m is a legal move for the side to move.
func (p Position) IsLegal(m move.Move) bool {
	mask := m.BitMask()
	return mask != 0 && mask&(mask-1) == 0 && p.LegalMoveBits()&mask != 0
}

func flips(own, opp, sq uint64) uint64 {
	var flipped uint64
	for d := direction(0); d < numDirections; d++ {
		var line uint64
		x := shift(sq, d)
		for x&opp != 0 {
			line |= x
			x = shift(x, d)
		}
		if x&own != 0 {
			flipped |= line
		}
	}
	return flipped
}

// Apply plays m and returns the resulting position. The receiver is left
// untouched. The move is assumed legal; use Play to validate it. After the
// move the opponent is on turn, unless the opponent has no legal move and
// the mover does, in which case the opponent passes.
func (p Position) Apply(m move.Move) Position {
	own, opp := p.sides()
	sq := m.BitMask()
	f := flips(own, opp, sq)
	own |= sq | f
	opp &^= f

	// opp is now on turn.
	next := Position{blackTurn: !p.blackTurn}
	if p.blackTurn {
		next.black, next.white = own, opp
	} else {
		next.black, next.white = opp, own
	}
	if legalMoveBits(opp, own) == 0 && legalMoveBits(own, opp) != 0 {
		next.blackTurn = p.blackTurn
	}
	return next
}

// Play validates m and applies it.
func (p Position) Play(m move.Move) (Position, error) {
	if !p.IsLegal(m) {
		return p, fmt.Errorf("%w: %v", ErrIllegalMove, m)
	}
	return p.Apply(m), nil
}

// GameOver returns true if neither side has a legal move.
func (p Position) GameOver() bool {
	return legalMoveBits(p.black, p.white) == 0 && legalMoveBits(p.white, p.black) == 0
}

// WithSideToMove returns the same disk layout with the given side on turn.
func (p Position) WithSideToMove(blackTurn bool) Position {
	return NewPosition(p.black, p.white, blackTurn)
}

// SwapColors exchanges the roles of the two players: every black disk
// becomes white and vice versa, and the other color is on turn.
func (p Position) SwapColors() Position {
	return NewPosition(p.white, p.black, !p.blackTurn)
}

// Hash returns a hash of the position.
func (p Position) Hash() uint64 {
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[0:8], p.black)
	binary.LittleEndian.PutUint64(buf[8:16], p.white)
	if p.blackTurn {
		buf[16] = 1
	}
	return xxhash.Sum64(buf[:])
}
