package board

import (
	"fmt"
	"strings"
)

// Board is an 8x8 grid of cells indexed [rank][file].
// It is a value type: assigning a Board copies every cell.
type Board [Size][Size]Piece

var backRank = [Size]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard creates the standard starting position.
func NewBoard() Board {
	b := EmptyBoard()
	for file, k := range backRank {
		b[White.HomeRank()][file] = NewPiece(k, White)
		b[Black.HomeRank()][file] = NewPiece(k, Black)
		b[White.PawnRank()][file] = NewPiece(Pawn, White)
		b[Black.PawnRank()][file] = NewPiece(Pawn, Black)
	}
	return b
}

// EmptyBoard creates a board without pieces.
func EmptyBoard() Board {
	var b Board
	for rank := range b {
		for file := range b[rank] {
			b[rank][file] = NoPiece
		}
	}
	return b
}

// At returns the piece at c, or NoPiece if c is empty or off the board.
func (b *Board) At(c Coord) Piece {
	if !c.Valid() {
		return NoPiece
	}
	return b[c.Rank][c.File]
}

// IsEmpty returns true if the square holds no piece.
func (b *Board) IsEmpty(c Coord) bool {
	return b.At(c).IsEmpty()
}

// Set places p on c, replacing whatever was there.
func (b *Board) Set(c Coord, p Piece) {
	b[c.Rank][c.File] = p
}

// Clear empties the square and returns the piece that was on it.
func (b *Board) Clear(c Coord) Piece {
	p := b[c.Rank][c.File]
	b[c.Rank][c.File] = NoPiece
	return p
}

// Find returns the first square, scanning from a1, holding a piece of kind k and color c.
func (b *Board) Find(k PieceKind, c Color) (Coord, bool) {
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			if b[rank][file].Is(k, c) {
				return NewCoord(rank, file), true
			}
		}
	}
	return NoCoord, false
}

// Count returns the number of pieces of kind k and color c.
func (b *Board) Count(k PieceKind, c Color) int {
	n := 0
	for rank := range b {
		for file := range b[rank] {
			if b[rank][file].Is(k, c) {
				n++
			}
		}
	}
	return n
}

// Codes returns the display code of every cell.
func (b *Board) Codes() [Size][Size]byte {
	var codes [Size][Size]byte
	for rank := range b {
		for file := range b[rank] {
			codes[rank][file] = b[rank][file].Char()
		}
	}
	return codes
}

// Validate checks that each side has exactly one king and no pawn stands
// on the first or last rank.
func (b *Board) Validate() error {
	for _, c := range []Color{White, Black} {
		if n := b.Count(King, c); n != 1 {
			return fmt.Errorf("%s has %d kings: %w", c, n, ErrInvariantViolation)
		}
	}
	for file := 0; file < Size; file++ {
		for _, rank := range []int{0, Size - 1} {
			if b[rank][file].Kind == Pawn {
				return fmt.Errorf("pawn on %s: %w", NewCoord(rank, file), ErrInvariantViolation)
			}
		}
	}
	return nil
}

// String returns a visual representation of the board, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := Size - 1; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < Size; file++ {
			p := b[rank][file]
			if p.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(p.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
