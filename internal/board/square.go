// Package board implements the chess board, piece movement rules,
// check detection and legal move generation.
package board

import "fmt"

// Size is the number of ranks and files on the board.
const Size = 8

// Coord identifies a square by rank and file (both 0-7).
// Rank 0 is White's back rank, file 0 is the a-file.
type Coord struct {
	Rank, File int
}

// NoCoord marks the absence of a square.
var NoCoord = Coord{Rank: -1, File: -1}

// NewCoord creates a coordinate from rank and file.
func NewCoord(rank, file int) Coord {
	return Coord{Rank: rank, File: file}
}

// Valid returns true if the coordinate lies on the board.
func (c Coord) Valid() bool {
	return c.Rank >= 0 && c.Rank < Size && c.File >= 0 && c.File < Size
}

// Add returns the coordinate offset by v. The result may be off the board.
func (c Coord) Add(v Vector) Coord {
	return Coord{Rank: c.Rank + v.DRank, File: c.File + v.DFile}
}

// String returns the algebraic notation for the square (e.g., "e4").
func (c Coord) String() string {
	if !c.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+c.File, '1'+c.Rank)
}

// ParseCoord parses algebraic notation (e.g., "e4") into a Coord.
func ParseCoord(s string) (Coord, error) {
	if len(s) != 2 {
		return NoCoord, fmt.Errorf("%q: %w", s, ErrInvalidCoordinate)
	}

	c := NewCoord(int(s[1])-'1', int(s[0])-'a')
	if !c.Valid() {
		return NoCoord, fmt.Errorf("%q: %w", s, ErrInvalidCoordinate)
	}
	return c, nil
}
