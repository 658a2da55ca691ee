package board

import "fmt"

// Attacked returns true if any piece of c's opponent reaches c's king.
// It never modifies the board and is safe to call on simulated positions.
func (b *Board) Attacked(c Color) bool {
	_, ok := b.attackedKing(c)
	return ok
}

// CheckState computes the check state of c.
// It fails with ErrInvariantViolation if c has no king on the board.
func (b *Board) CheckState(c Color) (CheckState, error) {
	if _, ok := b.Find(King, c); !ok {
		return CheckState{King: NoCoord}, fmt.Errorf("no %s king: %w", c, ErrInvariantViolation)
	}
	if king, ok := b.attackedKing(c); ok {
		return CheckState{InCheck: true, King: king}, nil
	}
	return CheckState{King: NoCoord}, nil
}

// attackedKing scans every enemy piece along its movement directions and
// returns the square of c's king when one of them reaches it.
func (b *Board) attackedKing(c Color) (Coord, bool) {
	enemy := c.Other()
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			p := b[rank][file]
			if p.IsEmpty() || p.Color != enemy {
				continue
			}
			from := NewCoord(rank, file)
			for _, d := range Directions(p.Kind, p.Color) {
				if king, ok := b.rayHitsKing(from, d, p.Kind, c); ok {
					return king, true
				}
			}
		}
	}
	return NoCoord, false
}

// rayHitsKing follows one direction of a piece of kind k standing on from.
// Pawn pushes never attack; sliders stop at the first occupied square.
func (b *Board) rayHitsKing(from Coord, d Vector, k PieceKind, c Color) (Coord, bool) {
	if k == Pawn && d.DFile == 0 {
		return NoCoord, false
	}
	to := from.Add(d)
	for to.Valid() {
		target := b[to.Rank][to.File]
		if target.Is(King, c) {
			return to, true
		}
		if !target.IsEmpty() || !Slides(k) {
			break
		}
		to = to.Add(d)
	}
	return NoCoord, false
}
