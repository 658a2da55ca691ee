package board

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LastMove records the most recent move, used for en passant and highlighting.
type LastMove struct {
	From  Coord
	To    Coord
	Piece Piece // snapshot of the moved piece before the move
}

// IsDoublePawnPush returns true if the move advanced a pawn two ranks.
func (m LastMove) IsDoublePawnPush() bool {
	if m.Piece.Kind != Pawn {
		return false
	}
	d := m.To.Rank - m.From.Rank
	return m.From.File == m.To.File && (d == 2 || d == -2)
}

// String returns the move in coordinate notation (e.g., "e2e4").
func (m LastMove) String() string {
	return m.From.String() + m.To.String()
}

// CheckState reports whether a side's king is attacked.
// King is NoCoord unless InCheck is true.
type CheckState struct {
	InCheck bool
	King    Coord
}

// String returns a short description of the state.
func (cs CheckState) String() string {
	if !cs.InCheck {
		return "not in check"
	}
	return fmt.Sprintf("king on %s in check", cs.King)
}

// MoveMap maps each origin with at least one legal move to its destinations.
type MoveMap map[Coord][]Coord

// Destinations returns the legal destinations from an origin.
func (mm MoveMap) Destinations(from Coord) []Coord {
	return mm[from]
}

// Contains returns true if moving from -> to is legal.
func (mm MoveMap) Contains(from, to Coord) bool {
	return slices.Contains(mm[from], to)
}

// Len returns the total number of destinations across all origins.
func (mm MoveMap) Len() int {
	n := 0
	for _, dests := range mm {
		n += len(dests)
	}
	return n
}

// Origins returns the origins ordered by rank, then file.
func (mm MoveMap) Origins() []Coord {
	origins := maps.Keys(mm)
	sort.Slice(origins, func(i, j int) bool {
		if origins[i].Rank != origins[j].Rank {
			return origins[i].Rank < origins[j].Rank
		}
		return origins[i].File < origins[j].File
	})
	return origins
}

// Clone returns a deep copy of the map.
func (mm MoveMap) Clone() MoveMap {
	out := make(MoveMap, len(mm))
	for from, dests := range mm {
		out[from] = slices.Clone(dests)
	}
	return out
}
