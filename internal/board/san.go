package board

import (
	"fmt"
	"strings"
)

// SAN converts a legal move of the side to move to Standard Algebraic
// Notation. promo is ignored unless the move is a promotion; NoKind means
// Queen.
func (p *Position) SAN(from, to Coord, promo PieceKind) (string, error) {
	legal := GenerateLegalMoves(p.Board, p.SideToMove, p.LastMove)
	if !legal.Contains(from, to) {
		return "", fmt.Errorf("%s%s: %w", from, to, ErrIllegalMove)
	}

	s := p.san(legal, from, to, promo)

	// Play the move on a copy to add the check or mate marker.
	next := p.Board
	played := next.MakeMove(from, to, promo, p.LastMove)
	them := p.SideToMove.Other()
	if next.Attacked(them) {
		if GenerateLegalMoves(next, them, &played).Len() == 0 {
			return s + "#", nil
		}
		return s + "+", nil
	}
	return s, nil
}

// san returns the notation of a legal move without check markers.
func (p *Position) san(legal MoveMap, from, to Coord, promo PieceKind) string {
	piece := p.Board.At(from)

	if IsCastling(piece, from, to) {
		if to.File > from.File {
			return "O-O"
		}
		return "O-O-O"
	}

	var sb strings.Builder
	if piece.Kind != Pawn {
		sb.WriteByte(piece.Kind.Char() - ('a' - 'A'))
		sb.WriteString(disambiguation(&p.Board, legal, piece, from, to))
	}

	if p.isCapture(piece, from, to) {
		if piece.Kind == Pawn {
			sb.WriteByte(byte('a' + from.File))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if piece.Kind == Pawn && to.Rank == piece.Color.LastRank() {
		if !promo.CanPromoteTo() {
			promo = Queen
		}
		sb.WriteByte('=')
		sb.WriteByte(promo.Char() - ('a' - 'A'))
	}
	return sb.String()
}

func (p *Position) isCapture(piece Piece, from, to Coord) bool {
	return !p.Board.IsEmpty(to) || IsEnPassant(piece, from, to, p.LastMove)
}

// disambiguation returns the origin file, rank or square needed when
// another piece of the same kind can reach the same destination.
func disambiguation(b *Board, legal MoveMap, piece Piece, from, to Coord) string {
	var candidates []Coord
	for other, dests := range legal {
		if other == from || b.At(other).Kind != piece.Kind {
			continue
		}
		for _, d := range dests {
			if d == to {
				candidates = append(candidates, other)
				break
			}
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	sameFile := false
	sameRank := false
	for _, c := range candidates {
		if c.File == from.File {
			sameFile = true
		}
		if c.Rank == from.Rank {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + from.File))
	}
	if !sameRank {
		return string(rune('1' + from.Rank))
	}
	return from.String()
}

// ParseSAN finds the legal move written in Standard Algebraic Notation.
// Check markers and annotations are optional; "0-0" is accepted for "O-O".
func (p *Position) ParseSAN(s string) (Coord, Coord, PieceKind, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")
	s = strings.ReplaceAll(s, "0", "O")

	legal := GenerateLegalMoves(p.Board, p.SideToMove, p.LastMove)
	for _, from := range legal.Origins() {
		piece := p.Board.At(from)
		for _, to := range legal[from] {
			kinds := []PieceKind{NoKind}
			if piece.Kind == Pawn && to.Rank == piece.Color.LastRank() {
				kinds = []PieceKind{Queen, Rook, Bishop, Knight}
			}
			for _, k := range kinds {
				if p.san(legal, from, to, k) == s {
					return from, to, k, nil
				}
			}
		}
	}

	// Promotion written without '=' ("e8Q").
	if n := len(s); n >= 3 && s[n-2] != '=' && strings.IndexByte("NBRQ", s[n-1]) >= 0 {
		if from, to, k, err := p.ParseSAN(s[:n-1] + "=" + s[n-1:]); err == nil {
			return from, to, k, nil
		}
	}
	return NoCoord, NoCoord, NoKind, fmt.Errorf("move %q: %w", orig, ErrIllegalMove)
}
