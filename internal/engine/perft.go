package engine

import "github.com/hailam/chessrules/internal/board"

var promotionKinds = []board.PieceKind{board.Queen, board.Rook, board.Bishop, board.Knight}

// Perft counts the leaf nodes of the legal move tree at the given depth.
// Every promotion piece counts as a separate move. The engine is not modified.
func (e *Engine) Perft(depth int) int64 {
	if depth <= 0 {
		return 1
	}
	return perft(e.board, e.side, e.lastMove, depth)
}

// Divide returns the perft count below each legal move, keyed by the move
// in coordinate notation ("e2e4", "e7e8q").
func (e *Engine) Divide(depth int) map[string]int64 {
	out := make(map[string]int64)
	if depth <= 0 {
		return out
	}
	forEachMove(e.board, e.side, e.lastMove, func(name string, next board.Board, played board.LastMove) {
		out[name] = perft(next, e.side.Other(), &played, depth-1)
	})
	return out
}

func perft(b board.Board, side board.Color, last *board.LastMove, depth int) int64 {
	if depth == 0 {
		return 1
	}
	var nodes int64
	forEachMove(b, side, last, func(_ string, next board.Board, played board.LastMove) {
		nodes += perft(next, side.Other(), &played, depth-1)
	})
	return nodes
}

// forEachMove plays every legal move of side on a copy of b.
func forEachMove(b board.Board, side board.Color, last *board.LastMove, fn func(string, board.Board, board.LastMove)) {
	legal := board.GenerateLegalMoves(b, side, last)
	for _, from := range legal.Origins() {
		piece := b.At(from)
		for _, to := range legal[from] {
			kinds := []board.PieceKind{board.NoKind}
			if piece.Kind == board.Pawn && to.Rank == side.LastRank() {
				kinds = promotionKinds
			}
			for _, k := range kinds {
				next := b
				played := next.MakeMove(from, to, k, last)
				name := from.String() + to.String()
				if k != board.NoKind {
					name += string(k.Char())
				}
				fn(name, next, played)
			}
		}
	}
}
