package board

import "golang.org/x/sync/errgroup"

// GenerateLegalMoves computes the legal destinations of every piece of side.
// last is the opponent's previous move, or nil before the first move.
// b is taken by value, so the caller's board is never modified.
func GenerateLegalMoves(b Board, side Color, last *LastMove) MoveMap {
	inCheck := b.Attacked(side)
	mm := make(MoveMap)
	for _, from := range b.origins(side) {
		if dests := b.pieceMoves(from, last, inCheck); len(dests) > 0 {
			mm[from] = dests
		}
	}
	return mm
}

// GenerateLegalMovesParallel is GenerateLegalMoves with one task per origin,
// at most workers of them running at once. Every task works on its own copy
// of the board. The result is identical to the serial version.
func GenerateLegalMovesParallel(b Board, side Color, last *LastMove, workers int) MoveMap {
	if workers <= 1 {
		return GenerateLegalMoves(b, side, last)
	}

	inCheck := b.Attacked(side)
	origins := b.origins(side)
	results := make([][]Coord, len(origins))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, from := range origins {
		i, from := i, from
		local := b
		var localLast *LastMove
		if last != nil {
			lm := *last
			localLast = &lm
		}
		g.Go(func() error {
			results[i] = local.pieceMoves(from, localLast, inCheck)
			return nil
		})
	}
	// Tasks never fail.
	g.Wait()

	mm := make(MoveMap)
	for i, from := range origins {
		if len(results[i]) > 0 {
			mm[from] = results[i]
		}
	}
	return mm
}

// origins lists the squares holding side's pieces, rank by rank from a1.
func (b *Board) origins(side Color) []Coord {
	var out []Coord
	for rank := 0; rank < Size; rank++ {
		for file := 0; file < Size; file++ {
			p := b[rank][file]
			if !p.IsEmpty() && p.Color == side {
				out = append(out, NewCoord(rank, file))
			}
		}
	}
	return out
}

// pieceMoves returns the legal destinations of the piece on from:
// ray or step moves first, then castling or en passant.
func (b *Board) pieceMoves(from Coord, last *LastMove, inCheck bool) []Coord {
	p := b.At(from)
	var dests []Coord

	for _, d := range Directions(p.Kind, p.Color) {
		to := from.Add(d)
		for to.Valid() {
			target := b[to.Rank][to.File]
			if !target.IsEmpty() && target.Color == p.Color {
				break
			}
			if p.Kind == Pawn && !b.pawnStepAllowed(from, d, p.Color) {
				break
			}
			if b.SafeAfter(from, to) {
				dests = append(dests, to)
			}
			if !target.IsEmpty() || !Slides(p.Kind) {
				break
			}
			to = to.Add(d)
		}
	}

	switch p.Kind {
	case King:
		for _, kingSide := range []bool{true, false} {
			if to, ok := b.castleTarget(from, kingSide, inCheck); ok {
				dests = append(dests, to)
			}
		}
	case Pawn:
		if to, ok := b.enPassantTarget(from, last); ok {
			dests = append(dests, to)
		}
	}
	return dests
}

// pawnStepAllowed applies the occupancy rules of pawn moves.
// Diagonals require an enemy piece; pushes require empty squares; a double
// push is only available from the pawn's starting rank.
func (b *Board) pawnStepAllowed(from Coord, d Vector, c Color) bool {
	to := from.Add(d)
	switch {
	case d.DFile != 0:
		return !b.IsEmpty(to)
	case d.DRank == 2 || d.DRank == -2:
		mid := from.Add(Vector{DRank: d.DRank / 2})
		return from.Rank == c.PawnRank() && b.IsEmpty(mid) && b.IsEmpty(to)
	default:
		return b.IsEmpty(to)
	}
}

// SafeAfter reports whether moving the piece on from to to leaves its own
// king out of check. The move is played on a copy of the board.
func (b *Board) SafeAfter(from, to Coord) bool {
	sim := *b
	p := sim.Clear(from)
	sim.Set(to, p)
	return !sim.Attacked(p.Color)
}

// castleTarget returns the king's destination when castling on the given
// side is legal for the king standing on king.
func (b *Board) castleTarget(king Coord, kingSide, inCheck bool) (Coord, bool) {
	k := b.At(king)
	if k.Kind != King || k.Moved || inCheck {
		return NoCoord, false
	}
	home := k.Color.HomeRank()
	if king != NewCoord(home, 4) {
		return NoCoord, false
	}

	rookFile, step := Size-1, 1
	if !kingSide {
		rookFile, step = 0, -1
	}
	rook := b.At(NewCoord(home, rookFile))
	if !rook.Is(Rook, k.Color) || rook.Moved {
		return NoCoord, false
	}

	// Includes the knight square on the queen side.
	for file := king.File + step; file != rookFile; file += step {
		if !b.IsEmpty(NewCoord(home, file)) {
			return NoCoord, false
		}
	}

	first := NewCoord(home, king.File+step)
	second := NewCoord(home, king.File+2*step)
	if !b.SafeAfter(king, first) || !b.SafeAfter(king, second) {
		return NoCoord, false
	}
	return second, true
}

// enPassantTarget returns the capture square when the pawn on pawn may
// take the pawn that just advanced two squares next to it.
func (b *Board) enPassantTarget(pawn Coord, last *LastMove) (Coord, bool) {
	if last == nil || !last.IsDoublePawnPush() {
		return NoCoord, false
	}
	p := b.At(pawn)
	if last.Piece.Color == p.Color || pawn.Rank != last.To.Rank {
		return NoCoord, false
	}
	if df := pawn.File - last.To.File; df != 1 && df != -1 {
		return NoCoord, false
	}
	if !b.At(last.To).Is(Pawn, last.Piece.Color) {
		return NoCoord, false
	}

	to := NewCoord(pawn.Rank+p.Color.Forward(), last.To.File)
	if !b.IsEmpty(to) {
		return NoCoord, false
	}
	sim := *b
	sim.Clear(last.To)
	if !sim.SafeAfter(pawn, to) {
		return NoCoord, false
	}
	return to, true
}
