package board

// MakeMove plays from -> to on the board without checking legality and
// returns the LastMove describing it. last is the previous move and is
// needed to recognize en passant captures.
//
// promo replaces a pawn reaching its last rank; NoKind means Queen.
// promo is ignored for every other move.
func (b *Board) MakeMove(from, to Coord, promo PieceKind, last *LastMove) LastMove {
	piece := b.At(from)
	played := LastMove{From: from, To: to, Piece: piece}

	switch piece.Kind {
	case King, Rook, Pawn:
		piece.Moved = true
	}

	switch {
	case IsCastling(piece, from, to):
		rookFrom, rookTo := CastlingRookSquares(from, to)
		rook := b.Clear(rookFrom)
		rook.Moved = true
		b.Set(rookTo, rook)
	case IsEnPassant(piece, from, to, last):
		b.Clear(NewCoord(from.Rank, to.File))
	}

	if piece.Kind == Pawn && to.Rank == piece.Color.LastRank() {
		if !promo.CanPromoteTo() {
			promo = Queen
		}
		piece = NewPiece(promo, piece.Color)
	}

	b.Set(to, piece)
	b.Clear(from)
	return played
}

// IsCastling returns true if moving piece from -> to is a castling move.
func IsCastling(piece Piece, from, to Coord) bool {
	df := to.File - from.File
	return piece.Kind == King && from.Rank == to.Rank && (df == 2 || df == -2)
}

// CastlingRookSquares returns where the rook starts and lands for the
// castling move of the king from -> to.
func CastlingRookSquares(from, to Coord) (Coord, Coord) {
	if to.File > from.File {
		return NewCoord(from.Rank, Size-1), NewCoord(from.Rank, to.File-1)
	}
	return NewCoord(from.Rank, 0), NewCoord(from.Rank, to.File+1)
}

// IsEnPassant returns true if moving piece from -> to captures the pawn
// that made last, which stands beside from rather than on to.
func IsEnPassant(piece Piece, from, to Coord, last *LastMove) bool {
	return piece.Kind == Pawn &&
		last != nil &&
		last.IsDoublePawnPush() &&
		last.Piece.Color != piece.Color &&
		from.Rank == last.To.Rank &&
		to.File == last.To.File &&
		from.File != to.File
}
