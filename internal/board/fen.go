package board

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a board setup together with the side to move and the move
// that led to it. It is used to start play from an arbitrary position.
type Position struct {
	Board      Board
	SideToMove Color
	LastMove   *LastMove
}

// ParseFEN parses the first four fields of a FEN string.
// Castling rights set the Moved flags of kings and rooks, and an en passant
// square becomes the opponent's double pawn push in LastMove.
// The move counters, if present, are ignored.
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Position{}, fmt.Errorf("need at least 4 fields, got %d: %w", len(parts), ErrInvalidFEN)
	}

	pos := Position{Board: EmptyBoard()}

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(&pos.Board, parts[0]); err != nil {
		return Position{}, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fmt.Errorf("invalid side to move %q: %w", parts[1], ErrInvalidFEN)
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(&pos.Board, parts[2]); err != nil {
		return Position{}, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		last, err := parseEnPassant(&pos.Board, pos.SideToMove, parts[3])
		if err != nil {
			return Position{}, err
		}
		pos.LastMove = &last
	}

	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
// Pawns away from their starting rank are marked as moved.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != Size {
		return fmt.Errorf("need 8 ranks, got %d: %w", len(ranks), ErrInvalidFEN)
	}

	for i, rankStr := range ranks {
		rank := Size - 1 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file >= Size {
				return fmt.Errorf("too many squares in rank %d: %w", rank+1, ErrInvalidFEN)
			}

			if c > unicode.MaxASCII {
				return fmt.Errorf("invalid piece character %q: %w", c, ErrInvalidFEN)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece.IsEmpty() {
				return fmt.Errorf("invalid piece character %q: %w", c, ErrInvalidFEN)
			}
			if piece.Kind == Pawn && rank != piece.Color.PawnRank() {
				piece.Moved = true
			}
			b.Set(NewCoord(rank, file), piece)
			file++
		}

		if file != Size {
			return fmt.Errorf("rank %d has %d squares: %w", rank+1, file, ErrInvalidFEN)
		}
	}

	return nil
}

// parseCastlingRights marks every king and rook as moved except the ones a
// castling right still refers to.
func parseCastlingRights(b *Board, castling string) error {
	for rank := range b {
		for file := range b[rank] {
			if k := b[rank][file].Kind; k == King || k == Rook {
				b[rank][file].Moved = true
			}
		}
	}
	if castling == "-" {
		return nil
	}

	for _, c := range castling {
		var color Color
		var rookFile int
		switch c {
		case 'K':
			color, rookFile = White, Size-1
		case 'Q':
			color, rookFile = White, 0
		case 'k':
			color, rookFile = Black, Size-1
		case 'q':
			color, rookFile = Black, 0
		default:
			return fmt.Errorf("invalid castling character %q: %w", c, ErrInvalidFEN)
		}

		king := NewCoord(color.HomeRank(), 4)
		rook := NewCoord(color.HomeRank(), rookFile)
		if !b.At(king).Is(King, color) || !b.At(rook).Is(Rook, color) {
			return fmt.Errorf("castling right %q without king and rook in place: %w", c, ErrInvalidFEN)
		}
		b[king.Rank][king.File].Moved = false
		b[rook.Rank][rook.File].Moved = false
	}

	return nil
}

// parseEnPassant rebuilds the double pawn push that produced the en passant
// square sq, played by the side not to move.
func parseEnPassant(b *Board, side Color, sq string) (LastMove, error) {
	target, err := ParseCoord(sq)
	if err != nil {
		return LastMove{}, fmt.Errorf("en passant square: %w: %w", err, ErrInvalidFEN)
	}

	mover := side.Other()
	if target.Rank != mover.PawnRank()+mover.Forward() {
		return LastMove{}, fmt.Errorf("en passant square %s on wrong rank: %w", target, ErrInvalidFEN)
	}

	from := NewCoord(mover.PawnRank(), target.File)
	to := NewCoord(target.Rank+mover.Forward(), target.File)
	if !b.At(to).Is(Pawn, mover) || !b.IsEmpty(target) || !b.IsEmpty(from) {
		return LastMove{}, fmt.Errorf("en passant square %s without a pushed pawn: %w", target, ErrInvalidFEN)
	}

	return LastMove{From: from, To: to, Piece: NewPiece(Pawn, mover)}, nil
}

// Validate checks the board invariants and that the side not to move is
// not in check.
func (p *Position) Validate() error {
	if err := p.Board.Validate(); err != nil {
		return err
	}
	if p.Board.Attacked(p.SideToMove.Other()) {
		return fmt.Errorf("%s to move can capture the king: %w", p.SideToMove, ErrInvariantViolation)
	}
	return nil
}

// FEN returns the FEN representation of the position.
// The move counters are always "0 1".
func (p *Position) FEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := Size - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < Size; file++ {
			piece := p.Board[rank][file]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(piece.Char())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castlingField())

	// En passant
	sb.WriteByte(' ')
	if p.LastMove != nil && p.LastMove.IsDoublePawnPush() {
		sb.WriteString(NewCoord((p.LastMove.From.Rank+p.LastMove.To.Rank)/2, p.LastMove.To.File).String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(" 0 1")
	return sb.String()
}

// castlingField derives the FEN castling rights from the Moved flags.
func (p *Position) castlingField() string {
	s := ""
	for _, c := range []Color{White, Black} {
		king := p.Board.At(NewCoord(c.HomeRank(), 4))
		if !king.Is(King, c) || king.Moved {
			continue
		}
		for _, r := range []struct {
			file int
			char byte
		}{{Size - 1, 'k'}, {0, 'q'}} {
			rook := p.Board.At(NewCoord(c.HomeRank(), r.file))
			if !rook.Is(Rook, c) || rook.Moved {
				continue
			}
			if c == White {
				s += string(r.char - ('a' - 'A'))
			} else {
				s += string(r.char)
			}
		}
	}
	if s == "" {
		return "-"
	}
	return s
}
