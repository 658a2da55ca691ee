// Package engine owns a game in progress: the board, the side to move and
// the derived check state and legal moves, and the only way to change them.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hailam/chessrules/internal/board"
)

// Engine is a single game. Engines share no state with each other.
type Engine struct {
	board    board.Board
	side     board.Color
	lastMove *board.LastMove
	check    board.CheckState
	legal    board.MoveMap

	log     zerolog.Logger
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for move events.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithWorkers generates legal moves with up to n goroutines.
// n <= 1 keeps generation on the calling goroutine.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// New creates an engine at the standard starting position, White to move.
func New(opts ...Option) *Engine {
	e := newEngine(board.Position{Board: board.NewBoard(), SideToMove: board.White}, opts)
	if err := e.refresh(); err != nil {
		// The starting position always has both kings.
		panic(err)
	}
	return e
}

// NewFromFEN creates an engine at the position described by fen.
func NewFromFEN(fen string, opts ...Option) (*Engine, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	e := newEngine(pos, opts)
	if err := e.refresh(); err != nil {
		return nil, err
	}
	return e, nil
}

func newEngine(pos board.Position, opts []Option) *Engine {
	e := &Engine{
		board:    pos.Board,
		side:     pos.SideToMove,
		lastMove: pos.LastMove,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// refresh recomputes the check state and legal moves for the side to move.
func (e *Engine) refresh() error {
	check, err := e.board.CheckState(e.side)
	if err != nil {
		return err
	}
	e.check = check
	e.legal = e.generate(e.board, e.side, e.lastMove)
	return nil
}

func (e *Engine) generate(b board.Board, side board.Color, last *board.LastMove) board.MoveMap {
	if e.workers > 1 {
		return board.GenerateLegalMovesParallel(b, side, last, e.workers)
	}
	return board.GenerateLegalMoves(b, side, last)
}

// Board returns a copy of the current board.
func (e *Engine) Board() board.Board {
	return e.board
}

// PieceAt returns the piece on c, or NoPiece if c is empty.
func (e *Engine) PieceAt(c board.Coord) (board.Piece, error) {
	if !c.Valid() {
		return board.NoPiece, fmt.Errorf("square (%d,%d): %w", c.Rank, c.File, board.ErrInvalidCoordinate)
	}
	return e.board.At(c), nil
}

// Codes returns the display code of every square, indexed [rank][file].
func (e *Engine) Codes() [board.Size][board.Size]byte {
	return e.board.Codes()
}

// SideToMove returns the color whose turn it is.
func (e *Engine) SideToMove() board.Color {
	return e.side
}

// LegalMoves returns a copy of the legal moves of the side to move.
func (e *Engine) LegalMoves() board.MoveMap {
	return e.legal.Clone()
}

// IsLegal returns true if moving from -> to is legal for the side to move.
func (e *Engine) IsLegal(from, to board.Coord) (bool, error) {
	if !from.Valid() || !to.Valid() {
		return false, fmt.Errorf("move (%d,%d) -> (%d,%d): %w",
			from.Rank, from.File, to.Rank, to.File, board.ErrInvalidCoordinate)
	}
	return e.legal.Contains(from, to), nil
}

// LastMove returns the last move played, if any.
func (e *Engine) LastMove() (board.LastMove, bool) {
	if e.lastMove == nil {
		return board.LastMove{}, false
	}
	return *e.lastMove, true
}

// CheckState returns the check state of the side to move.
func (e *Engine) CheckState() board.CheckState {
	return e.check
}

// Position returns the current position.
func (e *Engine) Position() board.Position {
	pos := board.Position{Board: e.board, SideToMove: e.side}
	if e.lastMove != nil {
		lm := *e.lastMove
		pos.LastMove = &lm
	}
	return pos
}

// FEN returns the FEN representation of the current position.
func (e *Engine) FEN() string {
	pos := e.Position()
	return pos.FEN()
}

// Clone returns an independent copy of the engine.
func (e *Engine) Clone() *Engine {
	c := *e
	if e.lastMove != nil {
		lm := *e.lastMove
		c.lastMove = &lm
	}
	c.legal = e.legal.Clone()
	return &c
}

// ApplyMove plays from -> to for the side to move.
//
// promo selects the piece a pawn reaching its last rank becomes; NoKind
// means Queen. promo is ignored when the move is not a promotion.
// On error the engine is left unchanged.
func (e *Engine) ApplyMove(from, to board.Coord, promo board.PieceKind) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("move (%d,%d) -> (%d,%d): %w",
			from.Rank, from.File, to.Rank, to.File, board.ErrInvalidCoordinate)
	}

	piece := e.board.At(from)
	switch {
	case piece.IsEmpty():
		return e.reject(from, to, "no piece on origin")
	case piece.Color != e.side:
		return e.reject(from, to, fmt.Sprintf("%s piece but %s to move", piece.Color, e.side))
	case !e.legal.Contains(from, to):
		return e.reject(from, to, "destination not legal")
	}

	promoting := piece.Kind == board.Pawn && to.Rank == piece.Color.LastRank()
	if promoting && promo != board.NoKind && !promo.CanPromoteTo() {
		return e.reject(from, to, fmt.Sprintf("cannot promote to %s", promo))
	}
	if !promoting && promo != board.NoKind {
		e.log.Debug().Str("move", from.String()+to.String()).Stringer("promo", promo).
			Msg("promotion ignored for non-promoting move")
	}

	next := e.board
	played := next.MakeMove(from, to, promo, e.lastMove)
	side := e.side.Other()

	check, err := next.CheckState(side)
	if err != nil {
		return fmt.Errorf("after %s: %w", played, err)
	}

	e.board = next
	e.lastMove = &played
	e.side = side
	e.check = check
	e.legal = e.generate(e.board, e.side, e.lastMove)

	e.log.Debug().
		Str("move", played.String()).
		Stringer("piece", played.Piece.Kind).
		Stringer("to_move", e.side).
		Bool("in_check", e.check.InCheck).
		Int("legal", e.legal.Len()).
		Msg("move applied")
	return nil
}

func (e *Engine) reject(from, to board.Coord, reason string) error {
	e.log.Debug().Str("move", from.String()+to.String()).Str("reason", reason).Msg("move rejected")
	return fmt.Errorf("%s%s: %s: %w", from, to, reason, board.ErrIllegalMove)
}

// String returns the board diagram followed by the game state.
func (e *Engine) String() string {
	s := e.board.String()
	s += fmt.Sprintf("\nSide to move: %s\n", e.side)
	s += fmt.Sprintf("Check: %s\n", e.check)
	if e.lastMove != nil {
		s += fmt.Sprintf("Last move: %s\n", e.lastMove)
	}
	s += fmt.Sprintf("FEN: %s\n", e.FEN())
	return s
}
