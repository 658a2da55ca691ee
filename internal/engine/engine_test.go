package engine

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hailam/chessrules/internal/board"
)

func sq(t *testing.T, s string) board.Coord {
	t.Helper()
	c, err := board.ParseCoord(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustFEN(t *testing.T, fen string, opts ...Option) *Engine {
	t.Helper()
	e, err := NewFromFEN(fen, opts...)
	if err != nil {
		t.Fatalf("NewFromFEN(%q): %v", fen, err)
	}
	return e
}

func at(t *testing.T, e *Engine, c board.Coord) board.Piece {
	t.Helper()
	p, err := e.PieceAt(c)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func isLegal(t *testing.T, e *Engine, from, to string) bool {
	t.Helper()
	ok, err := e.IsLegal(sq(t, from), sq(t, to))
	if err != nil {
		t.Fatal(err)
	}
	return ok
}

// play applies moves given as "e2e4" pairs, failing the test on error.
func play(t *testing.T, e *Engine, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if err := e.ApplyMove(sq(t, m[0:2]), sq(t, m[2:4]), board.NoKind); err != nil {
			t.Fatalf("ApplyMove(%s): %v", m, err)
		}
	}
}

func TestNewEngine(t *testing.T) {
	e := New()
	if e.SideToMove() != board.White {
		t.Errorf("side to move = %v, want White", e.SideToMove())
	}
	if _, ok := e.LastMove(); ok {
		t.Error("new game should have no last move")
	}
	if e.CheckState().InCheck {
		t.Error("new game should not be in check")
	}
	legal := e.LegalMoves()
	if legal.Len() != 20 {
		t.Errorf("initial legal moves = %d, want 20", legal.Len())
	}
	for from := range legal {
		if at(t, e, from).Color != board.White {
			t.Errorf("black piece on %s listed before White moved", from)
		}
	}
	if got := e.Codes()[0]; string(got[:]) != "RNBQKBNR" {
		t.Errorf("first rank codes = %q", got[:])
	}
	if got := e.Codes()[7]; string(got[:]) != "rnbqkbnr" {
		t.Errorf("eighth rank codes = %q", got[:])
	}
}

func TestApplyMoveUpdatesState(t *testing.T) {
	e := New()
	play(t, e, "e2e4")

	if e.SideToMove() != board.Black {
		t.Errorf("side to move = %v, want Black", e.SideToMove())
	}
	last, ok := e.LastMove()
	if !ok || last.From != sq(t, "e2") || last.To != sq(t, "e4") || last.Piece.Kind != board.Pawn {
		t.Errorf("last move = %+v", last)
	}
	if e.LegalMoves().Len() != 20 {
		t.Errorf("black legal moves = %d, want 20", e.LegalMoves().Len())
	}
	if got := e.FEN(); got != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Errorf("FEN = %q", got)
	}
}

func TestApplyMoveErrors(t *testing.T) {
	tests := []struct {
		name     string
		from, to board.Coord
		want     error
	}{
		{"origin off board", board.NewCoord(-1, 0), board.NewCoord(0, 0), board.ErrInvalidCoordinate},
		{"destination off board", board.NewCoord(1, 4), board.NewCoord(8, 4), board.ErrInvalidCoordinate},
		{"empty origin", board.NewCoord(3, 4), board.NewCoord(4, 4), board.ErrIllegalMove},
		{"opponent piece", board.NewCoord(6, 4), board.NewCoord(5, 4), board.ErrIllegalMove},
		{"not a legal destination", board.NewCoord(1, 4), board.NewCoord(4, 4), board.ErrIllegalMove},
		{"capture own piece", board.NewCoord(0, 0), board.NewCoord(1, 0), board.ErrIllegalMove},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := New()
			before := e.Clone()
			err := e.ApplyMove(tc.from, tc.to, board.NoKind)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ApplyMove error = %v, want %v", err, tc.want)
			}
			assertUnchanged(t, before, e)
		})
	}
}

func assertUnchanged(t *testing.T, before, after *Engine) {
	t.Helper()
	if before.Board() != after.Board() {
		t.Error("board changed")
	}
	if before.SideToMove() != after.SideToMove() {
		t.Error("side to move changed")
	}
	if !reflect.DeepEqual(before.LegalMoves(), after.LegalMoves()) {
		t.Error("legal moves changed")
	}
	if before.CheckState() != after.CheckState() {
		t.Error("check state changed")
	}
	bl, bok := before.LastMove()
	al, aok := after.LastMove()
	if bl != al || bok != aok {
		t.Error("last move changed")
	}
}

func TestCastlingRoundTrip(t *testing.T) {
	e := New()
	// Clear f1 and g1 without touching the king or rook.
	play(t, e, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6")

	if !isLegal(t, e, "e1", "g1") {
		t.Fatalf("king side castling missing from %v", e.LegalMoves()[sq(t, "e1")])
	}
	play(t, e, "e1g1")

	king := at(t, e, sq(t, "g1"))
	rook := at(t, e, sq(t, "f1"))
	if !king.Is(board.King, board.White) || !king.Moved {
		t.Errorf("g1 = %+v, want moved white king", king)
	}
	if !rook.Is(board.Rook, board.White) || !rook.Moved {
		t.Errorf("f1 = %+v, want moved white rook", rook)
	}
	if !at(t, e, sq(t, "e1")).IsEmpty() || !at(t, e, sq(t, "h1")).IsEmpty() {
		t.Error("e1 and h1 should be empty after castling")
	}
}

func TestCastlingLostAfterRookMoves(t *testing.T) {
	e := mustFEN(t, "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	play(t, e, "h1h2", "e8d8", "h2h1", "d8e8")

	if isLegal(t, e, "e1", "g1") {
		t.Error("king side castling allowed after the rook moved")
	}
	if !isLegal(t, e, "e1", "c1") {
		t.Error("queen side castling should still be legal")
	}
}

func TestCastlingLostAfterKingMoves(t *testing.T) {
	e := mustFEN(t, "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	play(t, e, "e1f1", "e8d8", "f1e1", "d8e8")

	if isLegal(t, e, "e1", "g1") || isLegal(t, e, "e1", "c1") {
		t.Error("castling allowed after the king moved")
	}
}

func TestEnPassantCapture(t *testing.T) {
	e := mustFEN(t, "4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
	play(t, e, "e2e4")

	if !isLegal(t, e, "d4", "e3") {
		t.Fatalf("en passant missing: %v", e.LegalMoves()[sq(t, "d4")])
	}
	play(t, e, "d4e3")

	if !at(t, e, sq(t, "e4")).IsEmpty() {
		t.Error("white pawn on e4 should have been captured")
	}
	if !at(t, e, sq(t, "e3")).Is(board.Pawn, board.Black) {
		t.Error("black pawn should stand on e3")
	}
	if countPawns(e, board.White) != 0 {
		t.Error("white still has a pawn")
	}
}

func TestEnPassantExpires(t *testing.T) {
	e := mustFEN(t, "4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
	play(t, e, "e2e4", "e8d8", "e1d1")

	if isLegal(t, e, "d4", "e3") {
		t.Error("en passant allowed one move too late")
	}
}

func TestPromotion(t *testing.T) {
	tests := []struct {
		promo board.PieceKind
		want  board.PieceKind
	}{
		{board.Queen, board.Queen},
		{board.Knight, board.Knight},
		{board.Rook, board.Rook},
		{board.Bishop, board.Bishop},
		{board.NoKind, board.Queen},
	}

	for _, tc := range tests {
		t.Run(tc.want.String(), func(t *testing.T) {
			e := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
			if err := e.ApplyMove(sq(t, "a7"), sq(t, "a8"), tc.promo); err != nil {
				t.Fatal(err)
			}
			if got := at(t, e, sq(t, "a8")); !got.Is(tc.want, board.White) {
				t.Errorf("a8 = %+v, want white %v", got, tc.want)
			}
			if countPawns(e, board.White) != 0 {
				t.Error("the pawn should be gone")
			}
		})
	}
}

func TestPromotionGivesCheck(t *testing.T) {
	e := mustFEN(t, "8/P5k1/8/8/8/8/8/K7 w - - 0 1")
	if err := e.ApplyMove(sq(t, "a7"), sq(t, "a8"), board.Queen); err != nil {
		t.Fatal(err)
	}
	// Queen a8 does not reach g7; the check flag must reflect the new board.
	if e.CheckState().InCheck {
		t.Error("black should not be in check")
	}

	e = mustFEN(t, "8/P7/8/8/8/8/8/K5k1 w - - 0 1")
	if err := e.ApplyMove(sq(t, "a7"), sq(t, "a8"), board.Rook); err != nil {
		t.Fatal(err)
	}
	if e.CheckState().InCheck {
		t.Error("rook on a8 does not attack g1")
	}
	if err := e.ApplyMove(sq(t, "g1"), sq(t, "g2"), board.NoKind); err != nil {
		t.Fatal(err)
	}
	if err := e.ApplyMove(sq(t, "a8"), sq(t, "g8"), board.NoKind); err != nil {
		t.Fatal(err)
	}
	cs := e.CheckState()
	if !cs.InCheck || cs.King != sq(t, "g2") {
		t.Errorf("check state = %+v, want check on g2", cs)
	}
}

func TestPromotionInvalidKind(t *testing.T) {
	for _, k := range []board.PieceKind{board.King, board.Pawn} {
		e := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
		before := e.Clone()
		err := e.ApplyMove(sq(t, "a7"), sq(t, "a8"), k)
		if !errors.Is(err, board.ErrIllegalMove) {
			t.Errorf("promotion to %v: err = %v, want ErrIllegalMove", k, err)
		}
		assertUnchanged(t, before, e)
	}
}

func TestPromotionChoiceIgnoredForOtherMoves(t *testing.T) {
	var buf bytes.Buffer
	e := New(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	if err := e.ApplyMove(sq(t, "e2"), sq(t, "e4"), board.Queen); err != nil {
		t.Fatal(err)
	}
	if !at(t, e, sq(t, "e4")).Is(board.Pawn, board.White) {
		t.Error("pawn should not change kind")
	}
	if !bytes.Contains(buf.Bytes(), []byte("promotion ignored")) {
		t.Errorf("expected a debug log entry, got %s", buf.String())
	}
}

func TestCheckmateAndStalemate(t *testing.T) {
	// Fool's mate.
	e := New()
	play(t, e, "f2f3", "e7e5", "g2g4", "d8h4")
	if !e.CheckState().InCheck || e.LegalMoves().Len() != 0 {
		t.Errorf("fool's mate: in check %v, %d moves", e.CheckState().InCheck, e.LegalMoves().Len())
	}
	if e.CheckState().King != sq(t, "e1") {
		t.Errorf("checked king on %s, want e1", e.CheckState().King)
	}

	e = mustFEN(t, "7k/8/6K1/5Q2/8/8/8/8 w - - 0 1")
	play(t, e, "f5f7")
	if e.CheckState().InCheck || e.LegalMoves().Len() != 0 {
		t.Errorf("stalemate: in check %v, %d moves", e.CheckState().InCheck, e.LegalMoves().Len())
	}
}

func TestNoSelfCheckAfterAnyMove(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}
	for _, fen := range fens {
		e := mustFEN(t, fen)
		mover := e.SideToMove()
		for from, dests := range e.LegalMoves() {
			for _, to := range dests {
				c := e.Clone()
				if err := c.ApplyMove(from, to, board.NoKind); err != nil {
					t.Fatalf("%s: legal move %s%s failed: %v", fen, from, to, err)
				}
				b := c.Board()
				if b.Attacked(mover) {
					t.Errorf("%s: %s%s leaves %v in check", fen, from, to, mover)
				}
			}
		}
	}
}

func TestLegalMovesIsACopy(t *testing.T) {
	e := New()
	legal := e.LegalMoves()
	for from := range legal {
		delete(legal, from)
	}
	if e.LegalMoves().Len() != 20 {
		t.Error("modifying the returned map changed the engine")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := New()
	c := e.Clone()
	play(t, c, "d2d4")
	if e.SideToMove() != board.White || e.Board() != board.NewBoard() {
		t.Error("moving on a clone changed the original")
	}
}

func TestWorkersProduceSameMoves(t *testing.T) {
	serial := New()
	parallel := New(WithWorkers(4))
	moves := []string{"e2e4", "d7d5", "e4d5", "g8f6", "f1b5", "c7c6"}
	for _, m := range moves {
		play(t, serial, m)
		play(t, parallel, m)
		if !reflect.DeepEqual(serial.LegalMoves(), parallel.LegalMoves()) {
			t.Fatalf("after %s legal moves differ", m)
		}
	}
}

func TestNewFromFENErrors(t *testing.T) {
	if _, err := NewFromFEN("not a fen"); !errors.Is(err, board.ErrInvalidFEN) {
		t.Errorf("err = %v, want ErrInvalidFEN", err)
	}
	if _, err := NewFromFEN("8/8/8/8/8/8/8/4K3 w - - 0 1"); !errors.Is(err, board.ErrInvariantViolation) {
		t.Errorf("err = %v, want ErrInvariantViolation", err)
	}
}

func countPawns(e *Engine, c board.Color) int {
	b := e.Board()
	return b.Count(board.Pawn, c)
}

func TestQueriesRejectInvalidCoordinates(t *testing.T) {
	e := New()
	off := []board.Coord{board.NewCoord(-1, 0), board.NewCoord(0, 8), board.NewCoord(8, 8), board.NoCoord}
	for _, c := range off {
		if _, err := e.PieceAt(c); !errors.Is(err, board.ErrInvalidCoordinate) {
			t.Errorf("PieceAt(%v) err = %v, want ErrInvalidCoordinate", c, err)
		}
		if _, err := e.IsLegal(c, sq(t, "e4")); !errors.Is(err, board.ErrInvalidCoordinate) {
			t.Errorf("IsLegal(%v, e4) err = %v, want ErrInvalidCoordinate", c, err)
		}
		if _, err := e.IsLegal(sq(t, "e2"), c); !errors.Is(err, board.ErrInvalidCoordinate) {
			t.Errorf("IsLegal(e2, %v) err = %v, want ErrInvalidCoordinate", c, err)
		}
	}
	if ok, err := e.IsLegal(sq(t, "e2"), sq(t, "e4")); err != nil || !ok {
		t.Errorf("IsLegal(e2, e4) = %v, %v", ok, err)
	}
}
