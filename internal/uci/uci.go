// Package uci drives an engine from a line-based text protocol modeled on
// the Universal Chess Interface. It stands in for a presentation layer: it
// reads the board and legal moves and submits the moves it is given.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/engine"
)

// UCI is a command loop bound to one engine at a time.
type UCI struct {
	engine *engine.Engine
	opts   []engine.Option

	in  io.Reader
	out io.Writer
	log zerolog.Logger
}

// New creates a command loop reading in and writing out.
// opts are applied to every engine the loop creates.
func New(in io.Reader, out io.Writer, log zerolog.Logger, opts ...engine.Option) *UCI {
	return &UCI{
		engine: engine.New(opts...),
		opts:   opts,
		in:     in,
		out:    out,
		log:    log,
	}
}

// Engine returns the engine currently driven by the loop.
func (u *UCI) Engine() *engine.Engine {
	return u.engine
}

// Run reads commands until "quit" or end of input.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		if !u.Execute(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// Execute runs a single command line. It returns false after "quit".
func (u *UCI) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd := parts[0]
	args := parts[1:]

	u.log.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		fmt.Fprintln(u.out, "readyok")
	case "ucinewgame":
		u.engine = engine.New(u.opts...)
	case "position":
		u.handlePosition(args)
	case "move":
		u.handleMoves(args)
	case "legal":
		u.handleLegal()
	case "status":
		u.handleStatus()
	case "fen":
		fmt.Fprintln(u.out, u.engine.FEN())
	case "san":
		u.handleSAN()
	case "quit":
		return false
	// Debug commands
	case "d":
		fmt.Fprintln(u.out, u.engine.String())
	case "perft":
		u.handlePerft(args)
	case "divide":
		u.handleDivide(args)
	default:
		fmt.Fprintf(u.out, "info string Unknown command: %s\n", cmd)
	}
	return true
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	fmt.Fprintln(u.out, "id name ChessRules")
	fmt.Fprintln(u.out, "id author ChessRules Team")
	fmt.Fprintln(u.out, "uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var eng *engine.Engine
	switch args[0] {
	case "startpos":
		eng = engine.New(u.opts...)
	case "fen":
		var err error
		eng, err = engine.NewFromFEN(strings.Join(args[1:movesAt], " "), u.opts...)
		if err != nil {
			fmt.Fprintf(u.out, "info string Invalid FEN: %v\n", err)
			return
		}
	default:
		return
	}

	u.engine = eng
	if movesAt < len(args) {
		u.handleMoves(args[movesAt+1:])
	}
}

// handleMoves applies moves in coordinate notation or SAN, stopping at the
// first one that fails.
func (u *UCI) handleMoves(moves []string) {
	for _, s := range moves {
		from, to, promo, err := ParseMove(s)
		if err != nil {
			pos := u.engine.Position()
			if f, t, p, sanErr := pos.ParseSAN(s); sanErr == nil {
				from, to, promo, err = f, t, p, nil
			}
		}
		if err == nil {
			err = u.engine.ApplyMove(from, to, promo)
		}
		if err != nil {
			fmt.Fprintf(u.out, "info string Invalid move: %s (%v)\n", s, err)
			return
		}
	}
}

// ParseMove converts "e2e4" or "e7e8q" into origin, destination and
// promotion kind (NoKind when absent).
func ParseMove(s string) (board.Coord, board.Coord, board.PieceKind, error) {
	if len(s) != 4 && len(s) != 5 {
		return board.NoCoord, board.NoCoord, board.NoKind, fmt.Errorf("move %q: %w", s, board.ErrInvalidCoordinate)
	}

	from, err := board.ParseCoord(s[0:2])
	if err != nil {
		return board.NoCoord, board.NoCoord, board.NoKind, err
	}
	to, err := board.ParseCoord(s[2:4])
	if err != nil {
		return board.NoCoord, board.NoCoord, board.NoKind, err
	}

	promo := board.NoKind
	if len(s) == 5 {
		promo = board.KindFromChar(s[4])
		if !promo.CanPromoteTo() {
			return board.NoCoord, board.NoCoord, board.NoKind, fmt.Errorf("promotion piece %q: %w", s[4], board.ErrIllegalMove)
		}
	}
	return from, to, promo, nil
}

// handleLegal prints the legal destinations of each movable piece.
func (u *UCI) handleLegal() {
	legal := u.engine.LegalMoves()
	for _, from := range legal.Origins() {
		dests := make([]string, 0, len(legal[from]))
		for _, to := range legal.Destinations(from) {
			dests = append(dests, to.String())
		}
		piece, err := u.engine.PieceAt(from)
		if err != nil {
			u.log.Error().Err(err).Msg("legal")
			continue
		}
		fmt.Fprintf(u.out, "%s %c: %s\n", from, piece.Char(), strings.Join(dests, " "))
	}
	fmt.Fprintf(u.out, "Total: %d\n", legal.Len())
}

// handleSAN prints every legal move in Standard Algebraic Notation.
func (u *UCI) handleSAN() {
	pos := u.engine.Position()
	legal := u.engine.LegalMoves()

	var out []string
	for _, from := range legal.Origins() {
		for _, to := range legal[from] {
			s, err := pos.SAN(from, to, board.NoKind)
			if err != nil {
				u.log.Error().Err(err).Msg("san")
				continue
			}
			out = append(out, s)
		}
	}
	fmt.Fprintln(u.out, strings.Join(out, " "))
}

// handleStatus reports the game state derived from the legal moves and
// check flag.
func (u *UCI) handleStatus() {
	fmt.Fprintf(u.out, "status %s\n", Status(u.engine))
}

// Status names the state of the game for the side to move:
// "checkmate", "stalemate", "check" or "playing".
func Status(e *engine.Engine) string {
	noMoves := e.LegalMoves().Len() == 0
	inCheck := e.CheckState().InCheck
	switch {
	case noMoves && inCheck:
		return "checkmate"
	case noMoves:
		return "stalemate"
	case inCheck:
		return "check"
	default:
		return "playing"
	}
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.engine.Perft(depth)
	elapsed := time.Since(start)

	fmt.Fprintf(u.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(u.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		fmt.Fprintf(u.out, "NPS: %.0f\n", nps)
	}
}

// handleDivide prints the perft count below each root move.
func (u *UCI) handleDivide(args []string) {
	depth := 1
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	counts := u.engine.Divide(depth)
	moves := maps.Keys(counts)
	slices.Sort(moves)

	var total int64
	for _, m := range moves {
		fmt.Fprintf(u.out, "%s: %d\n", m, counts[m])
		total += counts[m]
	}
	fmt.Fprintf(u.out, "Nodes: %d\n", total)
}
