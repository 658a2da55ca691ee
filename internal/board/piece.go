package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// Forward returns the rank delta of a pawn push for this color.
func (c Color) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// HomeRank returns the rank the king and rooks start on.
func (c Color) HomeRank() int {
	if c == White {
		return 0
	}
	return 7
}

// PawnRank returns the rank pawns start on.
func (c Color) PawnRank() int {
	if c == White {
		return 1
	}
	return 6
}

// LastRank returns the promotion rank for this color's pawns.
func (c Color) LastRank() int {
	if c == White {
		return 7
	}
	return 0
}

// PieceKind represents the type of a chess piece.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoKind PieceKind = 6
)

// String returns the piece kind name.
func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the lowercase character code for the piece kind.
func (k PieceKind) Char() byte {
	chars := []byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}
	if k > NoKind {
		return ' '
	}
	return chars[k]
}

// CanPromoteTo reports whether a pawn may be replaced by this kind.
func (k PieceKind) CanPromoteTo() bool {
	return k == Knight || k == Bishop || k == Rook || k == Queen
}

// KindFromChar converts a character code of either case to a PieceKind.
func KindFromChar(c byte) PieceKind {
	switch c {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	default:
		return NoKind
	}
}

// Piece is the content of a single board cell.
// Moved is tracked for kings and rooks (castling) and pawns.
type Piece struct {
	Kind  PieceKind
	Color Color
	Moved bool
}

// NoPiece is the value of an empty cell.
var NoPiece = Piece{Kind: NoKind}

// NewPiece creates a piece that has not moved yet.
func NewPiece(k PieceKind, c Color) Piece {
	if k >= NoKind {
		return NoPiece
	}
	return Piece{Kind: k, Color: c}
}

// IsEmpty returns true if the cell holds no piece.
func (p Piece) IsEmpty() bool {
	return p.Kind >= NoKind
}

// Is reports whether p is a piece of the given kind and color.
func (p Piece) Is(k PieceKind, c Color) bool {
	return p.Kind == k && p.Color == c
}

// Char returns the display code for the piece.
// Uppercase for white, lowercase for black, space for an empty cell.
func (p Piece) Char() byte {
	if p.IsEmpty() {
		return ' '
	}
	c := p.Kind.Char()
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return c
}

// String returns the display code as a string.
func (p Piece) String() string {
	return string(p.Char())
}

// PieceFromChar converts a display code to an unmoved Piece.
func PieceFromChar(c byte) Piece {
	k := KindFromChar(c)
	if k == NoKind {
		return NoPiece
	}
	if c >= 'a' && c <= 'z' {
		return NewPiece(k, Black)
	}
	return NewPiece(k, White)
}

// Vector is a step on the board in rank and file units.
type Vector struct {
	DRank, DFile int
}

var (
	knightDirections = []Vector{
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
	}
	bishopDirections = []Vector{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirections   = []Vector{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	royalDirections  = []Vector{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	pawnDirections = [2][]Vector{
		White: {{1, 0}, {2, 0}, {1, 1}, {1, -1}},
		Black: {{-1, 0}, {-2, 0}, {-1, 1}, {-1, -1}},
	}
)

// Directions returns the movement vectors of a piece kind.
// For sliding kinds these are ray directions, otherwise single-step offsets.
// The returned slice is shared and must not be modified.
func Directions(k PieceKind, c Color) []Vector {
	switch k {
	case Pawn:
		return pawnDirections[c]
	case Knight:
		return knightDirections
	case Bishop:
		return bishopDirections
	case Rook:
		return rookDirections
	case Queen, King:
		return royalDirections
	default:
		return nil
	}
}

// Slides reports whether the kind moves along rays until blocked.
func Slides(k PieceKind) bool {
	return k == Bishop || k == Rook || k == Queen
}
