package board

import "errors"

var (
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrIllegalMove        = errors.New("illegal move")
	ErrInvariantViolation = errors.New("board invariant violated")
	ErrInvalidFEN         = errors.New("invalid FEN")
)
