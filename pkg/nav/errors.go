package nav

import "github.com/vango-dev/fractals/internal/errors"

// Navigation errors. Returned errors carry the same code and match with
// errors.Is; they are never these exact values.
var (
	ErrNoMatch       = errors.New("N001")
	ErrUnknownRoute  = errors.New("N002")
	ErrCancelled     = errors.New("N003")
	ErrInvalidTarget = errors.New("N005")
	ErrOutOfRange    = errors.New("N007")
	ErrViewLoad      = errors.New("V001")
	ErrClosed        = errors.Newf(errors.CategoryNavigation, "navigation engine closed")
)
