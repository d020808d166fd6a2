package segmentation

import "github.com/pkg/errors"

// Input validation failures. Every one of these is returned before any
// search work starts; callers compare with errors.Cause.
var (
	ErrInvalidWindowLength = errors.New("invalid window length")
	ErrInsufficientLength  = errors.New("sequence too short for window length")
	ErrSequenceTooShort    = errors.New("sequence too short to estimate a period")
	ErrInvalidBudget       = errors.New("number of change points must be positive")
)
