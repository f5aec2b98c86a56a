package sim

import "errors"

var (
	ErrEmptySeries       = errors.New("sim: empty bar series")
	ErrInsufficientBars  = errors.New("sim: at least two bars are required")
	ErrInvalidBar        = errors.New("sim: invalid bar")
	ErrAlreadyTerminated = errors.New("sim: episode already terminated, call Reset")
	ErrInvalidAction     = errors.New("sim: invalid action")
)
