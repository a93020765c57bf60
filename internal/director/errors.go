package director

import "errors"

var (
	// ErrInvalidConfig indicates New was given a Config with a negative
	// weight or a non-positive threshold where the scale requires one.
	ErrInvalidConfig = errors.New("invalid director configuration")
)
