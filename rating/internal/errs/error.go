package errs

import (
	"errors"
)

var (
	ErrInvalidScore = errors.New("score must be between 1 and 5")
)
