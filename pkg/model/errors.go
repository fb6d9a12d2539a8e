package model

import "errors"

// Domain errors for model validation
var (
	ErrNilFunction         = errors.New("function must not be nil")
	ErrFunctionNumberRange = errors.New("function number must be between 0 and 127")
)
