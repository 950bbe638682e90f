package contract

import "errors"

var (
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrValidation        = errors.New("validation failed")
	ErrToolLoopExhausted = errors.New("tool loop exhausted")
)
