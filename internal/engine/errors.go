package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers branch with errors.Is; everything below
// ErrStorage is caller-fixable, ErrStorage itself is opaque and always
// means the enclosing transaction was rolled back.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
