package db

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage matched by every error the gateway returns
	ErrStorage = errors.New("storage error")

	// ErrNotConnected no store handle was obtained at startup
	ErrNotConnected = errors.New("document store not connected")
)

// StorageError an operation against the document store failed
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorage) hold
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
