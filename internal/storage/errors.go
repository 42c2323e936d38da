package storage

import "fmt"

// StorageError reports a failed read, write or decode. Storage is best-effort:
// callers are expected to log it and carry on with in-memory state.
type StorageError struct {
	Op  string // get, set, delete, decode, open
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
