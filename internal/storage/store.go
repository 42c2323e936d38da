// Package storage persists small string values under string keys, scoped to
// an origin, the way a browser's localStorage does.
package storage

import (
	"errors"
	"fmt"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Store is a string key/value store scoped to one origin.
//
// Get returns def when the key is absent. All failures are reported as
// *StorageError.
type Store interface {
	Get(key, def string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open creates the store named by driver. path is ignored by the memory
// driver.
func Open(driver, path, origin string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path, origin)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("unknown driver %q", driver)}
	}
}

// ErrClosed is returned by a MemoryStore after Close.
var ErrClosed = errors.New("store closed")

// MemoryStore keeps values in a map. FailWith makes every later operation
// fail, which is how tests simulate a full or disabled store.
type MemoryStore struct {
	mu     deadlock.RWMutex
	values map[string]string
	fail   error
	writes int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// FailWith makes subsequent operations return err. A nil err restores
// normal behavior.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Writes returns how many successful Set calls the store has seen.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *MemoryStore) Get(key, def string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.fail != nil {
		return def, &StorageError{Op: "get", Key: key, Err: m.fail}
	}
	if m.values == nil {
		return def, &StorageError{Op: "get", Key: key, Err: ErrClosed}
	}
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return &StorageError{Op: "set", Key: key, Err: m.fail}
	}
	if m.values == nil {
		return &StorageError{Op: "set", Key: key, Err: ErrClosed}
	}
	m.values[key] = value
	m.writes++
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return &StorageError{Op: "delete", Key: key, Err: m.fail}
	}
	if m.values == nil {
		return &StorageError{Op: "delete", Key: key, Err: ErrClosed}
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = nil
	return nil
}
