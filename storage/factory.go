package storage

import "github.com/ezoic/surrogo/pkg/errors"

// NewStore returns an uninitialized store for the given backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, errors.Newf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes store if it holds resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
