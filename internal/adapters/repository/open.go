package repository

import (
	"context"
	"fmt"
)

// Open constructs the store for backend.
func Open(ctx context.Context, backend string, opts ...Option) (Store, error) {
	o := openOptions{databasePath: "rankings.db"}
	for _, opt := range opts {
		opt(&o)
	}

	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendSQLite:
		return NewSQLiteStore(ctx, o.databasePath)
	case BackendFile:
		if o.resultsFile == "" {
			return nil, fmt.Errorf("%w: file backend needs a results file", ErrUnknownBackend)
		}
		return NewFileStore(o.resultsFile), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
