// Package repository defines the session store interface and its backends.
package repository

import (
	"context"

	"github.com/okian/crosscount/internal/domain/model"
)

// Session mirrors the record shape persisted by every backend.
type Session = model.Session

// Store is an append-only record of completed sessions. Implementations are
// safe for concurrent use.
type Store interface {
	// Append stores s and returns it with its assigned ID.
	Append(ctx context.Context, s Session) (Session, error)

	// All returns every stored session in insertion order.
	All(ctx context.Context) ([]Session, error)

	// ByUser returns the sessions of one user (exact match) in insertion order.
	ByUser(ctx context.Context, username string) ([]Session, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)

	// Close releases underlying resources.
	Close() error
}

// Importer is implemented by stores that can replace their whole content
// with the sessions of a results file.
type Importer interface {
	Replace(ctx context.Context, sessions []Session) error
}
