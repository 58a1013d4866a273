package service_test

import (
	"context"
	"os"
	"sync/atomic"

	repository "github.com/okian/crosscount/internal/adapters/repository"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

// lookupStore counts per-user lookups on top of a memory store.
type lookupStore struct {
	*repository.MemoryStore
	byUser atomic.Int32
}

func (s *lookupStore) ByUser(ctx context.Context, username string) ([]repository.Session, error) {
	s.byUser.Add(1)
	return s.MemoryStore.ByUser(ctx, username)
}
