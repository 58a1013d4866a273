package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/crosscount/pkg/metrics"
)

const resultsFilePermission = 0o644

// FileStore treats a JSON results file as the source of truth. Every read
// re-reads the file, so sessions appended by the tracking client show up
// without a restart.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file does not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append implements Store. The file is rewritten through a temp file and a
// rename so a crash never leaves a truncated file behind.
func (f *FileStore) Append(_ context.Context, s Session) (Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreAppendLatency("file", msSince(start)) }()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Rows are kept as written; validation happens on read.
	all, err := readResultsFile(f.path)
	if err != nil {
		return Session{}, err
	}
	s = withID(s)
	all = append(all, s)
	if err := WriteResultsFile(f.path, all); err != nil {
		return Session{}, err
	}
	return s, nil
}

// All implements Store.
func (f *FileStore) All(_ context.Context) ([]Session, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreReadLatency("file", msSince(start)) }()

	f.mu.Lock()
	defer f.mu.Unlock()
	all, _, err := LoadResultsFile(f.path)
	return all, err
}

// ByUser implements Store.
func (f *FileStore) ByUser(ctx context.Context, username string) ([]Session, error) {
	all, err := f.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Session
	for _, s := range all {
		if s.Username == username {
			out = append(out, s)
		}
	}
	return out, nil
}

// Count implements Store.
func (f *FileStore) Count(ctx context.Context) (int, error) {
	all, err := f.All(ctx)
	return len(all), err
}

// Close implements Store.
func (f *FileStore) Close() error { return nil }

// LoadResultsFile reads a JSON array of sessions. A missing or empty file
// yields no sessions. Rows failing Session.Validate are dropped and counted
// in skipped.
func LoadResultsFile(path string) (sessions []Session, skipped int, err error) {
	raw, err := readResultsFile(path)
	if err != nil {
		return nil, 0, err
	}
	sessions = make([]Session, 0, len(raw))
	for _, s := range raw {
		if s.Validate() != nil {
			skipped++
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, skipped, nil
}

func readResultsFile(path string) ([]Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResultsFile, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResultsFile, path, err)
	}
	return sessions, nil
}

// WriteResultsFile atomically replaces path with sessions as indented JSON.
func WriteResultsFile(path string, sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Chmod(resultsFilePermission); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
