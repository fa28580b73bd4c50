package storage

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

	"FundingScanner/internal/domain"
	"FundingScanner/internal/ports"
)

// FileStore is a MemoryStore persisted as one JSON document. Every write rewrites the
// file through a temp file and rename, so a crash leaves either the old or the new state.
type FileStore struct {
	mu   sync.Mutex
	path string
	mem  *MemoryStore
}

var _ ports.Store = (*FileStore)(nil)

// OpenFileStore loads path if it exists; a missing file starts an empty store.
func OpenFileStore(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: file store path is empty", ErrStoreUnavailable)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store dir: %v", ErrStoreUnavailable, err)
	}

	store := &FileStore{path: path, mem: NewMemoryStore(opts...)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return store, nil
	case err != nil:
		return nil, fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreUnavailable, path, err)
	}
	store.mem.restore(snap)
	return store, nil
}

func (f *FileStore) HasSeen(ctx context.Context, articleID string) (bool, error) {
	return f.mem.HasSeen(ctx, articleID)
}

func (f *FileStore) MarkSeen(ctx context.Context, articleID string, fundingRelated bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seen, _ := f.mem.HasSeen(ctx, articleID); seen {
		return nil
	}
	if err := f.mem.MarkSeen(ctx, articleID, fundingRelated, at); err != nil {
		return err
	}
	return f.save()
}

func (f *FileStore) RecordAnnouncement(ctx context.Context, a domain.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.RecordAnnouncement(ctx, a); err != nil {
		return err
	}
	return f.save()
}

func (f *FileStore) PurgeOlderThan(ctx context.Context, window time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	purged, err := f.mem.PurgeOlderThan(ctx, window)
	if err != nil || purged == 0 {
		return purged, err
	}
	return purged, f.save()
}

func (f *FileStore) Pending(ctx context.Context, since time.Time) ([]domain.Announcement, error) {
	return f.mem.Pending(ctx, since)
}

func (f *FileStore) MarkDelivered(ctx context.Context, articleIDs []string, at time.Time) error {
	if len(articleIDs) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mem.MarkDelivered(ctx, articleIDs, at); err != nil {
		return err
	}
	return f.save()
}

func (f *FileStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	return f.mem.Stats(ctx)
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) save() error {
	data, err := json.MarshalIndent(f.mem.snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename store file: %w", err)
	}
	return nil
}
