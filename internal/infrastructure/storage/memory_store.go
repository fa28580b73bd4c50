package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/ports"
)

// MemoryStore keeps everything in process memory. Used for dry runs and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	seen          map[string]domain.SeenArticle
	announcements map[string]domain.Announcement
	order         []string
	deliveries    map[string]time.Time
	now           func() time.Time
}

var _ ports.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		seen:          map[string]domain.SeenArticle{},
		announcements: map[string]domain.Announcement{},
		deliveries:    map[string]time.Time{},
		now:           o.now,
	}
}

func (m *MemoryStore) HasSeen(_ context.Context, articleID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.seen[articleID]
	return ok, nil
}

func (m *MemoryStore) MarkSeen(_ context.Context, articleID string, fundingRelated bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[articleID]; ok {
		return nil
	}
	m.seen[articleID] = domain.SeenArticle{ArticleID: articleID, FirstSeen: at.UTC(), IsFundingRelated: fundingRelated}
	return nil
}

func (m *MemoryStore) RecordAnnouncement(_ context.Context, a domain.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.announcements[a.ArticleID]; ok {
		return fmt.Errorf("article %s: %w", a.ArticleID, ErrDuplicateAnnouncement)
	}
	m.announcements[a.ArticleID] = cloneAnnouncement(a)
	m.order = append(m.order, a.ArticleID)
	return nil
}

func (m *MemoryStore) PurgeOlderThan(_ context.Context, window time.Duration) (int64, error) {
	cutoff := m.now().Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for id, row := range m.seen {
		if row.FirstSeen.Before(cutoff) {
			delete(m.seen, id)
			purged++
		}
	}
	return purged, nil
}

func (m *MemoryStore) Pending(_ context.Context, since time.Time) ([]domain.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Announcement
	for _, id := range m.order {
		if _, delivered := m.deliveries[id]; delivered {
			continue
		}
		a := m.announcements[id]
		if a.DetectedAt.Before(since) {
			continue
		}
		out = append(out, cloneAnnouncement(a))
	}
	domain.SortForDigest(out)
	return out, nil
}

func (m *MemoryStore) MarkDelivered(_ context.Context, articleIDs []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range articleIDs {
		if _, ok := m.deliveries[id]; !ok {
			m.deliveries[id] = at.UTC()
		}
	}
	return nil
}

func (m *MemoryStore) Stats(_ context.Context) (domain.StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := domain.StoreStats{
		SeenArticles:  int64(len(m.seen)),
		Announcements: int64(len(m.announcements)),
	}
	for _, row := range m.seen {
		if row.IsFundingRelated {
			st.FundingArticles++
		}
	}
	for id := range m.announcements {
		if _, ok := m.deliveries[id]; !ok {
			st.PendingAnnouncements++
		}
	}
	return st, nil
}

func (m *MemoryStore) Close() error { return nil }

// snapshot is the serialisable form of a MemoryStore.
type snapshot struct {
	Seen          []domain.SeenArticle  `json:"seen"`
	Announcements []domain.Announcement `json:"announcements"`
	Deliveries    map[string]time.Time  `json:"deliveries"`
}

func (m *MemoryStore) snapshot() snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := snapshot{
		Seen:          make([]domain.SeenArticle, 0, len(m.seen)),
		Announcements: make([]domain.Announcement, 0, len(m.order)),
		Deliveries:    make(map[string]time.Time, len(m.deliveries)),
	}
	for _, row := range m.seen {
		snap.Seen = append(snap.Seen, row)
	}
	for _, id := range m.order {
		snap.Announcements = append(snap.Announcements, m.announcements[id])
	}
	for id, at := range m.deliveries {
		snap.Deliveries[id] = at
	}
	return snap
}

func (m *MemoryStore) restore(snap snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range snap.Seen {
		m.seen[row.ArticleID] = row
	}
	for _, a := range snap.Announcements {
		if _, ok := m.announcements[a.ArticleID]; ok {
			continue
		}
		m.announcements[a.ArticleID] = a
		m.order = append(m.order, a.ArticleID)
	}
	for id, at := range snap.Deliveries {
		m.deliveries[id] = at
	}
}

func cloneAnnouncement(a domain.Announcement) domain.Announcement {
	if a.Amount != nil {
		amount := *a.Amount
		a.Amount = &amount
	}
	return a
}
