package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"FundingScanner/internal/ports"
)

// Supported engines.
const (
	DriverPostgres = "postgres"
	DriverFile     = "file"
	DriverMemory   = "memory"
)

var _ ports.Store = (*CachedStore)(nil)

// Settings selects and configures an engine.
type Settings struct {
	Driver    string
	DSN       string
	Path      string
	RedisURL  string
	Retention time.Duration
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Open builds the configured store. Connection failures wrap ErrStoreUnavailable.
func Open(ctx context.Context, s Settings) (ports.Store, error) {
	opts := []Option{WithClock(s.Clock)}

	var (
		store ports.Store
		err   error
	)
	switch s.Driver {
	case DriverPostgres:
		store, err = openPostgres(ctx, s.DSN, opts)
	case DriverFile:
		store, err = OpenFileStore(s.Path, opts...)
	case DriverMemory, "":
		store = NewMemoryStore(opts...)
	default:
		return nil, fmt.Errorf("unknown database driver %q", s.Driver)
	}
	if err != nil {
		return nil, err
	}

	if s.RedisURL == "" {
		return store, nil
	}
	client, err := DialRedis(ctx, s.RedisURL)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return NewCachedStore(store, client, s.Retention, s.Logger, opts...), nil
}

func openPostgres(ctx context.Context, dsn string, opts []Option) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", ErrStoreUnavailable)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %v", ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", ErrStoreUnavailable, err)
	}

	store := NewPostgresStore(pool, opts...)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return store, nil
}
