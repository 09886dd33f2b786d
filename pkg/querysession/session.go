// Package querysession builds and configures the embedded SQL execution
// engine behind query requests (spec §4.8): a single process-wide session,
// pinned to a fixed set of execution knobs, plus the logical-plan time-
// filter transform in plan.go.
package querysession

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	sqlite "modernc.org/sqlite"
)

const driverName = "logcove-sqlite"

func init() {
	sql.Register(driverName, &sqlite.Driver{})
}

// Config pins the session's fixed execution knobs (spec §4.8). All default
// to the spec's stated "on" behavior; MemoryPoolBytes lets an operator
// override the computed 0.85-of-available-memory default with an absolute
// ceiling.
type Config struct {
	PruneEnabled       bool
	PushdownEnabled    bool
	RepartitionEnabled bool
	BinaryAsString     bool

	// MemoryPoolBytes, if nonzero, is used verbatim with fraction 1.0.
	// If zero, the pool is sized as 0.85 x available system memory.
	MemoryPoolBytes int64
}

// DefaultConfig returns the spec's pinned defaults.
func DefaultConfig() Config {
	return Config{
		PruneEnabled:       true,
		PushdownEnabled:    true,
		RepartitionEnabled: true,
		BinaryAsString:     true,
	}
}

// Session is the process-wide query execution handle. It is safe for
// concurrent use; callers obtain one instance lazily on first query and
// reuse it for the process lifetime (spec §5).
type Session struct {
	db             *sql.DB
	cfg            Config
	memoryPoolSize int64
}

// New opens the in-process SQL engine and resolves the configured memory
// pool size.
//
// Grounded on gonimbus's pkg/indexstore/store_sqlite.go: registering
// modernc.org/sqlite as a database/sql driver to keep the binary CGO-free,
// adapted here from a durable on-disk index to an ephemeral in-memory
// query engine.
func New(ctx context.Context, cfg Config) (*Session, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("querysession: open engine: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("querysession: ping engine: %w", err)
	}

	poolSize, err := resolveMemoryPoolSize(cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Session{db: db, cfg: cfg, memoryPoolSize: poolSize}, nil
}

// DB returns the underlying database handle for executing compiled plans.
func (s *Session) DB() *sql.DB { return s.db }

// Config returns the session's pinned execution knobs.
func (s *Session) Config() Config { return s.cfg }

// MemoryPoolSize returns the resolved memory pool ceiling in bytes.
func (s *Session) MemoryPoolSize() int64 { return s.memoryPoolSize }

// Close releases the underlying engine handle.
func (s *Session) Close() error { return s.db.Close() }

func resolveMemoryPoolSize(cfg Config) (int64, error) {
	if cfg.MemoryPoolBytes > 0 {
		return cfg.MemoryPoolBytes, nil
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("querysession: read available memory: %w", err)
	}
	return int64(float64(vm.Available) * 0.85), nil
}
