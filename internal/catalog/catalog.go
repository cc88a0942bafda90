// Package catalog publishes derived lookup keys to the PostgreSQL table the
// backend serves DynamicStringManager strings from.
package catalog

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"layout-translator/internal/keys"
	"layout-translator/internal/textutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// DB is the subset of pgxpool.Pool the catalog needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DefaultTable is used when CATALOG_TABLE is not set.
const DefaultTable = "layout_strings"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Catalog mirrors published keys in memory, keyed by source hash.
type Catalog struct {
	db    DB
	table string

	mu     sync.RWMutex
	memory map[string]string // hash → lookup key
}

// New creates a catalog writing to table.
func New(db DB, table string) (*Catalog, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &Catalog{
		db:     db,
		table:  pgx.Identifier{table}.Sanitize(),
		memory: make(map[string]string),
	}, nil
}

// EnsureSchema creates the catalog table if it does not exist.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	_, err := c.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	source_hash TEXT PRIMARY KEY,
	category    TEXT NOT NULL,
	source      TEXT NOT NULL,
	lookup_key  TEXT NOT NULL,
	value       TEXT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`, c.table))
	if err != nil {
		return fmt.Errorf("create catalog table: %w", err)
	}

	log.Info().Str("table", c.table).Msg("Catalog schema ensured")
	return nil
}

func (c *Catalog) upsertSQL() string {
	// A reference's placeholder never replaces a translation already stored.
	return fmt.Sprintf(`INSERT INTO %[1]s (source_hash, category, source, lookup_key, value, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (source_hash) DO UPDATE SET
	category = EXCLUDED.category,
	lookup_key = EXCLUDED.lookup_key,
	value = CASE WHEN EXCLUDED.category = 'string_reference' THEN %[1]s.value ELSE EXCLUDED.value END,
	updated_at = now()`, c.table)
}

// Publish upserts every entry of m in a single transaction and returns the
// number of rows written.
func (c *Catalog) Publish(ctx context.Context, m *keys.Mapping) (int, error) {
	entries := m.All()
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin catalog transaction: %w", err)
	}

	query := c.upsertSQL()
	written := 0
	for _, e := range entries {
		tag, err := tx.Exec(ctx, query,
			textutil.Hash(e.Source),
			e.Category.String(),
			e.Source,
			e.Key,
			e.Value,
		)
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Warn().Err(rbErr).Msg("Catalog rollback failed")
			}
			return 0, fmt.Errorf("upsert catalog entry %s: %w", textutil.Truncate(e.Source, 30), err)
		}
		written += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit catalog transaction: %w", err)
	}

	c.mu.Lock()
	for _, e := range entries {
		c.memory[textutil.Hash(e.Source)] = e.Key
	}
	c.mu.Unlock()

	log.Info().Int("entries", len(entries)).Int("rows", written).Str("table", c.table).Msg("Published catalog")
	return written, nil
}

// Preload loads all published keys into memory.
func (c *Catalog) Preload(ctx context.Context) error {
	rows, err := c.db.Query(ctx, fmt.Sprintf(`SELECT source_hash, lookup_key FROM %s`, c.table))
	if err != nil {
		return fmt.Errorf("preload catalog: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]string)
	for rows.Next() {
		var hash, key string
		if err := rows.Scan(&hash, &key); err != nil {
			return fmt.Errorf("scan catalog row: %w", err)
		}
		loaded[hash] = key
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read catalog rows: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for hash, key := range loaded {
		c.memory[hash] = key
	}

	log.Info().Int("count", len(loaded)).Msg("Preloaded catalog")
	return nil
}

// Get returns the key recorded for source. Returns empty string and false if
// it was neither published nor preloaded.
func (c *Catalog) Get(source string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.memory[textutil.Hash(source)]
	return key, ok
}

// Missing returns the sources of m that the catalog does not know yet.
func (c *Catalog) Missing(m *keys.Mapping) []string {
	var missing []string
	for _, e := range m.All() {
		if _, ok := c.Get(e.Source); !ok {
			missing = append(missing, e.Source)
		}
	}
	return missing
}
