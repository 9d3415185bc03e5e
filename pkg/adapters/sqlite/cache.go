// Package sqlite persists food lookup results in a local SQLite database
// (usually .larder/lookup.db) so repeated searches work offline.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/larder/pkg/lookup"
	"github.com/aretw0/larder/pkg/nutrient"
)

// DefaultTTL is how long cached results are served before a refetch.
const DefaultTTL = 30 * 24 * time.Hour

// Cache implements lookup.Cache on SQLite.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

var _ lookup.Cache = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL. Zero or negative disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a throwaway cache.
func Open(path string, opts ...Option) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	c := &Cache{db: db, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return c, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS lookup_queries (
        query TEXT PRIMARY KEY,
        fetched_at INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS lookup_foods (
        query TEXT NOT NULL,
        position INTEGER NOT NULL,
        code TEXT NOT NULL,
        name TEXT NOT NULL,
        brand TEXT NOT NULL,
        energy REAL,
        fat REAL,
        protein REAL,
        carbs REAL,
        fiber REAL,
        sugar REAL,
        sodium REAL,
        PRIMARY KEY (query, position),
        FOREIGN KEY (query) REFERENCES lookup_queries(query) ON DELETE CASCADE
    );
    `
	if _, err := c.db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get returns the foods stored for query, ok=false when absent or expired.
func (c *Cache) Get(ctx context.Context, query string) ([]lookup.Food, bool, error) {
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM lookup_queries WHERE query = ?`, query).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached query: %w", err)
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		c.logger.Debug("cached lookup expired", "query", query)
		return nil, false, nil
	}

	rows, err := c.db.QueryContext(ctx, `
        SELECT code, name, brand, energy, fat, protein, carbs, fiber, sugar, sodium
        FROM lookup_foods
        WHERE query = ?
        ORDER BY position`, query)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached foods: %w", err)
	}
	defer rows.Close()

	var foods []lookup.Food
	for rows.Next() {
		var f lookup.Food
		values := make([]sql.NullFloat64, len(nutrient.Fields))
		dest := []any{&f.Code, &f.Name, &f.Brand}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, false, fmt.Errorf("failed to scan cached food: %w", err)
		}
		f.Values = make(map[nutrient.Field]float64)
		for i, field := range nutrient.Fields {
			if values[i].Valid {
				f.Values[field] = values[i].Float64
			}
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate cached foods: %w", err)
	}
	return foods, true, nil
}

// Put replaces the foods stored for query.
func (c *Cache) Put(ctx context.Context, query string, foods []lookup.Food) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lookup_foods WHERE query = ?`, query); err != nil {
		return fmt.Errorf("failed to clear cached foods: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO lookup_queries (query, fetched_at) VALUES (?, ?)
        ON CONFLICT(query) DO UPDATE SET fetched_at = excluded.fetched_at`,
		query, c.now().Unix()); err != nil {
		return fmt.Errorf("failed to insert cached query: %w", err)
	}

	foodQuery := `
        INSERT INTO lookup_foods (query, position, code, name, brand, energy, fat, protein, carbs, fiber, sugar, sodium)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for i, f := range foods {
		args := []any{query, i, f.Code, f.Name, f.Brand}
		for _, field := range nutrient.Fields {
			v, ok := f.Values[field]
			args = append(args, sql.NullFloat64{Float64: v, Valid: ok})
		}
		if _, err := tx.ExecContext(ctx, foodQuery, args...); err != nil {
			return fmt.Errorf("failed to insert cached food: %w", err)
		}
	}
	return tx.Commit()
}

// Purge deletes entries fetched before cutoff and returns how many queries were removed.
func (c *Cache) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM lookup_queries WHERE fetched_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge lookup cache: %w", err)
	}
	return res.RowsAffected()
}
