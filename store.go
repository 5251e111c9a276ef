package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Horse-MA00/portfolio/internal/layout"
)

// Store keeps a diagnostic log of generated layouts so the admin pages can
// show how often each card position falls back to the fixed table.
type Store struct {
	db *sql.DB
}

// LayoutRecord is one generated layout served to one view.
type LayoutRecord struct {
	ID        string
	Visitor   string // salted hash, never the raw address
	Path      string
	UserAgent string
	CreatedAt time.Time
	Result    layout.Result
}

type LayoutSummary struct {
	ID        string    `json:"id"`
	Visitor   string    `json:"visitor"`
	Path      string    `json:"path"`
	UserAgent string    `json:"user_agent"`
	Cards     int       `json:"cards"`
	Fallbacks int       `json:"fallbacks"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// IndexStat aggregates every placement made at one card index.
type IndexStat struct {
	Index        int     `json:"index"`
	Placements   int64   `json:"placements"`
	Fallbacks    int64   `json:"fallbacks"`
	FallbackRate float64 `json:"fallback_rate"`
	AvgAttempts  float64 `json:"avg_attempts"`
}

func (s IndexStat) FallbackPercent() float64 {
	return s.FallbackRate * 100
}

type Stats struct {
	TotalLayouts   int64           `json:"total_layouts"`
	UniqueVisitors int64           `json:"unique_visitors"`
	LayoutsToday   int64           `json:"layouts_today"`
	LayoutsWeek    int64           `json:"layouts_this_week"`
	TotalFallbacks int64           `json:"total_fallbacks"`
	PerIndex       []IndexStat     `json:"per_index"`
	Recent         []LayoutSummary `json:"recent"`
}

// storeDSN appends the driver options to path, which may already carry a
// query string of its own.
func storeDSN(path string) string {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// Timestamps are written as "2006-01-02 15:04:05.999999999-07:00" so they
	// compare as text and sqlite's date functions can read them.
	return dsn + sep + "_time_format=sqlite"
}

// OpenStore opens (or creates) the sqlite database at path. An empty path
// keeps everything in memory for the life of the process.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", storeDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every new connection to :memory: is a new, empty database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			id TEXT PRIMARY KEY,
			visitor TEXT NOT NULL,
			path TEXT,
			user_agent TEXT,
			cards INTEGER NOT NULL,
			fallbacks INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS placements (
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			top_pct REAL NOT NULL,
			left_pct REAL NOT NULL,
			attempts INTEGER NOT NULL,
			fallback INTEGER NOT NULL,
			PRIMARY KEY (layout_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS layouts_created_at ON layouts(created_at)`,
		`PRAGMA foreign_keys = ON`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return nil
}

// RecordLayout stores a layout and its placements in one transaction.
func (s *Store) RecordLayout(ctx context.Context, rec LayoutRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	attempts := 0
	for _, p := range rec.Result.Placements {
		attempts += p.Attempts
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO layouts (id, visitor, path, user_agent, cards, fallbacks, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Visitor, rec.Path, rec.UserAgent,
		len(rec.Result.Placements), rec.Result.Fallbacks(), attempts, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert layout %s: %w", rec.ID, err)
	}

	for i, p := range rec.Result.Placements {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO placements (layout_id, idx, top_pct, left_pct, attempts, fallback)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, i, p.Top, p.Left, p.Attempts, p.Fallback)
		if err != nil {
			return fmt.Errorf("failed to insert placement %d of %s: %w", i, rec.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteLayout removes one layout. It reports false when id is unknown.
func (s *Store) DeleteLayout(ctx context.Context, id string) (bool, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM placements WHERE layout_id = ?`, id); err != nil {
		return false, fmt.Errorf("failed to delete placements of %s: %w", id, err)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete layout %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete layout %s: %w", id, err)
	}
	return n > 0, nil
}

// Purge drops layouts created before cutoff and returns how many went.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM placements
		WHERE layout_id IN (SELECT id FROM layouts WHERE created_at < ?)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge placements: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge layouts: %w", err)
	}
	return result.RowsAffected()
}

// Stats aggregates the log as of now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{PerIndex: []IndexStat{}, Recent: []LayoutSummary{}}
	now = now.UTC()
	startOfDay := now.Truncate(24 * time.Hour)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalLayouts, `SELECT COUNT(*) FROM layouts`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT visitor) FROM layouts`, nil},
		{&stats.LayoutsToday, `SELECT COUNT(*) FROM layouts WHERE created_at >= ?`, []any{startOfDay}},
		{&stats.LayoutsWeek, `SELECT COUNT(*) FROM layouts WHERE created_at >= ?`, []any{now.Add(-7 * 24 * time.Hour)}},
		{&stats.TotalFallbacks, `SELECT COALESCE(SUM(fallbacks), 0) FROM layouts`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to query stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, COUNT(*), COALESCE(SUM(fallback), 0), AVG(attempts)
		FROM placements
		GROUP BY idx
		ORDER BY idx
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query per-index stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st IndexStat
		if err := rows.Scan(&st.Index, &st.Placements, &st.Fallbacks, &st.AvgAttempts); err != nil {
			return nil, fmt.Errorf("failed to scan per-index stats: %w", err)
		}
		if st.Placements > 0 {
			st.FallbackRate = float64(st.Fallbacks) / float64(st.Placements)
		}
		stats.PerIndex = append(stats.PerIndex, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := s.RecentLayouts(ctx, 20)
	if err != nil {
		return nil, err
	}
	stats.Recent = recent

	return stats, nil
}

// RecentLayouts returns up to limit layouts, newest first.
func (s *Store) RecentLayouts(ctx context.Context, limit int) ([]LayoutSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, visitor, COALESCE(path, ''), COALESCE(user_agent, ''), cards, fallbacks, attempts, created_at
		FROM layouts
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent layouts: %w", err)
	}
	defer rows.Close()

	summaries := []LayoutSummary{}
	for rows.Next() {
		var l LayoutSummary
		if err := rows.Scan(&l.ID, &l.Visitor, &l.Path, &l.UserAgent, &l.Cards, &l.Fallbacks, &l.Attempts, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan layout: %w", err)
		}
		summaries = append(summaries, l)
	}
	return summaries, rows.Err()
}
