package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scbrown/blockwright/internal/model"

	_ "modernc.org/sqlite"
)

const schemaVersion = 2

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) a SQLite database at dbPath.
// It auto-creates the parent directory (e.g. ~/.bw/) and runs
// schema migrations to ensure the database is up to date.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for WAL mode simplicity.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate runs schema migrations up to the current version.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}

	var ver int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&ver)
	if errors.Is(err, sql.ErrNoRows) {
		ver = 0
	} else if err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	if ver < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if ver < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) migrateV1() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id           TEXT PRIMARY KEY,
			input        TEXT NOT NULL,
			format       TEXT NOT NULL,
			intent_count INTEGER NOT NULL DEFAULT 0,
			block_count  INTEGER NOT NULL DEFAULT 0,
			difficulty   TEXT,
			explanation  TEXT,
			understood   INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_difficulty ON generations(difficulty)`,
		`INSERT INTO schema_version (version) VALUES (1)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) migrateV2() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS generation_actions (
			generation_id TEXT NOT NULL REFERENCES generations(id),
			position      INTEGER NOT NULL,
			action        TEXT NOT NULL,
			PRIMARY KEY (generation_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_actions_action ON generation_actions(action)`,
		fmt.Sprintf(`UPDATE schema_version SET version = %d`, schemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate v2: %w", err)
		}
	}
	return nil
}

// RecordGeneration persists one pipeline run and its actions.
func (s *SQLiteStore) RecordGeneration(ctx context.Context, g model.Generation) (model.Generation, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}
	g.CreatedAt = g.CreatedAt.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return g, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO generations (id, input, format, intent_count, block_count, difficulty, explanation, understood, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID,
		g.Input,
		g.Format,
		g.IntentCount,
		g.BlockCount,
		nullableString(string(g.Difficulty)),
		nullableString(g.Explanation),
		boolToInt(g.Understood),
		g.CreatedAt.Format(timeLayout),
	); err != nil {
		return g, fmt.Errorf("insert generation: %w", err)
	}
	for i, action := range g.Actions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO generation_actions (generation_id, position, action) VALUES (?, ?, ?)`,
			g.ID, i, action,
		); err != nil {
			return g, fmt.Errorf("insert action: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return g, fmt.Errorf("commit: %w", err)
	}
	return g, nil
}

const selectGeneration = `SELECT id, input, format, intent_count, block_count, difficulty, explanation, understood, created_at FROM generations`

// ListGenerations returns generations matching the given filter options.
func (s *SQLiteStore) ListGenerations(ctx context.Context, opts ListOpts) ([]model.Generation, error) {
	query := selectGeneration + " WHERE 1=1"
	var args []any

	if !opts.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	if opts.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, string(opts.Difficulty))
	}
	if opts.Understood != nil {
		query += " AND understood = ?"
		args = append(args, boolToInt(*opts.Understood))
	}
	query += " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var gens []model.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.loadActions(ctx, gens); err != nil {
		return nil, err
	}
	return gens, nil
}

// GetGeneration returns a single generation by id.
func (s *SQLiteStore) GetGeneration(ctx context.Context, id string) (model.Generation, error) {
	row := s.db.QueryRowContext(ctx, selectGeneration+" WHERE id = ?", id)
	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Generation{}, fmt.Errorf("generation %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Generation{}, err
	}
	gens := []model.Generation{g}
	if err := s.loadActions(ctx, gens); err != nil {
		return model.Generation{}, err
	}
	return gens[0], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(sc scanner) (model.Generation, error) {
	var g model.Generation
	var difficulty, explanation sql.NullString
	var understood int
	var ts string
	if err := sc.Scan(&g.ID, &g.Input, &g.Format, &g.IntentCount, &g.BlockCount, &difficulty, &explanation, &understood, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return g, err
		}
		return g, fmt.Errorf("scan generation: %w", err)
	}
	g.Difficulty = model.Difficulty(difficulty.String)
	g.Explanation = explanation.String
	g.Understood = understood != 0
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return g, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	g.CreatedAt = t
	return g, nil
}

// loadActions fills in the ordered actions of each generation.
func (s *SQLiteStore) loadActions(ctx context.Context, gens []model.Generation) error {
	if len(gens) == 0 {
		return nil
	}
	byID := make(map[string]int, len(gens))
	args := make([]any, len(gens))
	for i, g := range gens {
		byID[g.ID] = i
		args[i] = g.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(gens)), ",")
	rows, err := s.db.QueryContext(ctx,
		"SELECT generation_id, action FROM generation_actions WHERE generation_id IN ("+placeholders+") ORDER BY generation_id, position",
		args...)
	if err != nil {
		return fmt.Errorf("load actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, action string
		if err := rows.Scan(&id, &action); err != nil {
			return fmt.Errorf("scan action: %w", err)
		}
		i := byID[id]
		gens[i].Actions = append(gens[i].Actions, action)
	}
	return rows.Err()
}

// Stats returns summary statistics about recorded generations.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByDifficulty: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(understood), 0) FROM generations").Scan(&st.Total, &st.Understood); err != nil {
		return st, fmt.Errorf("count generations: %w", err)
	}
	st.Unrecognized = st.Total - st.Understood

	diffRows, err := s.db.QueryContext(ctx,
		"SELECT difficulty, COUNT(*) FROM generations WHERE difficulty IS NOT NULL AND difficulty != '' GROUP BY difficulty")
	if err != nil {
		return st, fmt.Errorf("count difficulties: %w", err)
	}
	defer diffRows.Close()
	for diffRows.Next() {
		var d string
		var n int
		if err := diffRows.Scan(&d, &n); err != nil {
			return st, fmt.Errorf("scan difficulty: %w", err)
		}
		st.ByDifficulty[d] = n
	}
	if err := diffRows.Err(); err != nil {
		return st, err
	}

	st.TopActions, err = s.nameCounts(ctx,
		"SELECT action, COUNT(*) AS cnt FROM generation_actions GROUP BY action ORDER BY cnt DESC, action LIMIT ?")
	if err != nil {
		return st, fmt.Errorf("top actions: %w", err)
	}
	st.TopUnrecognized, err = s.nameCounts(ctx,
		"SELECT LOWER(TRIM(input)) AS text, COUNT(*) AS cnt FROM generations WHERE understood = 0 GROUP BY text ORDER BY cnt DESC, text LIMIT ?")
	if err != nil {
		return st, fmt.Errorf("top unrecognized: %w", err)
	}

	// Date range.
	if st.Total > 0 {
		var earliest, latest string
		if err := s.db.QueryRowContext(ctx,
			"SELECT MIN(created_at), MAX(created_at) FROM generations").Scan(&earliest, &latest); err != nil {
			return st, fmt.Errorf("date range: %w", err)
		}
		st.Earliest, _ = time.Parse(time.RFC3339Nano, earliest)
		st.Latest, _ = time.Parse(time.RFC3339Nano, latest)
	}

	// Time-window counts.
	now := s.now().UTC()
	for _, w := range []struct {
		dur time.Duration
		dst *int
	}{
		{24 * time.Hour, &st.Last24h},
		{7 * 24 * time.Hour, &st.Last7d},
		{30 * 24 * time.Hour, &st.Last30d},
	} {
		since := now.Add(-w.dur).Format(timeLayout)
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM generations WHERE created_at >= ?", since).Scan(w.dst); err != nil {
			return st, fmt.Errorf("count since %v: %w", w.dur, err)
		}
	}

	return st, nil
}

func (s *SQLiteStore) nameCounts(ctx context.Context, query string) ([]NameCount, error) {
	rows, err := s.db.QueryContext(ctx, query, topN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
