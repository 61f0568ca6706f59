package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scbrown/blockwright/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func boolPtr(b bool) *bool { return &b }

func TestNewCreatesDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	s, err := New(filepath.Join(nested, "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(nested); err != nil {
		t.Errorf("expected directory %s to exist: %v", nested, err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := New(dbPath)
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	s1.Close()

	// Opening again should not fail (migration is idempotent).
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	defer s2.Close()

	var ver int
	if err := s2.db.QueryRow("SELECT version FROM schema_version").Scan(&ver); err != nil {
		t.Fatal(err)
	}
	if ver != schemaVersion {
		t.Errorf("schema version = %d, want %d", ver, schemaVersion)
	}
	var rows int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("schema_version rows = %d, want 1", rows)
	}
}

func TestRecordAndGetGeneration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	g := model.Generation{
		ID:          "gen-1",
		Input:       "move right and jump",
		Format:      "pictoblox",
		Actions:     []string{"move", "jump"},
		IntentCount: 2,
		BlockCount:  3,
		Difficulty:  model.Intermediate,
		Explanation: "Walks and jumps.",
		Understood:  true,
		CreatedAt:   ts,
	}
	stored, err := s.RecordGeneration(ctx, g)
	if err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}
	if stored.ID != "gen-1" {
		t.Errorf("ID changed: %q", stored.ID)
	}

	got, err := s.GetGeneration(ctx, "gen-1")
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if got.Input != g.Input || got.Format != g.Format || got.Explanation != g.Explanation {
		t.Errorf("got %+v, want %+v", got, g)
	}
	if got.IntentCount != 2 || got.BlockCount != 3 || got.Difficulty != model.Intermediate || !got.Understood {
		t.Errorf("counts/flags mismatch: %+v", got)
	}
	if len(got.Actions) != 2 || got.Actions[0] != "move" || got.Actions[1] != "jump" {
		t.Errorf("Actions = %v, want [move jump]", got.Actions)
	}
	if !got.CreatedAt.Equal(ts) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, ts)
	}
}

func TestRecordFillsIDAndTime(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	stored, err := s.RecordGeneration(context.Background(), model.Generation{Input: "xyz", Format: "text"})
	if err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}
	if len(stored.ID) != 36 {
		t.Errorf("expected a UUID, got %q", stored.ID)
	}
	if !stored.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, fixed)
	}

	got, err := s.GetGeneration(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if got.Understood || got.Difficulty != "" || len(got.Actions) != 0 {
		t.Errorf("unexpected fields on unrecognized generation: %+v", got)
	}
}

func TestGetGenerationNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetGeneration(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	g := model.Generation{ID: "dup", Input: "hide", Format: "text", Actions: []string{"hide"}}
	if _, err := s.RecordGeneration(ctx, g); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordGeneration(ctx, g); err == nil {
		t.Fatal("expected error for duplicate id")
	}
	got, err := s.GetGeneration(ctx, "dup")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Actions) != 1 {
		t.Errorf("failed insert left actions behind: %v", got.Actions)
	}
}

func seedGenerations(t *testing.T, s *SQLiteStore, now time.Time) {
	t.Helper()
	ctx := context.Background()
	gens := []model.Generation{
		{ID: "a", Input: "move right", Format: "text", Actions: []string{"move"}, IntentCount: 1, BlockCount: 1, Difficulty: model.Beginner, Understood: true, CreatedAt: now.Add(-40 * 24 * time.Hour)},
		{ID: "b", Input: "hide and show", Format: "text", Actions: []string{"hide", "show"}, IntentCount: 2, BlockCount: 2, Difficulty: model.Intermediate, Understood: true, CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{ID: "c", Input: "move left and jump and say hi", Format: "blocks", Actions: []string{"move", "jump", "say"}, IntentCount: 3, BlockCount: 4, Difficulty: model.Advanced, Understood: true, CreatedAt: now.Add(-3 * 24 * time.Hour)},
		{ID: "d", Input: "Fly Away", Format: "text", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "e", Input: "fly away ", Format: "text", CreatedAt: now.Add(-1 * time.Hour)},
	}
	for _, g := range gens {
		if _, err := s.RecordGeneration(ctx, g); err != nil {
			t.Fatalf("RecordGeneration(%s): %v", g.ID, err)
		}
	}
}

func ids(gens []model.Generation) []string {
	var out []string
	for _, g := range gens {
		out = append(out, g.ID)
	}
	return out
}

func TestListGenerations(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	seedGenerations(t, s, now)
	ctx := context.Background()

	tests := []struct {
		name string
		opts ListOpts
		want []string
	}{
		{"all newest first", ListOpts{}, []string{"e", "d", "c", "b", "a"}},
		{"limit", ListOpts{Limit: 2}, []string{"e", "d"}},
		{"since", ListOpts{Since: now.Add(-7 * 24 * time.Hour)}, []string{"e", "d", "c"}},
		{"difficulty", ListOpts{Difficulty: model.Intermediate}, []string{"b"}},
		{"unrecognized", ListOpts{Understood: boolPtr(false)}, []string{"e", "d"}},
		{"understood", ListOpts{Understood: boolPtr(true), Limit: 1}, []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gens, err := s.ListGenerations(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListGenerations: %v", err)
			}
			got := ids(gens)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	gens, err := s.ListGenerations(ctx, ListOpts{Difficulty: model.Advanced})
	if err != nil {
		t.Fatal(err)
	}
	if len(gens) != 1 || len(gens[0].Actions) != 3 || gens[0].Actions[2] != "say" {
		t.Errorf("actions not loaded in order: %+v", gens)
	}
}

func TestListGenerationsEmpty(t *testing.T) {
	s := newTestStore(t)
	gens, err := s.ListGenerations(context.Background(), ListOpts{})
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	if len(gens) != 0 {
		t.Errorf("expected no generations, got %d", len(gens))
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	seedGenerations(t, s, now)

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 5 || st.Understood != 3 || st.Unrecognized != 2 {
		t.Errorf("totals = %d/%d/%d, want 5/3/2", st.Total, st.Understood, st.Unrecognized)
	}
	if st.ByDifficulty["beginner"] != 1 || st.ByDifficulty["intermediate"] != 1 || st.ByDifficulty["advanced"] != 1 {
		t.Errorf("ByDifficulty = %v", st.ByDifficulty)
	}
	if len(st.TopActions) == 0 || st.TopActions[0] != (NameCount{Name: "move", Count: 2}) {
		t.Errorf("TopActions = %v, want move first with 2", st.TopActions)
	}
	if len(st.TopUnrecognized) != 1 || st.TopUnrecognized[0] != (NameCount{Name: "fly away", Count: 2}) {
		t.Errorf("TopUnrecognized = %v, want [fly away 2]", st.TopUnrecognized)
	}
	if st.Last24h != 2 || st.Last7d != 3 || st.Last30d != 4 {
		t.Errorf("windows = %d/%d/%d, want 2/3/4", st.Last24h, st.Last7d, st.Last30d)
	}
	if !st.Earliest.Before(st.Latest) {
		t.Errorf("Earliest %v should be before Latest %v", st.Earliest, st.Latest)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 0 || st.Unrecognized != 0 || len(st.TopActions) != 0 {
		t.Errorf("expected empty stats, got %+v", st)
	}
	if !st.Earliest.IsZero() {
		t.Errorf("Earliest = %v, want zero", st.Earliest)
	}
}
