package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scbrown/blockwright/internal/codegen"
	"github.com/scbrown/blockwright/internal/compile"
	"github.com/scbrown/blockwright/internal/knowledge"
	"github.com/scbrown/blockwright/internal/model"
	"github.com/scbrown/blockwright/internal/store"
)

func testServer(t *testing.T, opts ...Option) (*store.SQLiteStore, *httptest.Server) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	gen := codegen.New(knowledge.Default(), knowledge.DefaultPatterns(), nil)
	srv := New(compile.New(gen, nil), s, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, ts := testServer(t)
	var body map[string]string
	if code := getJSON(t, ts.URL+"/api/v1/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

// generateResponse is the subset of compile.Result the tests look at.
type generateResponse struct {
	Understood  bool     `json:"understood"`
	Format      string   `json:"format"`
	Content     string   `json:"content"`
	BlockCount  int      `json:"block_count"`
	Filename    string   `json:"filename"`
	Message     string   `json:"message"`
	Examples    []string `json:"examples"`
	Actions     []string `json:"available_actions"`
	Suggestions []struct {
		Name string `json:"name"`
	} `json:"suggestions"`
}

func TestGenerateRecordsHistory(t *testing.T) {
	s, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/generate", generateRequest{Text: "move right 20 steps", Format: "pictoblox"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var res generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Understood || res.BlockCount == 0 {
		t.Fatalf("expected an understood result, got %+v", res)
	}
	if res.Format != "pictoblox" || res.Filename != "generated_project.pbl" {
		t.Errorf("format/filename = %q/%q", res.Format, res.Filename)
	}
	if !strings.Contains(res.Content, "motion_movesteps") {
		t.Errorf("content missing opcode:\n%s", res.Content)
	}

	gens, err := s.ListGenerations(context.Background(), store.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(gens) != 1 || gens[0].Input != "move right 20 steps" || !gens[0].Understood {
		t.Errorf("history = %+v", gens)
	}
}

func TestGenerateNotUnderstood(t *testing.T) {
	s, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/generate", generateRequest{Text: "make it rain"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var res generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Understood {
		t.Fatal("expected not understood")
	}
	if res.Message == "" || len(res.Examples) == 0 || len(res.Actions) == 0 {
		t.Errorf("missing guidance: %+v", res)
	}

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Unrecognized != 1 {
		t.Errorf("unrecognized = %d, want 1", st.Unrecognized)
	}
}

func TestGenerateWithoutHistory(t *testing.T) {
	s, ts := testServer(t, WithoutHistory())

	resp := postJSON(t, ts.URL+"/api/v1/generate", generateRequest{Text: "hide"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	gens, err := s.ListGenerations(context.Background(), store.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(gens) != 0 {
		t.Errorf("expected no history, got %d", len(gens))
	}
}

func TestGenerateBadFormat(t *testing.T) {
	_, ts := testServer(t)
	for _, format := range []string{"scratch", "docx"} {
		resp := postJSON(t, ts.URL+"/api/v1/generate", generateRequest{Text: "jump", Format: format})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("format %q: status = %d, want 400", format, resp.StatusCode)
		}
	}
}

func TestGenerateBadBody(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Post(ts.URL+"/api/v1/generate", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestActions(t *testing.T) {
	_, ts := testServer(t)
	var actions []string
	if code := getJSON(t, ts.URL+"/api/v1/actions", &actions); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(actions) == 0 {
		t.Fatal("expected actions")
	}
	for i := 1; i < len(actions); i++ {
		if actions[i] < actions[i-1] {
			t.Errorf("actions not sorted: %v", actions)
			break
		}
	}
}

func TestBlock(t *testing.T) {
	_, ts := testServer(t)
	var def struct {
		ID       string `json:"id"`
		Category string `json:"category"`
	}
	if code := getJSON(t, ts.URL+"/api/v1/blocks/motion_movesteps", &def); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if def.ID != "motion_movesteps" || def.Category != "motion" {
		t.Errorf("def = %+v", def)
	}
	if code := getJSON(t, ts.URL+"/api/v1/blocks/nope", nil); code != http.StatusNotFound {
		t.Errorf("unknown block status = %d, want 404", code)
	}
}

func TestConcept(t *testing.T) {
	_, ts := testServer(t)
	var exp struct {
		Concept string `json:"concept"`
		Level   string `json:"level"`
		Text    string `json:"explanation"`
	}
	if code := getJSON(t, ts.URL+"/api/v1/concepts/loops?level=advanced", &exp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if exp.Concept != "loops" || exp.Level != "advanced" || exp.Text == "" {
		t.Errorf("explanation = %+v", exp)
	}
	if code := getJSON(t, ts.URL+"/api/v1/concepts/recursion", nil); code != http.StatusNotFound {
		t.Errorf("unknown concept status = %d, want 404", code)
	}
}

func TestStatus(t *testing.T) {
	_, ts := testServer(t)
	var st compile.Status
	if code := getJSON(t, ts.URL+"/api/v1/status", &st); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(st.Actions) == 0 || len(st.Categories) == 0 || st.Blocks == 0 || st.Patterns == 0 {
		t.Errorf("status = %+v", st)
	}
	if len(st.Formats) != 3 {
		t.Errorf("formats = %v, want 3", st.Formats)
	}
}

func TestGenerationsRoundTrip(t *testing.T) {
	_, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/generations", model.Generation{
		ID:         "g1",
		Input:      "spin",
		Format:     "text",
		Actions:    []string{"spin"},
		Difficulty: model.Beginner,
		Understood: true,
		CreatedAt:  time.Now().UTC().Add(-time.Hour),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var got model.Generation
	if code := getJSON(t, ts.URL+"/api/v1/generations/g1", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.Input != "spin" || len(got.Actions) != 1 {
		t.Errorf("got %+v", got)
	}

	var gens []model.Generation
	if code := getJSON(t, ts.URL+"/api/v1/generations?since=24h&difficulty=beginner&understood=true&limit=5", &gens); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(gens) != 1 {
		t.Errorf("filtered = %d, want 1", len(gens))
	}

	if code := getJSON(t, ts.URL+"/api/v1/generations/missing", nil); code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", code)
	}
}

func TestListGenerationsEmpty(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/generations")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("body = %s, want []", raw)
	}
}

func TestListGenerationsBadParams(t *testing.T) {
	_, ts := testServer(t)
	for _, q := range []string{"since=yesterday", "limit=lots", "understood=maybe", "difficulty=expert"} {
		if code := getJSON(t, ts.URL+"/api/v1/generations?"+q, nil); code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, code)
		}
	}
}

func TestStats(t *testing.T) {
	_, ts := testServer(t)
	for _, text := range []string{"jump", "spin", "do a barrel roll"} {
		resp := postJSON(t, ts.URL+"/api/v1/generate", generateRequest{Text: text})
		resp.Body.Close()
	}
	var st store.Stats
	if code := getJSON(t, ts.URL+"/api/v1/stats", &st); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if st.Total != 3 || st.Unrecognized != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"24h", now.Add(-24 * time.Hour)},
		{"7d", now.Add(-7 * 24 * time.Hour)},
		{"2026-04-01T00:00:00Z", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-04-01T00:00:00.5Z", time.Date(2026, 4, 1, 0, 0, 0, 500000000, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseSince(tt.in, now)
		if err != nil {
			t.Errorf("ParseSince(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseSince(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"7w", "h", "-3d", "soon"} {
		if _, err := ParseSince(bad, now); err == nil {
			t.Errorf("ParseSince(%q): expected error", bad)
		}
	}
}

func TestTemplates(t *testing.T) {
	_, ts := testServer(t)
	var names []string
	if code := getJSON(t, ts.URL+"/api/v1/templates", &names); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if strings.Join(names, ",") != "maze,platformer" {
		t.Errorf("templates = %v", names)
	}
}

func TestTemplateRecordsHistory(t *testing.T) {
	s, ts := testServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/templates/maze", templateRequest{Level: "intermediate", Format: "blocks"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var res generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Understood || res.Format != "blocks" || !strings.Contains(res.Content, "event_whenkeypressed") {
		t.Errorf("unexpected result %+v", res)
	}

	gens, err := s.ListGenerations(context.Background(), store.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(gens) != 1 || !strings.HasPrefix(gens[0].Input, "create a maze game (intermediate):") {
		t.Errorf("history = %+v", gens)
	}
}

func TestTemplateEmptyBody(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Post(ts.URL+"/api/v1/templates/platformer", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var res generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || res.Format != "text" {
		t.Errorf("status = %d format = %q", resp.StatusCode, res.Format)
	}
	if !strings.Contains(res.Content, "Your Scratch Program") {
		t.Errorf("content:\n%s", res.Content)
	}
}

func TestTemplateErrors(t *testing.T) {
	_, ts := testServer(t)
	tests := []struct {
		path string
		body templateRequest
		want int
	}{
		{"/api/v1/templates/quiz", templateRequest{}, http.StatusNotFound},
		{"/api/v1/templates/maze", templateRequest{Level: "expert"}, http.StatusBadRequest},
		{"/api/v1/templates/maze", templateRequest{Format: "scratch"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp := postJSON(t, ts.URL+tt.path, tt.body)
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s %+v: status = %d, want %d", tt.path, tt.body, resp.StatusCode, tt.want)
		}
	}
}
