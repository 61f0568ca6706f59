package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/scbrown/blockwright/internal/model"
	"github.com/scbrown/blockwright/internal/store"
)

// parseSince extracts a "since" query parameter as a time.Time.
// Accepts RFC3339 timestamps or duration shorthand (e.g., "24h", "7d").
func parseSince(r *http.Request) (time.Time, error) {
	return ParseSince(r.URL.Query().Get("since"), time.Now().UTC())
}

// ParseSince interprets s relative to now. An empty string is the zero time.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	// RFC3339Nano also accepts timestamps without fractional seconds.
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if len(s) > 1 {
		numStr := s[:len(s)-1]
		unit := s[len(s)-1]
		if n, err := strconv.Atoi(numStr); err == nil && n >= 0 {
			switch unit {
			case 'h':
				return now.Add(-time.Duration(n) * time.Hour), nil
			case 'd':
				return now.Add(-time.Duration(n) * 24 * time.Hour), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("invalid since value %q: expected RFC3339 timestamp or duration (e.g., 24h, 7d)", s)
}

func parseInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return n, nil
}

// parseBool returns nil when key is absent.
func parseBool(r *http.Request, key string) (*bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return &b, nil
}

func parseListOpts(r *http.Request) (store.ListOpts, error) {
	since, err := parseSince(r)
	if err != nil {
		return store.ListOpts{}, err
	}
	limit, err := parseInt(r, "limit")
	if err != nil {
		return store.ListOpts{}, err
	}
	understood, err := parseBool(r, "understood")
	if err != nil {
		return store.ListOpts{}, err
	}
	difficulty := model.Difficulty(r.URL.Query().Get("difficulty"))
	if difficulty != "" && !difficulty.Valid() {
		return store.ListOpts{}, fmt.Errorf("invalid difficulty %q: expected beginner, intermediate or advanced", difficulty)
	}
	return store.ListOpts{
		Since:      since,
		Difficulty: difficulty,
		Understood: understood,
		Limit:      limit,
	}, nil
}
