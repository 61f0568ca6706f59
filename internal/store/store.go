// Package store defines the storage interface for generation history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/scbrown/blockwright/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface for recorded generations.
type Store interface {
	// RecordGeneration persists one pipeline run. A missing ID or CreatedAt
	// is filled in; the stored record is returned.
	RecordGeneration(ctx context.Context, g model.Generation) (model.Generation, error)

	// ListGenerations returns generations matching opts, newest first.
	ListGenerations(ctx context.Context, opts ListOpts) ([]model.Generation, error)

	// GetGeneration returns a single generation, or ErrNotFound.
	GetGeneration(ctx context.Context, id string) (model.Generation, error)

	// Stats returns summary statistics about recorded generations.
	Stats(ctx context.Context) (Stats, error)

	// Close releases any resources held by the store.
	Close() error
}

// ListOpts controls filtering for ListGenerations.
type ListOpts struct {
	Since      time.Time        // Only generations after this time.
	Difficulty model.Difficulty // Filter by difficulty.
	Understood *bool            // Filter by whether the input was understood.
	Limit      int              // Maximum results; 0 means no limit.
}

// NameCount pairs a name (action or input text) with its occurrence count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats holds summary statistics about recorded generations.
type Stats struct {
	Total           int            `json:"total"`
	Understood      int            `json:"understood"`
	Unrecognized    int            `json:"unrecognized"`
	ByDifficulty    map[string]int `json:"by_difficulty"`
	TopActions      []NameCount    `json:"top_actions"`
	TopUnrecognized []NameCount    `json:"top_unrecognized"`
	Earliest        time.Time      `json:"earliest"`
	Latest          time.Time      `json:"latest"`
	Last24h         int            `json:"last_24h"`
	Last7d          int            `json:"last_7d"`
	Last30d         int            `json:"last_30d"`
}

// topN bounds the ranked lists in Stats.
const topN = 5
