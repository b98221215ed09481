// Package repository holds the latest published scoreboard in memory.
package repository

import (
	"context"
	"time"

	"github.com/okian/guildscore/internal/domain/model"
	"github.com/okian/guildscore/internal/domain/types"
)

// Meta describes the run that produced a scoreboard.
type Meta struct {
	RunID      string        `json:"run_id"`
	Guild      string        `json:"guild"`
	Server     string        `json:"server"`
	Region     string        `json:"region"`
	GuildID    int           `json:"guild_id"`
	Threshold  int           `json:"percentile_threshold"`
	Reports    int           `json:"reports"`
	Fights     int           `json:"fights"`
	Records    int           `json:"records"`
	Characters int           `json:"characters"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// Snapshot is one complete scoring run.
type Snapshot struct {
	Meta   Meta
	Scores map[string]model.CharacterScore
}

// Store provides read/write access to the scoreboard.
type Store interface {
	// Replace atomically swaps in a new scoreboard. Readers see either the
	// previous snapshot or this one, never a mix.
	Replace(ctx context.Context, snap Snapshot) error

	// Rank returns the row for a character under the given ordering.
	// Returns ErrNotFound if the character is unknown.
	Rank(ctx context.Context, name string, key types.SortKey) (types.ScoreEntry, error)

	// TopN returns the first n rows under the given ordering.
	TopN(ctx context.Context, key types.SortKey, n int) ([]types.ScoreEntry, error)

	// Count returns the number of characters on the scoreboard.
	Count(ctx context.Context) int

	// Meta returns the metadata of the current snapshot.
	// Returns ErrNoSnapshot before the first Replace.
	Meta(ctx context.Context) (Meta, error)
}
