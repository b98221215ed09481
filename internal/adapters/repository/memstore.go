package repository

import (
	"cmp"
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/okian/guildscore/internal/domain/types"
	"github.com/okian/guildscore/pkg/metrics"
)

var sortKeys = []types.SortKey{types.SortByParse, types.SortByIlvl, types.SortByAttendance, types.SortByName}

// board is an immutable, fully ranked view of one snapshot.
//
// Numeric orderings are value DESC then name ASC and use dense ranks: equal
// values share a rank and the next distinct value gets the next rank.
// The name ordering is name ASC with positional ranks.
type board struct {
	meta    Meta
	ordered map[types.SortKey][]types.ScoreEntry
	index   map[types.SortKey]map[string]int // name -> position in ordered
}

// MemoryStore keeps the latest snapshot behind an atomic pointer.
type MemoryStore struct {
	maxLimit int
	current  atomic.Pointer[board]
}

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		maxLimit: 500, // default max rows per TopN
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Replace implements Store.Replace.
func (s *MemoryStore) Replace(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := buildBoard(snap)
	s.current.Store(b)

	metrics.UpdateScoreboard(len(snap.Scores), snap.Meta.Fights)
	return nil
}

func buildBoard(snap Snapshot) *board {
	base := make([]types.ScoreEntry, 0, len(snap.Scores))
	for _, sc := range snap.Scores {
		base = append(base, types.NewScoreEntry(0, sc))
	}

	b := &board{
		meta:    snap.Meta,
		ordered: make(map[types.SortKey][]types.ScoreEntry, len(sortKeys)),
		index:   make(map[types.SortKey]map[string]int, len(sortKeys)),
	}
	b.meta.Characters = len(base)

	for _, key := range sortKeys {
		rows := slices.Clone(base)
		sortRows(rows, key)
		assignRanks(rows, key)

		idx := make(map[string]int, len(rows))
		for i, r := range rows {
			idx[r.Name] = i
		}
		b.ordered[key] = rows
		b.index[key] = idx
	}
	return b
}

func sortRows(rows []types.ScoreEntry, key types.SortKey) {
	slices.SortFunc(rows, func(a, b types.ScoreEntry) int {
		if key != types.SortByName {
			if c := cmp.Compare(b.Value(key), a.Value(key)); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

func assignRanks(rows []types.ScoreEntry, key types.SortKey) {
	rank := 0
	for i := range rows {
		if key == types.SortByName || i == 0 || rows[i].Value(key) != rows[i-1].Value(key) {
			rank++
		}
		rows[i].Rank = rank
	}
}

// Rank implements Store.Rank.
func (s *MemoryStore) Rank(ctx context.Context, name string, key types.SortKey) (types.ScoreEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQuery("rank", float64(time.Since(start).Microseconds())/1000)
	}()

	b := s.current.Load()
	if b == nil {
		metrics.RecordError("repository", "not_found")
		return types.ScoreEntry{}, ErrNotFound
	}
	pos, ok := b.index[normalize(key)][name]
	if !ok {
		metrics.RecordError("repository", "not_found")
		return types.ScoreEntry{}, ErrNotFound
	}
	return b.ordered[normalize(key)][pos], nil
}

// TopN implements Store.TopN. n above the configured maximum is capped.
func (s *MemoryStore) TopN(ctx context.Context, key types.SortKey, n int) ([]types.ScoreEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQuery("top", float64(time.Since(start).Microseconds())/1000)
	}()

	if n < 1 {
		metrics.RecordError("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	n = min(n, s.maxLimit)

	b := s.current.Load()
	if b == nil {
		return []types.ScoreEntry{}, nil
	}
	rows := b.ordered[normalize(key)]
	n = min(n, len(rows))
	return slices.Clone(rows[:n]), nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(ctx context.Context) int {
	b := s.current.Load()
	if b == nil {
		return 0
	}
	return len(b.ordered[types.SortByName])
}

// Meta implements Store.Meta.
func (s *MemoryStore) Meta(ctx context.Context) (Meta, error) {
	b := s.current.Load()
	if b == nil {
		return Meta{}, ErrNoSnapshot
	}
	return b.meta, nil
}

func normalize(key types.SortKey) types.SortKey {
	if key == "" {
		return types.SortByParse
	}
	return key
}
