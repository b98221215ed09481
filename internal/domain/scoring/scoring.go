// Package scoring computes per-character attendance and nearest-rank
// percentile scores from flattened fight records.
package scoring

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/guildscore/internal/domain/dedupe"
	"github.com/okian/guildscore/internal/domain/model"
)

// Percentile threshold bounds, inclusive.
const (
	MinThreshold = 1
	MaxThreshold = 100
)

// accumulator holds one character's values in record order.
type accumulator struct {
	fights  []string
	rank    []float64
	bracket []float64
}

// Aggregate groups records by character name and scores each character.
//
// Attendance is the share of distinct fight ids in the whole batch that the
// character contributed records to, times 100. Parse and item-level scores are
// the nearest-rank percentile of the character's rankPercent and
// bracketPercent values at threshold.
func Aggregate(records []model.Record, threshold int) (map[string]model.CharacterScore, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	fights := dedupe.NewOrderedSet()
	groups := make(map[string]*accumulator)
	for i := range records {
		r := &records[i]
		fights.SeenAndRecord(r.FightID)

		acc, ok := groups[r.Name]
		if !ok {
			acc = &accumulator{}
			groups[r.Name] = acc
		}
		acc.fights = append(acc.fights, r.FightID)
		acc.rank = append(acc.rank, r.RankPercent)
		acc.bracket = append(acc.bracket, r.BracketPercent)
	}

	if fights.Len() == 0 {
		return nil, ErrEmptyInput
	}

	total := float64(fights.Len())
	out := make(map[string]model.CharacterScore, len(groups))
	for name, acc := range groups {
		out[name] = model.CharacterScore{
			Name:       name,
			Fights:     len(acc.fights),
			Attendance: float64(len(acc.fights)) / total * 100,
			ParseScore: NearestRank(acc.rank, threshold),
			IlvlScore:  NearestRank(acc.bracket, threshold),
		}
	}
	return out, nil
}

// CountFights returns the number of distinct fight ids in records.
func CountFights(records []model.Record) int {
	fights := dedupe.NewOrderedSet()
	for i := range records {
		fights.SeenAndRecord(records[i].FightID)
	}
	return fights.Len()
}

// ValidateThreshold rejects thresholds outside [MinThreshold, MaxThreshold].
func ValidateThreshold(threshold int) error {
	if threshold < MinThreshold || threshold > MaxThreshold {
		return fmt.Errorf("%w: percentile threshold %d outside [%d,%d]",
			ErrInvalidConfiguration, threshold, MinThreshold, MaxThreshold)
	}
	return nil
}

// NearestRank returns the value at 1-based position ceil(n*threshold/100) of
// the ascending, stably sorted values. values is not modified.
// It panics if values is empty.
func NearestRank(values []float64, threshold int) float64 {
	n := len(values)
	if n == 0 {
		panic("scoring: nearest-rank percentile of an empty list")
	}

	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, cmp.Compare[float64])

	idx := (n*threshold + 99) / 100
	idx = max(1, min(idx, n))
	return sorted[idx-1]
}
