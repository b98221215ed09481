// Package types contains common types used across the application
package types

import (
	"errors"
	"strings"

	"github.com/okian/guildscore/internal/domain/model"
)

// ErrUnknownSortKey is returned by ParseSortKey for unsupported keys.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey selects the column a scoreboard is ranked by.
type SortKey string

// Supported sort keys.
const (
	SortByParse      SortKey = "parse"
	SortByIlvl       SortKey = "ilvl"
	SortByAttendance SortKey = "attendance"
	SortByName       SortKey = "name"
)

// ParseSortKey parses s case-insensitively; an empty string means SortByParse.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByParse, nil
	case SortByParse, SortByIlvl, SortByAttendance, SortByName:
		return k, nil
	default:
		return "", errors.Join(ErrUnknownSortKey, errors.New(s))
	}
}

// ScoreEntry represents a scoreboard row
type ScoreEntry struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Fights     int     `json:"fights"`
	Attendance float64 `json:"attendance"`
	ParseScore float64 `json:"parse_score"`
	IlvlScore  float64 `json:"ilvl_score"`
}

// NewScoreEntry builds a row at rank from a computed score.
func NewScoreEntry(rank int, s model.CharacterScore) ScoreEntry {
	return ScoreEntry{
		Rank:       rank,
		Name:       s.Name,
		Fights:     s.Fights,
		Attendance: s.Attendance,
		ParseScore: s.ParseScore,
		IlvlScore:  s.IlvlScore,
	}
}

// Value returns the column selected by key. SortByName has no numeric value
// and returns 0.
func (e ScoreEntry) Value(key SortKey) float64 {
	switch key {
	case SortByIlvl:
		return e.IlvlScore
	case SortByAttendance:
		return e.Attendance
	case SortByParse:
		return e.ParseScore
	default:
		return 0
	}
}
