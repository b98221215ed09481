// Package extract flattens provider reports into per-character fight records.
//
// Reports are walked in order: report list, fights within a report, roles in
// the order the provider emitted them, characters within a role. One Record is
// produced per (report, fight, role, character). A missing required field
// aborts the whole batch; no partial output is returned.
package extract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/okian/guildscore/internal/domain/model"
	"github.com/okian/guildscore/pkg/logger"
)

// Extractor turns reports into records.
type Extractor struct {
	log logger.Logger
}

// New creates an Extractor with configuration options.
func New(opts ...Option) *Extractor {
	e := &Extractor{log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract flattens reports with a non-logging Extractor.
func Extract(ctx context.Context, reports []model.Report) ([]model.Record, error) {
	return New().Extract(ctx, reports)
}

// Extract flattens reports into records. On error the returned slice is nil.
func (e *Extractor) Extract(ctx context.Context, reports []model.Report) ([]model.Record, error) {
	var out []model.Record

	for i := range reports {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract cancelled: %w", err)
		}

		r := &reports[i]
		path := "reports[" + strconv.Itoa(i) + "]"
		if r.Code == nil {
			return nil, missing("code", path)
		}
		if r.Rankings == nil {
			return nil, missing("rankings", path)
		}
		if r.Rankings.Data == nil {
			return nil, missing("rankings.data", path)
		}

		before := len(out)
		for j := range r.Rankings.Data {
			var err error
			out, err = appendFight(out, *r.Code, &r.Rankings.Data[j], path+".rankings.data["+strconv.Itoa(j)+"]")
			if err != nil {
				return nil, err
			}
		}

		fields := []logger.Field{
			logger.String("code", *r.Code),
			logger.Int("fights", len(r.Rankings.Data)),
			logger.Int("records", len(out)-before),
		}
		if r.StartTime != nil {
			fields = append(fields, logger.Time("start", r.Start()))
		}
		e.log.Debug(ctx, "report extracted", fields...)
	}

	return out, nil
}

func appendFight(out []model.Record, code string, f *model.Fight, path string) ([]model.Record, error) {
	switch {
	case f.FightID == nil:
		return nil, missing("fightID", path)
	case f.Encounter == nil || f.Encounter.Name == nil:
		return nil, missing("encounter.name", path)
	case f.Kill == nil:
		return nil, missing("kill", path)
	case f.Roles == nil:
		return nil, missing("roles", path)
	}

	fightID := code + "-" + strconv.Itoa(*f.FightID)
	for _, role := range f.Roles {
		rolePath := path + ".roles." + role.Name
		if role.Characters == nil {
			return nil, missing("characters", rolePath)
		}
		for k := range role.Characters {
			c := &role.Characters[k]
			charPath := rolePath + ".characters[" + strconv.Itoa(k) + "]"
			switch {
			case c.ID == nil:
				return nil, missing("id", charPath)
			case c.Name == nil || *c.Name == "":
				return nil, missing("name", charPath)
			case c.RankPercent == nil:
				return nil, missing("rankPercent", charPath)
			case c.BracketPercent == nil:
				return nil, missing("bracketPercent", charPath)
			}

			out = append(out, model.Record{
				FightID:        fightID,
				Boss:           *f.Encounter.Name,
				Kill:           *f.Kill,
				Role:           role.Name,
				ID:             *c.ID,
				Name:           *c.Name,
				BracketPercent: *c.BracketPercent,
				RankPercent:    *c.RankPercent,
			})
		}
	}
	return out, nil
}
