package warcraftlogs

import (
	"context"

	"github.com/okian/guildscore/internal/domain/model"
	"github.com/okian/guildscore/pkg/logger"
	"github.com/pkg/errors"
)

const reportsQuery = `query getReports($guildId: Int, $limit: Int) {
	reportData {
		reports(guildID: $guildId, limit: $limit) {
			data {
				code
				startTime
				rankings
			}
			total
		}
	}
}`

type reportData struct {
	ReportData struct {
		Reports *struct {
			Data  []model.Report `json:"data"`
			Total int            `json:"total"`
		} `json:"reports"`
	} `json:"reportData"`
}

// ListReports returns up to limit of the guild's most recent reports with
// their rankings decoded. The provider may return fewer.
func (c *Client) ListReports(ctx context.Context, guildID, limit int) ([]model.Report, error) {
	if limit < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "report limit %d", limit)
	}

	var data reportData
	vars := map[string]any{"guildId": guildID, "limit": limit}
	if err := c.query(ctx, "reports", reportsQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.ReportData.Reports == nil {
		return nil, errors.Wrapf(ErrNotFound, "reports for guild %d", guildID)
	}

	reports := data.ReportData.Reports.Data
	c.log.Debug(ctx, "reports listed",
		logger.Int("guild_id", guildID),
		logger.Int("returned", len(reports)),
		logger.Int("total", data.ReportData.Reports.Total),
	)
	return reports, nil
}
