package warcraftlogs

import (
	"context"

	"github.com/okian/guildscore/pkg/logger"
	"github.com/pkg/errors"
)

const guildQuery = `query ($name: String, $server: String, $region: String) {
	guildData {
		guild(name: $name, serverSlug: $server, serverRegion: $region) {
			id
		}
	}
}`

type guildData struct {
	GuildData struct {
		Guild *struct {
			ID int `json:"id"`
		} `json:"guild"`
	} `json:"guildData"`
}

// LookupGuildID resolves a guild name, server slug and region to its id.
// It returns ErrNotFound when no guild matches.
func (c *Client) LookupGuildID(ctx context.Context, name, server, region string) (int, error) {
	if name == "" || server == "" || region == "" {
		return 0, errors.Wrap(ErrInvalidArgument, "guild name, server and region are required")
	}

	var data guildData
	vars := map[string]any{"name": name, "server": server, "region": region}
	if err := c.query(ctx, "guild", guildQuery, vars, &data); err != nil {
		return 0, err
	}
	if data.GuildData.Guild == nil {
		return 0, errors.Wrapf(ErrNotFound, "guild %q on %s-%s", name, region, server)
	}

	c.log.Debug(ctx, "guild resolved",
		logger.String("guild", name),
		logger.Int("guild_id", data.GuildData.Guild.ID),
	)
	return data.GuildData.Guild.ID, nil
}
