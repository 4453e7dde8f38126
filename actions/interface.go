package actions

import (
	"context"

	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
)

// SourceOpener opens the source database described by the settings.
type SourceOpener func(ctx context.Context, log logger.Logger, s *config.Settings) (shared.Connector, error)

// SnowflakeOpener opens a Snowflake session.
type SnowflakeOpener func(ctx context.Context, log logger.Logger, s config.Snowflake) (shared.Connector, error)

func (o SourceOpener) orDefault() SourceOpener {
	if o == nil {
		return rdbms.OpenSource
	}
	return o
}

func (o SnowflakeOpener) orDefault() SnowflakeOpener {
	if o == nil {
		return rdbms.OpenSnowflake
	}
	return o
}
