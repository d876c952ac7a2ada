package relay

import (
	"context"
	"fmt"

	"gaming-ops-portal/config"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/s3"
)

// Open builds the relay selected by cfg.Relay.Driver.
func Open(ctx context.Context, cfg config.Config, store database.Store) (Relay, error) {
	switch cfg.Relay.Driver {
	case NameTelegram:
		return NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint, cfg.Telegram.ChatID, cfg.Relay.Timeout, store)
	case NameS3:
		up, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3(up, store), nil
	case NameNone, "":
		return NewNone(store), nil
	}
	return nil, fmt.Errorf("unknown relay driver %q", cfg.Relay.Driver)
}
