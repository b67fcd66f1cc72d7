package relaytransport

import (
	"context"
	"fmt"

	"nostrdrive/internal/drive"
)

// Config is the tagged-union configuration for a RelayClient backend.
type Config struct {
	Type string // "memory" or "websocket"

	URLs []string // only used for type=websocket; the first successful dial wins
}

// New constructs a drive.RelayClient for cfg.Type.
func New(ctx context.Context, cfg Config) (drive.RelayClient, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(), nil
	case "websocket":
		if len(cfg.URLs) == 0 {
			return nil, fmt.Errorf("websocket relay client requires at least one url")
		}
		var lastErr error
		for _, u := range cfg.URLs {
			client, err := Dial(ctx, u)
			if err == nil {
				return client, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("dialing relays: %w", lastErr)
	default:
		return nil, fmt.Errorf("unknown relay client type: %s", cfg.Type)
	}
}
