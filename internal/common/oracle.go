package common

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-insights/internal/oracle"
	"github.com/joseph-ayodele/invoice-insights/internal/oracle/anthropic"
	"github.com/joseph-ayodele/invoice-insights/internal/oracle/gemini"
)

// NewOracleClient builds the configured vision provider. The returned cleanup
// is always safe to call.
func NewOracleClient(ctx context.Context, cfg OracleConfig, logger *slog.Logger) (oracle.Oracle, func() error, error) {
	switch cfg.Provider {
	case "", "anthropic":
		client := anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		return client, func() error { return nil }, nil
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init gemini client: %w", err)
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown oracle provider %q", ErrInvalidInput, cfg.Provider)
	}
}
