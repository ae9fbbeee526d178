package importer

import (
	"fmt"

	"github.com/feedbridge/backend/internal/infrastructure/config"
	"github.com/google/uuid"
)

// Config carries the engine's immutable constants. It is built once at
// startup and passed in at construction so tests can run with alternate
// values.
type Config struct {
	Currency             string
	PlaceholderProductID uuid.UUID
	ExternalIDMetaKey    string
	PaidDateMetaKey      string
	DefaultItemName      string
	MissingFieldSentinel string
}

// FromAppConfig builds an engine Config from the application's import
// settings. An empty placeholder product id is allowed and leaves unresolved
// line items with a nil product reference.
func FromAppConfig(cfg config.ImportConfig) (Config, error) {
	c := Config{
		Currency:             cfg.Currency,
		ExternalIDMetaKey:    cfg.ExternalIDMetaKey,
		PaidDateMetaKey:      cfg.PaidDateMetaKey,
		DefaultItemName:      cfg.DefaultItemName,
		MissingFieldSentinel: cfg.MissingFieldSentinel,
	}
	if cfg.PlaceholderProductID != "" {
		id, err := uuid.Parse(cfg.PlaceholderProductID)
		if err != nil {
			return Config{}, fmt.Errorf("invalid placeholder product id %q: %w", cfg.PlaceholderProductID, err)
		}
		c.PlaceholderProductID = id
	}
	return c, nil
}
