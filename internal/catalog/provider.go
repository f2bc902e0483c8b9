// Package catalog fetches the remote meme catalog and derives the browse views over it.
package catalog

import (
	"context"
	"fmt"
	"net/http"

	"memeverse/internal/config"
	"memeverse/internal/models"
	"memeverse/internal/observability"

	"github.com/redis/go-redis/v9"
)

// CollaboratorName labels catalog failures in errors and metrics.
const CollaboratorName = "catalog"

// Provider returns the current meme catalog.
type Provider interface {
	FetchCatalog(ctx context.Context) ([]models.Meme, error)
}

// NewProvider builds the provider chain described by cfg. client may be nil,
// in which case the catalog is not cached.
func NewProvider(cfg *config.Config, client *redis.Client) (Provider, error) {
	var p Provider
	switch cfg.CatalogSource {
	case config.CatalogImgflip:
		p = NewImgflipProvider(cfg.CatalogURL, &http.Client{Timeout: cfg.CatalogTimeout()})
	case config.CatalogFile:
		p = NewFileProvider(cfg.CatalogFile)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}

	if client != nil && cfg.CatalogCacheTTL() > 0 {
		p = NewCachedProvider(p, client, cfg.CatalogSource, cfg.CatalogCacheTTL())
	}
	if cfg.CatalogDemoFields {
		p = NewDemoDecorator(p, cfg.CatalogDemoSeed)
	}
	return p, nil
}

func collaboratorFailure(err error) error {
	observability.CollaboratorFailures.WithLabelValues(CollaboratorName).Inc()
	return models.NewCollaboratorError(CollaboratorName, err)
}
