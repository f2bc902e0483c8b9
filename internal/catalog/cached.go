package catalog

import (
	"context"
	"time"

	"memeverse/internal/cache"
	"memeverse/internal/models"

	"github.com/redis/go-redis/v9"
)

// CachedProvider keeps the last fetched catalog in Redis for ttl.
type CachedProvider struct {
	next   Provider
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewCachedProvider(next Provider, client *redis.Client, source string, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:   next,
		client: client,
		key:    "memeverse:catalog:" + source,
		ttl:    ttl,
	}
}

func (p *CachedProvider) FetchCatalog(ctx context.Context) ([]models.Meme, error) {
	var memes []models.Meme
	err := cache.CacheAside(ctx, p.client, p.key, &memes, p.ttl, func() error {
		fetched, err := p.next.FetchCatalog(ctx)
		if err != nil {
			return err
		}
		memes = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return memes, nil
}
