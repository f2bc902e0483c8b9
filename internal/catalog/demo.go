package catalog

import (
	"context"
	"hash/fnv"
	"time"

	"memeverse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// DemoDecorator fills category, likes, comments and date on memes whose
// source does not provide them. Values depend only on the meme id, the seed
// and the current day, so repeated fetches agree.
type DemoDecorator struct {
	next Provider
	seed int64
	now  func() time.Time
}

func NewDemoDecorator(next Provider, seed int64) *DemoDecorator {
	return &DemoDecorator{next: next, seed: seed, now: time.Now}
}

func (d *DemoDecorator) FetchCatalog(ctx context.Context) ([]models.Meme, error) {
	memes, err := d.next.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	day := d.now().UTC().Truncate(24 * time.Hour)
	out := make([]models.Meme, len(memes))
	for i, m := range memes {
		faker := gofakeit.New(d.seed ^ idHash(m.ID))
		if m.Category == "" {
			// Skip "All", which is a filter rather than a category.
			m.Category = Categories[faker.Number(1, len(Categories)-1)]
		}
		if m.Likes == 0 {
			m.Likes = faker.Number(0, 999)
		}
		if m.Comments == 0 {
			m.Comments = faker.Number(0, 99)
		}
		if m.Date == nil {
			date := day.Add(-time.Duration(faker.Number(0, 10_000_000)) * time.Second)
			m.Date = &date
		}
		out[i] = m
	}
	return out, nil
}

func idHash(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}
