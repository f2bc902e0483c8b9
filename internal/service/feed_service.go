package service

import (
	"context"

	"memeverse/internal/catalog"
	"memeverse/internal/models"
)

// FeedService serves catalog memes overlaid with the local like state.
type FeedService struct {
	provider catalog.Provider
	ledger   *LikeLedger
}

func NewFeedService(provider catalog.Provider, ledger *LikeLedger) *FeedService {
	return &FeedService{provider: provider, ledger: ledger}
}

func (s *FeedService) Trending(ctx context.Context) ([]models.MemeView, error) {
	memes, err := s.provider.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return s.overlay(ctx, catalog.Trending(memes))
}

// Explore applies q after the overlay, so sorting by likes uses local counts.
func (s *FeedService) Explore(ctx context.Context, q catalog.Query) ([]models.MemeView, error) {
	q = q.Normalize()
	if !catalog.ValidCategory(q.Category) {
		return nil, models.NewValidationError("Unknown category")
	}
	if !catalog.ValidSort(q.SortBy) {
		return nil, models.NewValidationError("Unknown sort")
	}

	memes, err := s.provider.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	views, err := s.overlay(ctx, memes)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]bool, len(views))
	plain := make([]models.Meme, len(views))
	for i, v := range views {
		plain[i] = v.Meme
		byID[v.ID] = v.Liked
	}

	selected := catalog.Explore(plain, q)
	out := make([]models.MemeView, len(selected))
	for i, m := range selected {
		out[i] = models.MemeView{Meme: m, Liked: byID[m.ID]}
	}
	return out, nil
}

// Meme returns the raw catalog record of memeID.
func (s *FeedService) Meme(ctx context.Context, memeID string) (models.Meme, error) {
	memes, err := s.provider.FetchCatalog(ctx)
	if err != nil {
		return models.Meme{}, err
	}
	m, ok := catalog.Find(memes, memeID)
	if !ok {
		return models.Meme{}, models.NewNotFoundError("Meme", memeID)
	}
	return m, nil
}

// Lookup returns one meme with its local like state.
func (s *FeedService) Lookup(ctx context.Context, memeID string) (*models.MemeView, error) {
	m, err := s.Meme(ctx, memeID)
	if err != nil {
		return nil, err
	}
	views, err := s.overlay(ctx, []models.Meme{m})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// MemeLookup adapts the catalog for LikeLedger.Reconcile. A catalog that
// cannot be fetched resolves nothing.
func (s *FeedService) MemeLookup() MemeLookup {
	var (
		memes   []models.Meme
		fetched bool
	)
	return func(ctx context.Context, memeID string) (models.Meme, bool) {
		if !fetched {
			memes, _ = s.provider.FetchCatalog(ctx)
			fetched = true
		}
		return catalog.Find(memes, memeID)
	}
}

func (s *FeedService) overlay(ctx context.Context, memes []models.Meme) ([]models.MemeView, error) {
	counts, flags, err := s.ledger.States(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.MemeView, len(memes))
	for i, m := range memes {
		if c, ok := counts[m.ID]; ok {
			m.Likes = c
		}
		views[i] = models.MemeView{Meme: m, Liked: flags[m.ID]}
	}
	return views, nil
}
