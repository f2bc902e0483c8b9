package service

import (
	"context"

	"memeverse/internal/models"
	"memeverse/internal/storage"
)

// LikedMemeIndex is the denormalized list of memes the user has liked. Only
// LikeLedger mutates it.
type LikedMemeIndex struct {
	doc *storage.Document[[]models.Meme]
}

func NewLikedMemeIndex(store *storage.RecordStore) *LikedMemeIndex {
	return &LikedMemeIndex{
		doc: storage.NewDocument(store, storage.KeyLikedMemes, func() []models.Meme { return []models.Meme{} }),
	}
}

// Snapshot returns the index in insertion order.
func (i *LikedMemeIndex) Snapshot(ctx context.Context) ([]models.Meme, error) {
	return i.doc.Load(ctx)
}

// upsert appends meme unless its id is already indexed.
func (i *LikedMemeIndex) upsert(ctx context.Context, meme models.Meme) error {
	_, err := i.doc.Update(ctx, func(memes []models.Meme) ([]models.Meme, error) {
		for _, m := range memes {
			if m.ID == meme.ID {
				return nil, storage.ErrUnchanged
			}
		}
		return append(memes, meme), nil
	})
	return err
}

func (i *LikedMemeIndex) remove(ctx context.Context, memeID string) error {
	_, err := i.retain(ctx, func(m models.Meme) bool { return m.ID != memeID })
	return err
}

// retain keeps the entries for which keep returns true and reports the ids it dropped.
func (i *LikedMemeIndex) retain(ctx context.Context, keep func(models.Meme) bool) ([]string, error) {
	var dropped []string
	_, err := i.doc.Update(ctx, func(memes []models.Meme) ([]models.Meme, error) {
		dropped = nil
		kept := make([]models.Meme, 0, len(memes))
		for _, m := range memes {
			if keep(m) {
				kept = append(kept, m)
				continue
			}
			dropped = append(dropped, m.ID)
		}
		if len(dropped) == 0 {
			return nil, storage.ErrUnchanged
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	return dropped, nil
}
