// Package seed fills a local store with demo likes, comments and a profile
// over catalog memes. It is intended for development only.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"memeverse/internal/models"
	"memeverse/internal/observability"
	"memeverse/internal/service"
	"memeverse/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
)

// Options configuration for the seeder
type Options struct {
	// LikeRatio is the share of memes that get liked, between 0 and 1.
	LikeRatio float64
	// MaxComments bounds the comments added per meme.
	MaxComments int
	// Profile replaces the stored profile with a generated one.
	Profile bool
	Seed    int64
}

// DefaultOptions returns the options used by cmd/seed without flags.
func DefaultOptions() Options {
	return Options{LikeRatio: 0.3, MaxComments: 3, Profile: true, Seed: 42}
}

// Summary reports what a run wrote.
type Summary struct {
	Liked    int
	Comments int
	Profile  string
}

// Seeder writes demo state through the same components the API uses, so the
// liked-meme index and counts stay consistent.
type Seeder struct {
	ledger   *service.LikeLedger
	comments *service.CommentLog
	profiles *service.ProfileStore
}

// NewSeeder creates a Seeder over store.
func NewSeeder(store *storage.RecordStore) *Seeder {
	index := service.NewLikedMemeIndex(store)
	return &Seeder{
		ledger:   service.NewLikeLedger(store, index),
		comments: service.NewCommentLog(store, nil),
		profiles: service.NewProfileStore(store),
	}
}

// Run seeds state for memes. Memes that are already liked are left alone.
func (s *Seeder) Run(ctx context.Context, memes []models.Meme, opts Options) (*Summary, error) {
	if opts.LikeRatio < 0 || opts.LikeRatio > 1 {
		return nil, fmt.Errorf("like ratio %v out of range", opts.LikeRatio)
	}
	faker := gofakeit.New(opts.Seed)
	summary := &Summary{}

	for _, meme := range memes {
		if meme.ID == "" {
			continue
		}

		if faker.Float64() < opts.LikeRatio {
			liked, err := s.ledger.IsLiked(ctx, meme.ID)
			if err != nil {
				return summary, err
			}
			if !liked {
				if _, err := s.ledger.ToggleLike(ctx, meme); err != nil {
					return summary, fmt.Errorf("like %s: %w", meme.ID, err)
				}
				summary.Liked++
			}
		}

		if opts.MaxComments > 0 {
			for range faker.Number(0, opts.MaxComments) {
				if _, err := s.comments.Add(ctx, meme.ID, commentText(faker)); err != nil {
					return summary, fmt.Errorf("comment on %s: %w", meme.ID, err)
				}
				summary.Comments++
			}
		}
	}

	if opts.Profile {
		p, err := s.profiles.Save(ctx, models.UserProfile{
			Name: faker.Username(),
			Bio:  faker.HipsterSentence(8),
		})
		if err != nil {
			return summary, fmt.Errorf("profile: %w", err)
		}
		summary.Profile = p.Name
	}

	observability.Logger.InfoContext(ctx, "demo state seeded",
		slog.Int("memes", len(memes)),
		slog.Int("liked", summary.Liked),
		slog.Int("comments", summary.Comments),
	)
	return summary, nil
}

func commentText(f *gofakeit.Faker) string {
	switch f.Number(0, 2) {
	case 0:
		return f.Phrase()
	case 1:
		return f.HipsterSentence(6)
	default:
		return f.Emoji() + " " + f.Word()
	}
}
