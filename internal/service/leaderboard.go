package service

import (
	"context"
	"sort"
	"strings"

	"memeverse/internal/models"
	"memeverse/internal/observability"
)

// DefaultLeaderboardSize is used when Compute is called without a size.
const DefaultLeaderboardSize = 10

// LeaderboardAggregator derives top memes and top users from the ledger, the
// liked-meme index and the profile. Nothing is cached or persisted.
type LeaderboardAggregator struct {
	ledger      *LikeLedger
	index       *LikedMemeIndex
	profiles    *ProfileStore
	defaultSize int
}

func NewLeaderboardAggregator(ledger *LikeLedger, index *LikedMemeIndex, profiles *ProfileStore, defaultSize int) *LeaderboardAggregator {
	if defaultSize <= 0 {
		defaultSize = DefaultLeaderboardSize
	}
	return &LeaderboardAggregator{
		ledger:      ledger,
		index:       index,
		profiles:    profiles,
		defaultSize: defaultSize,
	}
}

// ResolveOwner returns the first non-blank candidate, else AnonymousOwner.
func ResolveOwner(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return models.AnonymousOwner
}

// Compute builds the leaderboard. topN <= 0 selects the configured default.
func (a *LeaderboardAggregator) Compute(ctx context.Context, topN int) (*models.Leaderboard, error) {
	if topN <= 0 {
		topN = a.defaultSize
	}

	span, ctx := observability.NewSpan(ctx, "leaderboard.compute")
	defer span.End()

	profile, err := a.profiles.Get(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	snapshot, err := a.index.Snapshot(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	byID := make(map[string]models.Meme, len(snapshot))
	ranked := make([]models.MemeRanking, 0, len(snapshot))
	for _, m := range snapshot {
		likes, err := a.ledger.LikeCount(ctx, m.ID, m.Likes)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		byID[m.ID] = m
		ranked = append(ranked, models.MemeRanking{Meme: m, Likes: likes})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Likes > ranked[j].Likes
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	likedIDs, err := a.ledger.LikedIDs(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	engagement := make(map[string]int)
	for _, id := range likedIDs {
		owner := ResolveOwner(byID[id].Author, profile.Name)
		engagement[owner]++
	}
	if _, ok := engagement[profile.Name]; !ok {
		engagement[profile.Name] = 0
	}

	users := make([]models.UserRanking, 0, len(engagement))
	for name, count := range engagement {
		users = append(users, models.UserRanking{
			Name:            name,
			EngagementCount: count,
			IsCurrentUser:   name == profile.Name,
		})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].EngagementCount != users[j].EngagementCount {
			return users[i].EngagementCount > users[j].EngagementCount
		}
		return users[i].Name < users[j].Name
	})
	if len(users) > topN {
		users = users[:topN]
	}
	for i := range users {
		users[i].Rank = i + 1
	}

	return &models.Leaderboard{Memes: ranked, Users: users}, nil
}
