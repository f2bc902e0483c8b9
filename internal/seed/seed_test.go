package seed

import (
	"context"
	"fmt"
	"testing"

	"memeverse/internal/models"
	"memeverse/internal/service"
	"memeverse/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memes(n int) []models.Meme {
	out := make([]models.Meme, n)
	for i := range out {
		out[i] = models.Meme{ID: fmt.Sprintf("m%d", i), Title: fmt.Sprintf("Meme %d", i), Likes: i}
	}
	return out
}

func TestRun_LikesEverythingAtFullRatio(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	summary, err := NewSeeder(store).Run(ctx, memes(5), Options{LikeRatio: 1, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Liked)
	assert.Zero(t, summary.Comments)
	assert.Empty(t, summary.Profile)

	index := service.NewLikedMemeIndex(store)
	ledger := service.NewLikeLedger(store, index)
	ids, err := ledger.LikedIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	snapshot, err := index.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot, 5)
}

func TestRun_IsRepeatableWithoutUnliking(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	ctx := context.Background()
	seeder := NewSeeder(store)

	_, err := seeder.Run(ctx, memes(4), Options{LikeRatio: 1, Seed: 1})
	require.NoError(t, err)
	second, err := seeder.Run(ctx, memes(4), Options{LikeRatio: 1, Seed: 1})
	require.NoError(t, err)
	assert.Zero(t, second.Liked, "already liked memes stay liked")

	ledger := service.NewLikeLedger(store, service.NewLikedMemeIndex(store))
	count, err := ledger.LikeCount(ctx, "m3", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRun_CommentsAndProfile(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	ctx := context.Background()

	summary, err := NewSeeder(store).Run(ctx, memes(6), DefaultOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, summary.Profile)

	comments := service.NewCommentLog(store, nil)
	total := 0
	for _, m := range memes(6) {
		n, err := comments.Count(ctx, m.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, 3)
		total += n
	}
	assert.Equal(t, summary.Comments, total)

	p, err := service.NewProfileStore(store).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary.Profile, p.Name)
}

func TestRun_RejectsBadRatio(t *testing.T) {
	_, err := NewSeeder(testutil.NewSQLiteStore(t)).Run(context.Background(), memes(1), Options{LikeRatio: 2})
	assert.Error(t, err)
}
