package service

import (
	"context"
	"testing"

	"memeverse/internal/models"
	"memeverse/internal/storage"
	"memeverse/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store    *storage.RecordStore
	index    *LikedMemeIndex
	ledger   *LikeLedger
	comments *CommentLog
	profiles *ProfileStore
	board    *LeaderboardAggregator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := testutil.NewSQLiteStore(t)
	index := NewLikedMemeIndex(store)
	ledger := NewLikeLedger(store, index)
	profiles := NewProfileStore(store)
	return &testEnv{
		store:    store,
		index:    index,
		ledger:   ledger,
		comments: NewCommentLog(store, nil),
		profiles: profiles,
		board:    NewLeaderboardAggregator(ledger, index, profiles, 0),
	}
}

func indexIDs(t *testing.T, idx *LikedMemeIndex) []string {
	t.Helper()
	memes, err := idx.Snapshot(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(memes))
	for _, m := range memes {
		out = append(out, m.ID)
	}
	return out
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err), "expected validation error, got %v", err)
}
