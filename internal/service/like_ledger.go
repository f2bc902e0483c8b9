package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"memeverse/internal/models"
	"memeverse/internal/observability"
	"memeverse/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// LikeLedger owns the per-meme liked flag and like count and keeps the
// LikedMemeIndex in step with every flip.
type LikeLedger struct {
	mu     sync.Mutex
	counts *storage.Mapping[int]
	liked  *storage.Mapping[bool]
	index  *LikedMemeIndex
}

// ReconcileReport lists the repairs made by Reconcile.
type ReconcileReport struct {
	Dropped  []string `json:"dropped"`
	Restored []string `json:"restored"`
	Missing  []string `json:"missing"`
}

// MemeLookup resolves a meme id to its catalog record.
type MemeLookup func(ctx context.Context, memeID string) (models.Meme, bool)

func NewLikeLedger(store *storage.RecordStore, index *LikedMemeIndex) *LikeLedger {
	return &LikeLedger{
		counts: storage.NewMapping[int](store, storage.KeyMemeLikes),
		liked:  storage.NewMapping[bool](store, storage.KeyLikedMemesState),
		index:  index,
	}
}

// IsLiked reports the stored flag, false when the meme was never toggled.
func (l *LikeLedger) IsLiked(ctx context.Context, memeID string) (bool, error) {
	liked, _, err := l.liked.Get(ctx, memeID)
	return liked, err
}

// LikeCount returns the stored count, or fallback when none is stored.
func (l *LikeLedger) LikeCount(ctx context.Context, memeID string, fallback int) (int, error) {
	count, ok, err := l.counts.Get(ctx, memeID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return fallback, nil
	}
	return count, nil
}

// Record returns flag and count together.
func (l *LikeLedger) Record(ctx context.Context, memeID string, fallback int) (*models.LikeRecord, error) {
	liked, err := l.IsLiked(ctx, memeID)
	if err != nil {
		return nil, err
	}
	count, err := l.LikeCount(ctx, memeID, fallback)
	if err != nil {
		return nil, err
	}
	return &models.LikeRecord{Liked: liked, Count: count}, nil
}

// ToggleLike flips the liked flag of meme, moves its count by one and updates
// the liked-meme index. meme.Likes seeds the count the first time the id is seen.
//
// The count is written first, then the flag, then the index. When a later
// write fails the earlier ones are rolled back, so a failed toggle leaves the
// previous state behind.
func (l *LikeLedger) ToggleLike(ctx context.Context, meme models.Meme) (*models.LikeRecord, error) {
	if err := validateMemeID(meme.ID); err != nil {
		return nil, err
	}
	fallback := max(meme.Likes, 0)

	l.mu.Lock()
	defer l.mu.Unlock()

	span, ctx := observability.NewSpan(ctx, "like_ledger.toggle", attribute.String("meme.id", meme.ID))
	defer span.End()

	wasLiked, hadFlag, err := l.liked.Get(ctx, meme.ID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	liked := !wasLiked

	var (
		previous int
		hadCount bool
	)
	count, err := l.counts.Update(ctx, meme.ID, func(cur int, ok bool) (int, error) {
		hadCount = ok
		if !ok {
			cur = fallback
		}
		previous = cur
		if liked {
			return cur + 1, nil
		}
		return max(cur-1, 0), nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if err := l.liked.Set(ctx, meme.ID, liked); err != nil {
		span.SetError(err)
		l.restoreCount(ctx, meme.ID, previous, hadCount)
		return nil, err
	}

	if liked {
		snapshot := meme
		snapshot.Likes = previous
		err = l.index.upsert(ctx, snapshot)
	} else {
		err = l.index.remove(ctx, meme.ID)
	}
	if err != nil {
		span.SetError(err)
		l.restoreFlag(ctx, meme.ID, wasLiked, hadFlag)
		l.restoreCount(ctx, meme.ID, previous, hadCount)
		return nil, err
	}

	span.AddAttributes(attribute.Bool("like.liked", liked), attribute.Int("like.count", count))
	return &models.LikeRecord{Liked: liked, Count: count}, nil
}

func (l *LikeLedger) restoreCount(ctx context.Context, memeID string, previous int, existed bool) {
	var err error
	if existed {
		err = l.counts.Set(ctx, memeID, previous)
	} else {
		err = l.counts.Delete(ctx, memeID)
	}
	if err != nil {
		observability.Logger.ErrorContext(ctx, "like count rollback failed",
			slog.String("meme_id", memeID),
			slog.String("error", err.Error()),
		)
	}
}

func (l *LikeLedger) restoreFlag(ctx context.Context, memeID string, previous, existed bool) {
	var err error
	if existed {
		err = l.liked.Set(ctx, memeID, previous)
	} else {
		err = l.liked.Delete(ctx, memeID)
	}
	if err != nil {
		observability.Logger.ErrorContext(ctx, "like flag rollback failed",
			slog.String("meme_id", memeID),
			slog.String("error", err.Error()),
		)
	}
}

// States returns every stored count and flag in one read each.
func (l *LikeLedger) States(ctx context.Context) (map[string]int, map[string]bool, error) {
	counts, err := l.counts.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	flags, err := l.liked.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return counts, flags, nil
}

// LikedIDs returns the ids whose flag is true, sorted.
func (l *LikeLedger) LikedIDs(ctx context.Context) ([]string, error) {
	flags, err := l.liked.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(flags))
	for id, liked := range flags {
		if liked {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Reconcile restores the index invariant after an interrupted toggle or an
// edited store: index entries whose flag is not true are dropped, and liked ids
// missing from the index are restored through lookup when it knows them.
func (l *LikeLedger) Reconcile(ctx context.Context, lookup MemeLookup) (*ReconcileReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids, err := l.LikedIDs(ctx)
	if err != nil {
		return nil, err
	}
	likedSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		likedSet[id] = true
	}

	report := &ReconcileReport{}
	report.Dropped, err = l.index.retain(ctx, func(m models.Meme) bool { return likedSet[m.ID] })
	if err != nil {
		return nil, err
	}

	snapshot, err := l.index.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	indexed := make(map[string]bool, len(snapshot))
	for _, m := range snapshot {
		indexed[m.ID] = true
	}

	for _, id := range ids {
		if indexed[id] {
			continue
		}
		if lookup == nil {
			report.Missing = append(report.Missing, id)
			continue
		}
		meme, ok := lookup(ctx, id)
		if !ok {
			report.Missing = append(report.Missing, id)
			continue
		}
		count, err := l.LikeCount(ctx, id, meme.Likes+1)
		if err != nil {
			return nil, err
		}
		meme.Likes = max(count-1, 0)
		if err := l.index.upsert(ctx, meme); err != nil {
			return nil, err
		}
		report.Restored = append(report.Restored, id)
	}

	if len(report.Dropped)+len(report.Restored)+len(report.Missing) > 0 {
		observability.Logger.WarnContext(ctx, "liked meme index reconciled",
			slog.Any("dropped", report.Dropped),
			slog.Any("restored", report.Restored),
			slog.Any("missing", report.Missing),
		)
	}
	return report, nil
}
