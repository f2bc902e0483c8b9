package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"memeverse/internal/models"
	"memeverse/internal/storage"
)

const maxCommentLen = 10000

// CommentLog keeps an ordered comment list per meme id.
type CommentLog struct {
	mu    sync.Mutex
	store *storage.RecordStore
	now   func() time.Time
}

// NewCommentLog creates a CommentLog. now defaults to time.Now.
func NewCommentLog(store *storage.RecordStore, now func() time.Time) *CommentLog {
	if now == nil {
		now = time.Now
	}
	return &CommentLog{store: store, now: now}
}

func (l *CommentLog) doc(memeID string) *storage.Document[[]models.Comment] {
	return storage.NewDocument(l.store, storage.CommentsKey(memeID), func() []models.Comment { return []models.Comment{} })
}

func (l *CommentLog) List(ctx context.Context, memeID string) ([]models.Comment, error) {
	return l.doc(memeID).Load(ctx)
}

func (l *CommentLog) Count(ctx context.Context, memeID string) (int, error) {
	comments, err := l.List(ctx, memeID)
	if err != nil {
		return 0, err
	}
	return len(comments), nil
}

// Add appends a comment. Its id is the current time in milliseconds, moved
// past every id already stored for the meme.
func (l *CommentLog) Add(ctx context.Context, memeID, text string) (*models.Comment, error) {
	if err := validateMemeID(memeID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	var added models.Comment
	_, err := l.doc(memeID).Update(ctx, func(comments []models.Comment) ([]models.Comment, error) {
		id := now.UnixMilli()
		for _, c := range comments {
			if c.ID >= id {
				id = c.ID + 1
			}
		}
		added = models.Comment{
			ID:        id,
			Text:      text,
			Timestamp: now.Format(models.CommentTimestampLayout),
		}
		return append(comments, added), nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// Remove deletes the comment with commentID. Unknown ids are ignored and
// nothing is written.
func (l *CommentLog) Remove(ctx context.Context, memeID string, commentID int64) error {
	if err := validateMemeID(memeID); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.doc(memeID).Update(ctx, func(comments []models.Comment) ([]models.Comment, error) {
		kept := make([]models.Comment, 0, len(comments))
		for _, c := range comments {
			if c.ID != commentID {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(comments) {
			return nil, storage.ErrUnchanged
		}
		return kept, nil
	})
	return err
}
