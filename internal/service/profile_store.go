package service

import (
	"context"
	"strings"
	"sync"

	"memeverse/internal/models"
	"memeverse/internal/storage"
)

// ProfileStore holds the single local user profile.
type ProfileStore struct {
	mu  sync.Mutex
	doc *storage.Document[models.UserProfile]
}

func NewProfileStore(store *storage.RecordStore) *ProfileStore {
	return &ProfileStore{
		doc: storage.NewDocument(store, storage.KeyUserProfile, models.DefaultProfile),
	}
}

// Get returns the saved profile, or the defaults when nothing usable is stored.
func (s *ProfileStore) Get(ctx context.Context) (*models.UserProfile, error) {
	p, err := s.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		p = models.DefaultProfile()
	}
	return &p, nil
}

// Save overwrites the whole profile, avatar included.
func (s *ProfileStore) Save(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	p.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.Save(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetAvatar normalizes raw image bytes and stores them as the avatar.
func (s *ProfileStore) SetAvatar(ctx context.Context, raw []byte) (*models.UserProfile, error) {
	avatar, err := normalizeAvatar(raw)
	if err != nil {
		return nil, err
	}
	return s.updateAvatar(ctx, avatar)
}

func (s *ProfileStore) ClearAvatar(ctx context.Context) (*models.UserProfile, error) {
	return s.updateAvatar(ctx, nil)
}

func (s *ProfileStore) updateAvatar(ctx context.Context, avatar []byte) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.doc.Update(ctx, func(p models.UserProfile) (models.UserProfile, error) {
		if strings.TrimSpace(p.Name) == "" {
			p = models.DefaultProfile()
		}
		p.Avatar = avatar
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
