package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"memeverse/internal/assets"
	"memeverse/internal/models"
	"memeverse/internal/observability"
)

const DefaultUploadMaxSizeMB = 10

type UploadInput struct {
	Filename string
	Caption  string
	Content  []byte
}

// UploadService validates a meme upload and hands it to the asset store. It
// does not touch local state.
type UploadService struct {
	store              assets.Store
	maxUploadSizeBytes int64
}

// NewUploadService creates the service. store may be nil when no asset host
// is configured; uploads then fail with an upload error.
func NewUploadService(store assets.Store, maxUploadSizeBytes int64) *UploadService {
	if maxUploadSizeBytes <= 0 {
		maxUploadSizeBytes = DefaultUploadMaxSizeMB * 1024 * 1024
	}
	return &UploadService{store: store, maxUploadSizeBytes: maxUploadSizeBytes}
}

func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*models.UploadResult, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("Please select an image first")
	}
	caption := strings.TrimSpace(in.Caption)
	if caption == "" {
		return nil, models.NewValidationError("Please add a caption")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !strings.HasPrefix(http.DetectContentType(in.Content), "image/") {
		return nil, models.NewValidationError("Please select an image or GIF file")
	}

	if s.store == nil {
		return nil, models.NewUploadError(errors.New("no asset store configured"))
	}

	span, ctx := observability.NewSpan(ctx, "upload.meme")
	defer span.End()

	url, err := s.store.Upload(ctx, in.Content, in.Filename)
	if err != nil {
		span.SetError(err)
		observability.CollaboratorFailures.WithLabelValues("assets").Inc()
		observability.Logger.ErrorContext(ctx, "meme upload failed",
			slog.String("filename", in.Filename),
			slog.String("error", err.Error()),
		)
		return nil, models.NewUploadError(err)
	}

	return &models.UploadResult{URL: url, Caption: caption}, nil
}
