package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"memeverse/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads memes into a Cloudinary folder.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	preset string
}

// NewCloudinaryStore creates a store from the CLOUDINARY_* settings.
func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	if !cfg.UploadsEnabled() {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{
		cld:    cld,
		folder: cfg.CloudinaryFolder,
		preset: cfg.CloudinaryUploadPreset,
	}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, image []byte, filename string) (string, error) {
	params := uploader.UploadParams{
		Folder:       s.folder,
		UploadPreset: s.preset,
		ResourceType: "image",
	}
	if name := publicName(filename); name != "" {
		params.PublicID = name
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(image), params)
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.SecureURL == "" {
		msg := result.Error.Message
		if msg == "" {
			msg = "no url returned"
		}
		return "", errors.New(msg)
	}
	return result.SecureURL, nil
}

// publicName strips the extension and anything unsafe for a public id.
func publicName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || base == "." {
		return ""
	}
	return b.String()
}
