package catalog

import (
	"context"
	"fmt"
	"os"

	"memeverse/internal/models"

	"gopkg.in/yaml.v3"
)

// FileProvider serves a catalog from a YAML list of memes.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) FetchCatalog(_ context.Context) ([]models.Meme, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, collaboratorFailure(err)
	}

	var memes []models.Meme
	if err := yaml.Unmarshal(raw, &memes); err != nil {
		return nil, collaboratorFailure(fmt.Errorf("parse %s: %w", p.path, err))
	}
	for i := range memes {
		if memes[i].Title == "" {
			memes[i].Title = DefaultTitle
		}
	}
	if memes == nil {
		memes = []models.Meme{}
	}
	return memes, nil
}
