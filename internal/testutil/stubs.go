// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"memeverse/internal/database"
	"memeverse/internal/models"
	"memeverse/internal/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// NewSQLiteStore opens a record store over a fresh in-memory SQLite database
// that is closed when the test ends.
func NewSQLiteStore(t testing.TB, opts ...storage.Option) *storage.RecordStore {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	backend := storage.NewGormBackend(db)
	t.Cleanup(func() { _ = backend.Close() })
	return storage.NewRecordStore(backend, opts...)
}

// PNG encodes a w x h gradient image.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

// CatalogStub is an in-memory catalog provider.
type CatalogStub struct {
	mu    sync.Mutex
	Memes []models.Meme
	Err   error
	calls int
}

// NewCatalogStub returns a stub serving n memes m0..m{n-1} whose catalog
// likes equal their index.
func NewCatalogStub(n int, category string) *CatalogStub {
	memes := make([]models.Meme, n)
	for i := range memes {
		memes[i] = models.Meme{
			ID:       fmt.Sprintf("m%d", i),
			Title:    fmt.Sprintf("Meme %d", i),
			URL:      fmt.Sprintf("https://i.example.com/m%d.jpg", i),
			Category: category,
			Likes:    i,
		}
	}
	return &CatalogStub{Memes: memes}
}

func (s *CatalogStub) FetchCatalog(_ context.Context) ([]models.Meme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.Memes, s.Err
}

// Calls reports how often the catalog was fetched.
func (s *CatalogStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// AssetStoreMock is a testify mock of the asset store.
type AssetStoreMock struct {
	mock.Mock
}

func (m *AssetStoreMock) Upload(ctx context.Context, image []byte, filename string) (string, error) {
	args := m.Called(ctx, image, filename)
	return args.String(0), args.Error(1)
}
