package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memeverse/internal/catalog"
	"memeverse/internal/config"
	"memeverse/internal/models"
	"memeverse/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "0",
		Env:                   "test",
		StoreDriver:           config.DriverSQLite,
		StorePath:             ":memory:",
		StoreMaxWriteAttempts: 3,
		UploadMaxSizeMB:       1,
		LeaderboardSize:       10,
	}
}

func newTestServer(t *testing.T, provider catalog.Provider, assets *testutil.AssetStoreMock) (*Server, *fiber.App) {
	t.Helper()
	store := testutil.NewSQLiteStore(t)

	var srv *Server
	if assets != nil {
		srv = NewServerWithDeps(testConfig(), store, provider, assets, nil)
	} else {
		srv = NewServerWithDeps(testConfig(), store, provider, nil, nil)
	}
	require.NoError(t, srv.Bootstrap(context.Background()))
	return srv, srv.NewApp()
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func multipartBody(t *testing.T, field, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if content != nil {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{}, nil)

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "healthy", body["status"])

	resp = doJSON(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestToggleLike_FromCatalog(t *testing.T) {
	_, app := newTestServer(t, testutil.NewCatalogStub(3, catalog.CategoryClassic), nil)

	resp := doJSON(t, app, http.MethodPost, "/api/memes/m2/like", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[models.LikeRecord](t, resp)
	assert.True(t, rec.Liked)
	assert.Equal(t, 3, rec.Count)

	resp = doJSON(t, app, http.MethodGet, "/api/memes/m2/like?fallback=2", nil)
	rec = decode[models.LikeRecord](t, resp)
	assert.True(t, rec.Liked)
	assert.Equal(t, 3, rec.Count)

	resp = doJSON(t, app, http.MethodGet, "/api/profile/liked", nil)
	liked := decode[[]models.MemeView](t, resp)
	require.Len(t, liked, 1)
	assert.Equal(t, "m2", liked[0].ID)
	assert.Equal(t, 3, liked[0].Likes)
	assert.True(t, liked[0].Liked)
}

func TestToggleLike_WithBody(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{}, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/memes/x9/like", models.Meme{Title: "Off catalog", Likes: 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[models.LikeRecord](t, resp)
	assert.Equal(t, 8, rec.Count)

	resp = doJSON(t, app, http.MethodPost, "/api/memes/x9/like", models.Meme{ID: "other"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleLike_UnknownMeme(t *testing.T) {
	_, app := newTestServer(t, testutil.NewCatalogStub(1, catalog.CategoryClassic), nil)

	resp := doJSON(t, app, http.MethodPost, "/api/memes/nope/like", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeNotFound, body.Code)
}

func TestTrending_CatalogDown(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{Err: models.NewCollaboratorError("catalog", assert.AnError)}, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/memes/trending", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestExplore(t *testing.T) {
	_, app := newTestServer(t, testutil.NewCatalogStub(20, catalog.CategoryClassic), nil)

	resp := doJSON(t, app, http.MethodGet, "/api/memes?sort=likes&page=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Memes []models.MemeView `json:"memes"`
	}](t, resp)
	require.Len(t, body.Memes, catalog.PageSize)
	assert.Equal(t, "m19", body.Memes[0].ID)

	resp = doJSON(t, app, http.MethodGet, "/api/memes?page=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode[struct {
		Memes []models.MemeView `json:"memes"`
	}](t, resp)
	assert.Len(t, body.Memes, 20)

	resp = doJSON(t, app, http.MethodGet, "/api/memes?category=nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMeme(t *testing.T) {
	_, app := newTestServer(t, testutil.NewCatalogStub(2, catalog.CategoryClassic), nil)

	resp := doJSON(t, app, http.MethodGet, "/api/memes/m1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[models.MemeView](t, resp)
	assert.Equal(t, "Meme 1", view.Title)
	assert.False(t, view.Liked)

	resp = doJSON(t, app, http.MethodGet, "/api/memes/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComments(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{}, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/memes/m1/comments", map[string]string{"text": "first!"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Comment](t, resp)
	assert.Equal(t, "first!", created.Text)

	resp = doJSON(t, app, http.MethodPost, "/api/memes/m1/comments", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/memes/m1/comments", nil)
	list := decode[[]models.Comment](t, resp)
	require.Len(t, list, 1)

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/memes/m1/comments/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/memes/m1/comments/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/memes/m1/comments", nil)
	assert.Empty(t, decode[[]models.Comment](t, resp))
}

func TestProfile(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{}, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/profile", nil)
	p := decode[models.UserProfile](t, resp)
	assert.Equal(t, models.DefaultProfile().Name, p.Name)

	body, contentType := multipartBody(t, "avatar", "me.png", testutil.PNG(t, 40, 20), nil)
	req := httptest.NewRequest(http.MethodPut, "/api/profile/avatar", body)
	req.Header.Set("Content-Type", contentType)
	avatarResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = avatarResp.Body.Close() }()
	require.Equal(t, http.StatusOK, avatarResp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/profile", map[string]string{"name": "  Dana ", "bio": "memes"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p = decode[models.UserProfile](t, resp)
	assert.Equal(t, "Dana", p.Name)
	assert.NotEmpty(t, p.Avatar, "saving name and bio keeps the avatar")

	resp = doJSON(t, app, http.MethodPut, "/api/profile", map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/profile/avatar", nil)
	p = decode[models.UserProfile](t, resp)
	assert.Empty(t, p.Avatar)
	assert.Equal(t, "Dana", p.Name)
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{}, nil)

	body, contentType := multipartBody(t, "avatar", "notes.txt", []byte("hello"), nil)
	req := httptest.NewRequest(http.MethodPut, "/api/profile/avatar", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLeaderboard(t *testing.T) {
	_, app := newTestServer(t, testutil.NewCatalogStub(5, catalog.CategoryClassic), nil)

	for _, id := range []string{"m1", "m4"} {
		resp := doJSON(t, app, http.MethodPost, "/api/memes/"+id+"/like", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	board := decode[models.Leaderboard](t, resp)
	require.Len(t, board.Memes, 1)
	assert.Equal(t, "m4", board.Memes[0].Meme.ID)
	assert.Equal(t, 1, board.Memes[0].Rank)
}

func TestUploadMeme(t *testing.T) {
	assets := &testutil.AssetStoreMock{}
	assets.On("Upload", mock.Anything, mock.Anything, "cat.png").
		Return("https://res.example.com/cat.png", nil).Once()
	_, app := newTestServer(t, &testutil.CatalogStub{}, assets)

	body, contentType := multipartBody(t, "file", "cat.png", testutil.PNG(t, 4, 4), map[string]string{"caption": " so true "})
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	result := decode[models.UploadResult](t, resp)
	assert.Equal(t, "https://res.example.com/cat.png", result.URL)
	assert.Equal(t, "so true", result.Caption)
	assets.AssertExpectations(t)
}

func TestUploadMeme_Disabled(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{}, nil)

	body, contentType := multipartBody(t, "file", "cat.png", testutil.PNG(t, 4, 4), map[string]string{"caption": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestUploadMeme_MissingFile(t *testing.T) {
	_, app := newTestServer(t, &testutil.CatalogStub{}, &testutil.AssetStoreMock{})

	body, contentType := multipartBody(t, "file", "", nil, map[string]string{"caption": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRespondError_WrapsPlainErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, fmt.Errorf("boom"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(raw), models.CodeInternal))
}
