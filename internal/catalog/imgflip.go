package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"memeverse/internal/models"
)

// DefaultTitle replaces a blank meme name.
const DefaultTitle = "Cool Meme"

// ImgflipProvider reads the public imgflip /get_memes endpoint.
type ImgflipProvider struct {
	baseURL string
	client  *http.Client
}

type imgflipResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
	Data         struct {
		Memes []imgflipMeme `json:"memes"`
	} `json:"data"`
}

type imgflipMeme struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func NewImgflipProvider(baseURL string, client *http.Client) *ImgflipProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &ImgflipProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *ImgflipProvider) FetchCatalog(ctx context.Context) ([]models.Meme, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/get_memes", nil)
	if err != nil {
		return nil, collaboratorFailure(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, collaboratorFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, collaboratorFailure(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body imgflipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, collaboratorFailure(fmt.Errorf("decode response: %w", err))
	}
	if !body.Success {
		msg := body.ErrorMessage
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, collaboratorFailure(errors.New(msg))
	}

	memes := make([]models.Meme, 0, len(body.Data.Memes))
	for _, m := range body.Data.Memes {
		if m.ID == "" {
			continue
		}
		title := m.Name
		if strings.TrimSpace(title) == "" {
			title = DefaultTitle
		}
		memes = append(memes, models.Meme{ID: m.ID, Title: title, URL: m.URL})
	}
	return memes, nil
}
