package server

import (
	"strings"

	"memeverse/internal/catalog"
	"memeverse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTrending returns the trending memes with local like state.
func (s *Server) GetTrending(c *fiber.Ctx) error {
	views, err := s.feed.Trending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// ExploreMemes filters, sorts and pages the catalog.
func (s *Server) ExploreMemes(c *fiber.Ctx) error {
	views, err := s.feed.Explore(c.UserContext(), catalog.Query{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		SortBy:   c.Query("sort"),
		Page:     c.QueryInt("page", 1),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"memes": views,
		"page":  max(c.QueryInt("page", 1), 1),
	})
}

func (s *Server) GetMeme(c *fiber.Ctx) error {
	view, err := s.feed.Lookup(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// GetLike returns the like record of a meme. fallback is the catalog count
// reported when the meme was never liked locally.
func (s *Server) GetLike(c *fiber.Ctx) error {
	fallback := c.QueryInt("fallback", 0)
	if fallback < 0 {
		return respondError(c, models.NewValidationError("fallback must not be negative"))
	}

	rec, err := s.ledger.Record(c.UserContext(), c.Params("id"), fallback)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}

// ToggleLike flips the like of a meme. The body may carry the meme as the
// client displays it; otherwise it is looked up in the catalog.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	var meme models.Meme
	if len(strings.TrimSpace(string(c.Body()))) > 0 {
		if err := c.BodyParser(&meme); err != nil {
			return respondError(c, models.NewValidationError("Invalid request body"))
		}
		if meme.ID == "" {
			meme.ID = id
		}
		if meme.ID != id {
			return respondError(c, models.NewValidationError("Meme id does not match the route"))
		}
	} else {
		found, err := s.feed.Meme(ctx, id)
		if err != nil {
			return respondError(c, err)
		}
		meme = found
	}

	rec, err := s.ledger.ToggleLike(ctx, meme)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}
