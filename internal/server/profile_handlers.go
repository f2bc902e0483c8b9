package server

import (
	"memeverse/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) GetProfile(c *fiber.Ctx) error {
	p, err := s.profiles.Get(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// UpdateProfile saves name and bio and keeps the current avatar.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	current, err := s.profiles.Get(ctx)
	if err != nil {
		return respondError(c, err)
	}

	saved, err := s.profiles.Save(ctx, models.UserProfile{
		Name:   req.Name,
		Bio:    req.Bio,
		Avatar: current.Avatar,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}

// UploadAvatar replaces the avatar with the multipart field "avatar".
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	content, _, err := readFormFile(c, "avatar")
	if err != nil {
		return respondError(c, err)
	}

	p, err := s.profiles.SetAvatar(c.UserContext(), content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (s *Server) DeleteAvatar(c *fiber.Ctx) error {
	p, err := s.profiles.ClearAvatar(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// GetLikedMemes returns the liked-meme index with live like counts.
func (s *Server) GetLikedMemes(c *fiber.Ctx) error {
	ctx := c.UserContext()

	memes, err := s.index.Snapshot(ctx)
	if err != nil {
		return respondError(c, err)
	}
	views := make([]models.MemeView, len(memes))
	for i, m := range memes {
		count, err := s.ledger.LikeCount(ctx, m.ID, m.Likes)
		if err != nil {
			return respondError(c, err)
		}
		m.Likes = count
		views[i] = models.MemeView{Meme: m, Liked: true}
	}
	return c.JSON(views)
}
