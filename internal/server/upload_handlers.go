package server

import (
	"memeverse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadMeme forwards a multipart "file" with its "caption" to the asset store.
func (s *Server) UploadMeme(c *fiber.Ctx) error {
	content, filename, err := readFormFile(c, "file")
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.uploads.Upload(c.UserContext(), service.UploadInput{
		Filename: filename,
		Caption:  c.FormValue("caption"),
		Content:  content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
