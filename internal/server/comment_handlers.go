package server

import (
	"memeverse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns the comments of a meme in insertion order.
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.comments.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment appends a comment to a meme.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	created, err := s.comments.Add(c.UserContext(), c.Params("id"), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteComment removes a comment. Unknown ids succeed.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseCommentID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.comments.Remove(c.UserContext(), c.Params("id"), commentID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
