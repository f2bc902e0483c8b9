package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard computes the leaderboard; limit defaults to LEADERBOARD_SIZE.
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit > 100 {
		limit = 100
	}

	board, err := s.leaderboard.Compute(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(board)
}
