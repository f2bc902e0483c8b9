package server

import (
	"errors"
	"io"
	"log/slog"
	"strconv"

	"memeverse/internal/models"
	"memeverse/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// respondError answers with the status mapped from err. Errors that are not
// AppErrors are logged and reported as internal errors.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		observability.Logger.ErrorContext(c.UserContext(), "unhandled error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		err = models.NewInternalError(err)
	}
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// parseCommentID reads the commentId route parameter.
func parseCommentID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("commentId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid comment ID")
	}
	return id, nil
}

// readFormFile returns the bytes and filename of a multipart field.
func readFormFile(c *fiber.Ctx, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", models.NewValidationError("No file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", models.NewValidationError("Could not read uploaded file")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", models.NewValidationError("Could not read uploaded file")
	}
	return content, fh.Filename, nil
}
