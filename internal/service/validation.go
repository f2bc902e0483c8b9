package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"memeverse/internal/models"
)

// MaxMemeIDLength keeps comments-{id} inside the 255 character record key.
const MaxMemeIDLength = 200

func validateMemeID(memeID string) error {
	if strings.TrimSpace(memeID) == "" {
		return models.NewValidationError("Meme id is required")
	}
	if utf8.RuneCountInString(memeID) > MaxMemeIDLength {
		return models.NewValidationError(fmt.Sprintf("Meme id too long (max %d characters)", MaxMemeIDLength))
	}
	return nil
}
