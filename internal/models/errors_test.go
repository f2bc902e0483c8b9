package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewCollaboratorError("catalog", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "catalog unavailable: connection refused", err.Error())
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("add comment: %w", NewValidationError("Comment text is required"))

	assert.True(t, IsValidationError(err))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"not found", NewNotFoundError("Meme", "m1"), fiber.StatusNotFound},
		{"conflict", NewConflictError("memeLikes", 3), fiber.StatusConflict},
		{"collaborator", NewCollaboratorError("catalog", errors.New("x")), fiber.StatusBadGateway},
		{"upload", NewUploadError(errors.New("x")), fiber.StatusBadGateway},
		{"internal", NewInternalError(errors.New("x")), fiber.StatusInternalServerError},
		{"plain", errors.New("x"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	assert.Equal(t, "MemeVerse User", p.Name)
	assert.Equal(t, "I love creating and sharing memes!", p.Bio)
	assert.Nil(t, p.Avatar)
}
