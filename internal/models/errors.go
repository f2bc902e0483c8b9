package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeStorageCorruption = "STORAGE_CORRUPTION"
	CodeConflict          = "CONFLICT"
	CodeCollaborator      = "COLLABORATOR_ERROR"
	CodeUpload            = "UPLOAD_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewStorageCorruptionError reports a stored value that no longer decodes into its shape.
func NewStorageCorruptionError(key string, err error) *AppError {
	return &AppError{
		Code:    CodeStorageCorruption,
		Message: fmt.Sprintf("stored value for %q is corrupted", key),
		Err:     err,
	}
}

// NewConflictError reports a versioned write that kept losing to another writer.
func NewConflictError(key string, attempts int) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: fmt.Sprintf("concurrent update of %q, gave up after %d attempts", key, attempts),
	}
}

// NewCollaboratorError wraps a failure of an external collaborator such as the catalog provider.
func NewCollaboratorError(collaborator string, err error) *AppError {
	return &AppError{
		Code:    CodeCollaborator,
		Message: collaborator + " unavailable",
		Err:     err,
	}
}

// NewUploadError wraps an asset store failure.
func NewUploadError(err error) *AppError {
	return &AppError{
		Code:    CodeUpload,
		Message: "Failed to upload meme",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	return HasCode(err, CodeValidation)
}

// StatusFor maps an error to the HTTP status the API answers with.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	case CodeCollaborator, CodeUpload:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
