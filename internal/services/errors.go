package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"crm-backend/internal/database"
	"crm-backend/internal/storage"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUnsupportedMediaType
	KindServiceUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnsupportedMediaType:
		return "unsupported media type"
	case KindServiceUnavailable:
		return "service unavailable"
	}
	return "unknown"
}

// Error is the failure type returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, or zero when err is not a service error.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return 0
}

func validationError(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// storeError classifies a record store failure. Anything that is not a
// known sentinel is treated as the store being unavailable.
func storeError(err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return notFound(notFoundMessage)
	case errors.Is(err, database.ErrConflict):
		return &Error{Kind: KindConflict, Message: "Record already exists.", Err: err}
	case errors.Is(err, context.Canceled):
		return err
	}
	return &Error{Kind: KindServiceUnavailable, Message: "Record store is unavailable.", Err: err}
}

func imageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedMediaType):
		return &Error{Kind: KindUnsupportedMediaType, Message: "Unsupported image type. Use jpeg, jpg, png or gif.", Err: err}
	case errors.Is(err, storage.ErrImageTooLarge):
		return &Error{Kind: KindValidation, Message: storage.ErrImageTooLarge.Error(), Err: err}
	}
	return &Error{Kind: KindValidation, Message: "Invalid image format.", Err: err}
}

func uploadError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Kind: KindServiceUnavailable, Message: "Image upload failed.", Err: err}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct validation and reports each failing field as
// "<field> is required" or "<field> is invalid".
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return validationError("Invalid input.", err.Error())
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := lowerCamel(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", field))
		}
	}
	return validationError(strings.Join(details, ", "), details...)
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
