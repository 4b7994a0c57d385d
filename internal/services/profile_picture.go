package services

import (
	"context"
	"strings"

	"crm-backend/internal/storage"
)

// uploadProfilePicture decodes a data URL and stores it for the entity.
func uploadProfilePicture(ctx context.Context, uploader storage.Uploader, entityType, entityID, dataURL string) (string, error) {
	if strings.TrimSpace(dataURL) == "" {
		return "", validationError("profilePicture is required", "profilePicture is required")
	}

	img, err := storage.ParseDataURL(dataURL)
	if err != nil {
		return "", imageError(err)
	}

	url, err := uploader.Upload(ctx, img, entityType, entityID)
	if err != nil {
		return "", uploadError(err)
	}
	return url, nil
}
