package storage

import (
	"context"
)

// Entity types used as the first segment of object keys.
const (
	EntityUsers     = "users"
	EntityCustomers = "customers"
)

// Uploader stores an image for an entity and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, img *Image, entityType, entityID string) (string, error)
}
