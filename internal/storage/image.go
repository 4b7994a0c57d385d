package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const MaxImageSize = 5 << 20

var (
	ErrInvalidImage         = errors.New("invalid image format")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrImageTooLarge        = errors.New("image file too large (max 5MB)")
)

// allowedImageTypes maps a data-URL subtype to the content type its bytes
// must sniff as.
var allowedImageTypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// Image is a decoded upload ready to be stored.
type Image struct {
	ContentType string
	Ext         string
	Data        []byte
}

// ParseDataURL decodes data:<mime>;base64,<payload>.
func ParseDataURL(raw string) (*Image, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return nil, ErrInvalidImage
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok || payload == "" {
		return nil, ErrInvalidImage
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, ErrInvalidImage
	}

	kind, subtype, ok := strings.Cut(strings.ToLower(mediaType), "/")
	if !ok || kind != "image" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
	contentType, ok := allowedImageTypes[subtype]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	if detected := mimetype.Detect(data); !detected.Is(contentType) {
		return nil, fmt.Errorf("%w: payload is %s, declared %s", ErrUnsupportedMediaType, detected.String(), mediaType)
	}

	return &Image{ContentType: contentType, Ext: subtype, Data: data}, nil
}

// ObjectKey builds <entityType>/<entityID>/profile-<unixMillis>.<ext>.
func ObjectKey(entityType, entityID, ext string, at time.Time) string {
	return fmt.Sprintf("%s/%s/profile-%d.%s", entityType, entityID, at.UnixMilli(), ext)
}
