package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore writes uploads below a directory served at <baseURL>/public.
type LocalStore struct {
	root    string
	baseURL string
	now     func() time.Time
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{
		root:    filepath.Clean(root),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *LocalStore) Upload(ctx context.Context, img *Image, entityType, entityID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := ObjectKey(entityType, entityID, img.Ext, s.now())
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] [ERROR] failed to create directory %s: %v", dir, err)
		return "", err
	}
	if err := os.WriteFile(fullPath, img.Data, 0o644); err != nil {
		log.Printf("[UPLOAD] [ERROR] failed to write %s: %v", fullPath, err)
		return "", err
	}

	log.Printf("[UPLOAD] [INFO] stored %s (%d bytes)", fullPath, len(img.Data))
	return s.baseURL + "/public/" + key, nil
}

// resolve maps key to a path inside root, refusing anything that escapes it.
func (s *LocalStore) resolve(key string) (string, error) {
	cleanRel := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(key)), "/")
	if cleanRel == "" {
		return "", fmt.Errorf("refusing empty upload path")
	}

	target := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(cleanRel)))
	if !strings.HasPrefix(target, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("refusing path outside upload root: %s", key)
	}
	return target, nil
}
