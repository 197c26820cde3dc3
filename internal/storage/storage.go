// Package storage stores item pictures and returns the URL they are served from.
package storage

import (
	"context"
	"strings"

	"github.com/Kapsk2801/Lost-Found/internal/config"
	"github.com/pkg/errors"
)

// A Store persists binary objects.
type Store interface {
	// Put stores the object under the given key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object stored under the given key.
	Delete(ctx context.Context, key string) error
	// Key returns the key of the object served at the given URL, or an empty string.
	Key(url string) string
}

// New returns the Store selected by the configuration.
func New(ctx context.Context, cfg config.Storage) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.Local.Path, LocalURLPrefix)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, errors.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// ItemImageKey returns the object key of the given item's picture.
func ItemImageKey(itemID string) string {
	return "items/" + itemID + ".jpg"
}

func keyFromURL(prefix, url string) string {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}
