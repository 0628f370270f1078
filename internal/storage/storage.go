// Package storage stores uploaded attachments in an object store and maps
// between object keys and the public URLs persisted on entities.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrForeignURL     = errors.New("url does not belong to this store")
)

// ObjectStore uploads and deletes attachment objects.
type ObjectStore interface {
	// Upload stores the content under a fresh key in folder and returns its URL.
	Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error)

	// Delete removes the object a URL returned by Upload points to.
	Delete(ctx context.Context, url string) error
}

// NewKey builds the object key for an upload: <folder>/<uuid><ext>.
func NewKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return strings.Trim(folder, "/") + "/" + uuid.NewString() + ext
}

// URLForKey joins a base URL and an object key.
func URLForKey(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}

// KeyFromURL inverts URLForKey.
func KeyFromURL(baseURL, url string) (string, error) {
	prefix := strings.TrimRight(baseURL, "/") + "/"
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return strings.TrimPrefix(url, prefix), nil
}

// DeleteAll deletes every URL and returns the first error encountered.
func DeleteAll(ctx context.Context, store ObjectStore, urls []string) error {
	var firstErr error
	for _, u := range urls {
		if err := store.Delete(ctx, u); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
