package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/storage"
)

var (
	ErrUpstream     = errors.New("object storage request failed")
	ErrTooManyFiles = fmt.Errorf("at most %d files can be uploaded at once", constants.MaxUploadFiles)
)

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

type attachments struct {
	store storage.ObjectStore
}

// upload stores files one after another. On failure the files already stored
// are removed again.
func (a attachments) upload(ctx context.Context, folder string, files []Upload) ([]string, error) {
	if len(files) > constants.MaxUploadFiles {
		return nil, ErrTooManyFiles
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := a.store.Upload(ctx, folder, f.Filename, f.Content)
		if err != nil {
			a.discard(ctx, urls)
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// discard deletes stored objects best-effort.
func (a attachments) discard(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := storage.DeleteAll(ctx, a.store, urls); err != nil {
		log.Printf("Failed to delete stored objects: %v", err)
	}
}

// without returns list minus the entries in remove, and the removed entries
// that were actually present.
func without(list, remove []string) (kept, removed []string) {
	drop := make(map[string]bool, len(remove))
	for _, r := range remove {
		drop[r] = true
	}
	kept = make([]string, 0, len(list))
	for _, item := range list {
		if drop[item] {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}
