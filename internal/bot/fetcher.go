package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxPhotoBytes caps downloads at the Bot API file size limit
const maxPhotoBytes = 20 << 20

type fileLinker interface {
	GetFileDirectURL(fileID string) (string, error)
}

// Fetcher downloads photo bytes from Telegram file storage
type Fetcher struct {
	api    fileLinker
	client *http.Client
}

// NewFetcher creates a new fetcher
func NewFetcher(api fileLinker) *Fetcher {
	return &Fetcher{
		api:    api,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch resolves the file id and downloads its content
func (f *Fetcher) Fetch(ctx context.Context, photoID string) ([]byte, error) {
	url, err := f.api.GetFileDirectURL(photoID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxPhotoBytes)
	}
	return data, nil
}
