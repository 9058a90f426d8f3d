package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// maxCascadeSize caps a downloaded cascade; pigo's facefinder is about 240KB
const maxCascadeSize = 8 << 20

// LoadCascade reads the cascade at path. When the file does not exist and
// url is set, the cascade is downloaded once and stored at path.
func LoadCascade(ctx context.Context, client *http.Client, path, url string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}
	if url == "" {
		return nil, fmt.Errorf("cascade file %s not found and no cascade_url set", path)
	}

	log.Info().Str("url", url).Str("path", path).Msg("Cascade file missing, downloading")
	data, err = downloadCascade(ctx, client, url)
	if err != nil {
		return nil, err
	}

	if err := writeFileAtomic(path, data); err != nil {
		// still usable for this run
		log.Warn().Err(err).Str("path", path).Msg("Failed to cache cascade file")
	}
	return data, nil
}

func downloadCascade(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cascade request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cascade: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download cascade: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCascadeSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade: %w", err)
	}
	if len(data) > maxCascadeSize {
		return nil, fmt.Errorf("cascade exceeds %d bytes", maxCascadeSize)
	}
	if len(data) == 0 {
		return nil, errors.New("downloaded cascade is empty")
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cascade-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
