package fonts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	apperrors "duach/internal/errors"
)

// downloadFiles are the font file names fetched from the configured base
// URL. DejaVu Sans is open-license and covers the Hebrew block.
var downloadFiles = []string{"DejaVuSans.ttf", "DejaVuSans-Bold.ttf"}

// fromDownload is the last resolution tier: fetch the font family into the
// first writable candidate directory. Each weight gets a single bounded
// attempt; existing files are reused without a network call.
func (r *Resolver) fromDownload(ctx context.Context) (Asset, bool) {
	if r.cfg.DisableDownload {
		return Asset{}, false
	}

	dir, err := r.writableFontDir()
	if err != nil {
		r.logger.WarnContext(ctx, "no writable directory for font download",
			slog.Any("error", err))
		return Asset{}, false
	}

	paths := make([]string, len(downloadFiles))
	for i, name := range downloadFiles {
		target := filepath.Join(dir, name)
		if fileReadable(target) {
			paths[i] = target
			continue
		}
		if err := r.downloadFont(ctx, name, target); err != nil {
			r.logger.WarnContext(ctx, "font download failed",
				slog.String("file", name), slog.Any("error", err))
			// A missing bold weight is tolerable; a missing regular is not.
			if i == 0 {
				return Asset{}, false
			}
			continue
		}
		paths[i] = target
	}

	return assetFromPair(fontPair{regular: paths[0], bold: paths[1]}, TierDownload)
}

// writableFontDir returns the first candidate directory that can be created
// and written to. The configured download directory is preferred; the user
// cache and the system temp directory are fallbacks.
func (r *Resolver) writableFontDir() (string, error) {
	var candidates []string
	if r.cfg.DownloadDir != "" {
		candidates = append(candidates, r.cfg.DownloadDir)
	}
	if cache, err := os.UserCacheDir(); err == nil {
		candidates = append(candidates, filepath.Join(cache, "duach", "fonts"))
	}
	candidates = append(candidates, filepath.Join(os.TempDir(), "duach-fonts"))

	var lastErr error
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			lastErr = err
			continue
		}
		marker := filepath.Join(dir, ".writecheck")
		if err := os.WriteFile(marker, []byte{}, 0o644); err != nil {
			lastErr = err
			continue
		}
		os.Remove(marker)
		return dir, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate directories")
	}
	return "", lastErr
}

// downloadFont fetches one font file. The attempt is bounded by the
// configured timeout and by the resolver's rate limiter; it is never
// retried here — failure falls through to degraded mode.
func (r *Resolver) downloadFont(ctx context.Context, name, target string) error {
	if !r.limiter.Allow() {
		return apperrors.New(apperrors.ErrTypeFont, apperrors.ScopeResource,
			"font download rate limit reached", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.DownloadTimeout)
	defer cancel()

	url := r.cfg.DownloadBaseURL + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	client := &http.Client{Timeout: r.cfg.DownloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.New(apperrors.ErrTypeFont, apperrors.ScopeResource,
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, url), nil)
	}

	// Write to a temp file first so a partial download never becomes a
	// readable font path.
	tmp, err := os.CreateTemp(filepath.Dir(target), name+".part-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write font file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close font file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move font into place: %w", err)
	}

	r.logger.Info("downloaded font", slog.String("file", name), slog.String("path", target))
	return nil
}
