package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"housepredict/internal/common/logger"
)

// Downloader fetches one file from a hub repository to a local destination.
type Downloader interface {
	DownloadFile(ctx context.Context, repoID, filename, dest string) error
}

// Resolver turns an artifact reference into a local file path. A non-empty
// local path is returned as-is; otherwise the file is downloaded from the
// hub repository into the cache directory, reusing a cached copy when one
// exists.
type Resolver struct {
	hub      Downloader
	repoID   string
	cacheDir string
	log      logger.Logger
}

func NewResolver(hub Downloader, repoID, cacheDir string, log logger.Logger) *Resolver {
	return &Resolver{hub: hub, repoID: repoID, cacheDir: cacheDir, log: log}
}

// Resolve returns the local path for an artifact.
func (r *Resolver) Resolve(ctx context.Context, localPath, filename string) (string, error) {
	if localPath != "" {
		return localPath, nil
	}
	if r.hub == nil || r.repoID == "" {
		return "", fmt.Errorf("resolver: no local path and no hub repository configured for %s", filename)
	}

	cached := filepath.Join(r.cacheDir, strings.ReplaceAll(r.repoID, "/", "--"), filename)
	if _, err := os.Stat(cached); err == nil {
		r.log.Debug("artifact cache hit", map[string]interface{}{
			"filename": filename,
			"path":     cached,
		})
		return cached, nil
	}

	if err := os.MkdirAll(filepath.Dir(cached), 0o755); err != nil {
		return "", fmt.Errorf("resolver: create cache dir: %w", err)
	}

	r.log.Info("downloading artifact from hub", map[string]interface{}{
		"repo":     r.repoID,
		"filename": filename,
	})
	if err := r.hub.DownloadFile(ctx, r.repoID, filename, cached); err != nil {
		return "", err
	}
	return cached, nil
}
