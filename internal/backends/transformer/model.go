package transformer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
)

type downloadFunc func(modelID, dir string) (string, error)

func downloadModel(modelID, dir string) (string, error) {
	return hugot.DownloadModel(modelID, dir, hugot.NewDownloadOptions())
}

// resolveModelDir returns a local directory for modelID: the id itself when it
// is a directory, its cache entry when present, otherwise a fresh download
// into cacheDir.
func resolveModelDir(modelID, cacheDir string, download downloadFunc) (string, error) {
	if modelID == "" {
		return "", errors.New("model id is empty")
	}
	if isDir(modelID) {
		return modelID, nil
	}

	cached := filepath.Join(cacheDir, strings.ReplaceAll(modelID, "/", "_"))
	if isDir(cached) {
		slog.Info("[TransformerBackend] Using cached model", slog.String("path", cached))
		return cached, nil
	}

	if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create model cache directory: %w", err)
	}

	slog.Info("[TransformerBackend] Model not found, downloading...",
		slog.String("model", modelID),
		slog.String("cache_dir", cacheDir))
	path, err := download(modelID, cacheDir)
	if err != nil {
		return "", fmt.Errorf("failed to download model %s: %w", modelID, err)
	}
	slog.Info("[TransformerBackend] Model downloaded successfully", slog.String("path", path))
	return path, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
