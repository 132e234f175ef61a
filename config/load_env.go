package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"
)

const defaultEnvDir = "config/envs"

// LoadEnv loads the first env file found for env, trying
// $SENTIMENT_ENV_DIR/.env.<env> and then ./.env. Variables already present in
// the process environment win. It returns the file it loaded, or "".
func LoadEnv(env string) string {
	dir := os.Getenv("SENTIMENT_ENV_DIR")
	if dir == "" {
		dir = defaultEnvDir
	}

	for _, path := range []string{filepath.Join(dir, ".env."+env), ".env"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := gotenv.Load(path); err != nil {
			slog.Warn("[Config] Failed to parse env file",
				slog.String("file", path),
				slog.String("error", err.Error()))
			continue
		}
		slog.Debug("[Config] Loaded env file", slog.String("file", path))
		return path
	}

	slog.Warn("[Config] No .env file found, using OS environment",
		slog.String("env", env))
	return ""
}
