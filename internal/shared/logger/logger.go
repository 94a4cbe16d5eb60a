package logger

import (
	"io"
	"log/slog"
	"os"
)

// Level returns the minimum level logged in env.
// local and dev log debug so the timestamp plugin's write traces show up.
func Level(env string) slog.Level {
	switch env {
	case "local", "dev", "development":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New builds the handler for env: JSON in production, text elsewhere
func New(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(env)}

	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup configures the global slog logger based on environment
func Setup(env string) {
	slog.SetDefault(New(env, os.Stdout))
	slog.Info("Logger 초기화", "env", env, "level", Level(env).String())
}

// Component returns the default logger tagged with a component name
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
