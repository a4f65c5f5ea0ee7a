package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"psi-tracker/internal/config"

	"gopkg.in/lumberjack.v2"
)

type ctxKey struct{}

// New builds the JSON logger described by cfg. Stdout is used when neither
// console nor file output is configured.
func New(cfg config.LogConfig) *slog.Logger {
	out := []io.Writer{}
	if cfg.Console {
		out = append(out, os.Stdout)
	}
	if cfg.File != "" {
		out = append(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}
	if len(out) == 0 {
		out = append(out, os.Stdout)
	}
	return newLogger(io.MultiWriter(out...), cfg.Level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(h).With("service", "psi-tracker")
}

func Init(cfg config.LogConfig) {
	slog.SetDefault(New(cfg))
	Info("logger initialized", "level", parseLevel(cfg.Level).String(), "file", cfg.File)
}

func Info(msg string, args ...any) { slog.Info(msg, args...) }

// With returns a copy of ctx whose logger carries args on every line.
// Middleware uses it to stamp request and user ids.
func With(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, Ctx(ctx).With(args...))
}

// Ctx returns the request scoped logger, or the default one.
func Ctx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// parseLevel accepts slog level names in any case; anything else is info.
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
