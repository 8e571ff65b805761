package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the process logger: JSON to stdout, debug in dev, trace ids attached
// when a span is active on the record's context.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			// tokens and passwords never reach the log sink
			switch a.Key {
			case "password", "token", "authorization", "secret":
				return slog.String(a.Key, "[redacted]")
			}
			return a
		},
	})

	return slog.New(withTraceIDs(handler)).With(slog.String("service", "storefront"))
}
