package imgray

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/imgray/internal/gpu"
	"github.com/gogpu/imgray/internal/parallel"
)

// discard drops every record. Enabled reports false, so attributes are
// never formatted while logging is off.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var (
	silent  = slog.New(discard{})
	current atomic.Pointer[slog.Logger]
)

func init() { current.Store(silent) }

// SetLogger routes diagnostics from imgray, the host worker pool and the
// device dispatcher to l. imgray is silent until SetLogger is called; nil
// makes it silent again. SetLogger may be called concurrently with
// conversions.
//
// Levels:
//   - [slog.LevelDebug]: pool size, tile count, launch configuration, kernel compiles
//   - [slog.LevelInfo]: device opened, image converted
//   - [slog.LevelWarn]: run cancelled, fallback adapter, device open failure
//
// Example:
//
//	imgray.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
	parallel.SetLogger(l)
	gpu.SetLogger(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return current.Load()
}
