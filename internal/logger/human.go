package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
)

// maxInlineAttrs bounds how many attributes are printed on one line.
const maxInlineAttrs = 6

// HumanHandlerOptions configures the human-readable log handler.
type HumanHandlerOptions struct {
	// Level is the minimum log level to output
	Level slog.Level
	// UseColors enables ANSI color codes
	UseColors bool
}

// HumanHandler is a slog handler that prints one readable line per record:
//
//	15:04:05 ✓ execution completed operation=filter records_read=10
type HumanHandler struct {
	opts   HumanHandlerOptions
	mu     *sync.Mutex
	writer io.Writer
	attrs  []slog.Attr
	prefix string
}

// NewHumanHandler creates a new human-readable log handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: slog.LevelInfo}
	}
	return &HumanHandler{opts: *opts, mu: &sync.Mutex{}, writer: w}
}

// Enabled reports whether the handler emits records at level.
func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle writes r as a single line.
func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteByte(' ')
	sb.WriteString(h.symbol(r.Level, r.Message))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)

	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, formatAttr("", a))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, formatAttr(h.prefix, a))
		return true
	})
	if len(parts) > 0 {
		shown := parts
		if len(shown) > maxInlineAttrs {
			shown = shown[:maxInlineAttrs]
		}
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(shown, " "))
		if extra := len(parts) - len(shown); extra > 0 {
			fmt.Fprintf(&sb, " (+%d more)", extra)
		}
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

// WithAttrs returns a handler that also prints attrs.
func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &clone
}

// WithGroup returns a handler that prefixes subsequent keys with name.
func (h *HumanHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *HumanHandler) symbol(level slog.Level, message string) string {
	var sym, color string
	switch {
	case level >= slog.LevelError:
		sym, color = "✗", colorRed
	case level >= slog.LevelWarn:
		sym, color = "⚠", colorYellow
	case level >= slog.LevelInfo && isSuccessMessage(message):
		sym, color = "✓", colorGreen
	case level >= slog.LevelInfo:
		sym, color = "ℹ", colorCyan
	default:
		sym, color = "·", colorReset
	}
	if h.opts.UseColors {
		return color + sym + colorReset
	}
	return sym
}

func isSuccessMessage(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "completed") || strings.Contains(m, "succeeded")
}

func formatAttr(prefix string, a slog.Attr) string {
	key := prefix + a.Key
	switch v := a.Value.Resolve().Any().(type) {
	case time.Duration:
		return key + "=" + formatDuration(v)
	case float64:
		return fmt.Sprintf("%s=%.2f", key, v)
	default:
		return fmt.Sprintf("%s=%v", key, v)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}

// FormatMetricsHuman summarizes metrics in one sentence.
func FormatMetricsHuman(metrics ExecutionMetrics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Read %d records, wrote %d in %s",
		metrics.RecordsRead, metrics.RecordsWritten, formatDuration(metrics.TotalDuration))
	if metrics.RecordsPerSecond > 0 {
		fmt.Fprintf(&sb, " (%.1f records/sec)", metrics.RecordsPerSecond)
	}
	return sb.String()
}
