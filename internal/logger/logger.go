package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ComponentKey is rendered as a bracketed prefix by the console handler.
const ComponentKey = "component"

type Config struct {
	Level  string
	Format string // "text", "json", "console"
	Output io.Writer
}

var (
	once sync.Once
	lg   *slog.Logger
)

// Init installs the process-wide logger. Only the first call has an effect.
func Init(cfg Config) {
	once.Do(func() {
		lg = New(cfg)
		slog.SetDefault(lg)
	})
}

// New builds a logger without touching the process default.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	level := parseLevel(cfg.Level)
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: level})
	default:
		handler = &consoleHandler{w: cfg.Output, mu: &sync.Mutex{}, level: level}
	}
	return slog.New(handler)
}

func L() *slog.Logger {
	if lg == nil {
		Init(Config{Level: "debug", Format: "console"})
	}
	return lg
}

// Component returns the process logger tagged with a component name.
func Component(name string) *slog.Logger {
	return L().With(ComponentKey, name)
}

// Discard is a logger that drops everything, for tests and quiet tools.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ValidLevel(levelStr string) bool {
	switch levelStr {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func ValidFormat(format string) bool {
	switch format {
	case "console", "text", "json":
		return true
	}
	return false
}

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// consoleHandler outputs human-friendly log lines:
//
//	12:00:00 INFO  [locomotion] Stand-up blocked  clearance=0.05
type consoleHandler struct {
	w         io.Writer
	mu        *sync.Mutex
	level     slog.Level
	attrs     []slog.Attr
	group     string
	component string
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.TimeOnly)) // "15:04:05"
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	if h.component != "" {
		b.WriteString("[" + h.component + "] ")
	}
	b.WriteString(r.Message)

	// pre-attached attrs (from WithAttrs)
	for _, a := range h.attrs {
		b.WriteString(formatAttr(h.group, a))
	}
	// per-record attrs
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(formatAttr(h.group, a))
		return true
	})
	b.WriteByte('\n')

	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		if a.Key == ComponentKey && h.group == "" {
			next.component = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	next := h.clone()
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return next
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		w:         h.w,
		mu:        h.mu,
		level:     h.level,
		attrs:     append([]slog.Attr{}, h.attrs...),
		group:     h.group,
		component: h.component,
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatAttr(group string, a slog.Attr) string {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	return fmt.Sprintf("  %s=%v", key, a.Value)
}
