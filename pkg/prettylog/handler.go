// Package prettylog is a compact console handler for log/slog, used during
// development instead of the default text handler.
package prettylog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
)

const timeFormat = "15:04:05.000"

const (
	reset    = "\033[0m"
	cyan     = 36
	yellow   = 33
	white    = 97
	darkGray = 90
	lightRed = 91
)

func colorize(code int, s string) string {
	return "\033[" + strconv.Itoa(code) + "m" + s + reset
}

type Handler struct {
	level slog.Level
	attrs []slog.Attr
	group string
	mu    *sync.Mutex
	out   io.Writer
}

func NewHandler(level slog.Level) *Handler {
	return &Handler{
		level: level,
		mu:    &sync.Mutex{},
		out:   os.Stderr,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "."
	}
	clone.group += name
	return &clone
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(colorize(darkGray, r.Time.Format(timeFormat)))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(colorize(white, r.Message))

	write := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		b.WriteByte(' ')
		b.WriteString(colorize(darkGray, key+"="+formatValue(a.Value)))
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func levelTag(level slog.Level) string {
	tag := level.String() + ":"
	switch {
	case level >= slog.LevelError:
		return colorize(lightRed, tag)
	case level >= slog.LevelWarn:
		return colorize(yellow, tag)
	case level >= slog.LevelInfo:
		return colorize(cyan, tag)
	default:
		return colorize(darkGray, tag)
	}
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return strconv.Quote(v.String())
	}
	if err, ok := v.Any().(error); ok {
		return strconv.Quote(err.Error())
	}
	return fmt.Sprintf("%v", v.Any())
}
