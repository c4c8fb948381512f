package logging

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces sensitive values.
const Redacted = "[REDACTED]"

var redactions = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)("password"\s*:\s*)"[^"]*"`), `${1}"` + Redacted + `"`},
	{regexp.MustCompile(`(?i)("token"\s*:\s*)"[^"]*"`), `${1}"` + Redacted + `"`},
	{regexp.MustCompile(`(?i)("key"\s*:\s*)"[^"]*"`), `${1}"` + Redacted + `"`},
	{regexp.MustCompile(`(?i)("secret"\s*:\s*)"[^"]*"`), `${1}"` + Redacted + `"`},
	{regexp.MustCompile(`(?i)(password=)[^\s&]+`), `${1}` + Redacted},
	{regexp.MustCompile(`(?i)(api[_-]?key=)[^\s&]+`), `${1}` + Redacted},
	{regexp.MustCompile(`(?i)(Bearer\s+)\S+`), `${1}` + Redacted},
}

var sensitiveKeys = []string{"password", "token", "secret", "key"}

// Redact masks credential-looking fragments in s.
func Redact(s string) string {
	for _, r := range redactions {
		s = r.pattern.ReplaceAllString(s, r.repl)
	}
	return s
}

func sensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range sensitiveKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

// RedactingHandler masks secrets in the message and attributes of every
// record before passing it to the wrapped handler.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		redacted := make([]slog.Attr, len(group))
		for i, ga := range group {
			redacted[i] = redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}
	if sensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, Redact(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, Redact(err.Error()))
		}
	}
	return a
}
