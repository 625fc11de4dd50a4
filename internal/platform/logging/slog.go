package logging

import (
	"context"
	"log/slog"

	"go.uber.org/zap/zapcore"
)

// Slog returns a *slog.Logger backed by this logger's zap core. Services
// written against log/slog share the process log stream and the mirror.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(&slogBridge{logger: NewNop()})
	}
	return slog.New(&slogBridge{logger: l})
}

type slogBridge struct {
	logger *Logger
	prefix string
	attrs  []any
}

func (h *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Zap().Core().Enabled(slogToZapLevel(level))
}

func (h *slogBridge) Handle(ctx context.Context, record slog.Record) error {
	args := make([]any, 0, len(h.attrs)+record.NumAttrs()*2)
	args = append(args, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		args = appendAttr(args, h.prefix, attr)
		return true
	})
	h.logger.write(ctx, slogToZapLevel(record.Level), record.Message, args...)
	return nil
}

func (h *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	flat := append([]any(nil), h.attrs...)
	for _, attr := range attrs {
		flat = appendAttr(flat, h.prefix, attr)
	}
	return &slogBridge{logger: h.logger, prefix: h.prefix, attrs: flat}
}

func (h *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogBridge{logger: h.logger, prefix: h.prefix + name + ".", attrs: h.attrs}
}

func appendAttr(args []any, prefix string, attr slog.Attr) []any {
	if attr.Value.Kind() == slog.KindGroup {
		for _, nested := range attr.Value.Group() {
			args = appendAttr(args, prefix+attr.Key+".", nested)
		}
		return args
	}
	if attr.Key == "" {
		return args
	}
	return append(args, prefix+attr.Key, attr.Value.Any())
}

func slogToZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
