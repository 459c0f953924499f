package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanoutHandler duplicates each record to every sink that accepts its level.
// Records are cloned before delivery since handlers may mutate shared state.
type fanoutHandler struct {
	sinks []slog.Handler
}

// newFanoutHandler builds a fanout over the given sinks, skipping nils.
func newFanoutHandler(sinks ...slog.Handler) *fanoutHandler {
	f := &fanoutHandler{sinks: make([]slog.Handler, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range f.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every enabled sink. Delivery continues past
// a failing sink; the errors are joined into the return value.
func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	for _, s := range f.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		err = errors.Join(err, s.Handle(ctx, r.Clone()))
	}
	return err
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	return f.derive(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (f *fanoutHandler) derive(transform func(slog.Handler) slog.Handler) slog.Handler {
	next := make([]slog.Handler, len(f.sinks))
	for i, s := range f.sinks {
		next[i] = transform(s)
	}
	return &fanoutHandler{sinks: next}
}
