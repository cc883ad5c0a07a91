package logger

import (
	"context"
	"log/slog"
)

// recordDecorator inspects a record on its way to the underlying handler
// and may return an augmented copy.
type recordDecorator func(context.Context, slog.Record) slog.Record

type decoratedHandler struct {
	slog.Handler
	decorators []recordDecorator
}

func newDecoratedHandler(h slog.Handler, decorators ...recordDecorator) *decoratedHandler {
	return &decoratedHandler{
		Handler:    h,
		decorators: decorators,
	}
}

func (d *decoratedHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, decorate := range d.decorators {
		rec = decorate(ctx, rec)
	}
	return d.Handler.Handle(ctx, rec)
}

func (d *decoratedHandler) WithGroup(group string) slog.Handler {
	return &decoratedHandler{
		Handler:    d.Handler.WithGroup(group),
		decorators: d.decorators,
	}
}

func (d *decoratedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &decoratedHandler{
		Handler:    d.Handler.WithAttrs(attrs),
		decorators: d.decorators,
	}
}
