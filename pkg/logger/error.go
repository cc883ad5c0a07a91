package logger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mintmark-network/ip-gateway/pkg/logger/slogx"
)

// decorateErrorVerbose attaches the verbose (%+v) rendering of any error
// attribute to the record, surfacing cockroachdb/errors stack traces
// when debug logging is enabled.
func decorateErrorVerbose(_ context.Context, rec slog.Record) slog.Record {
	rec.Attrs(func(attr slog.Attr) bool {
		if attr.Key == slogx.ErrorKey || attr.Key == "err" {
			if err, ok := attr.Value.Any().(error); ok && err != nil {
				rec.AddAttrs(slog.String("error_verbose", fmt.Sprintf("%+v", err)))
			}
		}
		return true
	})
	return rec
}
