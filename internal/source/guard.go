package source

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Guard wraps a Source so that no failure escapes the adapter boundary.
// Errors, timeouts, and panics become an empty result plus a log entry
// carrying the source identity and query for diagnosis.
type Guard struct {
	inner   Source
	timeout time.Duration
	logger  *zap.Logger
}

// NewGuard wraps inner with a per-call timeout and failure containment.
// A zero timeout disables the deadline; a nil logger discards diagnostics.
func NewGuard(inner Source, timeout time.Duration, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{inner: inner, timeout: timeout, logger: logger}
}

// Name returns the wrapped source's name.
func (g *Guard) Name() string {
	return g.inner.Name()
}

// Search never returns an error: any failure in the wrapped source is logged
// and converted into an empty result.
func (g *Guard) Search(ctx context.Context, query, country string, limit, offset int) (res *Result, err error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("source panic contained",
				zap.String("source", g.inner.Name()),
				zap.String("query", query),
				zap.Any("panic", r),
			)
			res, err = &Result{}, nil
		}
	}()

	inner, innerErr := g.inner.Search(ctx, query, country, limit, offset)
	if innerErr != nil {
		g.logger.Warn("source search failed",
			zap.String("source", g.inner.Name()),
			zap.String("query", query),
			zap.Error(innerErr),
		)
		return &Result{}, nil
	}
	if inner == nil {
		inner = &Result{}
	}
	return inner, nil
}
