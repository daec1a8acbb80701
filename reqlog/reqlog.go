// Package reqlog provides a middleware that logs every request passing
// through the pipeline.
package reqlog

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/fcchbjm/midway/midware"
)

// Middleware implements [midware.Middleware] and logs forwarded requests and
// their outcomes.  The request, the response, and the error pass through
// untouched.
type Middleware struct {
	logger *slog.Logger
}

// New creates a new [*Middleware].  l must not be nil.
func New(l *slog.Logger) (mw *Middleware) {
	return &Middleware{
		logger: l,
	}
}

// type check
var _ midware.Middleware = (*Middleware)(nil)

// Serve implements the [midware.Middleware] interface for *Middleware.
func (mw *Middleware) Serve(
	ctx context.Context,
	req *http.Request,
	next midware.Handler,
) (resp *http.Response, err error) {
	mw.logger.DebugContext(ctx, "handling request", "method", req.Method, "url", req.URL)

	start := time.Now()
	resp, err = next.Handle(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		mw.logger.ErrorContext(
			ctx,
			"request failed",
			"method", req.Method,
			"url", req.URL,
			"elapsed", elapsed,
			slogutil.KeyError, err,
		)

		return nil, err
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	mw.logger.InfoContext(
		ctx,
		"request done",
		"method", req.Method,
		"url", req.URL,
		"status", status,
		"elapsed", elapsed,
	)

	return resp, nil
}
