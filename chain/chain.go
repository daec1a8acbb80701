// Package chain composes standardized middlewares into handler pipelines and
// lifts whole legacy middlewares into the standardized convention.
package chain

import (
	"context"
	"net/http"

	"github.com/fcchbjm/midway/midware"
)

// New composes mws around the terminal handler h.  The first middleware is
// the outermost wrapper and sees the request first.  h must not be nil.
func New(h midware.Handler, mws ...midware.Middleware) (wrapped midware.Handler) {
	wrapped = h
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = &link{
			mw:   mws[i],
			next: wrapped,
		}
	}

	return wrapped
}

// link is one element of a composed pipeline.
type link struct {
	mw   midware.Middleware
	next midware.Handler
}

// type check
var _ midware.Handler = (*link)(nil)

// Handle implements the [midware.Handler] interface for *link.
func (l *link) Handle(ctx context.Context, req *http.Request) (resp *http.Response, err error) {
	return l.mw.Serve(ctx, req, l.next)
}

// SinglePassMiddlewareFunc is the shape of a whole single-pass legacy
// middleware: it receives the request and the next callable of its pipeline.
type SinglePassMiddlewareFunc func(
	ctx context.Context,
	req *http.Request,
	next midware.SinglePassFunc,
) (resp *http.Response, err error)

// SinglePass lifts a single-pass legacy middleware into the standardized
// convention, the mirror of what [midware.Adaptor.Invoke] does for
// standardized middlewares joining legacy pipelines.
func SinglePass(f SinglePassMiddlewareFunc) (mw midware.Middleware) {
	return midware.MiddlewareFunc(func(
		ctx context.Context,
		req *http.Request,
		next midware.Handler,
	) (resp *http.Response, err error) {
		return f(ctx, req, next.Handle)
	})
}

// DoublePassMiddlewareFunc is the shape of a whole double-pass legacy
// middleware: it receives the request, the response carried along its
// pipeline, and the next callable.
type DoublePassMiddlewareFunc func(
	ctx context.Context,
	req *http.Request,
	carried *http.Response,
	next midware.DoublePassFunc,
) (resp *http.Response, err error)

// DoublePass lifts a double-pass legacy middleware into the standardized
// convention.  newCarried seeds the response value the middleware expects to
// be carried along its pipeline; it must not be nil.  The carried value is
// dropped on forwarding, since standardized delegates do not accept one.
func DoublePass(
	f DoublePassMiddlewareFunc,
	newCarried func(req *http.Request) (carried *http.Response),
) (mw midware.Middleware) {
	return midware.MiddlewareFunc(func(
		ctx context.Context,
		req *http.Request,
		next midware.Handler,
	) (resp *http.Response, err error) {
		fwd := func(
			ctx context.Context,
			req *http.Request,
			_ *http.Response,
		) (resp *http.Response, err error) {
			return next.Handle(ctx, req)
		}

		return f(ctx, req, newCarried(req), fwd)
	})
}
