// Package midware lets a single middleware implementation be invoked under
// the HTTP middleware calling conventions in common use: single-pass callable
// chains, double-pass request/response chains, and the standardized
// delegate-based convention.  The calling convention is resolved at the entry
// point and normalized into a [Call], and [Call.Chain] forwards control to the
// next element using whichever convention that element expects.
//
// The package forwards already-constructed [http.Request] and [http.Response]
// values between cooperating handlers.  It is not a router and not a server,
// and it performs no I/O of its own.
package midware

import (
	"context"
	"net/http"
)

// Handler is the standardized delegate of a middleware pipeline.  It is the
// shape of both terminal handlers and resolved next references.
type Handler interface {
	// Handle processes req and returns the response for it.  req must not be
	// nil.
	Handle(ctx context.Context, req *http.Request) (resp *http.Response, err error)
}

// HandlerFunc is a function that implements the [Handler] interface.
type HandlerFunc func(ctx context.Context, req *http.Request) (resp *http.Response, err error)

// type check
var _ Handler = HandlerFunc(nil)

// Handle implements the [Handler] interface for HandlerFunc.
func (f HandlerFunc) Handle(
	ctx context.Context,
	req *http.Request,
) (resp *http.Response, err error) {
	return f(ctx, req)
}

// Processor is the request-handling capability exposed by delegates of older
// standardized pipelines.  When a next reference exposes both [Handler] and
// Processor, Handler wins.
type Processor interface {
	// Process processes req and returns the response for it.  req must not be
	// nil.
	Process(ctx context.Context, req *http.Request) (resp *http.Response, err error)
}

// SinglePassFunc is the plain next callable of single-pass pipelines.
type SinglePassFunc func(ctx context.Context, req *http.Request) (resp *http.Response, err error)

// DoublePassFunc is the next callable of double-pass pipelines.  carried is
// the response value passed along the chain by such pipelines.
type DoublePassFunc func(
	ctx context.Context,
	req *http.Request,
	carried *http.Response,
) (resp *http.Response, err error)

// Middleware is the standardized middleware calling convention of this
// module.  [Adaptor] implements it, and so does any middleware built on top
// of this package.
type Middleware interface {
	// Serve processes req and either returns a response of its own or
	// forwards the request to next.  req and next must not be nil.
	Serve(ctx context.Context, req *http.Request, next Handler) (resp *http.Response, err error)
}

// MiddlewareFunc is a function that implements the [Middleware] interface.
type MiddlewareFunc func(
	ctx context.Context,
	req *http.Request,
	next Handler,
) (resp *http.Response, err error)

// type check
var _ Middleware = MiddlewareFunc(nil)

// Serve implements the [Middleware] interface for MiddlewareFunc.
func (f MiddlewareFunc) Serve(
	ctx context.Context,
	req *http.Request,
	next Handler,
) (resp *http.Response, err error) {
	return f(ctx, req, next)
}
