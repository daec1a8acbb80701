package midware

import (
	"context"
	"net/http"
)

// Runner is the actual middleware logic plugged into an [Adaptor].  It is
// the only method a concrete middleware author must provide.
type Runner interface {
	// Run processes req.  call carries the resolved next reference for this
	// invocation; Run forwards by calling [Call.Chain], or returns a response
	// of its own without forwarding.  call and req must not be nil.
	Run(ctx context.Context, call *Call, req *http.Request) (resp *http.Response, err error)
}

// RunnerFunc is a function that implements the [Runner] interface.
type RunnerFunc func(
	ctx context.Context,
	call *Call,
	req *http.Request,
) (resp *http.Response, err error)

// type check
var _ Runner = RunnerFunc(nil)

// Run implements the [Runner] interface for RunnerFunc.
func (f RunnerFunc) Run(
	ctx context.Context,
	call *Call,
	req *http.Request,
) (resp *http.Response, err error) {
	return f(ctx, call, req)
}

// Adaptor makes a single [Runner] invocable under every supported middleware
// calling convention.  Legacy single-pass and double-pass pipelines invoke it
// through [Adaptor.Invoke]; standardized pipelines invoke it through
// [Adaptor.Serve].  Both resolve the convention into a fresh [Call] and hand
// it to the Runner.
type Adaptor struct {
	runner Runner
}

// NewAdaptor returns an adaptor for r.  r must not be nil.
func NewAdaptor(r Runner) (a *Adaptor) {
	return &Adaptor{
		runner: r,
	}
}

// Invoke is the entry point shared by the legacy conventions.  Single-pass
// pipelines call it as Invoke(ctx, req, next); double-pass pipelines call it
// as Invoke(ctx, req, resp, next).  If respOrNext is a *[http.Response], it
// becomes the carried response and the first element of rest is resolved as
// the next reference; otherwise respOrNext itself is resolved as the next
// reference and no response is carried.  A respOrNext that supports none of
// the conventions is reported by [Call.Chain], not here.
func (a *Adaptor) Invoke(
	ctx context.Context,
	req *http.Request,
	respOrNext any,
	rest ...any,
) (resp *http.Response, err error) {
	call := &Call{}
	if carried, ok := respOrNext.(*http.Response); ok {
		call.carried = carried
		if len(rest) > 0 {
			call.next = resolveNext(rest[0])
		}
	} else {
		call.next = resolveNext(respOrNext)
	}

	return a.runner.Run(ctx, call, req)
}

// type check
var _ Middleware = (*Adaptor)(nil)

// Serve implements the [Middleware] interface for *Adaptor.  It is the
// standardized entry point: next is always resolved as a [Handler], even if
// it would also classify as one of the callable shapes, and no response is
// carried.
func (a *Adaptor) Serve(
	ctx context.Context,
	req *http.Request,
	next Handler,
) (resp *http.Response, err error) {
	call := &Call{
		next: nextRef{kind: refHandler, handler: next},
	}

	return a.runner.Run(ctx, call, req)
}
