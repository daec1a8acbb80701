package midware

import (
	"context"
	"net/http"
)

// Call is the state of a single middleware invocation: the resolved next
// reference and, in double-pass pipelines, the response carried along the
// chain.  A new Call is created by the [Adaptor] entry points for every
// invocation, so no state leaks between invocations and a single [Adaptor]
// may serve concurrent requests.
type Call struct {
	next    nextRef
	carried *http.Response
}

// Chain forwards req to the next element of the pipeline using the
// convention resolved at the entry point: the [Handler] capability first,
// then [Processor], then the double-pass callable with the carried response,
// then the plain single-pass callable.  Calling Chain more than once forwards
// more than once; that is the middleware author's responsibility.
func (c *Call) Chain(ctx context.Context, req *http.Request) (resp *http.Response, err error) {
	switch n := c.next; n.kind {
	case refHandler:
		return n.handler.Handle(ctx, req)
	case refProcessor:
		return n.processor.Process(ctx, req)
	case refDoublePass:
		return n.double(ctx, req, c.carried)
	case refSinglePass:
		return n.single(ctx, req)
	default:
		if n.err != nil {
			return nil, n.err
		}

		return nil, ErrNoNext
	}
}

// Response returns the response carried by a double-pass invocation, or nil
// if the invocation carried none.  Most middlewares have no reason to look at
// it; it exists for the rare ones that must inspect the double-pass response
// object directly.
func (c *Call) Response() (resp *http.Response) {
	return c.carried
}
