// Package mwtest contains fakes and helpers for testing middleware
// pipelines.
package mwtest

import (
	"context"
	"net/http"

	"github.com/fcchbjm/midway/httpmsg"
	"github.com/fcchbjm/midway/midware"
)

// FakeHandler is a fake [midware.Handler] implementation for tests.
type FakeHandler struct {
	OnHandle func(ctx context.Context, req *http.Request) (resp *http.Response, err error)
}

// type check
var _ midware.Handler = (*FakeHandler)(nil)

// Handle implements the [midware.Handler] interface for *FakeHandler.
func (h *FakeHandler) Handle(
	ctx context.Context,
	req *http.Request,
) (resp *http.Response, err error) {
	return h.OnHandle(ctx, req)
}

// FakeProcessor is a fake [midware.Processor] implementation for tests.
type FakeProcessor struct {
	OnProcess func(ctx context.Context, req *http.Request) (resp *http.Response, err error)
}

// type check
var _ midware.Processor = (*FakeProcessor)(nil)

// Process implements the [midware.Processor] interface for *FakeProcessor.
func (p *FakeProcessor) Process(
	ctx context.Context,
	req *http.Request,
) (resp *http.Response, err error) {
	return p.OnProcess(ctx, req)
}

// FakeConstructor is a fake [httpmsg.ResponseConstructor] implementation for
// tests.
type FakeConstructor struct {
	OnNewStatusResponse func(req *http.Request, code int) (resp *http.Response)
	OnNewTextResponse   func(req *http.Request, code int, body string) (resp *http.Response)
}

// type check
var _ httpmsg.ResponseConstructor = (*FakeConstructor)(nil)

// NewStatusResponse implements the [httpmsg.ResponseConstructor] interface
// for *FakeConstructor.
func (c *FakeConstructor) NewStatusResponse(
	req *http.Request,
	code int,
) (resp *http.Response) {
	return c.OnNewStatusResponse(req, code)
}

// NewTextResponse implements the [httpmsg.ResponseConstructor] interface for
// *FakeConstructor.
func (c *FakeConstructor) NewTextResponse(
	req *http.Request,
	code int,
	body string,
) (resp *http.Response) {
	return c.OnNewTextResponse(req, code, body)
}

// NewResponse is a helper that returns a minimal response to req with the
// given status code and an empty body.
func NewResponse(req *http.Request, code int) (resp *http.Response) {
	return httpmsg.DefaultConstructor{}.NewStatusResponse(req, code)
}
