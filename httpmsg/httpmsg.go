// Package httpmsg constructs the HTTP responses that middlewares produce
// themselves, without forwarding the request.
package httpmsg

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/httphdr"
)

// ResponseConstructor builds responses for requests that a middleware
// answers without forwarding.  Implementations must set the request on the
// returned response and must return a response with a non-nil body.
type ResponseConstructor interface {
	// NewStatusResponse returns an empty response to req with the given
	// status code.  req must not be nil.
	NewStatusResponse(req *http.Request, code int) (resp *http.Response)

	// NewTextResponse returns a plain-text response to req with the given
	// status code and body.  req must not be nil.
	NewTextResponse(req *http.Request, code int, body string) (resp *http.Response)
}

// DefaultConstructor is the default [ResponseConstructor] implementation.
type DefaultConstructor struct{}

// type check
var _ ResponseConstructor = DefaultConstructor{}

// NewStatusResponse implements the [ResponseConstructor] interface for
// DefaultConstructor.
func (DefaultConstructor) NewStatusResponse(req *http.Request, code int) (resp *http.Response) {
	resp = newResponse(req, code)
	resp.Body = http.NoBody

	return resp
}

// NewTextResponse implements the [ResponseConstructor] interface for
// DefaultConstructor.
func (DefaultConstructor) NewTextResponse(
	req *http.Request,
	code int,
	body string,
) (resp *http.Response) {
	resp = newResponse(req, code)
	resp.Header.Set(httphdr.ContentType, "text/plain; charset=utf-8")
	resp.Header.Set(httphdr.ContentLength, strconv.Itoa(len(body)))
	resp.ContentLength = int64(len(body))
	resp.Body = io.NopCloser(strings.NewReader(body))

	return resp
}

// newResponse returns a response to req with the given status code and an
// empty header.  The protocol version is copied from the request so that the
// response is valid within the pipeline that produced the request.
func newResponse(req *http.Request, code int) (resp *http.Response) {
	return &http.Response{
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode: code,
		Proto:      req.Proto,
		ProtoMajor: req.ProtoMajor,
		ProtoMinor: req.ProtoMinor,
		Header:     http.Header{},
		Request:    req,
	}
}
