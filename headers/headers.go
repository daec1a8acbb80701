// Package headers provides a middleware that normalizes request headers
// before the request is forwarded down the pipeline.
package headers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/fcchbjm/midway/internal/httputil"
	"github.com/fcchbjm/midway/midware"
	"golang.org/x/net/http/httpguts"
)

// Config is the configuration for [Middleware].
type Config struct {
	// Logger is the logger.  It must not be nil.
	Logger *slog.Logger

	// Set is the set of header fields forced onto every forwarded request.
	// Names and values must be valid HTTP field names and values.
	Set map[string]string

	// Remove is the list of header fields removed from every forwarded
	// request.  Names must be valid HTTP field names.
	Remove []string

	// StampForwardedFor appends the client address to the X-Forwarded-For
	// field of forwarded requests.
	StampForwardedFor bool
}

// Middleware implements [midware.Middleware] and rewrites request headers.
type Middleware struct {
	logger  *slog.Logger
	set     map[string]string
	remove  []string
	doStamp bool
}

// New creates a new [*Middleware].  conf must not be nil and its field names
// and values must be valid.
func New(conf *Config) (mw *Middleware, err error) {
	for name, value := range conf.Set {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("set: invalid header name %q", name)
		} else if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("set: invalid value for header %q", name)
		}
	}

	for _, name := range conf.Remove {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("remove: invalid header name %q", name)
		}
	}

	return &Middleware{
		logger:  conf.Logger,
		set:     conf.Set,
		remove:  conf.Remove,
		doStamp: conf.StampForwardedFor,
	}, nil
}

// type check
var _ midware.Middleware = (*Middleware)(nil)

// Serve implements the [midware.Middleware] interface for *Middleware.  The
// request itself is modified, which is how net/http middlewares commonly
// treat server-side requests; callers that need the original must clone it
// beforehand.
func (mw *Middleware) Serve(
	ctx context.Context,
	req *http.Request,
	next midware.Handler,
) (resp *http.Response, err error) {
	if req.Header == nil {
		req.Header = http.Header{}
	}

	for _, name := range mw.remove {
		req.Header.Del(name)
	}

	for name, value := range mw.set {
		req.Header.Set(name, value)
	}

	if mw.doStamp {
		mw.stampForwardedFor(ctx, req)
	}

	return next.Handle(ctx, req)
}

// stampForwardedFor appends the client address of req to its X-Forwarded-For
// field.
func (mw *Middleware) stampForwardedFor(ctx context.Context, req *http.Request) {
	addr, err := httputil.ClientAddr(req)
	if err != nil {
		mw.logger.DebugContext(ctx, "no client addr to stamp", "remote_addr", req.RemoteAddr)

		return
	}

	req.Header.Add(httphdr.XForwardedFor, addr.String())
}
