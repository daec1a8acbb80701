// Package upstream provides the terminal elements of middleware pipelines:
// a handler that executes requests against their origin through an
// [http.RoundTripper], and the reverse bridge that exposes a composed
// pipeline as an [http.RoundTripper].
package upstream

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fcchbjm/midway/midware"
)

// Config is the configuration for [Upstream].
type Config struct {
	// Logger is the logger.  It must not be nil.
	Logger *slog.Logger

	// Transport executes the requests.  If nil, [http.DefaultTransport] is
	// used.
	Transport http.RoundTripper
}

// Upstream is a [midware.Handler] that forwards every request to its origin.
type Upstream struct {
	logger    *slog.Logger
	transport http.RoundTripper
}

// New creates a new [*Upstream].  conf must not be nil.
func New(conf *Config) (u *Upstream) {
	transport := conf.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Upstream{
		logger:    conf.Logger,
		transport: transport,
	}
}

// type check
var _ midware.Handler = (*Upstream)(nil)

// Handle implements the [midware.Handler] interface for *Upstream.  ctx
// replaces the context of req for the duration of the exchange.
func (u *Upstream) Handle(
	ctx context.Context,
	req *http.Request,
) (resp *http.Response, err error) {
	if req.Context() != ctx {
		req = req.WithContext(ctx)
	}

	// RequestURI is only set on server-side requests and must be empty in
	// client ones.
	if req.RequestURI != "" {
		req = req.Clone(ctx)
		req.RequestURI = ""
	}

	u.logger.DebugContext(ctx, "exchanging", "method", req.Method, "url", req.URL)

	return u.transport.RoundTrip(req)
}

// AsRoundTripper returns an [http.RoundTripper] backed by h, so that a
// composed pipeline can serve as the transport of an [http.Client].  h must
// not be nil.
func AsRoundTripper(h midware.Handler) (rt http.RoundTripper) {
	return &roundTripper{
		handler: h,
	}
}

// roundTripper is an [http.RoundTripper] backed by a pipeline handler.
type roundTripper struct {
	handler midware.Handler
}

// type check
var _ http.RoundTripper = (*roundTripper)(nil)

// RoundTrip implements the [http.RoundTripper] interface for *roundTripper.
func (rt *roundTripper) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	return rt.handler.Handle(req.Context(), req)
}
