// Package respcache provides a caching middleware that serves repeated
// requests from an in-memory response cache.
package respcache

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/bluele/gcache"
	"github.com/fcchbjm/midway/midware"
)

// Config is the configuration for the caching middleware.
type Config struct {
	// Logger is the logger.  It must not be nil.
	Logger *slog.Logger

	// Size is the maximum number of cached responses.  It must be positive.
	Size int

	// TTL is how long a cached response stays valid.  It must be positive.
	TTL time.Duration
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	return errors.Join(
		validate.NotNil("Logger", c.Logger),
		validate.Positive("Size", c.Size),
		validate.Positive("TTL", c.TTL),
	)
}

// middleware implements [midware.Middleware] with response caching.
type middleware struct {
	cache  gcache.Cache
	logger *slog.Logger
	ttl    time.Duration
}

// NewMiddleware returns a caching middleware.  c must be valid.
func NewMiddleware(c *Config) (m midware.Middleware) {
	return &middleware{
		cache:  gcache.New(c.Size).LRU().Build(),
		logger: c.Logger,
		ttl:    c.TTL,
	}
}

// type check
var _ midware.Middleware = (*middleware)(nil)

// Serve implements the [midware.Middleware] interface for *middleware.
// Cacheable responses are stored in serialized form, and every hit is revived
// into a response with a fresh body, so the cached copy is never consumed.
func (m *middleware) Serve(
	ctx context.Context,
	req *http.Request,
	next midware.Handler,
) (resp *http.Response, err error) {
	if !isCacheableRequest(req) {
		return next.Handle(ctx, req)
	}

	key := req.Method + " " + req.URL.String()

	resp, err = m.fromCache(key, req)
	if err == nil {
		m.logger.DebugContext(ctx, "serving cached response", "key", key)

		return resp, nil
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		m.logger.ErrorContext(ctx, "getting cached response", slogutil.KeyError, err)
	}

	resp, err = next.Handle(ctx, req)
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return nil, err
	}

	if isCacheableResponse(resp) {
		m.store(ctx, key, resp)
	}

	return resp, nil
}

// fromCache retrieves and revives the cached response for key.  The returned
// error is [gcache.KeyNotFoundError] on a cache miss.
func (m *middleware) fromCache(
	key string,
	req *http.Request,
) (resp *http.Response, err error) {
	v, err := m.cache.Get(key)
	if err != nil {
		// Don't wrap the error since the caller inspects it.
		return nil, err
	}

	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid value in response cache: bad type %T", v)
	}

	return http.ReadResponse(bufio.NewReader(bytes.NewReader(b)), req)
}

// store serializes resp and puts it into the cache.  The body of resp is
// drained and restored by the serialization.
func (m *middleware) store(ctx context.Context, key string, resp *http.Response) {
	b, err := httputil.DumpResponse(resp, true)
	if err != nil {
		m.logger.ErrorContext(ctx, "serializing response", slogutil.KeyError, err)

		return
	}

	err = m.cache.SetWithExpire(key, b, m.ttl)
	if err != nil {
		m.logger.ErrorContext(ctx, "caching response", slogutil.KeyError, err)
	}
}

// isCacheableRequest checks whether req may be answered from the cache.
func isCacheableRequest(req *http.Request) (ok bool) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return false
	}

	return !hasNoStore(req.Header)
}

// isCacheableResponse checks whether resp may be put into the cache.
func isCacheableResponse(resp *http.Response) (ok bool) {
	if resp == nil || resp.StatusCode != http.StatusOK {
		return false
	}

	return !hasNoStore(resp.Header)
}

// hasNoStore checks whether the Cache-Control header value of hdr forbids
// storing.
func hasNoStore(hdr http.Header) (ok bool) {
	for _, v := range hdr.Values(httphdr.CacheControl) {
		if strings.Contains(strings.ToLower(v), "no-store") {
			return true
		}
	}

	return false
}
