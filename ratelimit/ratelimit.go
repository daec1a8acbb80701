// Package ratelimit provides a rate limiting middleware for HTTP middleware
// pipelines.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/netutil"
	rate "github.com/beefsack/go-rate"
	"github.com/fcchbjm/midway/httpmsg"
	"github.com/fcchbjm/midway/internal/httputil"
	"github.com/fcchbjm/midway/midware"
	gocache "github.com/patrickmn/go-cache"
)

// middleware implements [midware.Middleware] with rate limiting
// functionality.
type middleware struct {
	buckets   *gocache.Cache
	logger    *slog.Logger
	responses httpmsg.ResponseConstructor

	// mu protects buckets.
	mu *sync.Mutex

	allowlistAddrs netutil.SliceSubnetSet
	rps            uint
	subnetLenIPv4  uint
	subnetLenIPv6  uint
}

// NewMiddleware returns a middleware with rate limiting functionality.  c
// must be valid.
func NewMiddleware(c *Config) (m midware.Middleware) {
	return &middleware{
		logger:         c.Logger,
		responses:      c.Responses,
		mu:             &sync.Mutex{},
		allowlistAddrs: c.AllowlistAddrs,
		rps:            c.RPS,
		subnetLenIPv4:  c.SubnetLenIPv4,
		subnetLenIPv6:  c.SubnetLenIPv6,
	}
}

// type check
var _ midware.Middleware = (*middleware)(nil)

// Serve implements the [midware.Middleware] interface for *middleware.  If
// the client is rate limited, it responds with 429 Too Many Requests without
// forwarding.  Requests with an unparseable client address are forwarded
// as-is, since rate limiting keys on the address.
func (m *middleware) Serve(
	ctx context.Context,
	req *http.Request,
	next midware.Handler,
) (resp *http.Response, err error) {
	addr, err := httputil.ClientAddr(req)
	if err != nil {
		m.logger.DebugContext(ctx, "getting client addr", slogutil.KeyError, err)

		return next.Handle(ctx, req)
	}

	if m.isRatelimited(addr) {
		m.logger.DebugContext(ctx, "ratelimited", "addr", addr)

		return m.responses.NewStatusResponse(req, http.StatusTooManyRequests), nil
	}

	return next.Handle(ctx, req)
}

// limiterForSubnet returns a rate limiter for the specified subnet key.
func (m *middleware) limiterForSubnet(key string) (rl any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.buckets == nil {
		m.buckets = gocache.New(time.Hour, time.Hour)
	}

	rl, ok := m.buckets.Get(key)
	if !ok {
		rl = rate.New(int(m.rps), time.Second)
		m.buckets.Set(key, rl, time.Hour)
	}

	return rl
}

// isRatelimited checks if the client with the specified address should be
// rate limited.  Clients are grouped by subnet.
func (m *middleware) isRatelimited(addr netip.Addr) (ok bool) {
	addr = addr.Unmap()
	if m.allowlistAddrs.Contains(addr) {
		return false
	}

	var pref netip.Prefix
	if addr.Is4() {
		pref = netip.PrefixFrom(addr, int(m.subnetLenIPv4))
	} else {
		pref = netip.PrefixFrom(addr, int(m.subnetLenIPv6))
	}
	pref = pref.Masked()

	key := pref.Addr().String()
	value := m.limiterForSubnet(key)
	rl, ok := value.(*rate.RateLimiter)
	if !ok {
		panic(fmt.Sprintf("invalid value found in ratelimit cache: bad type: %T", value))
	}

	allow, _ := rl.Try()

	return !allow
}
