// Package hostblock provides a middleware that refuses requests to blocked
// hosts without forwarding them.
package hostblock

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/AdguardTeam/golibs/hostsfile"
	"github.com/fcchbjm/midway/httpmsg"
	"github.com/fcchbjm/midway/internal/httputil"
	"github.com/fcchbjm/midway/midware"
)

// Config is the configuration for [Middleware].
type Config struct {
	// Logger is the logger.  It must not be nil.
	Logger *slog.Logger

	// Responses constructs the responses sent for blocked requests.  It must
	// not be nil.
	Responses httpmsg.ResponseConstructor

	// Hosts is the index of hosts-file records.  A request is blocked if its
	// target host maps only to unspecified addresses, which is how
	// adblock-style hosts files mark blocked names.  If nil, only
	// BlockedHosts is consulted.
	Hosts hostsfile.Storage

	// BlockedHosts is the list of explicitly blocked hostnames, compared
	// case-insensitively.
	BlockedHosts []string
}

// Middleware implements [midware.Middleware] and refuses requests to blocked
// hosts with 403 Forbidden.
type Middleware struct {
	logger    *slog.Logger
	responses httpmsg.ResponseConstructor
	hosts     hostsfile.Storage
	blocked   []string
}

// New creates a new [*Middleware].  conf must not be nil.
func New(conf *Config) (mw *Middleware) {
	hosts := conf.Hosts
	if hosts == nil {
		hosts = emptyStorage{}
	}

	blocked := make([]string, 0, len(conf.BlockedHosts))
	for _, h := range conf.BlockedHosts {
		blocked = append(blocked, strings.ToLower(h))
	}

	return &Middleware{
		logger:    conf.Logger,
		responses: conf.Responses,
		hosts:     hosts,
		blocked:   blocked,
	}
}

// type check
var _ midware.Middleware = (*Middleware)(nil)

// Serve implements the [midware.Middleware] interface for *Middleware.
func (mw *Middleware) Serve(
	ctx context.Context,
	req *http.Request,
	next midware.Handler,
) (resp *http.Response, err error) {
	host := httputil.RequestHost(req)
	if mw.isBlocked(host) {
		mw.logger.DebugContext(ctx, "blocking request", "host", host)

		return mw.responses.NewStatusResponse(req, http.StatusForbidden), nil
	}

	return next.Handle(ctx, req)
}

// isBlocked checks whether requests to host should be refused.  host must be
// lowercased.
func (mw *Middleware) isBlocked(host string) (ok bool) {
	if slices.Contains(mw.blocked, host) {
		return true
	}

	addrs := mw.hosts.ByName(host)
	if len(addrs) == 0 {
		return false
	}

	for _, addr := range addrs {
		if !addr.IsUnspecified() {
			return false
		}
	}

	return true
}
