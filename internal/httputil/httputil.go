// Package httputil contains common HTTP helpers used by the middlewares.
// It intentionally shadows the name of the standard library package, just
// like the stdlib-shadowing packages in golibs; import it with an alias
// where both are needed.
package httputil

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientAddr returns the IP address of the client that sent req, parsed from
// [http.Request.RemoteAddr].  It supports both the "ip:port" form set by
// net/http servers and a bare IP set by some pipelines.
func ClientAddr(req *http.Request) (addr netip.Addr, err error) {
	remoteAddr := req.RemoteAddr

	ap, err := netip.ParseAddrPort(remoteAddr)
	if err == nil {
		return ap.Addr().Unmap(), nil
	}

	addr, addrErr := netip.ParseAddr(remoteAddr)
	if addrErr != nil {
		return netip.Addr{}, fmt.Errorf("parsing remote addr %q: %w", remoteAddr, addrErr)
	}

	return addr.Unmap(), nil
}

// RequestHost returns the normalized target hostname of req: the URL host if
// the request carries an absolute URL, the Host header otherwise, lowercased
// and with the port stripped.
func RequestHost(req *http.Request) (host string) {
	if req.URL != nil && req.URL.Host != "" {
		host = req.URL.Hostname()
	} else {
		host = req.Host
		if hostOnly, _, splitErr := net.SplitHostPort(host); splitErr == nil {
			host = hostOnly
		}
	}

	return strings.ToLower(strings.TrimSuffix(host, "."))
}
