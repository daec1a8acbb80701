package ratelimit

import (
	"fmt"
	"log/slog"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/netutil"
	"github.com/AdguardTeam/golibs/validate"
	"github.com/fcchbjm/midway/httpmsg"
)

// Config is the configuration for the ratelimit middleware.
type Config struct {
	// Logger is used for logging in the ratelimit middleware.  It must not be
	// nil.
	Logger *slog.Logger

	// Responses constructs the responses sent to rate-limited clients.  It
	// must not be nil.
	Responses httpmsg.ResponseConstructor

	// AllowlistAddrs is a set of client subnets excluded from rate limiting.
	AllowlistAddrs netutil.SliceSubnetSet

	// RPS is the maximum number of requests per second from a given client
	// subnet.  It must be positive.
	RPS uint

	// SubnetLenIPv4 is a subnet length for IPv4 addresses used for grouping
	// clients.
	SubnetLenIPv4 uint

	// SubnetLenIPv6 is a subnet length for IPv6 addresses used for grouping
	// clients.
	SubnetLenIPv6 uint
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	var errRespConstructor error
	if c.Responses == nil {
		errRespConstructor = fmt.Errorf("Responses: %w", errors.ErrNoValue)
	}

	return errors.Join(
		validate.Positive("RPS", c.RPS),
		validate.NotNil("Logger", c.Logger),
		errRespConstructor,
		validate.NoGreaterThan("SubnetLenIPv4", c.SubnetLenIPv4, netutil.IPv4BitLen),
		validate.NoGreaterThan("SubnetLenIPv6", c.SubnetLenIPv6, netutil.IPv6BitLen),
	)
}
