package chain

import (
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/netutil"
	"github.com/fcchbjm/midway/headers"
	"github.com/fcchbjm/midway/hostblock"
	"github.com/fcchbjm/midway/httpmsg"
	"github.com/fcchbjm/midway/midware"
	"github.com/fcchbjm/midway/ratelimit"
	"github.com/fcchbjm/midway/reqlog"
	"github.com/fcchbjm/midway/respcache"
	"gopkg.in/yaml.v3"
)

// Config is the declarative YAML configuration of a middleware pipeline.  A
// section that is present enables the corresponding middleware; the
// middlewares are composed in the order of the struct fields.
type Config struct {
	// RequestLog enables the request logging middleware.
	RequestLog *RequestLogConfig `yaml:"request_log"`

	// Hostblock configures the blocked-hosts middleware.
	Hostblock *HostblockConfig `yaml:"hostblock"`

	// Headers configures the header normalization middleware.
	Headers *HeadersConfig `yaml:"headers"`

	// Ratelimit configures the rate limiting middleware.
	Ratelimit *RatelimitConfig `yaml:"ratelimit"`

	// Cache configures the response caching middleware.
	Cache *CacheConfig `yaml:"cache"`
}

// RequestLogConfig is the configuration of the request logging middleware.
type RequestLogConfig struct{}

// HostblockConfig is the configuration of the blocked-hosts middleware.
type HostblockConfig struct {
	// HostsFiles is the list of paths to adblock-style hosts files.
	HostsFiles []string `yaml:"hosts_files"`

	// BlockedHosts is the list of explicitly blocked hostnames.
	BlockedHosts []string `yaml:"blocked_hosts"`
}

// HeadersConfig is the configuration of the header normalization middleware.
type HeadersConfig struct {
	// Set is the set of header fields forced onto every request.
	Set map[string]string `yaml:"set"`

	// Remove is the list of header fields removed from every request.
	Remove []string `yaml:"remove"`

	// StampForwardedFor enables stamping the X-Forwarded-For field.
	StampForwardedFor bool `yaml:"stamp_forwarded_for"`
}

// RatelimitConfig is the configuration of the rate limiting middleware.
type RatelimitConfig struct {
	// Allowlist is the list of client subnets excluded from rate limiting,
	// in CIDR notation.
	Allowlist []string `yaml:"allowlist"`

	// RPS is the maximum number of requests per second from a client subnet.
	RPS uint `yaml:"rps"`

	// SubnetLenIPv4 is a subnet length for IPv4 addresses used for grouping
	// clients.
	SubnetLenIPv4 uint `yaml:"subnet_len_ipv4"`

	// SubnetLenIPv6 is a subnet length for IPv6 addresses used for grouping
	// clients.
	SubnetLenIPv6 uint `yaml:"subnet_len_ipv6"`
}

// CacheConfig is the configuration of the response caching middleware.
type CacheConfig struct {
	// Size is the maximum number of cached responses.
	Size int `yaml:"size"`

	// TTLSecs is how long a cached response stays valid, in seconds.
	TTLSecs uint `yaml:"ttl_secs"`
}

// ParseConfig parses a pipeline configuration from YAML data.
func ParseConfig(b []byte) (conf *Config, err error) {
	conf = &Config{}
	err = yaml.Unmarshal(b, conf)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling pipeline config: %w", err)
	}

	return conf, nil
}

// FromConfig builds a pipeline around terminal from conf.  l and terminal
// must not be nil; conf may be nil, in which case terminal is returned
// as-is.
func FromConfig(
	l *slog.Logger,
	conf *Config,
	terminal midware.Handler,
) (h midware.Handler, err error) {
	if conf == nil {
		return terminal, nil
	}

	var mws []midware.Middleware

	if conf.RequestLog != nil {
		mws = append(mws, reqlog.New(l.With(slogutil.KeyPrefix, "reqlog")))
	}

	if c := conf.Hostblock; c != nil {
		var mw midware.Middleware
		mw, err = newHostblock(l, c)
		if err != nil {
			return nil, fmt.Errorf("hostblock: %w", err)
		}

		mws = append(mws, mw)
	}

	if c := conf.Headers; c != nil {
		var mw midware.Middleware
		mw, err = headers.New(&headers.Config{
			Logger:            l.With(slogutil.KeyPrefix, "headers"),
			Set:               c.Set,
			Remove:            c.Remove,
			StampForwardedFor: c.StampForwardedFor,
		})
		if err != nil {
			return nil, fmt.Errorf("headers: %w", err)
		}

		mws = append(mws, mw)
	}

	if c := conf.Ratelimit; c != nil {
		var mw midware.Middleware
		mw, err = newRatelimit(l, c)
		if err != nil {
			return nil, fmt.Errorf("ratelimit: %w", err)
		}

		mws = append(mws, mw)
	}

	if c := conf.Cache; c != nil {
		rcConf := &respcache.Config{
			Logger: l.With(slogutil.KeyPrefix, "respcache"),
			Size:   c.Size,
			TTL:    time.Duration(c.TTLSecs) * time.Second,
		}
		err = rcConf.Validate()
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}

		mws = append(mws, respcache.NewMiddleware(rcConf))
	}

	return New(terminal, mws...), nil
}

// newHostblock builds the blocked-hosts middleware from c.
func newHostblock(l *slog.Logger, c *HostblockConfig) (mw midware.Middleware, err error) {
	hosts, err := hostblock.ReadHosts(c.HostsFiles)
	if err != nil {
		return nil, fmt.Errorf("reading hosts files: %w", err)
	}

	return hostblock.New(&hostblock.Config{
		Logger:       l.With(slogutil.KeyPrefix, "hostblock"),
		Responses:    httpmsg.DefaultConstructor{},
		Hosts:        hosts,
		BlockedHosts: c.BlockedHosts,
	}), nil
}

// newRatelimit builds the rate limiting middleware from c.
func newRatelimit(l *slog.Logger, c *RatelimitConfig) (mw midware.Middleware, err error) {
	var allowlist netutil.SliceSubnetSet
	for _, s := range c.Allowlist {
		var pref netip.Prefix
		pref, err = netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("allowlist: %w", err)
		}

		allowlist = append(allowlist, pref)
	}

	rlConf := &ratelimit.Config{
		Logger:         l.With(slogutil.KeyPrefix, "ratelimit"),
		Responses:      httpmsg.DefaultConstructor{},
		AllowlistAddrs: allowlist,
		RPS:            c.RPS,
		SubnetLenIPv4:  c.SubnetLenIPv4,
		SubnetLenIPv6:  c.SubnetLenIPv6,
	}
	err = rlConf.Validate()
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return nil, err
	}

	return ratelimit.NewMiddleware(rlConf), nil
}
