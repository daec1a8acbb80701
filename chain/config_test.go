package chain_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/fcchbjm/midway/chain"
	"github.com/fcchbjm/midway/internal/mwtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPipelineYAML is a pipeline configuration used in tests.
const testPipelineYAML = `
request_log: {}
hostblock:
  blocked_hosts:
    - blocked.example
ratelimit:
  rps: 100
  subnet_len_ipv4: 24
  subnet_len_ipv6: 64
  allowlist:
    - 192.0.2.0/24
cache:
  size: 100
  ttl_secs: 60
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	conf, err := chain.ParseConfig([]byte(testPipelineYAML))
	require.NoError(t, err)
	require.NotNil(t, conf)

	assert.NotNil(t, conf.RequestLog)
	assert.Nil(t, conf.Headers)

	require.NotNil(t, conf.Hostblock)
	assert.Equal(t, []string{"blocked.example"}, conf.Hostblock.BlockedHosts)

	require.NotNil(t, conf.Ratelimit)
	assert.EqualValues(t, 100, conf.Ratelimit.RPS)

	require.NotNil(t, conf.Cache)
	assert.EqualValues(t, 60, conf.Cache.TTLSecs)
}

func TestParseConfig_bad(t *testing.T) {
	t.Parallel()

	conf, err := chain.ParseConfig([]byte("- not\n- a\n- mapping\n"))
	require.Error(t, err)

	assert.Nil(t, conf)
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	conf, err := chain.ParseConfig([]byte(testPipelineYAML))
	require.NoError(t, err)

	terminal := &mwtest.FakeHandler{
		OnHandle: func(_ context.Context, req *http.Request) (resp *http.Response, err error) {
			return mwtest.NewResponse(req, http.StatusOK), nil
		},
	}

	h, err := chain.FromConfig(slogutil.NewDiscardLogger(), conf, terminal)
	require.NoError(t, err)
	require.NotNil(t, h)

	t.Run("passed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://domain.example/", nil)
		req.RemoteAddr = "192.0.2.1:1234"

		ctx := testutil.ContextWithTimeout(t, testTimeout)

		resp, serveErr := h.Handle(ctx, req)
		require.NoError(t, serveErr)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("blocked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://blocked.example/", nil)
		req.RemoteAddr = "192.0.2.1:1234"

		ctx := testutil.ContextWithTimeout(t, testTimeout)

		resp, serveErr := h.Handle(ctx, req)
		require.NoError(t, serveErr)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestFromConfig_errors(t *testing.T) {
	t.Parallel()

	terminal := &mwtest.FakeHandler{
		OnHandle: func(_ context.Context, req *http.Request) (resp *http.Response, err error) {
			return mwtest.NewResponse(req, http.StatusOK), nil
		},
	}

	t.Run("nil_config", func(t *testing.T) {
		t.Parallel()

		h, err := chain.FromConfig(slogutil.NewDiscardLogger(), nil, terminal)
		require.NoError(t, err)

		assert.Same(t, h, terminal)
	})

	t.Run("bad_allowlist", func(t *testing.T) {
		t.Parallel()

		conf := &chain.Config{
			Ratelimit: &chain.RatelimitConfig{
				Allowlist: []string{"not-a-cidr"},
				RPS:       1,
			},
		}

		h, err := chain.FromConfig(slogutil.NewDiscardLogger(), conf, terminal)
		require.Error(t, err)

		assert.Nil(t, h)
	})

	t.Run("bad_cache", func(t *testing.T) {
		t.Parallel()

		conf := &chain.Config{
			Cache: &chain.CacheConfig{},
		}

		h, err := chain.FromConfig(slogutil.NewDiscardLogger(), conf, terminal)
		require.Error(t, err)

		assert.Nil(t, h)
	})
}
