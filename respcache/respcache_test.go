package respcache_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdguardTeam/golibs/httphdr"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/fcchbjm/midway/httpmsg"
	"github.com/fcchbjm/midway/internal/mwtest"
	"github.com/fcchbjm/midway/midware"
	"github.com/fcchbjm/midway/respcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is a common timeout for tests and contexts.
const testTimeout = 1 * time.Second

// testLogger is a common logger for tests.
var testLogger = slogutil.NewDiscardLogger()

// newTestMiddleware returns a caching middleware with test defaults.
func newTestMiddleware(t *testing.T) (mw midware.Middleware) {
	t.Helper()

	conf := &respcache.Config{
		Logger: testLogger,
		Size:   100,
		TTL:    time.Minute,
	}
	require.NoError(t, conf.Validate())

	return respcache.NewMiddleware(conf)
}

// countingHandler returns a next handler that counts its calls and answers
// with a fresh text response every time.
func countingHandler(numCalls *int, body string) (h *mwtest.FakeHandler) {
	return &mwtest.FakeHandler{
		OnHandle: func(_ context.Context, req *http.Request) (resp *http.Response, err error) {
			*numCalls++

			return httpmsg.DefaultConstructor{}.NewTextResponse(req, http.StatusOK, body), nil
		},
	}
}

func TestMiddleware_Serve(t *testing.T) {
	t.Parallel()

	mw := newTestMiddleware(t)

	const body = "hello"

	numCalls := 0
	next := countingHandler(&numCalls, body)

	req := httptest.NewRequest(http.MethodGet, "http://domain.example/path", nil)

	for i := range 3 {
		ctx := testutil.ContextWithTimeout(t, testTimeout)

		resp, err := mw.Serve(ctx, req, next)
		require.NoError(t, err)
		require.NotNil(t, resp)

		got, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		assert.Equal(t, body, string(got), "iteration %d", i)
	}

	// Only the first request reaches the next handler.
	assert.Equal(t, 1, numCalls)
}

func TestMiddleware_Serve_uncacheable(t *testing.T) {
	t.Parallel()

	mw := newTestMiddleware(t)

	t.Run("post", func(t *testing.T) {
		t.Parallel()

		numCalls := 0
		next := countingHandler(&numCalls, "hello")

		req := httptest.NewRequest(http.MethodPost, "http://domain.example/post", nil)

		for range 2 {
			ctx := testutil.ContextWithTimeout(t, testTimeout)

			_, err := mw.Serve(ctx, req, next)
			require.NoError(t, err)
		}

		assert.Equal(t, 2, numCalls)
	})

	t.Run("no_store_request", func(t *testing.T) {
		t.Parallel()

		numCalls := 0
		next := countingHandler(&numCalls, "hello")

		req := httptest.NewRequest(http.MethodGet, "http://domain.example/no-store", nil)
		req.Header.Set(httphdr.CacheControl, "no-store")

		for range 2 {
			ctx := testutil.ContextWithTimeout(t, testTimeout)

			_, err := mw.Serve(ctx, req, next)
			require.NoError(t, err)
		}

		assert.Equal(t, 2, numCalls)
	})

	t.Run("no_store_response", func(t *testing.T) {
		t.Parallel()

		numCalls := 0
		next := &mwtest.FakeHandler{
			OnHandle: func(
				_ context.Context,
				req *http.Request,
			) (resp *http.Response, err error) {
				numCalls++
				resp = mwtest.NewResponse(req, http.StatusOK)
				resp.Header.Set(httphdr.CacheControl, "No-Store")

				return resp, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "http://domain.example/resp-no-store", nil)

		for range 2 {
			ctx := testutil.ContextWithTimeout(t, testTimeout)

			_, err := mw.Serve(ctx, req, next)
			require.NoError(t, err)
		}

		assert.Equal(t, 2, numCalls)
	})
}
