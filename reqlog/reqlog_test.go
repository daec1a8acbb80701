package reqlog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/testutil"
	"github.com/fcchbjm/midway/internal/mwtest"
	"github.com/fcchbjm/midway/reqlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is a common timeout for tests and contexts.
const testTimeout = 1 * time.Second

func TestMiddleware_Serve(t *testing.T) {
	t.Parallel()

	mw := reqlog.New(slogutil.NewDiscardLogger())

	req := httptest.NewRequest(http.MethodGet, "http://domain.example/", nil)
	want := mwtest.NewResponse(req, http.StatusOK)

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		next := &mwtest.FakeHandler{
			OnHandle: func(_ context.Context, _ *http.Request) (resp *http.Response, err error) {
				return want, nil
			},
		}

		ctx := testutil.ContextWithTimeout(t, testTimeout)

		resp, err := mw.Serve(ctx, req, next)
		require.NoError(t, err)

		assert.Same(t, want, resp)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		const errNext errors.Error = "next failed"

		next := &mwtest.FakeHandler{
			OnHandle: func(_ context.Context, _ *http.Request) (resp *http.Response, err error) {
				return nil, errNext
			},
		}

		ctx := testutil.ContextWithTimeout(t, testTimeout)

		resp, err := mw.Serve(ctx, req, next)
		require.ErrorIs(t, err, errNext)

		assert.Nil(t, resp)
	})
}
