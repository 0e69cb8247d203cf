package ops

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchTestContext() *ioctx.Context {
	return ioctx.NewTestContext(nil, nil)
}

func TestFetchOpSucceedsOn2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	o := &FetchOp{URL: ts.URL, Retries: 0}
	outcome := o.Run(t.Context(), fetchTestContext())

	require.True(t, outcome.OK())
	body, ok := op.As[[]byte](outcome)
	require.True(t, ok)
	assert.Equal(t, "ok", string(body))
}

func TestFetchOp4xxFailsImmediately(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	o := &FetchOp{URL: ts.URL, Retries: 3}
	outcome := o.Run(t.Context(), fetchTestContext())

	assert.True(t, outcome.Is(FetchFailureHTTPStatus))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetchOp5xxRetriesThenFails(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	o := &FetchOp{URL: ts.URL, Retries: 2, Timeout: 5 * time.Second}
	outcome := o.Run(t.Context(), fetchTestContext())

	assert.True(t, outcome.Is(FetchFailureHTTPStatus))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchOpRetriesAndSucceeds(t *testing.T) {
	var attempts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := attempts.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	o := &FetchOp{URL: ts.URL, Retries: 3, Timeout: 5 * time.Second}
	outcome := o.Run(t.Context(), fetchTestContext())

	assert.True(t, outcome.OK())
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchOpNetworkErrorWithNoServer(t *testing.T) {
	o := &FetchOp{URL: "http://127.0.0.1:1", Retries: 0, Timeout: 500 * time.Millisecond}
	outcome := o.Run(t.Context(), fetchTestContext())
	assert.False(t, outcome.OK())
	_, failed := outcome.Failure()
	assert.True(t, failed)
}
