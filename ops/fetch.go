package ops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	ioxpkg "github.com/justapithecus/optree/iox"
	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// Fetch failure tags.
const (
	FetchFailureNetworkError op.FailureTag = "networkError"
	FetchFailureTimeout      op.FailureTag = "timeout"
	FetchFailureHTTPStatus   op.FailureTag = "httpStatus"
)

// FetchStatusError is returned (wrapped into a Failure<httpStatus>
// debug string) for a non-2xx response.
type FetchStatusError struct {
	Code int
}

func (e *FetchStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// FetchOp performs an HTTP GET or POST with a timeout and bounded
// retries, backing off exponentially between attempts and giving up
// early on a 4xx response.
type FetchOp struct {
	op.Base
	OpName  string
	Method  string
	URL     string
	Body    []byte
	Headers map[string]string
	Timeout time.Duration
	Retries int

	client *http.Client
}

// Name implements op.Op.
func (o *FetchOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "FetchOp"
}

// Run implements op.Op.
func (o *FetchOp) Run(ctx context.Context, _ *ioctx.Context) op.Outcome {
	method := o.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := o.client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	var lastErr error
	attempts := 1 + o.Retries

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return o.Cancel()
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return o.Cancel()
			case <-time.After(backoff):
			}
		}

		var respBody []byte
		respBody, lastErr = o.doRequest(ctx, client, method)
		if lastErr == nil {
			return o.Succeed(respBody)
		}

		var statusErr *FetchStatusError
		if errors.As(lastErr, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500 {
			return o.Fail(FetchFailureHTTPStatus, lastErr.Error())
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return o.Fail(FetchFailureTimeout, lastErr.Error())
	}
	var statusErr *FetchStatusError
	if errors.As(lastErr, &statusErr) {
		return o.Fail(FetchFailureHTTPStatus, lastErr.Error())
	}
	return o.Fail(FetchFailureNetworkError, lastErr.Error())
}

func (o *FetchOp) doRequest(ctx context.Context, client *http.Client, method string) ([]byte, error) {
	var bodyReader io.Reader
	if len(o.Body) > 0 {
		bodyReader = bytes.NewReader(o.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("fetch: create request: %w", err)
	}
	for k, v := range o.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer ioxpkg.DiscardClose(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchStatusError{Code: resp.StatusCode}
	}
	return data, nil
}
