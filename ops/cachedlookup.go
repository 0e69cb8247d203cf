package ops

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/justapithecus/optree/ioctx"
	"github.com/justapithecus/optree/op"
)

// CachedLookupFailureUnavailable covers both a Redis connection
// failure and a slow-path failure when no cached value exists.
const CachedLookupFailureUnavailable op.FailureTag = "unavailable"

// CachedLookupOp looks up Key in Redis before falling back to Slow.
// Values are serialized with vmihailenco/msgpack/v5 rather than JSON,
// independent of the session-file format.
type CachedLookupOp struct {
	op.Base
	OpName string
	Key    string
	TTL    time.Duration
	Slow   func(ctx context.Context) (any, error)

	client *goredis.Client
}

// Name implements op.Op.
func (o *CachedLookupOp) Name() string {
	if o.OpName != "" {
		return o.OpName
	}
	return "CachedLookupOp"
}

// Run implements op.Op.
func (o *CachedLookupOp) Run(ctx context.Context, _ *ioctx.Context) op.Outcome {
	if o.client == nil {
		return o.FailWithUnknownError("cachedlookup: no redis client configured")
	}

	cached, err := o.client.Get(ctx, o.Key).Bytes()
	if err == nil {
		var v any
		if err := msgpack.Unmarshal(cached, &v); err == nil {
			return o.Succeed(v)
		}
	} else if !errors.Is(err, goredis.Nil) {
		return o.Fail(CachedLookupFailureUnavailable, fmt.Sprintf("cachedlookup: redis get: %v", err))
	}

	if o.Slow == nil {
		return o.Fail(CachedLookupFailureUnavailable, "cachedlookup: cache miss and no slow path configured")
	}

	v, err := o.Slow(ctx)
	if err != nil {
		return o.Fail(CachedLookupFailureUnavailable, fmt.Sprintf("cachedlookup: slow path: %v", err))
	}

	encoded, err := msgpack.Marshal(v)
	if err == nil {
		ttl := o.TTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		o.client.Set(ctx, o.Key, encoded, ttl)
	}

	return o.Succeed(v)
}

// NewCachedLookupOp builds a CachedLookupOp backed by a Redis client
// parsed from url (e.g. redis://[:password@]host:port[/db]).
func NewCachedLookupOp(url, key string) (*CachedLookupOp, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cachedlookup: invalid redis URL: %w", err)
	}
	return &CachedLookupOp{Key: key, client: goredis.NewClient(opts)}, nil
}
