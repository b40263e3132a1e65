package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/logging"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/metrics"
)

// ConnectThrottle is the coarse, pre-upgrade per-IP gate the router applies
// before a request ever reaches a room's exact join-attempt bucket
// (ratelimit.Window). It exists to keep a single abusive IP from spending
// upgrade/TLS handshake cost on an unbounded number of connections; the
// room's own §4.6 bucket is what actually governs join semantics.
type ConnectThrottle struct {
	limiter *limiter.Limiter
}

// NewConnectThrottle builds a ConnectThrottle rate-formatted as
// ulule/limiter expects (e.g. "100-M" for 100 per minute). backend is
// config.Config.JoinAttemptBucketBackend ("memory" or "redis"); "redis"
// requires a non-nil redisClient.
func NewConnectThrottle(formattedRate string, backend string, redisClient *redis.Client) (*ConnectThrottle, error) {
	rate, err := limiter.NewRateFromFormatted(formattedRate)
	if err != nil {
		return nil, fmt.Errorf("invalid connect rate limit %q: %w", formattedRate, err)
	}

	var store limiter.Store
	switch backend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("JOIN_ATTEMPT_BUCKET_BACKEND=redis requires a connected Redis client")
		}
		store, err = sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "boardws:connect:"})
		if err != nil {
			return nil, fmt.Errorf("create redis rate-limit store: %w", err)
		}
	case "memory":
		store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown join attempt bucket backend %q", backend)
	}

	return &ConnectThrottle{limiter: limiter.New(store, rate)}, nil
}

// Allow reports whether ip may proceed to attempt an upgrade. On store
// failure it fails open — availability of the whiteboard matters more than
// the coarse throttle, and the room's own exact bucket still applies.
func (t *ConnectThrottle) Allow(ctx context.Context, ip string) bool {
	res, err := t.limiter.Get(ctx, ip)
	if err != nil {
		logging.Warn(ctx, "connect throttle store unavailable, failing open")
		return true
	}
	if res.Reached {
		metrics.RateLimitExceeded.WithLabelValues("ws_connect", "ip").Inc()
		return false
	}
	metrics.RateLimitRequests.WithLabelValues("ws_connect").Inc()
	return true
}

// Middleware rejects over-limit requests before gin ever reaches the
// router's upgrade handler, using the caller's IP.
func (t *ConnectThrottle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.Allow(c.Request.Context(), c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many connection attempts"})
			return
		}
		c.Next()
	}
}
