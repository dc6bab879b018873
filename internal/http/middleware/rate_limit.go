// README: Per-client request limits; redis fixed window when shared, x/time/rate otherwise.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit aborts with 429 when the limiter refuses the client. Limiter
// errors let the request through.
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		ok, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("ip", ip), zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			log.Warn("rate limit exceeded", zap.String("ip", ip))
			abortEnvelope(c, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		c.Next()
	}
}

// limiterIdleAfter is how long a key may go unseen before its bucket is
// dropped. A bucket refills completely within a minute, so dropping it later
// never loosens the limit.
const limiterIdleAfter = 10 * time.Minute

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps a token bucket per key in process memory and evicts
// buckets idle for longer than limiterIdleAfter.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	every     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewLocalLimiter allows perMinute requests per key, refilled evenly.
func NewLocalLimiter(perMinute int) *LocalLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &LocalLimiter{
		buckets: make(map[string]*localBucket),
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= limiterIdleAfter {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.every, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.lim.AllowN(now, 1), nil
}

// sweep drops idle buckets. Callers hold l.mu.
func (l *LocalLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= limiterIdleAfter {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RedisLimiter counts requests per key in one-minute windows shared by all
// replicas.
type RedisLimiter struct {
	client    *redis.Client
	perMinute int64
	now       func() time.Time
}

func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RedisLimiter{client: client, perMinute: int64(perMinute), now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().Unix() / 60
	redisKey := fmt.Sprintf("tripplanner:ratelimit:%s:%d", key, window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= l.perMinute, nil
}
