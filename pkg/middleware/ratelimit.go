package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cinema-ticketing/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// tokenBucket refills one token per interval up to capacity. Returns
// {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

if interval_ms > 0 then
    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + intervals)
        last_refill = last_refill + (intervals * interval_ms)
    end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimit throttles per user (or per client IP when anonymous) with a Redis
// token bucket. A nil client or a disabled config yields a pass-through, and
// Redis errors fail open.
func RateLimit(cfg utils.RateLimitConfig, rdb redis.Scripter, logger *zap.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	capacity := max(cfg.Capacity, 1)
	interval := cfg.RefillInterval
	if interval <= 0 {
		interval = time.Second
	}
	ttl := max(cfg.TTL, 5*interval)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(cfg.Prefix, r)

			res, err := tokenBucket.Run(r.Context(), rdb, []string{key},
				time.Now().UnixMilli(), capacity, interval.Milliseconds(), int64(ttl/time.Second)).Int64Slice()
			if err != nil || len(res) != 3 {
				logger.Warn("Rate limiter unavailable, allowing request",
					zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

			if res[0] != 1 {
				secs := int(math.Ceil(float64(res[2]) / 1000.0))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				logger.Info("Rate limit exceeded", zap.String("key", key))
				utils.ResponseTooManyRequests(w, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(prefix string, r *http.Request) string {
	if prefix == "" {
		prefix = "rl"
	}
	route := r.Method + " " + r.URL.Path
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return strings.Join([]string{prefix, "user", userID.String(), route}, ":")
	}
	return strings.Join([]string{prefix, "ip", utils.ClientIP(r), route}, ":")
}
