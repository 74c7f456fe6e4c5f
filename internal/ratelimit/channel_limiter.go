// Package ratelimit bounds outbound dispatch rate per delivery channel so
// bulk batches never exceed what the downstream provider tolerates.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChannelLimiter is a Redis-backed token bucket keyed by delivery channel.
// The bucket lives in Redis so every service instance shares one budget per
// channel.
type ChannelLimiter struct {
	client *redis.Client
	burst  int
	refill float64 // tokens per second
	ttl    time.Duration
}

// NewChannelLimiter constructs a limiter allowing refillPerSecond sustained
// sends with bursts up to burst.
func NewChannelLimiter(client *redis.Client, burst int, refillPerSecond float64, ttl time.Duration) *ChannelLimiter {
	return &ChannelLimiter{
		client: client,
		burst:  burst,
		refill: refillPerSecond,
		ttl:    ttl,
	}
}

// Allow consumes one send slot for the given channel if available.
func (l *ChannelLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	key := "outreach:rate:" + channel
	now := time.Now().UnixMilli()
	res, err := bucketScript.Run(ctx, l.client, []string{key}, l.burst, l.refill, now, l.ttl.Milliseconds()).Result()
	if err != nil {
		return false, err
	}
	arr, ok := res.([]interface{})
	if !ok || len(arr) < 1 {
		return false, nil
	}
	allowed, _ := arr[0].(int64)
	return allowed == 1, nil
}

var bucketScript = redis.NewScript(`
local key = KEYS[1]
local burst = tonumber(ARGV[1])
local refill = tonumber(ARGV[2]) -- tokens per second
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'tokens', 'last_ms')
local tokens = tonumber(data[1])
local last = tonumber(data[2])
if tokens == nil then tokens = burst end
if last == nil then last = now end

local delta = math.max(0, now - last)
tokens = math.min(burst, tokens + delta / 1000 * refill)

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_ms', now)
if ttl > 0 then redis.call('PEXPIRE', key, ttl) end
return {allowed, tokens}
`)
