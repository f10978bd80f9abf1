package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyLoginAttempts = "finalerp:login:%s:%s"

const (
	loginMaxAttempts = 5
	loginWindow      = time.Minute
)

// attemptScript counts hits in a fixed window and returns {count, pttl}.
// The window starts at the first hit.
var attemptScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// LoginLimiter throttles password attempts per username and client address.
type LoginLimiter struct {
	client *redis.Client
	log    *zap.Logger
	max    int64
	window time.Duration
}

func NewLoginLimiter(client *redis.Client, log *zap.Logger) *LoginLimiter {
	return &LoginLimiter{
		client: client,
		log:    log.Named("ratelimit.login"),
		max:    loginMaxAttempts,
		window: loginWindow,
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.client != nil
}

// Allow fails open when redis is unavailable.
func (l *LoginLimiter) Allow(ctx context.Context, username, clientIP string) (bool, time.Duration) {
	if !l.Enabled() {
		return true, 0
	}

	count, ttl, err := l.hit(ctx, loginKey(username, clientIP))
	if err != nil {
		l.log.Warn("login rate limit check failed", zap.Error(err))
		return true, 0
	}
	if count > l.max {
		return false, ttl
	}
	return true, 0
}

func (l *LoginLimiter) hit(ctx context.Context, key string) (int64, time.Duration, error) {
	res, err := attemptScript.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, errors.New("unexpected rate limit script reply")
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}

func loginKey(username, clientIP string) string {
	return fmt.Sprintf(keyLoginAttempts,
		strings.ToLower(strings.TrimSpace(username)),
		strings.TrimSpace(clientIP),
	)
}
