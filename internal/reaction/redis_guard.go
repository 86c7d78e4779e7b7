package reaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the lock only if it still carries our token, so an
// expired lock taken over by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard is a Guard shared by every replica pointing at the same Redis.
// Locks expire after TTL so a crashed holder cannot wedge a pair forever.
type RedisGuard struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

// NewRedisGuard builds a RedisGuard. A non-positive ttl means 30s.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{Client: client, TTL: ttl, Prefix: "cuentos:"}
}

// Acquire implements Guard with SET NX PX.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	k := g.Prefix + key
	token := uuid.NewString()

	ok, err := g.Client.SetNX(ctx, k, token, g.TTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return func() {
		// Release must outlive a cancelled request context.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, g.Client, []string{k}, token).Err(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", k).Msg("reaction guard release failed; lock will expire")
		}
	}, true, nil
}
