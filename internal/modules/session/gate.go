package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"myitinerary/internal/types"
)

const (
	inflightKeyPrefix = "session:user:%s:inflight"
	// DefaultGateTTL bounds how long a crashed replica can hold a user's slot.
	DefaultGateTTL = 2 * time.Minute
	gateTTLMargin  = 30 * time.Second
	releaseTimeout = 2 * time.Second
)

// GateTTL sizes the slot TTL for calls bounded by callTimeout (0 = unbounded).
// The holder also renews the slot while the call runs, so an unbounded call keeps it.
func GateTTL(callTimeout time.Duration) time.Duration {
	if callTimeout <= 0 {
		return DefaultGateTTL
	}
	return callTimeout + gateTTLMargin
}

// Gate guards one in-flight LLM call per user across API replicas.
type Gate interface {
	// Acquire returns ErrGateHeld when the user already has a call in flight.
	Acquire(ctx context.Context, userKey string) (release func(), err error)
}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the key's TTL only when it still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisGate struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisGate(client *redis.Client, ttl time.Duration) *RedisGate {
	if ttl <= 0 {
		ttl = DefaultGateTTL
	}
	return &RedisGate{redis: client, ttl: ttl}
}

func (g *RedisGate) Acquire(ctx context.Context, userKey string) (func(), error) {
	key := inflightKey(userKey)
	token := types.NewID().String()
	ok, err := g.redis.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("session gate: %w", err)
	}
	if !ok {
		return nil, ErrGateHeld
	}

	stop := make(chan struct{})
	go g.renew(context.WithoutCancel(ctx), key, token, stop)

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(stop)
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
			defer cancel()
			_ = releaseScript.Run(rctx, g.redis, []string{key}, token).Err()
		})
	}
	return release, nil
}

// renew refreshes the slot every third of its TTL until stop is closed or the
// key no longer holds token.
func (g *RedisGate) renew(ctx context.Context, key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(g.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rctx, cancel := context.WithTimeout(ctx, releaseTimeout)
			n, err := renewScript.Run(rctx, g.redis, []string{key}, token, g.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				log.Printf("[SESSION] renew %s: %v", key, err)
				continue
			}
			if n == 0 {
				return
			}
		}
	}
}

func inflightKey(userKey string) string {
	return fmt.Sprintf(inflightKeyPrefix, userKey)
}

// LocalGate is the single-process Gate used when Redis is not configured.
type LocalGate struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalGate() *LocalGate {
	return &LocalGate{held: make(map[string]bool)}
}

func (g *LocalGate) Acquire(_ context.Context, userKey string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[userKey] {
		return nil, ErrGateHeld
	}
	g.held[userKey] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, userKey)
			g.mu.Unlock()
		})
	}, nil
}
