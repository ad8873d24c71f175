package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hire-match/internal/domain"
)

// Locker is the subset of the Redis client the distributed guard needs.
type Locker interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key string, value string) (bool, error)
}

// Redis is a Guard shared by every process talking to the same Redis. Each
// lock is a key holding a per-acquisition token with a lease TTL, so a crashed
// holder cannot block others past the lease.
type Redis struct {
	locker Locker
	prefix string
	ttl    time.Duration
	retry  time.Duration
	opts   options
}

type RedisConfig struct {
	Prefix        string
	LeaseTTL      time.Duration
	RetryInterval time.Duration
}

func NewRedis(locker Locker, cfg RedisConfig, opts ...Option) *Redis {
	if cfg.Prefix == "" {
		cfg.Prefix = "hire-match:lock:"
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 25 * time.Millisecond
	}
	return &Redis{
		locker: locker,
		prefix: cfg.Prefix,
		ttl:    cfg.LeaseTTL,
		retry:  cfg.RetryInterval,
		opts:   buildOptions(opts),
	}
}

func (r *Redis) Acquire(ctx context.Context, keys ...Key) (Release, error) {
	if r == nil || r.locker == nil {
		return nil, errors.New("redis guard not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ordered := Order(keys)
	token := uuid.NewString()
	start := time.Now()
	deadline := start.Add(r.opts.timeout)

	held := make([]string, 0, len(ordered))
	for _, k := range ordered {
		name := r.prefix + k.String()
		if err := r.lockOne(ctx, name, token, deadline); err != nil {
			r.unlock(held, token)
			r.observe(start, false)
			if errors.Is(err, errLockTimeout) {
				return nil, domain.Conflict("lock %s not acquired within %s", k, r.opts.timeout)
			}
			return nil, err
		}
		held = append(held, name)
	}
	r.observe(start, true)

	var once sync.Once
	return func() { once.Do(func() { r.unlock(held, token) }) }, nil
}

var errLockTimeout = errors.New("lock timeout")

func (r *Redis) lockOne(ctx context.Context, name, token string, deadline time.Time) error {
	for {
		ok, err := r.locker.SetIfNotExists(ctx, name, token, r.ttl)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("acquire %s: %w", name, err)
		}
		if ok {
			return nil
		}

		wait := r.retry
		if remaining := time.Until(deadline); remaining <= 0 {
			return errLockTimeout
		} else if remaining < wait {
			wait = remaining
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (r *Redis) unlock(held []string, token string) {
	// Release must run even when the caller's ctx is gone.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(held) - 1; i >= 0; i-- {
		_, _ = r.locker.CompareAndDelete(ctx, held[i], token)
	}
}

func (r *Redis) observe(start time.Time, acquired bool) {
	if r.opts.observer != nil {
		r.opts.observer.ObserveGuardWait("redis", time.Since(start), acquired)
	}
}
