// Package guard serializes conflicting lifecycle commands. Locks are scoped to
// a position or an application and are always taken in one global order:
// positions before applications, then by identity. Release is idempotent.
package guard

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

type Scope int

const (
	ScopePosition Scope = iota
	ScopeApplication
)

func (s Scope) String() string {
	if s == ScopePosition {
		return "position"
	}
	return "application"
}

type Key struct {
	Scope Scope
	ID    uuid.UUID
}

func PositionKey(id uuid.UUID) Key    { return Key{Scope: ScopePosition, ID: id} }
func ApplicationKey(id uuid.UUID) Key { return Key{Scope: ScopeApplication, ID: id} }

func (k Key) String() string {
	return k.Scope.String() + ":" + k.ID.String()
}

// Order dedupes keys and sorts them into acquisition order.
func Order(keys []Key) []Key {
	seen := make(map[Key]struct{}, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

type Release func()

// Guard acquires every key or none. A lock that cannot be taken within the
// guard's timeout yields domain.ErrConflict; a cancelled ctx yields ctx.Err().
type Guard interface {
	Acquire(ctx context.Context, keys ...Key) (Release, error)
}

// Observer receives lock wait timings.
type Observer interface {
	ObserveGuardWait(backend string, d time.Duration, acquired bool)
}

type Option func(*options)

type options struct {
	timeout  time.Duration
	observer Observer
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

const DefaultTimeout = 5 * time.Second

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
