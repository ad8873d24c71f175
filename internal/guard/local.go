package guard

import (
	"context"
	"sync"
	"time"

	"hire-match/internal/domain"
)

type slot struct {
	ch   chan struct{}
	refs int
}

// Local is an in-process Guard. It is correct only when a single process owns
// all writes for the store it protects.
type Local struct {
	mu    sync.Mutex
	slots map[Key]*slot
	opts  options
}

func NewLocal(opts ...Option) *Local {
	return &Local{slots: make(map[Key]*slot), opts: buildOptions(opts)}
}

func (l *Local) Acquire(ctx context.Context, keys ...Key) (Release, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ordered := Order(keys)
	start := time.Now()

	waitCtx, cancel := context.WithTimeout(ctx, l.opts.timeout)
	defer cancel()

	held := make([]Key, 0, len(ordered))
	for _, k := range ordered {
		s := l.ref(k)
		select {
		case s.ch <- struct{}{}:
			held = append(held, k)
		case <-waitCtx.Done():
			l.unref(k)
			l.release(held)
			l.observe(start, false)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, domain.Conflict("lock %s not acquired within %s", k, l.opts.timeout)
		}
	}

	// Cancelled while waiting but won the race: do not run the operation.
	if err := ctx.Err(); err != nil {
		l.release(held)
		l.observe(start, false)
		return nil, err
	}
	l.observe(start, true)

	var once sync.Once
	return func() { once.Do(func() { l.release(held) }) }, nil
}

func (l *Local) ref(k Key) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[k]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[k] = s
	}
	s.refs++
	return s
}

func (l *Local) unref(k Key) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[k]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(l.slots, k)
	}
}

func (l *Local) release(held []Key) {
	for i := len(held) - 1; i >= 0; i-- {
		k := held[i]
		l.mu.Lock()
		s := l.slots[k]
		l.mu.Unlock()
		if s != nil {
			<-s.ch
		}
		l.unref(k)
	}
}

func (l *Local) observe(start time.Time, acquired bool) {
	if l.opts.observer != nil {
		l.opts.observer.ObserveGuardWait("local", time.Since(start), acquired)
	}
}

// held reports the number of keys currently tracked; used by tests.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
