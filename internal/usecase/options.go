package usecase

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"hire-match/internal/domain"
	"hire-match/internal/metrics"
)

// ErrInvalidInput marks malformed caller input. It is not an engine error kind;
// the transport maps it to a validation failure.
var ErrInvalidInput = errors.New("invalid input")

type Option func(*base)

type base struct {
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

func newBase(opts []Option) base {
	b := base{
		now:    func() time.Time { return time.Now().UTC() },
		logger: zap.NewNop(),
	}
	for _, fn := range opts {
		fn(&b)
	}
	return b
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err)
}
