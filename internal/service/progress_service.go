package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/internal/store"
	"habittracker/internal/view"
	"habittracker/pkg/circuitbreaker"
	"habittracker/pkg/metrics"
)

const (
	SnapshotRoutingKey = "habit.snapshot"

	// DefaultPublishTimeout is short: each publish holds up the dispatch
	// that triggered it.
	DefaultPublishTimeout = 500 * time.Millisecond
)

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// SnapshotEvent is published after every committed habit change.
type SnapshotEvent struct {
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	Percentage int       `json:"percentage"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProgressService keeps derived progress outside the store up to date:
// Prometheus gauges always, and the event exchange when a publisher is set.
type ProgressService struct {
	publisher EventPublisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*ProgressService)

// WithPublishTimeout bounds each publish. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *ProgressService) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewProgressService accepts a nil publisher when no broker is configured.
func NewProgressService(publisher EventPublisher, logger *zap.Logger, opts ...Option) *ProgressService {
	p := &ProgressService{
		publisher: publisher,
		breaker:   circuitbreaker.New(circuitbreaker.DefaultConfig()),
		timeout:   DefaultPublishTimeout,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attach subscribes to s and records the current state immediately.
func (p *ProgressService) Attach(s *store.Store) (unsubscribe func()) {
	if s == nil {
		panic(store.ErrNilStore)
	}
	p.recordMetrics(view.Aggregate(s.GetState()))
	return s.Subscribe(p.OnSnapshot)
}

// OnSnapshot is a store.Listener. Publish failures are logged and dropped.
func (p *ProgressService) OnSnapshot(c model.HabitCollection) {
	progress := view.Aggregate(c)
	p.recordMetrics(progress)

	if p.publisher == nil {
		return
	}

	evt := SnapshotEvent{
		Total:      progress.Total,
		Completed:  progress.Completed,
		Percentage: progress.Percentage,
		OccurredAt: p.now().UTC(),
	}

	// runs under the store's dispatch lock; skipped while the breaker is open
	err := p.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		return p.publisher.Publish(ctx, SnapshotRoutingKey, evt)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		p.logger.Debug("Skipped habit snapshot, publisher circuit open")
		return
	}
	if err != nil {
		p.logger.Warn("Failed to publish habit snapshot",
			zap.String("routing_key", SnapshotRoutingKey),
			zap.String("breaker", p.breaker.State().String()),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("Published habit snapshot",
		zap.Int("total", evt.Total),
		zap.Int("completed", evt.Completed),
	)
}

func (p *ProgressService) recordMetrics(progress view.Progress) {
	metrics.SetHabitProgress(progress.Completed, progress.Total, progress.Percentage)
}
