package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"solarsizing/internal/model"
	"solarsizing/internal/repository"
)

const (
	eventBatchSize     = 10
	eventFlushInterval = time.Second
	eventQueueSize     = 100
)

// Payment event types.
const (
	EventCheckoutStarted   = "checkout.started"
	EventCheckoutCompleted = "checkout.completed"
	EventWebhookDuplicate  = "webhook.duplicate"
	EventWebhookIgnored    = "webhook.ignored"
	EventUserActivated     = "user.activated"
)

// EventRecorder records payment audit events.
type EventRecorder interface {
	Record(event model.PaymentEvent)
}

// PaymentEventRecorder writes events in the background, in batches. Record
// never blocks; events are dropped when the queue is full.
type PaymentEventRecorder struct {
	repo   repository.PaymentEventRepository
	logger *zap.Logger
	events chan model.PaymentEvent
	done   chan struct{}
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewPaymentEventRecorder starts the background writer.
func NewPaymentEventRecorder(repo repository.PaymentEventRepository, logger *zap.Logger) *PaymentEventRecorder {
	r := &PaymentEventRecorder{
		repo:   repo,
		logger: logger.Named("payment_events"),
		events: make(chan model.PaymentEvent, eventQueueSize),
		done:   make(chan struct{}),
		now:    time.Now,
	}
	go r.worker()
	return r
}

// Record queues an event. Events recorded after Close are dropped.
func (r *PaymentEventRecorder) Record(event model.PaymentEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn("payment event after close", zap.String("event_type", event.EventType))
		return
	}
	select {
	case r.events <- event:
	default:
		r.logger.Warn("payment event dropped", zap.String("event_type", event.EventType))
	}
}

// Close flushes queued events and stops the writer.
func (r *PaymentEventRecorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *PaymentEventRecorder) worker() {
	defer close(r.done)

	batch := make([]model.PaymentEvent, 0, eventBatchSize)
	ticker := time.NewTicker(eventFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.repo.CreateBatch(context.Background(), batch); err != nil {
			r.logger.Error("failed to write payment events", zap.Int("count", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-r.events:
			if !ok {
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= eventBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

type noopRecorder struct{}

func (noopRecorder) Record(model.PaymentEvent) {}
