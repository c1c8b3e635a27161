package runtime

import (
	"context"
	"log/slog"
	"time"

	"tutor-chat/contract"
	"tutor-chat/domain/event"
	"tutor-chat/observability"
)

// Dispatcher routes a domain event to its receiver's live connection.
//
// Delivery is best-effort notify with a documented drop-without-retry
// policy: an offline receiver is a silent no-op, and a failing sink is
// logged and swallowed. Persistence has already committed by the time an
// event reaches the dispatcher, and stored state is never rolled back
// because a push failed.
type Dispatcher struct {
	log         *slog.Logger
	registry    contract.IRegistry
	monitor     *observability.Monitor
	sinkTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry,
	monitor *observability.Monitor, sinkTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:         log,
		registry:    registry,
		monitor:     monitor,
		sinkTimeout: sinkTimeout,
	}
}

// Push delivers e to its receiver if they hold a live connection.
func (d *Dispatcher) Push(ctx context.Context, e event.DomainEvent) {
	sink, ok := d.registry.Lookup(e.Receiver())
	if !ok {
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
	defer cancel()

	if err := sink.Consume(pushCtx, e); err != nil {
		d.monitor.IncrDeliveryDropped()
		d.log.Warn("event delivery dropped",
			"event", e.Name(),
			"receiver", e.Receiver(),
			"error", err)
		return
	}
	d.monitor.IncrDelivered()
}
