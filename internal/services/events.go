// Package services provides business logic and orchestration services.
//
// Each service runs one operation inside one scoped storage session and, once
// the write has committed, announces it through an optional EventPublisher.
package services

import (
	"context"

	"finbot/internal/core"
	"finbot/internal/log"
)

// EventPublisher delivers change events after a successful commit.
// *amqp.Client satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event core.ChangeEvent) error
}

type notifier struct {
	component  string
	events     EventPublisher
	logger     *log.Logger
	structured *log.StructuredLogger
}

func newNotifier(component string, events EventPublisher, logger *log.Logger) notifier {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(component)
	return notifier{
		component:  component,
		events:     events,
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
	}
}

// notify logs the change and publishes it. Publish failures are logged only;
// the write has already been committed.
func (n notifier) notify(ctx context.Context, entity, action string, id int64) {
	n.structured.LogEntityChanged(ctx, n.component, action, entity, id)

	if n.events == nil {
		return
	}
	if err := n.events.Publish(ctx, core.NewChangeEvent(entity, action, id)); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldEntity, entity,
			log.FieldAction, action,
			log.FieldEntityID, id,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}
