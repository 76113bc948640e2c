package mongodb

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cmms-platform/inventory-service/internal/domain"
	"github.com/cmms-platform/inventory-service/pkg/cloudevents"
	"github.com/cmms-platform/inventory-service/pkg/kafka"
	"github.com/cmms-platform/inventory-service/pkg/outbox"
	outboxMongo "github.com/cmms-platform/inventory-service/pkg/outbox/mongodb"
)

// eventWriter stores domain events in the outbox inside the caller's
// transaction, wrapped as CloudEvents
type eventWriter struct {
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

func newEventWriter(db *mongo.Database, eventFactory *cloudevents.EventFactory) *eventWriter {
	return &eventWriter{
		outboxRepo:   outboxMongo.NewOutboxRepository(db),
		eventFactory: eventFactory,
	}
}

// topicFor routes catalog events to the catalog topic, everything else to
// the inventory topic
func topicFor(event domain.DomainEvent) string {
	if strings.HasPrefix(event.EventType(), "cmms.catalog.") {
		return kafka.Topics.CatalogEvents
	}
	return kafka.Topics.InventoryEvents
}

// save writes the events to the outbox under sessCtx so they commit or roll
// back together with the state change that produced them
func (w *eventWriter) save(sessCtx mongo.SessionContext, aggregateType, aggregateID string, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	outboxEvents := make([]*outbox.OutboxEvent, 0, len(events))
	for _, event := range events {
		subject := aggregateType + "/" + aggregateID
		cloudEvent := w.eventFactory.CreateEvent(sessCtx, event.EventType(), subject, event)

		outboxEvent, err := outbox.NewOutboxEvent(aggregateID, aggregateType, topicFor(event), cloudEvent)
		if err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
		outboxEvents = append(outboxEvents, outboxEvent)
	}

	if err := w.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
		return fmt.Errorf("failed to save outbox events: %w", err)
	}
	return nil
}
