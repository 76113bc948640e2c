package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for inventory domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new CloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *CloudEvent {
	return &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateEventWithCorrelation creates an event with correlation tracking
func (f *EventFactory) CreateEventWithCorrelation(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	correlationID string,
) *CloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.CorrelationID = correlationID
	return event
}

// CreateStockAdjustedEvent creates a StockAdjusted event
func (f *EventFactory) CreateStockAdjustedEvent(
	ctx context.Context,
	partID, warehouseID string,
	oldQuantity, newQuantity int,
	reason, adjustedBy string,
) *CloudEvent {
	data := StockAdjustedData{
		PartID:      partID,
		WarehouseID: warehouseID,
		OldQuantity: oldQuantity,
		NewQuantity: newQuantity,
		Reason:      reason,
		AdjustedBy:  adjustedBy,
	}
	return f.CreateEvent(ctx, StockAdjusted, "stock/"+partID+"/"+warehouseID, data)
}

// CreateLowStockAlertEvent creates a LowStockAlert event
func (f *EventFactory) CreateLowStockAlertEvent(
	ctx context.Context,
	partID, warehouseID string,
	availableQuantity, reorderPoint int,
) *CloudEvent {
	data := LowStockAlertData{
		PartID:            partID,
		WarehouseID:       warehouseID,
		AvailableQuantity: availableQuantity,
		ReorderPoint:      reorderPoint,
	}
	return f.CreateEvent(ctx, LowStockAlert, "stock/"+partID+"/"+warehouseID, data)
}
