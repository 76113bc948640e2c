package domain

import (
	"time"

	"github.com/google/uuid"
)

// Warehouse belongs to exactly one plant. Retired warehouses are deactivated,
// never deleted, because stock and movement records reference them.
type Warehouse struct {
	ID        string    `bson:"_id" json:"id"`
	PlantID   string    `bson:"plantId" json:"plantId"`
	Code      string    `bson:"code" json:"code"`
	Name      string    `bson:"name" json:"name"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewWarehouse creates an active warehouse under a plant
func NewWarehouse(plantID, code, name string) *Warehouse {
	now := time.Now()
	return &Warehouse{
		ID:        uuid.New().String(),
		PlantID:   plantID,
		Code:      code,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Deactivate retires the warehouse
func (w *Warehouse) Deactivate() {
	w.Active = false
	w.UpdatedAt = time.Now()
}
