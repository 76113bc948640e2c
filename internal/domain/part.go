package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Part is a catalog entry. Identity is immutable; metadata may change.
// Parts are never physically deleted, only deactivated.
type Part struct {
	ID          string    `bson:"_id" json:"id"`
	PartNumber  string    `bson:"partNumber" json:"partNumber"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	SupplierID  string    `bson:"supplierId,omitempty" json:"supplierId,omitempty"`
	UnitOfMeasure string  `bson:"unitOfMeasure,omitempty" json:"unitOfMeasure,omitempty"`
	Active      bool      `bson:"active" json:"active"`
	CreatedBy   string    `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewPart creates an active catalog part
func NewPart(partNumber, name, category, supplierID, createdBy string) (*Part, error) {
	partNumber = strings.TrimSpace(partNumber)
	name = strings.TrimSpace(name)
	if partNumber == "" || name == "" {
		return nil, ErrMissingPartFields
	}

	now := time.Now()
	return &Part{
		ID:         uuid.New().String(),
		PartNumber: partNumber,
		Name:       name,
		Category:   category,
		SupplierID: supplierID,
		Active:     true,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Deactivate soft-deletes the part
func (p *Part) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}
