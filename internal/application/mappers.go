package application

import (
	"github.com/cmms-platform/inventory-service/internal/domain"
)

// ToStockDTO converts a domain stock row to its API representation
func ToStockDTO(s *domain.Stock) *StockDTO {
	return &StockDTO{
		ID:                s.ID,
		PartID:            s.PartID,
		WarehouseID:       s.WarehouseID,
		PlantID:           s.PlantID,
		CurrentQuantity:   s.CurrentQuantity,
		ReservedQuantity:  s.ReservedQuantity,
		AvailableQuantity: s.AvailableQuantity(),
		MinStockLevel:     s.MinStockLevel,
		MaxStockLevel:     s.MaxStockLevel,
		ReorderPoint:      s.ReorderPoint,
		AverageUnitCost:   s.AverageUnitCost,
		LowStock:          s.IsLowStock(),
		UpdatedAt:         s.UpdatedAt,
	}
}

// ToStockDTOs converts a slice of stock rows
func ToStockDTOs(stocks []*domain.Stock) []StockDTO {
	dtos := make([]StockDTO, len(stocks))
	for i, s := range stocks {
		dtos[i] = *ToStockDTO(s)
	}
	return dtos
}

// ToMovementDTO converts a ledger entry to its API representation
func ToMovementDTO(m *domain.Movement) *MovementDTO {
	return &MovementDTO{
		ID:              m.ID,
		MovementType:    string(m.MovementType),
		PartID:          m.PartID,
		WarehouseID:     m.WarehouseID,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		WorkOrderID:     m.WorkOrderID,
		PurchaseOrderID: m.PurchaseOrderID,
		Reference:       m.Reference,
		Reason:          m.Reason,
		BalanceAfter:    m.BalanceAfter,
		ActorID:         m.ActorID,
		CreatedAt:       m.CreatedAt,
	}
}

// ToMovementDTOs converts a slice of ledger entries
func ToMovementDTOs(movements []*domain.Movement) []MovementDTO {
	dtos := make([]MovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = *ToMovementDTO(m)
	}
	return dtos
}

// ToReservationDTO converts a hold to its API representation
func ToReservationDTO(r *domain.Reservation) *ReservationDTO {
	return &ReservationDTO{
		ID:          r.ID,
		WorkOrderID: r.WorkOrderID,
		PartID:      r.PartID,
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		Status:      string(r.Status),
		ReservedBy:  r.ReservedBy,
		CreatedAt:   r.CreatedAt,
		ConsumedAt:  r.ConsumedAt,
		CancelledAt: r.CancelledAt,
	}
}

// ToPartDTO converts a catalog part to its API representation
func ToPartDTO(p *domain.Part) *PartDTO {
	return &PartDTO{
		ID:         p.ID,
		PartNumber: p.PartNumber,
		Name:       p.Name,
		Category:   p.Category,
		SupplierID: p.SupplierID,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
	}
}

// ToPartDTOs converts a slice of catalog parts
func ToPartDTOs(parts []*domain.Part) []PartDTO {
	dtos := make([]PartDTO, len(parts))
	for i, p := range parts {
		dtos[i] = *ToPartDTO(p)
	}
	return dtos
}

// ToWarehouseDTO converts a warehouse to its API representation
func ToWarehouseDTO(w *domain.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		ID:      w.ID,
		PlantID: w.PlantID,
		Code:    w.Code,
		Name:    w.Name,
		Active:  w.Active,
	}
}

// ToWarehouseDTOs converts a slice of warehouses
func ToWarehouseDTOs(warehouses []*domain.Warehouse) []WarehouseDTO {
	dtos := make([]WarehouseDTO, len(warehouses))
	for i, w := range warehouses {
		dtos[i] = *ToWarehouseDTO(w)
	}
	return dtos
}
