package domain

import "time"

// EquipmentStatus is the operational state of a piece of equipment.
type EquipmentStatus string

const (
	EquipmentActivo          EquipmentStatus = "ACTIVO"
	EquipmentEnMantenimiento EquipmentStatus = "EN_MANTENIMIENTO"
	EquipmentDadoDeBaja      EquipmentStatus = "DADO_DE_BAJA"
)

// Equipment is a company-owned asset that requests and maintenance refer to.
// Identity fields are immutable; Status is driven by the maintenance lifecycle.
type Equipment struct {
	ID        string
	Type      string
	Brand     string
	Model     *string
	Serial    string
	CompanyID string
	Status    EquipmentStatus
	CreatedAt time.Time
}

// NewEquipment creates an active piece of equipment.
func NewEquipment(id, equipType, brand, serial, companyID string, model *string) Equipment {
	return Equipment{
		ID:        id,
		Type:      equipType,
		Brand:     brand,
		Model:     model,
		Serial:    serial,
		CompanyID: companyID,
		Status:    EquipmentActivo,
		CreatedAt: time.Now().UTC(),
	}
}
