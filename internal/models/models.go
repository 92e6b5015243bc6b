package models

import (
	"time"
)

// Customer - a person bringing equipment in for repair
type Customer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	FullName   string         `json:"full_name" gorm:"not null" binding:"required"`
	Address    string         `json:"address"`
	Phone      string         `json:"phone" gorm:"not null;index" binding:"required"`
	NationalID string         `json:"national_id" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	Orders     []ServiceOrder `json:"orders,omitempty" gorm:"foreignKey:CustomerID"`
}

// Equipment - one row per service order
type Equipment struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Type         string `json:"type" gorm:"not null"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
}

// ServiceOrder is the repair order itself. The order number is the public
// identifier; the row is created once at intake and then mutated in place as
// the repair progresses. Orders are never deleted.
type ServiceOrder struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Number         string     `json:"number" gorm:"uniqueIndex;not null"`
	CustomerID     uint       `json:"customer_id" gorm:"not null;index"`
	Customer       Customer   `json:"customer,omitempty"`
	EquipmentID    uint       `json:"equipment_id" gorm:"not null"`
	Equipment      Equipment  `json:"equipment,omitempty"`
	Fault          string     `json:"fault" gorm:"not null"`
	Diagnosis      string     `json:"diagnosis"`
	Resolution     string     `json:"resolution"`
	Status         Status     `json:"status" gorm:"not null;index"`
	IntakeAt       time.Time  `json:"intake_at" gorm:"not null;index"`
	DeliveredAt    *time.Time `json:"delivered_at"`
	Technician     string     `json:"technician"`
	LaborCost      float64    `json:"labor_cost" gorm:"default:0"`
	PartsCost      float64    `json:"parts_cost" gorm:"default:0"`
	WarrantyDays   int        `json:"warranty_days" gorm:"default:0"`
	Notes          string     `json:"notes"`
	IdempotencyKey *string    `json:"-" gorm:"uniqueIndex"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// OrderSequence holds the per-year counter behind order numbers. One row per
// calendar year, bumped inside the same transaction that inserts the order.
type OrderSequence struct {
	ID      uint `gorm:"primaryKey"`
	Year    int  `gorm:"uniqueIndex;not null"`
	Counter int  `gorm:"not null"`
}

type RegisterCustomerRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Address    string `json:"address"`
	Phone      string `json:"phone" binding:"required"`
	NationalID string `json:"national_id"`
}

type IntakeRequest struct {
	CustomerID     uint    `json:"customer_id" binding:"required"`
	EquipmentType  string  `json:"equipment_type" binding:"required"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	SerialNumber   string  `json:"serial_number"`
	Fault          string  `json:"fault" binding:"required"`
	Diagnosis      string  `json:"diagnosis"`
	Resolution     string  `json:"resolution"`
	Technician     string  `json:"technician"`
	LaborCost      float64 `json:"labor_cost" binding:"omitempty,min=0"`
	PartsCost      float64 `json:"parts_cost" binding:"omitempty,min=0"`
	WarrantyDays   int     `json:"warranty_days" binding:"omitempty,min=0"`
	Notes          string  `json:"notes"`
	IdempotencyKey string  `json:"idempotency_key"`
}

type UpdateOrderRequest struct {
	Diagnosis    string   `json:"diagnosis"`
	Resolution   string   `json:"resolution"`
	Technician   string   `json:"technician"`
	LaborCost    *float64 `json:"labor_cost"`
	PartsCost    *float64 `json:"parts_cost"`
	WarrantyDays *int     `json:"warranty_days"`
	Notes        string   `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderDetail is the flattened read model consumed by the document renderer:
// one order joined with its customer and equipment. Optional fields that were
// never filled in come through as empty strings.
type OrderDetail struct {
	Number       string     `json:"number"`
	IntakeAt     time.Time  `json:"intake_at"`
	DeliveredAt  *time.Time `json:"delivered_at"`
	Status       Status     `json:"status"`
	Technician   string     `json:"technician"`
	CustomerName string     `json:"customer_name"`
	Address      string     `json:"address"`
	Phone        string     `json:"phone"`
	NationalID   string     `json:"national_id"`
	Type         string     `json:"equipment_type"`
	Brand        string     `json:"brand"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serial_number"`
	Fault        string     `json:"fault"`
	Diagnosis    string     `json:"diagnosis"`
	Resolution   string     `json:"resolution"`
	LaborCost    float64    `json:"labor_cost"`
	PartsCost    float64    `json:"parts_cost"`
	TotalCost    float64    `json:"total_cost"`
	WarrantyDays int        `json:"warranty_days"`
	Notes        string     `json:"notes"`
}

type OrderFilter struct {
	Status     Status
	CustomerID uint
	Limit      int
	Offset     int
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
