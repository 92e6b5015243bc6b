package models

// Status of a service order. Values are the display strings the shop has
// always used; they are stored as-is and printed as-is on the receipt.
type Status string

const (
	StatusIngested   Status = "Ingresado"
	StatusDiagnosing Status = "En diagnóstico"
	StatusRepairing  Status = "En reparación"
	StatusReady      Status = "Listo"
	StatusDelivered  Status = "Entregado"
)

// Statuses in workflow order. Transitions only move forward through this
// list; skipping stages is allowed, going back is not.
var Statuses = []Status{
	StatusIngested,
	StatusDiagnosing,
	StatusRepairing,
	StatusReady,
	StatusDelivered,
}

// Rank returns the position of s in the workflow, or -1 for unknown values.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// EquipmentTypes offered to the intake form. Free-text values are still
// accepted; the list only drives the dropdown.
var EquipmentTypes = []string{"Computadora", "Laptop", "Impresora"}

// Brands offered to the intake form.
var Brands = []string{
	"Lenovo", "HP", "Dell", "Asus", "MSI", "Huawei", "Apple", "Acer",
	"Epson", "Canon", "Brother", "Samsung", "Toshiba",
}
