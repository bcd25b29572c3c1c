package domain

import "time"

// WasteType classifies a disposal event.
type WasteType string

const (
	WastePlastic    WasteType = "PLASTIC"
	WastePaper      WasteType = "PAPER"
	WasteGlass      WasteType = "GLASS"
	WasteMetal      WasteType = "METAL"
	WasteOrganic    WasteType = "ORGANIC"
	WasteElectronic WasteType = "ELECTRONIC"
	WasteOther      WasteType = "OTHER"
)

// WasteTypes lists every accepted type in display order.
var WasteTypes = []WasteType{
	WastePlastic,
	WastePaper,
	WasteGlass,
	WasteMetal,
	WasteOrganic,
	WasteElectronic,
	WasteOther,
}

// Valid reports whether t is one of WasteTypes.
func (t WasteType) Valid() bool {
	for _, known := range WasteTypes {
		if t == known {
			return true
		}
	}
	return false
}

// MinDescriptionLength is the shortest accepted non-empty description.
const MinDescriptionLength = 10

// Waste is a single logged disposal event. Records are immutable once stored.
type Waste struct {
	ID          string    `json:"id"`
	Type        WasteType `json:"type" validate:"required,oneof=PLASTIC PAPER GLASS METAL ORGANIC ELECTRONIC OTHER"`
	Weight      float64   `json:"weight" validate:"gt=0"`
	Date        time.Time `json:"date" validate:"required"`
	Recycled    bool      `json:"recycled"`
	Description string    `json:"description" validate:"omitempty,min=10,max=500"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// OpenEnd is the latest calendar day a period can reach. Reads without an
// upper bound run up to it.
var OpenEnd = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthStart truncates t to the first day of its month, UTC.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
