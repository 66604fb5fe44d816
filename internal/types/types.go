// Package types holds the shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers and every storage backend import types without depending on
// each other.
package types

// Appointment is a single booking. Phone is the identifying key: the
// store keeps at most one appointment per distinct phone value.
//
// Struct tags:
//
//  1. json:"..."    : key names in the persisted file and the read API.
//     Notes is omitted when empty so records booked without notes are
//     written without the key.
//
//  2. validate:"...": rules checked by go-playground/validator before a
//     booking reaches the store.
type Appointment struct {
	Name    string `json:"name"            validate:"required"`
	Email   string `json:"email"           validate:"required"`
	Phone   string `json:"phone"           validate:"required"`
	Service string `json:"service"         validate:"required"`
	Time    string `json:"time"            validate:"required"`
	Date    string `json:"date"            validate:"required"`
	Notes   string `json:"notes,omitempty"`
}

// AppointmentPatch is a partial update. Only non-empty fields are applied.
type AppointmentPatch struct {
	Service string `json:"service"`
	Time    string `json:"time"`
	Date    string `json:"date"`
	Notes   string `json:"notes"`
}

// IsEmpty reports whether the patch would change nothing.
func (p AppointmentPatch) IsEmpty() bool {
	return p.Service == "" && p.Time == "" && p.Date == "" && p.Notes == ""
}

// Apply copies the non-empty fields of p onto a.
func (p AppointmentPatch) Apply(a *Appointment) {
	if p.Service != "" {
		a.Service = p.Service
	}
	if p.Time != "" {
		a.Time = p.Time
	}
	if p.Date != "" {
		a.Date = p.Date
	}
	if p.Notes != "" {
		a.Notes = p.Notes
	}
}
