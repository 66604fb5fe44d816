// Package storage defines the Storage interface, the contract any
// appointment backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the flat JSON file and the
// SQLite database are interchangeable: main.go picks one from config and
// the handlers never know which.
package storage

import (
	"errors"

	"github.com/aanand-mishra/appointments-api/internal/types"
)

// ErrNotFound is returned (possibly wrapped) when no appointment exists
// for the requested phone. Check it with errors.Is.
var ErrNotFound = errors.New("appointment not found")

// Storage is the appointment store contract.
//
// Every mutating method performs lookup, mutation and persistence as one
// critical section: two concurrent calls for the same phone can never
// produce two records.
type Storage interface {
	// Upsert replaces the appointment with the same phone, or appends it
	// when the phone is new. inserted is true for an append.
	Upsert(appointment types.Appointment) (inserted bool, err error)

	// Patch applies the non-empty fields of patch to the appointment for
	// phone and returns the updated record. ErrNotFound if absent.
	Patch(phone string, patch types.AppointmentPatch) (types.Appointment, error)

	// Remove deletes the appointment for phone and returns it.
	// ErrNotFound if absent.
	Remove(phone string) (types.Appointment, error)

	// Get returns the appointment for phone. ErrNotFound if absent.
	Get(phone string) (types.Appointment, error)

	// List returns every appointment in insertion order.
	// Returns an empty slice (not nil) when the store is empty.
	List() ([]types.Appointment, error)

	// Close releases the backend's resources.
	Close() error
}
