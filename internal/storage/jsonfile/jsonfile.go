// Package jsonfile provides a flat-file implementation of the
// storage.Storage interface.
//
// The whole collection lives in memory as an ordered slice and is written
// back to a single JSON file (a pretty-printed array) after every
// mutation. The file is read once, when the store is created.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"github.com/aanand-mishra/appointments-api/internal/config"
	"github.com/aanand-mishra/appointments-api/internal/storage"
	"github.com/aanand-mishra/appointments-api/internal/types"
)

// JSONFile is the file-backed store. The zero value is not usable; call New.
type JSONFile struct {
	path string

	// mu guards appointments across the whole lookup → mutate → save
	// sequence of every operation.
	mu           sync.Mutex
	appointments []types.Appointment
}

// New loads the collection stored at cfg.StoragePath and returns a ready
// store. A missing file yields an empty store; malformed content is an
// error and the caller should not start serving.
func New(cfg *config.Config) (*JSONFile, error) {
	appointments, err := load(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("jsonfile.New: %w", err)
	}

	return &JSONFile{path: cfg.StoragePath, appointments: appointments}, nil
}

// load reads the persisted collection, or returns an empty one if the
// file does not exist yet.
func load(path string) ([]types.Appointment, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make([]types.Appointment, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var appointments []types.Appointment
	if err := json.Unmarshal(data, &appointments); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if appointments == nil {
		// a literal "null" in the file
		appointments = make([]types.Appointment, 0)
	}

	return appointments, nil
}

// save overwrites the file with the full collection. The write is not
// atomic: a crash mid-write can leave a truncated file.
func save(path string, appointments []types.Appointment) error {
	data, err := json.MarshalIndent(appointments, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// indexOf returns the index of the first appointment for phone, or -1.
// Callers must hold mu.
func (s *JSONFile) indexOf(phone string) int {
	return slices.IndexFunc(s.appointments, func(a types.Appointment) bool {
		return a.Phone == phone
	})
}

// commit persists next and, only on success, makes it the in-memory
// collection. Callers must hold mu.
func (s *JSONFile) commit(next []types.Appointment) error {
	if err := save(s.path, next); err != nil {
		return err
	}
	s.appointments = next
	return nil
}

func (s *JSONFile) Upsert(appointment types.Appointment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.appointments)
	inserted := false
	if i := s.indexOf(appointment.Phone); i >= 0 {
		next[i] = appointment
	} else {
		next = append(next, appointment)
		inserted = true
	}

	if err := s.commit(next); err != nil {
		return false, fmt.Errorf("Upsert: %w", err)
	}

	return inserted, nil
}

func (s *JSONFile) Patch(phone string, patch types.AppointmentPatch) (types.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(phone)
	if i < 0 {
		return types.Appointment{}, fmt.Errorf("Patch %q: %w", phone, storage.ErrNotFound)
	}

	next := slices.Clone(s.appointments)
	patch.Apply(&next[i])

	if err := s.commit(next); err != nil {
		return types.Appointment{}, fmt.Errorf("Patch: %w", err)
	}

	return next[i], nil
}

func (s *JSONFile) Remove(phone string) (types.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(phone)
	if i < 0 {
		return types.Appointment{}, fmt.Errorf("Remove %q: %w", phone, storage.ErrNotFound)
	}

	removed := s.appointments[i]
	next := slices.Delete(slices.Clone(s.appointments), i, i+1)

	if err := s.commit(next); err != nil {
		return types.Appointment{}, fmt.Errorf("Remove: %w", err)
	}

	return removed, nil
}

func (s *JSONFile) Get(phone string) (types.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(phone)
	if i < 0 {
		return types.Appointment{}, fmt.Errorf("Get %q: %w", phone, storage.ErrNotFound)
	}

	return s.appointments[i], nil
}

func (s *JSONFile) List() ([]types.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.appointments), nil
}

// Close is a no-op: the file is not held open between writes.
func (s *JSONFile) Close() error {
	return nil
}

var _ storage.Storage = (*JSONFile)(nil)
