package sandbox

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sleepwell/notes-api/internal/domain/notes"
)

type memStore struct {
	mu       sync.Mutex
	notes    []*notes.Note
	counters map[string]int64
}

func newMemStore() *memStore {
	return &memStore{counters: map[string]int64{}}
}

func (m *memStore) Next(ctx context.Context, patientID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[patientID]++
	return m.counters[patientID], nil
}

func (m *memStore) Insert(ctx context.Context, n *notes.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.notes = append(m.notes, &clone)
	return nil
}

func (m *memStore) Update(ctx context.Context, patientID, noteID string, upd notes.NoteUpdate) (*notes.Note, error) {
	return nil, notes.ErrNoteNotFound
}

func (m *memStore) ListByPatient(ctx context.Context, patientID string, limit int, cursor string) ([]*notes.Note, string, error) {
	return nil, "", nil
}

func (m *memStore) ListByClinic(ctx context.Context, clinicID string, limit int, cursor string) ([]*notes.Note, string, error) {
	return nil, "", nil
}

func (m *memStore) ListByClinician(ctx context.Context, clinicianID string, limit int, cursor string) ([]*notes.Note, string, error) {
	return nil, "", nil
}

func TestSeed(t *testing.T) {
	store := newMemStore()
	svc := notes.NewService(store, store, zerolog.Nop())
	seeder := NewSeeder(svc, zerolog.Nop())

	cfg := SeedConfig{Clinics: 2, PatientsPerClinic: 2, NotesPerPatient: 2}
	created, err := seeder.Seed(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := cfg.Clinics * cfg.PatientsPerClinic * cfg.NotesPerPatient
	if created != want {
		t.Fatalf("expected %d notes, got %d", want, created)
	}
	if len(store.notes) != want {
		t.Fatalf("expected %d stored notes, got %d", want, len(store.notes))
	}

	byPatient := map[string][]string{}
	for _, n := range store.notes {
		if !strings.HasPrefix(n.PatientID, "P") {
			t.Errorf("unexpected patient id %s", n.PatientID)
		}
		if !strings.HasPrefix(n.ClinicID, "C") || !strings.HasPrefix(n.CreatedBy, "M") {
			t.Errorf("unexpected identity %s/%s", n.ClinicID, n.CreatedBy)
		}
		byPatient[n.PatientID] = append(byPatient[n.PatientID], n.SleepStudyID)
	}

	if len(byPatient) != cfg.Clinics*cfg.PatientsPerClinic {
		t.Fatalf("expected %d patients, got %d", cfg.Clinics*cfg.PatientsPerClinic, len(byPatient))
	}
	for patientID, ids := range byPatient {
		if len(ids) != cfg.NotesPerPatient {
			t.Errorf("patient %s: expected %d notes, got %d", patientID, cfg.NotesPerPatient, len(ids))
		}
		if ids[0] != patientID+"-S001" || ids[1] != patientID+"-S002" {
			t.Errorf("patient %s: unexpected sequence %v", patientID, ids)
		}
	}
}

func TestDefaultSeedConfig(t *testing.T) {
	cfg := DefaultSeedConfig()
	if cfg.Clinics != 10 || cfg.PatientsPerClinic != 2 || cfg.NotesPerPatient != 2 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
