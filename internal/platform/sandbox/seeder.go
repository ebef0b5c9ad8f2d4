// Package sandbox generates synthetic demo data for development
// environments: clinics C001.., clinicians M001.., patients P0001.. with a
// couple of follow-up notes each.
package sandbox

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sleepwell/notes-api/internal/domain/notes"
	"github.com/sleepwell/notes-api/internal/platform/identity"
)

// SeedConfig controls the volume of generated demo data.
type SeedConfig struct {
	Clinics           int
	PatientsPerClinic int
	NotesPerPatient   int
}

// DefaultSeedConfig mirrors the historical demo data set: 10 clinics, 2
// patients each, 2 notes per patient.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Clinics:           10,
		PatientsPerClinic: 2,
		NotesPerPatient:   2,
	}
}

// Seeder creates demo notes through the real service pipeline so sequence
// counters and sleep-study ids stay consistent with production writes.
type Seeder struct {
	svc *notes.Service
	log zerolog.Logger
}

func NewSeeder(svc *notes.Service, log zerolog.Logger) *Seeder {
	return &Seeder{svc: svc, log: log}
}

// Seed inserts the demo data set and returns the number of notes created.
func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (int, error) {
	created := 0
	patient := 1

	for clinic := 1; clinic <= cfg.Clinics; clinic++ {
		clinicID := fmt.Sprintf("C%03d", clinic)
		clinicianID := fmt.Sprintf("M%03d", clinic)
		caller := identity.Caller{UserID: clinicianID, ClinicID: clinicID}
		callerCtx := identity.WithCaller(ctx, caller)

		for p := 1; p <= cfg.PatientsPerClinic; p++ {
			patientID := fmt.Sprintf("P%04d", patient)
			patient++

			for n := 1; n <= cfg.NotesPerPatient; n++ {
				body := fmt.Sprintf(
					`{"noteText": %q}`,
					demoNoteText(patientID, n, clinic))
				note, err := s.svc.CreateNote(callerCtx, patientID, []byte(body))
				if err != nil {
					return created, fmt.Errorf("seed note for %s: %w", patientID, err)
				}
				created++
				s.log.Debug().
					Str("patient_id", note.PatientID).
					Str("sleep_study_id", note.SleepStudyID).
					Msg("seeded note")
			}
		}
	}

	s.log.Info().Int("notes", created).Msg("demo data seeded")
	return created, nil
}

func demoNoteText(patientID string, noteNum, clinicNum int) string {
	progress := "good progress"
	if noteNum > 1 {
		progress = "continued improvement"
	}
	plan := "Continue current treatment plan."
	if clinicNum%2 == 0 {
		plan = "Recommend follow-up in 3 months."
	}
	return fmt.Sprintf(
		"Follow-up note %d for patient %s. Patient shows %s with sleep therapy. %s",
		noteNum, patientID, progress, plan)
}
