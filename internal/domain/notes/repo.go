package notes

import (
	"context"
)

// SequenceAllocator issues per-patient sequence numbers. Next must be an
// atomic increment-and-read against durable storage: two calls for the same
// patient, concurrent or not, never return the same value, and the first call
// for a patient returns 1.
type SequenceAllocator interface {
	Next(ctx context.Context, patientID string) (int64, error)
}

// NoteRepository is the durable-store port for notes. Cursor strings are
// opaque resume tokens minted and consumed by the implementation; callers
// pass them back unmodified.
type NoteRepository interface {
	// Insert writes a fully populated note unconditionally. NoteID freshness
	// guarantees no key collision, so there is no precondition check.
	Insert(ctx context.Context, n *Note) error

	// Update applies the mutable fields to an existing note and returns the
	// updated record, or ErrNoteNotFound.
	Update(ctx context.Context, patientID, noteID string, upd NoteUpdate) (*Note, error)

	// List operations return up to limit notes ordered by createdAt
	// descending, plus a non-empty next cursor when more rows exist.
	ListByPatient(ctx context.Context, patientID string, limit int, cursor string) ([]*Note, string, error)
	ListByClinic(ctx context.Context, clinicID string, limit int, cursor string) ([]*Note, string, error)
	ListByClinician(ctx context.Context, clinicianID string, limit int, cursor string) ([]*Note, string, error)
}

// MaintenanceRepository backs the operator CLI only. The HTTP surface never
// deletes notes or rewinds counters.
type MaintenanceRepository interface {
	// DeleteByPatient removes all notes for a patient and reports how many
	// rows went away.
	DeleteByPatient(ctx context.Context, patientID string) (int64, error)

	// ResetCounter overwrites the patient's counter. value must match the
	// highest sequence number still in use or new allocations will collide.
	ResetCounter(ctx context.Context, patientID string, value int64) error

	// Counter reads the patient's counter row, or nil when none exists yet.
	Counter(ctx context.Context, patientID string) (*SequenceCounter, error)
}
