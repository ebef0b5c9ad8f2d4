package notes

import (
	"time"
)

// Visibility values accepted on a note.
const (
	VisibilityInternal = "internal"
	VisibilityShared   = "shared"
)

// Note is a single clinical follow-up annotation. SleepStudyID, ClinicID,
// CreatedBy and CreatedAt are assigned at creation and never change; only
// NoteText may be updated afterwards.
type Note struct {
	NoteID       string    `db:"note_id" json:"noteId"`
	PatientID    string    `db:"patient_id" json:"patientId"`
	NoteText     string    `db:"note_text" json:"noteText"`
	SleepStudyID string    `db:"sleep_study_id" json:"sleepStudyId"`
	Visibility   string    `db:"visibility" json:"visibility"`
	ClinicID     string    `db:"clinic_id" json:"clinicId"`
	CreatedBy    string    `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// SequenceCounter maps to the sleep_study_counters table. CurrentValue is the
// count of sequence numbers already issued to the patient.
type SequenceCounter struct {
	PatientID    string `db:"patient_id" json:"patientId"`
	CurrentValue int64  `db:"current_value" json:"currentValue"`
}

// NewNote is the normalized output of create-request validation.
type NewNote struct {
	PatientID  string
	NoteText   string
	Visibility string
}

// NoteUpdate carries the mutable fields of an update request. Nil means the
// field was not supplied.
type NoteUpdate struct {
	NoteText *string
}

// ListResponse is the wire shape of every list operation.
type ListResponse struct {
	Notes      []*Note `json:"notes"`
	NextCursor string  `json:"nextCursor,omitempty"`
}
