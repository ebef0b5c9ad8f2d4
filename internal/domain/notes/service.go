package notes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sleepwell/notes-api/internal/platform/identity"
)

// List scopes. Exactly one is honored per list call.
const (
	ScopePatient   = "patientId"
	ScopeClinic    = "clinicId"
	ScopeClinician = "clinicianId"
)

// ListQuery selects one scope plus pagination parameters. Cursor is the
// opaque token from a previous response, empty for the first page.
type ListQuery struct {
	Scope  string
	Key    string
	Limit  int
	Cursor string
}

// Service runs the note operations. It holds no mutable state: all
// cross-request coordination lives in the store behind the repository and
// allocator ports.
type Service struct {
	repo NoteRepository
	seq  SequenceAllocator
	log  zerolog.Logger
}

func NewService(repo NoteRepository, seq SequenceAllocator, log zerolog.Logger) *Service {
	return &Service{repo: repo, seq: seq, log: log}
}

// CreateNote is the validate → allocate → write pipeline. Validation runs
// first so a rejected request never moves the patient's counter. If the write
// fails after allocation the counter stays advanced: a numbering gap is
// accepted, a rollback would reopen the concurrent-reuse hazard the counter
// exists to close.
func (s *Service) CreateNote(ctx context.Context, patientID string, body []byte) (*Note, error) {
	input, verr := ValidateCreateRequest(patientID, body)
	if verr != nil {
		return nil, verr
	}

	seq, err := s.seq.Next(ctx, input.PatientID)
	if err != nil {
		return nil, &SequenceAllocationError{PatientID: input.PatientID, Err: err}
	}

	caller := identity.FromContext(ctx)
	note := &Note{
		NoteID:       uuid.NewString(),
		PatientID:    input.PatientID,
		NoteText:     input.NoteText,
		SleepStudyID: FormatSleepStudyID(input.PatientID, seq),
		Visibility:   input.Visibility,
		ClinicID:     caller.ClinicID,
		CreatedBy:    caller.UserID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, note); err != nil {
		// The allocated number now has no note. Tolerated; see above.
		s.log.Warn().
			Str("patient_id", input.PatientID).
			Int64("orphaned_sequence", seq).
			Err(err).
			Msg("note write failed after sequence allocation")
		return nil, &StorageError{Op: "insert note", Err: err}
	}

	s.log.Info().
		Str("patient_id", note.PatientID).
		Str("note_id", note.NoteID).
		Str("sleep_study_id", note.SleepStudyID).
		Msg("note created")
	return note, nil
}

// ListNotes returns one page of notes for the query's scope, newest first.
func (s *Service) ListNotes(ctx context.Context, q ListQuery) (*ListResponse, error) {
	var (
		items []*Note
		next  string
		err   error
	)
	switch q.Scope {
	case ScopePatient:
		pid, verr := ValidatePatientID(q.Key)
		if verr != nil {
			return nil, verr
		}
		items, next, err = s.repo.ListByPatient(ctx, pid, q.Limit, q.Cursor)
	case ScopeClinic:
		items, next, err = s.repo.ListByClinic(ctx, q.Key, q.Limit, q.Cursor)
	case ScopeClinician:
		items, next, err = s.repo.ListByClinician(ctx, q.Key, q.Limit, q.Cursor)
	default:
		return nil, NewValidationError(
			"At least one search parameter is required: patientId, clinicId, or clinicianId")
	}
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, &StorageError{Op: "list notes", Err: err}
	}
	if items == nil {
		items = []*Note{}
	}
	return &ListResponse{Notes: items, NextCursor: next}, nil
}

// UpdateNote applies a validated partial update to an existing note. The
// sleep-study id never changes.
func (s *Service) UpdateNote(ctx context.Context, patientID, noteID string, body []byte) (*Note, error) {
	upd, verr := ValidateUpdateRequest(body)
	if verr != nil {
		return nil, verr
	}

	note, err := s.repo.Update(ctx, patientID, noteID, *upd)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		return nil, &StorageError{Op: "update note", Err: err}
	}

	s.log.Info().
		Str("patient_id", note.PatientID).
		Str("note_id", note.NoteID).
		Msg("note updated")
	return note, nil
}
