package notes

import (
	"encoding/json"
	"strings"
)

const maxNoteTextLen = 5000

// ValidatePatientID checks that a path-supplied patient id is a non-empty
// string after trimming and returns the trimmed form.
func ValidatePatientID(patientID string) (string, *ValidationError) {
	trimmed := strings.TrimSpace(patientID)
	if trimmed == "" {
		return "", NewValidationError("Patient ID is required and must be a non-empty string")
	}
	return trimmed, nil
}

// ValidateCreateRequest applies the create-note rules in order, first failure
// wins, and returns the normalized note input. It is a pure function: no
// side effects, and the returned NoteText is the trimmed form with internal
// whitespace preserved.
//
// The body is decoded into an untyped map so that a non-string noteText is
// reported as a type error rather than a JSON error, matching the legacy
// messages clients already handle.
func ValidateCreateRequest(patientID string, body []byte) (*NewNote, *ValidationError) {
	pid, verr := ValidatePatientID(patientID)
	if verr != nil {
		return nil, verr
	}

	payload := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, NewValidationError("Invalid JSON in request body")
		}
	}

	raw, present := payload["noteText"]
	text, verr := validateNoteText(raw, present)
	if verr != nil {
		return nil, verr
	}

	if raw, ok := payload["sleepStudyId"]; ok && raw != nil {
		if _, isString := raw.(string); !isString {
			return nil, NewValidationError("Sleep study ID must be a string")
		}
	}

	visibility := VisibilityInternal
	if raw, ok := payload["visibility"]; ok && raw != nil {
		s, isString := raw.(string)
		if !isString || (s != VisibilityInternal && s != VisibilityShared) {
			return nil, NewValidationError("Visibility must be either 'internal' or 'shared'")
		}
		visibility = s
	}

	return &NewNote{PatientID: pid, NoteText: text, Visibility: visibility}, nil
}

// validateNoteText enforces presence, type and the 1..5000 length bound after
// trimming leading and trailing whitespace.
func validateNoteText(raw interface{}, present bool) (string, *ValidationError) {
	if !present || raw == nil {
		return "", NewValidationError("Note text is required")
	}
	s, isString := raw.(string)
	if !isString {
		return "", NewValidationError("Note text must be a string")
	}
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return "", NewValidationError("Note text cannot be empty")
	}
	if len([]rune(trimmed)) > maxNoteTextLen {
		return "", NewValidationError("Note text cannot exceed 5000 characters")
	}
	return trimmed, nil
}

// ValidateUpdateRequest parses a partial update body. sleepStudyId is
// structurally accepted but always refused: the id is derived at creation and
// immutable.
func ValidateUpdateRequest(body []byte) (*NoteUpdate, *ValidationError) {
	payload := map[string]interface{}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, NewValidationError("Invalid JSON in request body")
	}

	_, hasNoteText := payload["noteText"]
	_, hasSleepStudyID := payload["sleepStudyId"]

	if !hasNoteText && !hasSleepStudyID {
		return nil, &ValidationError{
			Code:    CodeNoUpdates,
			Message: "At least one field must be provided for update",
		}
	}

	if hasSleepStudyID {
		return nil, NewValidationError("Sleep study ID is assigned at creation and cannot be modified")
	}

	text, verr := validateNoteText(payload["noteText"], hasNoteText)
	if verr != nil {
		return nil, &ValidationError{Code: CodeInvalidNoteText, Message: verr.Message}
	}

	return &NoteUpdate{NoteText: &text}, nil
}
