package notes

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sleepwell/notes-api/pkg/pagination"
)

// ErrorBody is the uniform failure envelope.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/patients/:patientId/notes", h.CreateNote)
	g.GET("/patients/:patientId/notes", h.ListPatientNotes)
	g.GET("/notes", h.ListNotes)
	g.PUT("/patients/:patientId/notes/:noteId", h.UpdateNote)
}

// CreateNote handles POST /patients/:patientId/notes.
func (h *Handler) CreateNote(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.fail(c, &StorageError{Op: "read request body", Err: err})
	}

	note, err := h.svc.CreateNote(c.Request().Context(), c.Param("patientId"), body)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, note)
}

// ListPatientNotes handles GET /patients/:patientId/notes, the path-scoped
// form of the list operation.
func (h *Handler) ListPatientNotes(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, CodeValidation, err.Error())
	}

	resp, err := h.svc.ListNotes(c.Request().Context(), ListQuery{
		Scope:  ScopePatient,
		Key:    c.Param("patientId"),
		Limit:  pg.Limit,
		Cursor: pg.Cursor,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListNotes handles GET /notes?patientId=|clinicId=|clinicianId=. Exactly one
// scope key is honored, checked in that order.
func (h *Handler) ListNotes(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, CodeValidation, err.Error())
	}

	q := ListQuery{Limit: pg.Limit, Cursor: pg.Cursor}
	switch {
	case c.QueryParam("patientId") != "":
		q.Scope, q.Key = ScopePatient, c.QueryParam("patientId")
	case c.QueryParam("clinicId") != "":
		q.Scope, q.Key = ScopeClinic, c.QueryParam("clinicId")
	case c.QueryParam("clinicianId") != "":
		q.Scope, q.Key = ScopeClinician, c.QueryParam("clinicianId")
	}

	resp, err := h.svc.ListNotes(c.Request().Context(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateNote handles PUT /patients/:patientId/notes/:noteId.
func (h *Handler) UpdateNote(c echo.Context) error {
	patientID := c.Param("patientId")
	noteID := c.Param("noteId")
	if patientID == "" || noteID == "" {
		return writeError(c, http.StatusBadRequest, CodeMissingParameters,
			"Patient ID and Note ID are required")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.fail(c, &StorageError{Op: "read request body", Err: err})
	}
	if len(body) == 0 {
		return writeError(c, http.StatusBadRequest, CodeMissingBody,
			"Request body is required")
	}

	note, err := h.svc.UpdateNote(c.Request().Context(), patientID, noteID, body)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// fail maps the domain error taxonomy onto status codes and the error
// envelope. Downstream-store failures are logged with detail but surfaced to
// the caller as a generic internal error.
func (h *Handler) fail(c echo.Context, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return writeError(c, http.StatusBadRequest, verr.Code, verr.Message)
	}
	if errors.Is(err, ErrNoteNotFound) {
		return writeError(c, http.StatusNotFound, CodeNotFound, "Note not found")
	}

	rid, _ := c.Get("request_id").(string)
	h.log.Error().Err(err).
		Str("request_id", rid).
		Str("path", c.Request().URL.Path).
		Msg("request failed")
	return writeError(c, http.StatusInternalServerError, CodeInternal,
		"An unexpected error occurred")
}

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}
