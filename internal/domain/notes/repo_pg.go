package notes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// repoPG implements NoteRepository, SequenceAllocator and
// MaintenanceRepository on a pgx pool.
type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed notes repository.
func NewRepoPG(pool *pgxpool.Pool) *repoPG {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn() queryable { return r.pool }

const noteCols = `note_id, patient_id, note_text, sleep_study_id, visibility,
	clinic_id, created_by, created_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.NoteID, &n.PatientID, &n.NoteText, &n.SleepStudyID,
		&n.Visibility, &n.ClinicID, &n.CreatedBy, &n.CreatedAt)
	return &n, err
}

// Next performs the atomic increment-and-read on the patient's counter row.
// The upsert initializes a missing counter and advances it in one statement,
// so concurrent first allocations cannot both observe an empty table, and no
// read-modify-write window exists for later ones.
func (r *repoPG) Next(ctx context.Context, patientID string) (int64, error) {
	var value int64
	err := r.conn().QueryRow(ctx, `
		INSERT INTO sleep_study_counters (patient_id, current_value)
		VALUES ($1, 1)
		ON CONFLICT (patient_id)
		DO UPDATE SET current_value = sleep_study_counters.current_value + 1
		RETURNING current_value`,
		patientID).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *repoPG) Insert(ctx context.Context, n *Note) error {
	_, err := r.conn().Exec(ctx, `
		INSERT INTO notes (note_id, patient_id, note_text, sleep_study_id,
			visibility, clinic_id, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.NoteID, n.PatientID, n.NoteText, n.SleepStudyID,
		n.Visibility, n.ClinicID, n.CreatedBy, n.CreatedAt)
	return err
}

func (r *repoPG) Update(ctx context.Context, patientID, noteID string, upd NoteUpdate) (*Note, error) {
	if upd.NoteText == nil {
		return nil, fmt.Errorf("no fields to update")
	}
	row := r.conn().QueryRow(ctx, `
		UPDATE notes SET note_text = $3
		WHERE patient_id = $1 AND note_id = $2
		RETURNING `+noteCols,
		patientID, noteID, *upd.NoteText)
	n, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string, limit int, cursor string) ([]*Note, string, error) {
	return r.list(ctx, "patient_id", patientID, limit, cursor)
}

func (r *repoPG) ListByClinic(ctx context.Context, clinicID string, limit int, cursor string) ([]*Note, string, error) {
	return r.list(ctx, "clinic_id", clinicID, limit, cursor)
}

func (r *repoPG) ListByClinician(ctx context.Context, clinicianID string, limit int, cursor string) ([]*Note, string, error) {
	return r.list(ctx, "created_by", clinicianID, limit, cursor)
}

// list pages through one scope column with a keyset on (created_at, note_id)
// descending. limit+1 rows are fetched to decide whether a next cursor exists.
func (r *repoPG) list(ctx context.Context, column, value string, limit int, cursor string) ([]*Note, string, error) {
	args := []interface{}{value, limit + 1}
	where := fmt.Sprintf("WHERE %s = $1", column)
	if cursor != "" {
		key, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", NewValidationError("Invalid cursor")
		}
		where += " AND (created_at, note_id) < ($3, $4)"
		args = append(args, key.CreatedAt, key.NoteID)
	}

	rows, err := r.conn().Query(ctx, fmt.Sprintf(
		`SELECT %s FROM notes %s ORDER BY created_at DESC, note_id DESC LIMIT $2`,
		noteCols, where), args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var items []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, "", err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var next string
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = encodeCursor(cursorKey{CreatedAt: last.CreatedAt, NoteID: last.NoteID})
	}
	return items, next, nil
}

func (r *repoPG) DeleteByPatient(ctx context.Context, patientID string) (int64, error) {
	tag, err := r.conn().Exec(ctx, `DELETE FROM notes WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) ResetCounter(ctx context.Context, patientID string, value int64) error {
	_, err := r.conn().Exec(ctx, `
		INSERT INTO sleep_study_counters (patient_id, current_value)
		VALUES ($1, $2)
		ON CONFLICT (patient_id) DO UPDATE SET current_value = $2`,
		patientID, value)
	return err
}

func (r *repoPG) Counter(ctx context.Context, patientID string) (*SequenceCounter, error) {
	var c SequenceCounter
	err := r.conn().QueryRow(ctx, `
		SELECT patient_id, current_value FROM sleep_study_counters
		WHERE patient_id = $1`,
		patientID).Scan(&c.PatientID, &c.CurrentValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
