package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *domain.DoctorEvent) error
	Delete(ctx context.Context, doctorID, id string) (bool, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]domain.DoctorEvent, error)
	ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]domain.DoctorEvent, error)
}

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

// Create inserts the event; a clash on (doctor_id, date, type) yields domain.ErrDuplicateEvent.
func (r *PGEventRepository) Create(ctx context.Context, event *domain.DoctorEvent) error {
	day, err := domain.ParseEventDate(event.Date)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx, `INSERT INTO doctor_events (id, doctor_id, date, type)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, event.ID, event.DoctorID, day, string(event.Type)).
		Scan(&event.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEvent
	}
	return err
}

// Delete reports whether a row matched.
func (r *PGEventRepository) Delete(ctx context.Context, doctorID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM doctor_events WHERE id=$1 AND doctor_id=$2`, id, doctorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGEventRepository) ListByDoctor(ctx context.Context, doctorID string) ([]domain.DoctorEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT id, doctor_id, date, type, created_at FROM doctor_events WHERE doctor_id=$1 ORDER BY date, type`, doctorID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PGEventRepository) ListByDoctorAndDate(ctx context.Context, doctorID string, date time.Time) ([]domain.DoctorEvent, error) {
	rows, err := r.db.Query(ctx, `SELECT id, doctor_id, date, type, created_at FROM doctor_events WHERE doctor_id=$1 AND date=$2 ORDER BY type`, doctorID, date)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]domain.DoctorEvent, error) {
	defer rows.Close()

	events := make([]domain.DoctorEvent, 0)
	for rows.Next() {
		var (
			e   domain.DoctorEvent
			day time.Time
			typ string
		)
		if err := rows.Scan(&e.ID, &e.DoctorID, &day, &typ, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Date = day.Format(domain.DateLayout)
		e.Type = domain.EventType(typ)
		events = append(events, e)
	}
	return events, rows.Err()
}

var _ EventRepository = (*PGEventRepository)(nil)
