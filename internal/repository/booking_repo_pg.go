package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]domain.Booking, error)
	CountActiveByDoctor(ctx context.Context, doctorID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	TokenExists(ctx context.Context, token int) (bool, error)
	TokenExistsForDoctor(ctx context.Context, doctorID string, token int) (bool, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, patient_name, patient_problem, age, phone, doctor_id, doctor_name, specialization, token, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.PatientName, &b.PatientProblem, &b.Age, &b.Phone, &b.DoctorID, &b.DoctorName, &b.Specialization, &b.Token, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	b.Status = domain.NormalizeStoredStatus(status)
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, patient_name, patient_problem, age, phone, doctor_id, doctor_name, specialization, token, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		booking.ID, booking.PatientName, booking.PatientProblem, booking.Age, booking.Phone,
		booking.DoctorID, booking.DoctorName, booking.Specialization, booking.Token, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
}

func (r *PGBookingRepository) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE doctor_id=$1 ORDER BY token, created_at, id`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) CountActiveByDoctor(ctx context.Context, doctorID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE doctor_id=$1 AND lower(status) <> $2`, doctorID, domain.BookingStatusCompleted).Scan(&n)
	return n, err
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, status, id))
}

func (r *PGBookingRepository) TokenExists(ctx context.Context, token int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE token=$1)`, token).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) TokenExistsForDoctor(ctx context.Context, doctorID string, token int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE doctor_id=$1 AND token=$2)`, doctorID, token).Scan(&exists)
	return exists, err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
