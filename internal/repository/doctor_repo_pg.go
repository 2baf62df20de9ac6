package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DoctorRepository interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	GetByAuthSubject(ctx context.Context, uid string) (*domain.Doctor, error)
	Create(ctx context.Context, doctor *domain.Doctor) error
}

type PGDoctorRepository struct {
	db *pgxpool.Pool
}

func NewDoctorRepository(db *pgxpool.Pool) DoctorRepository {
	return &PGDoctorRepository{db: db}
}

func (r *PGDoctorRepository) List(ctx context.Context) ([]domain.Doctor, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, specialization, auth_subject_id, created_at FROM doctors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := make([]domain.Doctor, 0)
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialization, &d.AuthSubjectID, &d.CreatedAt); err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (r *PGDoctorRepository) GetByAuthSubject(ctx context.Context, uid string) (*domain.Doctor, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, specialization, auth_subject_id, created_at FROM doctors WHERE auth_subject_id=$1`, uid)
	var d domain.Doctor
	if err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.AuthSubjectID, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGDoctorRepository) Create(ctx context.Context, doctor *domain.Doctor) error {
	return r.db.QueryRow(ctx, `INSERT INTO doctors (id, name, specialization, auth_subject_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, doctor.ID, doctor.Name, doctor.Specialization, doctor.AuthSubjectID).
		Scan(&doctor.CreatedAt)
}

var _ DoctorRepository = (*PGDoctorRepository)(nil)
