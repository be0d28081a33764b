package admission

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const admCols = `id, patient_id, patient_name, doctor_id, doctor_name, ward_id, bed_id,
	status, diagnosis, notes, payment_method, deposit_amount, admitted_at,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Admission) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO admission (
			id, patient_id, patient_name, doctor_id, doctor_name, ward_id, bed_id,
			status, diagnosis, notes, payment_method, deposit_amount, admitted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.PatientName, a.DoctorID, a.DoctorName, a.WardID, a.BedID,
		a.Status, a.Diagnosis, a.Notes, a.PaymentMethod, a.DepositAmount, a.AdmittedAt,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return scanAdmission(r.pool.QueryRow(ctx,
		`SELECT `+admCols+` FROM admission WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Admission) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE admission SET
			ward_id=$2, bed_id=$3, status=$4, diagnosis=$5, notes=$6,
			payment_method=$7, deposit_amount=$8, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.WardID, a.BedID, a.Status, a.Diagnosis, a.Notes,
		a.PaymentMethod, a.DepositAmount,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Admission, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	n := 0
	next := func() string {
		n++
		return "$" + strconv.Itoa(n)
	}
	if f.PatientID != uuid.Nil {
		where += " AND patient_id = " + next()
		args = append(args, f.PatientID)
	}
	if f.WardID != uuid.Nil {
		where += " AND ward_id = " + next()
		args = append(args, f.WardID)
	}
	if f.ActiveOnly {
		where += " AND status <> 'discharged'"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admission`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + admCols + ` FROM admission` + where +
		` ORDER BY admitted_at DESC LIMIT ` + next()
	args = append(args, limit)
	query += ` OFFSET ` + next()
	args = append(args, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admissions []*Admission
	for rows.Next() {
		var a Admission
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.DoctorName, &a.WardID, &a.BedID,
			&a.Status, &a.Diagnosis, &a.Notes, &a.PaymentMethod, &a.DepositAmount, &a.AdmittedAt,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		admissions = append(admissions, &a)
	}
	return admissions, total, rows.Err()
}

func scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.DoctorID, &a.DoctorName, &a.WardID, &a.BedID,
		&a.Status, &a.Diagnosis, &a.Notes, &a.PaymentMethod, &a.DepositAmount, &a.AdmittedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
