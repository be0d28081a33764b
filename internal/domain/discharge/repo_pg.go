package discharge

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const dischargeCols = `id, admission_id, patient_id, patient_name, doctor_id, doctor_name,
	ward_id, bed_id, diagnosis, type, reason, notes, medications, follow_up_date,
	admitted_at, discharged_at, created_at`

func (r *repoPG) Create(ctx context.Context, d *Discharge) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO discharge (
			id, admission_id, patient_id, patient_name, doctor_id, doctor_name,
			ward_id, bed_id, diagnosis, type, reason, notes, medications,
			follow_up_date, admitted_at, discharged_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING created_at`,
		d.ID, d.AdmissionID, d.PatientID, d.PatientName, d.DoctorID, d.DoctorName,
		d.WardID, d.BedID, d.Diagnosis, d.Type, d.Reason, d.Notes, d.Medications,
		d.FollowUpDate, d.AdmittedAt, d.DischargedAt,
	).Scan(&d.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyDischarged
	}
	return err
}

func (r *repoPG) GetByAdmission(ctx context.Context, admissionID uuid.UUID) (*Discharge, error) {
	var d Discharge
	err := r.pool.QueryRow(ctx,
		`SELECT `+dischargeCols+` FROM discharge WHERE admission_id = $1`, admissionID,
	).Scan(
		&d.ID, &d.AdmissionID, &d.PatientID, &d.PatientName, &d.DoctorID, &d.DoctorName,
		&d.WardID, &d.BedID, &d.Diagnosis, &d.Type, &d.Reason, &d.Notes, &d.Medications,
		&d.FollowUpDate, &d.AdmittedAt, &d.DischargedAt, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDischargeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Discharge, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM discharge`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+dischargeCols+` FROM discharge
		 ORDER BY discharged_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var discharges []*Discharge
	for rows.Next() {
		var d Discharge
		if err := rows.Scan(
			&d.ID, &d.AdmissionID, &d.PatientID, &d.PatientName, &d.DoctorID, &d.DoctorName,
			&d.WardID, &d.BedID, &d.Diagnosis, &d.Type, &d.Reason, &d.Notes, &d.Medications,
			&d.FollowUpDate, &d.AdmittedAt, &d.DischargedAt, &d.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		discharges = append(discharges, &d)
	}
	return discharges, total, rows.Err()
}
