package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const transferCols = `id, admission_id, from_ward_id, from_bed_id, from_bed_label,
	to_ward_id, to_bed_id, to_bed_label, reason, transferred_at, created_at`

func (r *repoPG) Create(ctx context.Context, t *Transfer) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO transfer (
			id, admission_id, from_ward_id, from_bed_id, from_bed_label,
			to_ward_id, to_bed_id, to_bed_label, reason, transferred_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		t.ID, t.AdmissionID, t.FromWardID, t.FromBedID, t.FromBedLabel,
		t.ToWardID, t.ToBedID, t.ToBedLabel, t.Reason, t.TransferredAt,
	).Scan(&t.CreatedAt)
}

func (r *repoPG) ListByAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Transfer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transferCols+` FROM transfer
		 WHERE admission_id = $1
		 ORDER BY transferred_at ASC, created_at ASC`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var t Transfer
		if err := rows.Scan(
			&t.ID, &t.AdmissionID, &t.FromWardID, &t.FromBedID, &t.FromBedLabel,
			&t.ToWardID, &t.ToBedID, &t.ToBedLabel, &t.Reason, &t.TransferredAt, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &t)
	}
	return transfers, rows.Err()
}
