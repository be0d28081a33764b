package ward

import (
	"context"
	"errors"
	"fmt"

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

const wardCols = `id, name, code, created_at, updated_at`
const bedCols = `id, ward_id, number, label, status, occupant_admission_id, created_at, updated_at`

func (r *repoPG) CreateWard(ctx context.Context, w *Ward) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO ward (id, name, code) VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		w.ID, w.Name, w.Code,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (r *repoPG) GetWard(ctx context.Context, id uuid.UUID) (*Ward, error) {
	var w Ward
	err := r.pool.QueryRow(ctx, `SELECT `+wardCols+` FROM ward WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.Code, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repoPG) ListWards(ctx context.Context) ([]*Ward, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+wardCols+` FROM ward ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wards []*Ward
	for rows.Next() {
		var w Ward
		if err := rows.Scan(&w.ID, &w.Name, &w.Code, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		wards = append(wards, &w)
	}
	return wards, rows.Err()
}

func (r *repoPG) CreateBed(ctx context.Context, b *Bed) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO bed (id, ward_id, number, label, status, occupant_admission_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		b.ID, b.WardID, b.Number, b.Label, b.Status, b.OccupantAdmissionID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *repoPG) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return scanBed(r.pool.QueryRow(ctx, `SELECT `+bedCols+` FROM bed WHERE id = $1`, id))
}

func (r *repoPG) ListBeds(ctx context.Context, wardID uuid.UUID) ([]*Bed, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bedCols+` FROM bed WHERE ward_id = $1 ORDER BY number`, wardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var beds []*Bed
	for rows.Next() {
		var b Bed
		if err := rows.Scan(&b.ID, &b.WardID, &b.Number, &b.Label, &b.Status,
			&b.OccupantAdmissionID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		beds = append(beds, &b)
	}
	return beds, rows.Err()
}

func (r *repoPG) UpdateBed(ctx context.Context, b *Bed) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bed SET status = $2, occupant_admission_id = $3, updated_at = NOW()
		WHERE id = $1`,
		b.ID, b.Status, b.OccupantAdmissionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

// MoveBed runs both bed updates in one transaction so no reader, in
// this process or any other, sees the admission in two beds.
func (r *repoPG) MoveBed(ctx context.Context, fromBedID, toBedID, admissionID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var fromLabel string
	var fromStatus BedStatus
	var occupant *uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT label, status, occupant_admission_id FROM bed WHERE id = $1 FOR UPDATE`,
		fromBedID,
	).Scan(&fromLabel, &fromStatus, &occupant)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrBedNotFound
	}
	if err != nil {
		return err
	}
	if fromStatus != BedOccupied || occupant == nil {
		return fmt.Errorf("%w: bed %s is %s", ErrBedNotOccupied, fromLabel, fromStatus)
	}
	if *occupant != admissionID {
		return fmt.Errorf("%w: bed %s is held by another admission", ErrBedNotOccupied, fromLabel)
	}

	var toLabel string
	var toStatus BedStatus
	err = tx.QueryRow(ctx,
		`SELECT label, status FROM bed WHERE id = $1 FOR UPDATE`, toBedID,
	).Scan(&toLabel, &toStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrBedNotFound
	}
	if err != nil {
		return err
	}
	if toStatus != BedAvailable {
		return fmt.Errorf("%w: bed %s is %s", ErrBedNotAvailable, toLabel, toStatus)
	}

	// The unique index on occupant_admission_id is checked per statement,
	// so the source row must drop the occupant before the destination
	// takes it. The transaction makes the pair atomic for readers.
	if _, err := tx.Exec(ctx, `
		UPDATE bed SET status = 'available', occupant_admission_id = NULL, updated_at = NOW()
		WHERE id = $1`, fromBedID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE bed SET status = 'occupied', occupant_admission_id = $2, updated_at = NOW()
		WHERE id = $1`, toBedID, admissionID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) DeleteBed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bed WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotFound
	}
	return nil
}

func (r *repoPG) FirstAvailableBed(ctx context.Context, wardID uuid.UUID) (*Bed, error) {
	bed, err := scanBed(r.pool.QueryRow(ctx, `
		SELECT `+bedCols+` FROM bed
		WHERE ward_id = $1 AND status = 'available'
		ORDER BY number LIMIT 1`, wardID))
	if errors.Is(err, ErrBedNotFound) {
		return nil, ErrNoBedsAvailable
	}
	return bed, err
}

func (r *repoPG) CountBedsByStatus(ctx context.Context, wardID uuid.UUID) (map[BedStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM bed WHERE ward_id = $1 GROUP BY status`, wardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[BedStatus]int)
	for rows.Next() {
		var status BedStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.WardID, &b.Number, &b.Label, &b.Status,
		&b.OccupantAdmissionID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBedNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
