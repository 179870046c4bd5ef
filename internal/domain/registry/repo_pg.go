package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/db"
)

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, name, mother_name, mother_national_id, national_id, health_card_id,
	birth_date, sex, phone, email, address, priority, created_at, updated_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, name, mother_name, mother_national_id, national_id, health_card_id,
			birth_date, sex, phone, email, address, priority, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.Name, nullIfEmpty(p.MotherName), nullIfEmpty(p.MotherNationalID),
		nullIfEmpty(p.NationalID), nullIfEmpty(p.HealthCardID),
		p.BirthDate, nullIfEmpty(p.Sex), nullIfEmpty(p.Phone), nullIfEmpty(p.Email),
		nullIfEmpty(p.Address), string(p.Priority), p.CreatedAt, p.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("patient %s: %w", pgErr.ConstraintName, ErrAlreadyExists)
	}
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id string) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id)
}

func (r *patientRepoPG) GetByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patient WHERE national_id = $1`, nationalID)
}

func (r *patientRepoPG) GetByHealthCard(ctx context.Context, healthCardID string) (*Patient, error) {
	return r.getOne(ctx, `SELECT `+patientCols+` FROM patient WHERE health_card_id = $1`, healthCardID)
}

func (r *patientRepoPG) getOne(ctx context.Context, query, key string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("patient", key)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var (
		p                                          Patient
		mother, motherID, nationalID, healthCardID *string
		sex, phone, email, address                 *string
		priority                                   string
		birth                                      *time.Time
	)
	err := row.Scan(
		&p.ID, &p.Name, &mother, &motherID, &nationalID, &healthCardID,
		&birth, &sex, &phone, &email, &address, &priority, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.MotherName = deref(mother)
	p.MotherNationalID = deref(motherID)
	p.NationalID = deref(nationalID)
	p.HealthCardID = deref(healthCardID)
	p.Sex = deref(sex)
	p.Phone = deref(phone)
	p.Email = deref(email)
	p.Address = deref(address)
	p.Priority = PatientPriority(priority)
	p.BirthDate = birth
	return &p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
