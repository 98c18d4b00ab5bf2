package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

// Fixed-width UTC timestamps so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const selectColumns = `id, fiscal_year, gross_income, lower_limit, excess_over_lower_limit,
	marginal_rate_percent, marginal_tax, fixed_quota, total_isr, contribution, subsidy,
	net_income, effective_rate, computed_at, created_at, updated_at`

// SQLiteRepository persists calculation results. Every money field is stored
// as exact decimal text.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
	log logrus.FieldLogger
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock overrides the clock used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) { r.now = now }
}

// WithLogger sets the repository logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *SQLiteRepository) { r.log = l }
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)
	repo := &SQLiteRepository{db: db, now: time.Now, log: discard}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save stores result under a fresh id.
func (r *SQLiteRepository) Save(ctx context.Context, result domain.TaxResult) (domain.TaxRecord, error) {
	now := r.now().UTC()
	rec := domain.TaxRecord{
		ID:        uuid.New(),
		Result:    result,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO tax_calculations (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(),
		result.FiscalYear,
		result.GrossIncome.String(),
		result.LowerLimit.String(),
		result.ExcessOverLowerLimit.String(),
		result.MarginalRatePercent.String(),
		result.MarginalTax.String(),
		result.FixedQuota.String(),
		result.TotalISR.String(),
		result.Contribution.String(),
		result.Subsidy.String(),
		result.NetIncome.String(),
		result.EffectiveRate.String(),
		formatTime(result.ComputedAt),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return domain.TaxRecord{}, fmt.Errorf("insert tax calculation: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"id":    rec.ID.String(),
		"gross": result.GrossIncome.String(),
		"net":   result.NetIncome.String(),
	}).Info("tax calculation saved")
	return rec, nil
}

// Get returns the record with the given id or domain.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (domain.TaxRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tax_calculations WHERE id = ?`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TaxRecord{}, fmt.Errorf("tax calculation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.TaxRecord{}, fmt.Errorf("get tax calculation %s: %w", id, err)
	}
	return rec, nil
}

// List returns all records, most recently computed first.
func (r *SQLiteRepository) List(ctx context.Context) ([]domain.TaxRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tax_calculations
		ORDER BY computed_at DESC, created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tax calculations: %w", err)
	}
	defer rows.Close()

	var records []domain.TaxRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list tax calculations: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tax calculations: %w", err)
	}
	return records, nil
}

// Delete removes the record with the given id or returns domain.ErrNotFound.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tax_calculations WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete tax calculation %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tax calculation %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("tax calculation %s: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("id", id.String()).Info("tax calculation deleted")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (domain.TaxRecord, error) {
	var (
		id                               string
		year                             int
		money                            [11]string
		computedAt, createdAt, updatedAt string
	)
	err := s.Scan(&id, &year,
		&money[0], &money[1], &money[2], &money[3], &money[4], &money[5],
		&money[6], &money[7], &money[8], &money[9], &money[10],
		&computedAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.TaxRecord{}, err
	}

	var rec domain.TaxRecord
	if rec.ID, err = uuid.Parse(id); err != nil {
		return domain.TaxRecord{}, fmt.Errorf("parse id %q: %w", id, err)
	}

	var dec [11]decimal.Decimal
	for i, text := range money {
		if dec[i], err = decimal.NewFromString(text); err != nil {
			return domain.TaxRecord{}, fmt.Errorf("record %s: parse amount %q: %w", id, text, err)
		}
	}
	rec.Result = domain.TaxResult{
		FiscalYear:           year,
		GrossIncome:          dec[0],
		LowerLimit:           dec[1],
		ExcessOverLowerLimit: dec[2],
		MarginalRatePercent:  dec[3],
		MarginalTax:          dec[4],
		FixedQuota:           dec[5],
		TotalISR:             dec[6],
		Contribution:         dec[7],
		Subsidy:              dec[8],
		NetIncome:            dec[9],
		EffectiveRate:        dec[10],
	}

	if rec.Result.ComputedAt, err = parseTime(computedAt); err != nil {
		return domain.TaxRecord{}, fmt.Errorf("record %s: %w", id, err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.TaxRecord{}, fmt.Errorf("record %s: %w", id, err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.TaxRecord{}, fmt.Errorf("record %s: %w", id, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
