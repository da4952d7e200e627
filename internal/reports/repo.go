package reports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
)

// SummaryRow is one aggregated slice of the revenue summary.
type SummaryRow struct {
	Source      string          `json:"source"`
	PeriodMonth string          `json:"period_month"`
	Units       int64           `json:"units"`
	Revenue     decimal.Decimal `json:"revenue"`
	Currency    string          `json:"currency"`
}

// Totals holds lifetime stream and revenue counters for an organization.
type Totals struct {
	Units   int64           `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Repository exposes persistence for revenue report rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRows(ctx context.Context, rows []models.ReportRow) error
	Summary(ctx context.Context, orgID uuid.UUID, fromPeriod, toPeriod string) ([]SummaryRow, error)
	Totals(ctx context.Context, orgID uuid.UUID) (*Totals, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRows(ctx context.Context, rows []models.ReportRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) Summary(ctx context.Context, orgID uuid.UUID, fromPeriod, toPeriod string) ([]SummaryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ReportRow{}).
		Select("source, period_month, SUM(units) AS units, SUM(revenue) AS revenue, currency").
		Where("org_id = ?", orgID)
	if fromPeriod != "" {
		query = query.Where("period_month >= ?", fromPeriod)
	}
	if toPeriod != "" {
		query = query.Where("period_month <= ?", toPeriod)
	}

	var rows []SummaryRow
	err := query.
		Group("source, period_month, currency").
		Order("period_month ASC, source ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Totals(ctx context.Context, orgID uuid.UUID) (*Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&models.ReportRow{}).
		Select("COALESCE(SUM(units), 0) AS units, COALESCE(SUM(revenue), 0) AS revenue").
		Where("org_id = ?", orgID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
