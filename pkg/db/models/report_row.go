package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// ReportRow is one ingested royalty line: units and revenue reported by a DSP
// for a single month.
type ReportRow struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID       uuid.UUID          `gorm:"column:org_id;type:uuid;not null;index"`
	ReleaseID   *uuid.UUID         `gorm:"column:release_id;type:uuid;index"`
	TrackID     *uuid.UUID         `gorm:"column:track_id;type:uuid;index"`
	Source      enums.ReportSource `gorm:"column:source;type:report_source;not null"`
	PeriodMonth string             `gorm:"column:period_month;not null;index"`
	Territory   *string            `gorm:"column:territory"`
	Units       int64              `gorm:"column:units;not null;default:0"`
	Revenue     decimal.Decimal    `gorm:"column:revenue;type:numeric(14,6);not null"`
	Currency    string             `gorm:"column:currency;not null;default:'USD'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
