package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// Organization represents the canonical tenant model. Every release, artist
// and report row hangs off an organization.
type Organization struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string         `gorm:"column:name;not null"`
	Type                enums.OrgType  `gorm:"column:type;type:org_type;not null"`
	Plan                enums.PlanType `gorm:"column:plan;type:plan_type;not null;default:'FREE'"`
	MonthlyReleaseLimit int            `gorm:"column:monthly_release_limit;not null;default:2"`
	OwnerID             uuid.UUID      `gorm:"column:owner_id;type:uuid;not null"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
