package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitShare assigns a royalty percentage of a track to a collaborator,
// addressed by email so shares can be created before the collaborator has an
// account.
type SplitShare struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TrackID   uuid.UUID       `gorm:"column:track_id;type:uuid;not null;index"`
	Email     string          `gorm:"column:email;not null"`
	Role      string          `gorm:"column:role;not null"`
	Percent   decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
