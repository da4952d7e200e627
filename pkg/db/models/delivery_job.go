package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// DeliveryJob tracks the hand-off of an approved release to one DSP target.
// One job per (release, target) pair. Payload carries the DSP-specific
// request document and Response the DSP's last reply, both stored opaque.
type DeliveryJob struct {
	ID        uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReleaseID uuid.UUID            `gorm:"column:release_id;type:uuid;not null;uniqueIndex:idx_delivery_jobs_release_target"`
	Target    enums.DeliveryTarget `gorm:"column:target;type:delivery_target;not null;uniqueIndex:idx_delivery_jobs_release_target"`
	Status    enums.DeliveryStatus `gorm:"column:status;type:delivery_status;not null;default:'PENDING'"`
	Attempts  int                  `gorm:"column:attempts;not null;default:0"`
	LastError *string              `gorm:"column:last_error"`
	Payload   json.RawMessage      `gorm:"column:payload;type:jsonb"`
	Response  json.RawMessage      `gorm:"column:response;type:jsonb"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
