package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// QCItem is a quality-control note attached to a release during review.
// TrackID is set when the note concerns a single track rather than the
// release as a whole.
type QCItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReleaseID uuid.UUID        `gorm:"column:release_id;type:uuid;not null;index"`
	TrackID   *uuid.UUID       `gorm:"column:track_id;type:uuid;index"`
	Severity  enums.QCSeverity `gorm:"column:severity;type:qc_severity;not null"`
	Message   string           `gorm:"column:message;not null"`
	Resolved  bool             `gorm:"column:resolved;not null;default:false"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
