package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// Track belongs to a release. TrackIndex is 1-based and kept contiguous when
// tracks are removed.
type Track struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReleaseID    uuid.UUID         `gorm:"column:release_id;type:uuid;not null;uniqueIndex:idx_tracks_release_index"`
	TrackIndex   int               `gorm:"column:track_index;not null;uniqueIndex:idx_tracks_release_index"`
	Title        string            `gorm:"column:title;not null"`
	Version      *string           `gorm:"column:version"`
	ISRC         *string           `gorm:"column:isrc;uniqueIndex"`
	AudioKey     *string           `gorm:"column:audio_key"`
	DurationSec  *int              `gorm:"column:duration_sec"`
	Explicit     bool              `gorm:"column:explicit;not null;default:false"`
	Language     *string           `gorm:"column:language"`
	Lyrics       *string           `gorm:"column:lyrics"`
	Participants json.RawMessage   `gorm:"column:participants;type:jsonb"`
	Status       enums.TrackStatus `gorm:"column:status;type:track_status;not null;default:'DRAFT'"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
