package models

import (
	"time"

	"github.com/google/uuid"
)

// Artist is an org-owned performer profile releases are attributed to.
type Artist struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID           uuid.UUID `gorm:"column:org_id;type:uuid;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	SpotifyArtistID *string   `gorm:"column:spotify_artist_id"`
	AppleArtistID   *string   `gorm:"column:apple_artist_id"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
