package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// Release is the aggregate root of the distribution lifecycle. Status moves
// DRAFT -> IN_REVIEW -> APPROVED/REJECTED -> DELIVERING -> DELIVERED, with
// TAKEDOWN as a terminal admin action.
type Release struct {
	ID                  uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID               uuid.UUID           `gorm:"column:org_id;type:uuid;not null;index"`
	ArtistID            uuid.UUID           `gorm:"column:artist_id;type:uuid;not null;index"`
	Title               string              `gorm:"column:title;not null"`
	ReleaseType         enums.ReleaseType   `gorm:"column:release_type;type:release_type;not null;default:'SINGLE'"`
	Status              enums.ReleaseStatus `gorm:"column:status;type:release_status;not null;default:'DRAFT'"`
	UPC                 *string             `gorm:"column:upc;uniqueIndex"`
	PrimaryGenre        *string             `gorm:"column:primary_genre"`
	SecondaryGenre      *string             `gorm:"column:secondary_genre"`
	Language            *string             `gorm:"column:language"`
	AlbumVersion        *string             `gorm:"column:album_version"`
	OriginalReleaseDate *time.Time          `gorm:"column:original_release_date;type:date"`
	ReleaseDate         *time.Time          `gorm:"column:release_date;type:date"`
	ReleaseTime         *string             `gorm:"column:release_time"`
	SubLabel            *string             `gorm:"column:sub_label"`
	LabelName           *string             `gorm:"column:label_name"`
	PCopyright          *string             `gorm:"column:p_copyright"`
	RightsOwner         *string             `gorm:"column:rights_owner"`
	Performers          json.RawMessage     `gorm:"column:performers;type:jsonb"`
	Territories         pq.StringArray      `gorm:"column:territories;type:text[]"`
	ArtworkKey          *string             `gorm:"column:artwork_key"`
	SubmittedAt         *time.Time          `gorm:"column:submitted_at"`
	ReviewedAt          *time.Time          `gorm:"column:reviewed_at"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
