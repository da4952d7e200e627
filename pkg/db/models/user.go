package models

import (
	"time"

	dbtypes "github.com/okovalchuk/distrohub-backend/pkg/db/types"
	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// User represents the canonical identity entity. Accounts are provisioned
// through Google sign-in, so there is no password column.
type User struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email       string            `gorm:"type:text;not null;uniqueIndex"`
	Name        string            `gorm:"column:name;not null"`
	GoogleID    *string           `gorm:"column:google_id;uniqueIndex"`
	AvatarURL   *string           `gorm:"column:avatar_url"`
	Role        enums.UserRole    `gorm:"column:role;type:user_role;not null;default:'ARTIST'"`
	OrgIDs      dbtypes.UUIDArray `gorm:"type:uuid[];column:org_ids;not null;default:ARRAY[]::uuid[]"`
	LastLoginAt *time.Time        `gorm:"column:last_login_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
