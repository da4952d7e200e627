package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/okovalchuk/distrohub-backend/pkg/enums"
)

// OrgMember links a user to an organization with a membership role.
type OrgMember struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID        `gorm:"column:org_id;type:uuid;not null;uniqueIndex:idx_org_members_org_user"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_org_members_org_user"`
	Role      enums.MemberRole `gorm:"column:role;type:member_role;not null;default:'VIEWER'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
