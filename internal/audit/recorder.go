package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

// Entry describes one auditable action.
type Entry struct {
	ActorID    *uuid.UUID
	OrgID      *uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Payload    any
}

// Recorder persists audit entries inside the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

type recorder struct{}

// NewRecorder exposes the default audit log recorder.
func NewRecorder() Recorder {
	return recorder{}
}

func (recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for audit record")
	}
	if entry.Action == "" || entry.EntityType == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "audit action and entity type required")
	}
	if entry.EntityID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entity id required")
	}

	var payload json.RawMessage
	if entry.Payload != nil {
		raw, err := json.Marshal(entry.Payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("marshal audit payload for %s", entry.Action))
		}
		payload = raw
	}

	row := &models.AuditLog{
		ActorID:    entry.ActorID,
		OrgID:      entry.OrgID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Payload:    payload,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist audit log")
	}
	return nil
}
