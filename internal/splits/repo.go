package splits

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
)

// Repository exposes persistence for track revenue splits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, share *models.SplitShare) (*models.SplitShare, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SplitShare, error)
	ListByTrack(ctx context.Context, trackID uuid.UUID) ([]models.SplitShare, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a splits repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, share *models.SplitShare) (*models.SplitShare, error) {
	if err := r.db.WithContext(ctx).Create(share).Error; err != nil {
		return nil, err
	}
	return share, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SplitShare, error) {
	var share models.SplitShare
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *repository) ListByTrack(ctx context.Context, trackID uuid.UUID) ([]models.SplitShare, error) {
	var shares []models.SplitShare
	err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		Order("created_at ASC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.SplitShare{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SplitShare{}).Error
}
