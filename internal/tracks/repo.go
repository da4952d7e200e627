package tracks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
)

// Repository exposes persistence for release tracks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, track *models.Track) (*models.Track, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Track, error)
	ListByRelease(ctx context.Context, releaseID uuid.UUID) ([]models.Track, error)
	CountByRelease(ctx context.Context, releaseID uuid.UUID) (int64, error)
	NextIndex(ctx context.Context, releaseID uuid.UUID) (int, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Renumber(ctx context.Context, releaseID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tracks repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, track *models.Track) (*models.Track, error) {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		return nil, err
	}
	return track, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	var track models.Track
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&track).Error; err != nil {
		return nil, err
	}
	return &track, nil
}

func (r *repository) ListByRelease(ctx context.Context, releaseID uuid.UUID) ([]models.Track, error) {
	var tracks []models.Track
	err := r.db.WithContext(ctx).
		Where("release_id = ?", releaseID).
		Order("track_index ASC").
		Find(&tracks).Error
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func (r *repository) CountByRelease(ctx context.Context, releaseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Track{}).
		Where("release_id = ?", releaseID).
		Count(&count).Error
	return count, err
}

func (r *repository) NextIndex(ctx context.Context, releaseID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Track{}).
		Where("release_id = ?", releaseID).
		Select("COALESCE(MAX(track_index), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Track{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Track{}).Error
}

// Renumber closes gaps in track_index so the remaining tracks are numbered
// 1..n in their current order. Rows are updated low-to-high so each move lands
// in a slot already vacated, keeping the unique (release_id, track_index)
// constraint satisfied at every step.
func (r *repository) Renumber(ctx context.Context, releaseID uuid.UUID) error {
	tracks, err := r.ListByRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	for position, track := range tracks {
		want := position + 1
		if track.TrackIndex == want {
			continue
		}
		err := r.db.WithContext(ctx).
			Model(&models.Track{}).
			Where("id = ?", track.ID).
			Update("track_index", want).Error
		if err != nil {
			return err
		}
	}
	return nil
}
