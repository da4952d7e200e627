package releases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	"github.com/okovalchuk/distrohub-backend/pkg/pagination"
)

// ListParams filters an org-scoped release listing.
type ListParams struct {
	OrgID  uuid.UUID
	Status *enums.ReleaseStatus
	Limit  int
	Cursor *pagination.Cursor
}

// Repository exposes persistence for releases and their dependent rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, release *models.Release) (*models.Release, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Release, error)
	List(ctx context.Context, params ListParams) ([]models.Release, *pagination.Cursor, error)
	ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]models.Release, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CountCreatedSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID, statuses ...enums.ReleaseStatus) (int64, error)

	ListTracks(ctx context.Context, releaseID uuid.UUID) ([]models.Track, error)
	ListSplits(ctx context.Context, trackIDs []uuid.UUID) ([]models.SplitShare, error)

	CreateQCItem(ctx context.Context, item *models.QCItem) error
	ListQCItems(ctx context.Context, releaseID uuid.UUID) ([]models.QCItem, error)

	CreateDeliveryJobs(ctx context.Context, jobs []models.DeliveryJob) error
	ListDeliveryJobs(ctx context.Context, releaseID uuid.UUID) ([]models.DeliveryJob, error)

	ListReviewQueue(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Release, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a releases repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, release *models.Release) (*models.Release, error) {
	if err := r.db.WithContext(ctx).Create(release).Error; err != nil {
		return nil, err
	}
	return release, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Release, error) {
	var release models.Release
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&release).Error; err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Release, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Release{}).Where("org_id = ?", params.OrgID)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var releases []models.Release
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&releases).Error; err != nil {
		return nil, nil, err
	}

	if len(releases) > normalized {
		releases = releases[:normalized]
		last := releases[normalized-1]
		return releases, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return releases, nil, nil
}

func (r *repository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]models.Release, error) {
	var releases []models.Release
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&releases).Error
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Release{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CountCreatedSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Release{}).
		Where("org_id = ? AND created_at >= ?", orgID, since).
		Count(&count).Error
	return count, err
}

func (r *repository) CountByStatus(ctx context.Context, orgID uuid.UUID, statuses ...enums.ReleaseStatus) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Release{}).
		Where("org_id = ?", orgID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repository) ListTracks(ctx context.Context, releaseID uuid.UUID) ([]models.Track, error) {
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

func (r *repository) ListSplits(ctx context.Context, trackIDs []uuid.UUID) ([]models.SplitShare, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}
	var splits []models.SplitShare
	err := r.db.WithContext(ctx).
		Where("track_id IN ?", trackIDs).
		Order("created_at ASC").
		Find(&splits).Error
	if err != nil {
		return nil, err
	}
	return splits, nil
}

func (r *repository) CreateQCItem(ctx context.Context, item *models.QCItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) ListQCItems(ctx context.Context, releaseID uuid.UUID) ([]models.QCItem, error) {
	var items []models.QCItem
	err := r.db.WithContext(ctx).
		Where("release_id = ?", releaseID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateDeliveryJobs(ctx context.Context, jobs []models.DeliveryJob) error {
	if len(jobs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&jobs).Error
}

func (r *repository) ListDeliveryJobs(ctx context.Context, releaseID uuid.UUID) ([]models.DeliveryJob, error) {
	var jobs []models.DeliveryJob
	err := r.db.WithContext(ctx).
		Where("release_id = ?", releaseID).
		Order("created_at ASC, target ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListReviewQueue pages the submissions waiting for review, oldest first.
// The cursor timestamp carries submitted_at rather than created_at.
func (r *repository) ListReviewQueue(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Release, *pagination.Cursor, error) {
	bounded := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.Release{}).
		Where("status = ?", enums.ReleaseStatusInReview)
	if cursor != nil {
		query = query.Where("(submitted_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var releases []models.Release
	if err := query.Order("submitted_at ASC, id ASC").Limit(bounded).Find(&releases).Error; err != nil {
		return nil, nil, err
	}

	if len(releases) > normalized {
		next := releases[normalized-1]
		releases = releases[:normalized]
		cursorAt := next.CreatedAt
		if next.SubmittedAt != nil {
			cursorAt = *next.SubmittedAt
		}
		return releases, &pagination.Cursor{CreatedAt: cursorAt, ID: next.ID}, nil
	}
	return releases, nil, nil
}
