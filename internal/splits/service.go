package splits

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type membershipsRepository interface {
	UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

type releasesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Release, error)
}

type tracksRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Track, error)
}

var percentMax = decimal.NewFromInt(100)

// Service manages per-track revenue splits. The checklist enforces the
// 100-percent sum at submit time; individual shares only need to be in range
// here so collaborators can be added incrementally.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.SplitShare, error)
	List(ctx context.Context, actorID, orgID, trackID uuid.UUID) ([]models.SplitShare, error)
	Update(ctx context.Context, input UpdateInput) (*models.SplitShare, error)
	Delete(ctx context.Context, actorID, orgID, trackID, shareID uuid.UUID) error
}

type service struct {
	repo        Repository
	tracks      tracksRepository
	releases    releasesRepository
	memberships membershipsRepository
	tx          txRunner
	audit       audit.Recorder
}

// NewService builds a splits service with the required dependencies.
func NewService(repo Repository, tracksRepo tracksRepository, releasesRepo releasesRepository, memberships membershipsRepository, tx txRunner, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("splits repository required")
	}
	if tracksRepo == nil {
		return nil, fmt.Errorf("tracks repository required")
	}
	if releasesRepo == nil {
		return nil, fmt.Errorf("releases repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:        repo,
		tracks:      tracksRepo,
		releases:    releasesRepo,
		memberships: memberships,
		tx:          tx,
		audit:       recorder,
	}, nil
}

// AddInput captures the fields for a new split share.
type AddInput struct {
	ActorID uuid.UUID
	OrgID   uuid.UUID
	TrackID uuid.UUID
	Email   string
	Role    string
	Percent decimal.Decimal
}

// UpdateInput carries the mutable split share fields.
type UpdateInput struct {
	ActorID uuid.UUID
	OrgID   uuid.UUID
	TrackID uuid.UUID
	ShareID uuid.UUID
	Role    *string
	Percent *decimal.Decimal
}

var editorRoles = []enums.MemberRole{
	enums.MemberRoleOwner,
	enums.MemberRoleManager,
	enums.MemberRoleEditor,
}

func (s *service) requireEditor(ctx context.Context, actorID, orgID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orgID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	ok, err := s.memberships.UserHasRole(ctx, actorID, orgID, editorRoles...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership role")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}
	return nil
}

func (s *service) requireMember(ctx context.Context, actorID, orgID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	ok, err := s.memberships.UserHasRole(ctx, actorID, orgID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this organization")
	}
	return nil
}

// loadEditableTrack resolves the track, verifies org ownership through its
// release, and checks the release is still editable.
func (s *service) loadEditableTrack(ctx context.Context, orgID, trackID uuid.UUID) (*models.Track, *models.Release, error) {
	track, release, err := s.loadOrgTrack(ctx, orgID, trackID)
	if err != nil {
		return nil, nil, err
	}
	if release.Status != enums.ReleaseStatusDraft && release.Status != enums.ReleaseStatusRejected {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "splits can only change while the release is draft or rejected").
			WithDetails(map[string]any{"status": release.Status})
	}
	return track, release, nil
}

func (s *service) loadOrgTrack(ctx context.Context, orgID, trackID uuid.UUID) (*models.Track, *models.Release, error) {
	if trackID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "track id required")
	}
	track, err := s.tracks.FindByID(ctx, trackID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "track not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load track")
	}
	release, err := s.releases.FindByID(ctx, track.ReleaseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "release not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load release")
	}
	if release.OrgID != orgID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "track not found")
	}
	return track, release, nil
}

func validatePercent(percent decimal.Decimal) error {
	if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(percentMax) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100").
			WithDetails(map[string]any{"percent": percent.String()})
	}
	return nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.SplitShare, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid collaborator email is required")
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collaborator role is required")
	}
	if err := validatePercent(input.Percent); err != nil {
		return nil, err
	}

	track, release, err := s.loadEditableTrack(ctx, input.OrgID, input.TrackID)
	if err != nil {
		return nil, err
	}

	share := &models.SplitShare{
		TrackID: track.ID,
		Email:   email,
		Role:    role,
		Percent: input.Percent,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, share); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create split share")
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &release.OrgID,
			Action:     "split.added",
			EntityType: "split_share",
			EntityID:   share.ID,
			Payload:    map[string]any{"track_id": track.ID, "email": email, "percent": input.Percent.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

func (s *service) List(ctx context.Context, actorID, orgID, trackID uuid.UUID) ([]models.SplitShare, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	if _, _, err := s.loadOrgTrack(ctx, orgID, trackID); err != nil {
		return nil, err
	}
	shares, err := s.repo.ListByTrack(ctx, trackID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list split shares")
	}
	return shares, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.SplitShare, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	track, release, err := s.loadEditableTrack(ctx, input.OrgID, input.TrackID)
	if err != nil {
		return nil, err
	}
	share, err := s.loadTrackShare(ctx, track.ID, input.ShareID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Role != nil {
		role := strings.TrimSpace(*input.Role)
		if role == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "collaborator role cannot be empty")
		}
		updates["role"] = role
		share.Role = role
	}
	if input.Percent != nil {
		if err := validatePercent(*input.Percent); err != nil {
			return nil, err
		}
		updates["percent"] = *input.Percent
		share.Percent = *input.Percent
	}
	if len(updates) == 0 {
		return share, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, share.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update split share")
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &release.OrgID,
			Action:     "split.updated",
			EntityType: "split_share",
			EntityID:   share.ID,
			Payload:    map[string]any{"track_id": track.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

func (s *service) Delete(ctx context.Context, actorID, orgID, trackID, shareID uuid.UUID) error {
	if err := s.requireEditor(ctx, actorID, orgID); err != nil {
		return err
	}
	track, release, err := s.loadEditableTrack(ctx, orgID, trackID)
	if err != nil {
		return err
	}
	share, err := s.loadTrackShare(ctx, track.ID, shareID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Delete(ctx, share.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete split share")
		}
		actor := actorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &release.OrgID,
			Action:     "split.deleted",
			EntityType: "split_share",
			EntityID:   share.ID,
			Payload:    map[string]any{"track_id": track.ID},
		})
	})
}

func (s *service) loadTrackShare(ctx context.Context, trackID, shareID uuid.UUID) (*models.SplitShare, error) {
	if shareID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "share id required")
	}
	share, err := s.repo.FindByID(ctx, shareID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "split share not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load split share")
	}
	if share.TrackID != trackID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "split share not found")
	}
	return share, nil
}
