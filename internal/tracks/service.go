package tracks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/codes"
	"github.com/okovalchuk/distrohub-backend/internal/releases"
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

// Service manages the tracks of a release while it is editable. Track indices
// are 1-based and stay contiguous across deletions.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.Track, error)
	List(ctx context.Context, actorID, orgID, releaseID uuid.UUID) ([]models.Track, error)
	Update(ctx context.Context, input UpdateInput) (*models.Track, error)
	Delete(ctx context.Context, actorID, orgID, releaseID, trackID uuid.UUID) error
}

type service struct {
	repo        Repository
	releases    releases.Repository
	memberships membershipsRepository
	tx          txRunner
	audit       audit.Recorder
	now         func() time.Time
}

// NewService builds a tracks service with the required dependencies.
func NewService(repo Repository, releasesRepo releases.Repository, memberships membershipsRepository, tx txRunner, recorder audit.Recorder) (Service, error) {
	if repo == nil {
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
		releases:    releasesRepo,
		memberships: memberships,
		tx:          tx,
		audit:       recorder,
		now:         time.Now,
	}, nil
}

// AddInput captures the fields for a new track.
type AddInput struct {
	ActorID   uuid.UUID
	OrgID     uuid.UUID
	ReleaseID uuid.UUID

	Title       string
	Version     *string
	DurationSec *int
	Explicit    bool
	Language    *string
	Lyrics      *string
}

// UpdateInput carries the mutable track fields.
type UpdateInput struct {
	ActorID   uuid.UUID
	OrgID     uuid.UUID
	ReleaseID uuid.UUID
	TrackID   uuid.UUID

	Title       *string
	Version     *string
	DurationSec *int
	Explicit    *bool
	Language    *string
	Lyrics      *string
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

// loadEditableRelease returns the release when it belongs to the org and is
// still in an editable status.
func (s *service) loadEditableRelease(ctx context.Context, orgID, releaseID uuid.UUID) (*models.Release, error) {
	release, err := s.loadOrgRelease(ctx, orgID, releaseID)
	if err != nil {
		return nil, err
	}
	if release.Status != enums.ReleaseStatusDraft && release.Status != enums.ReleaseStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "tracks can only change while the release is draft or rejected").
			WithDetails(map[string]any{"status": release.Status})
	}
	return release, nil
}

func (s *service) loadOrgRelease(ctx context.Context, orgID, releaseID uuid.UUID) (*models.Release, error) {
	if releaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "release id required")
	}
	release, err := s.releases.FindByID(ctx, releaseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "release not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load release")
	}
	if release.OrgID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "release not found")
	}
	return release, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.Track, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "track title is required")
	}
	release, err := s.loadEditableRelease(ctx, input.OrgID, input.ReleaseID)
	if err != nil {
		return nil, err
	}

	index, err := s.repo.NextIndex(ctx, release.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute track index")
	}
	isrc, err := codes.GenerateISRC(s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate isrc")
	}

	track := &models.Track{
		ReleaseID:   release.ID,
		TrackIndex:  index,
		Title:       title,
		Version:     input.Version,
		ISRC:        &isrc,
		DurationSec: input.DurationSec,
		Explicit:    input.Explicit,
		Language:    input.Language,
		Lyrics:      input.Lyrics,
		Status:      enums.TrackStatusDraft,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, track); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create track")
		}
		if err := syncReleaseType(ctx, repo, s.releases.WithTx(tx), release); err != nil {
			return err
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &input.OrgID,
			Action:     "track.added",
			EntityType: "track",
			EntityID:   track.ID,
			Payload:    map[string]any{"release_id": release.ID, "index": track.TrackIndex, "isrc": isrc},
		})
	})
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (s *service) List(ctx context.Context, actorID, orgID, releaseID uuid.UUID) ([]models.Track, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	if _, err := s.loadOrgRelease(ctx, orgID, releaseID); err != nil {
		return nil, err
	}
	tracks, err := s.repo.ListByRelease(ctx, releaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tracks")
	}
	return tracks, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Track, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	release, err := s.loadEditableRelease(ctx, input.OrgID, input.ReleaseID)
	if err != nil {
		return nil, err
	}
	track, err := s.loadReleaseTrack(ctx, release.ID, input.TrackID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "track title cannot be empty")
		}
		updates["title"] = title
		track.Title = title
	}
	if input.Version != nil {
		updates["version"] = input.Version
		track.Version = input.Version
	}
	if input.DurationSec != nil {
		if *input.DurationSec <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
		}
		updates["duration_sec"] = input.DurationSec
		track.DurationSec = input.DurationSec
	}
	if input.Explicit != nil {
		updates["explicit"] = *input.Explicit
		track.Explicit = *input.Explicit
	}
	if input.Language != nil {
		updates["language"] = input.Language
		track.Language = input.Language
	}
	if input.Lyrics != nil {
		updates["lyrics"] = input.Lyrics
		track.Lyrics = input.Lyrics
	}
	if len(updates) == 0 {
		return track, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, track.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update track")
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &input.OrgID,
			Action:     "track.updated",
			EntityType: "track",
			EntityID:   track.ID,
			Payload:    map[string]any{"release_id": release.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (s *service) Delete(ctx context.Context, actorID, orgID, releaseID, trackID uuid.UUID) error {
	if err := s.requireEditor(ctx, actorID, orgID); err != nil {
		return err
	}
	release, err := s.loadEditableRelease(ctx, orgID, releaseID)
	if err != nil {
		return err
	}
	track, err := s.loadReleaseTrack(ctx, release.ID, trackID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Delete(ctx, track.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete track")
		}
		if err := repo.Renumber(ctx, release.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "renumber tracks")
		}
		if err := syncReleaseType(ctx, repo, s.releases.WithTx(tx), release); err != nil {
			return err
		}
		actor := actorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &orgID,
			Action:     "track.deleted",
			EntityType: "track",
			EntityID:   track.ID,
			Payload:    map[string]any{"release_id": release.ID, "index": track.TrackIndex},
		})
	})
}

func (s *service) loadReleaseTrack(ctx context.Context, releaseID, trackID uuid.UUID) (*models.Track, error) {
	if trackID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "track id required")
	}
	track, err := s.repo.FindByID(ctx, trackID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "track not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load track")
	}
	if track.ReleaseID != releaseID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "track not found")
	}
	return track, nil
}

// syncReleaseType keeps the release type aligned with the track count after
// tracks are added or removed.
func syncReleaseType(ctx context.Context, repo Repository, releasesRepo releases.Repository, release *models.Release) error {
	count, err := repo.CountByRelease(ctx, release.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tracks")
	}
	inferred := enums.ReleaseTypeForTrackCount(int(count))
	if inferred == release.ReleaseType {
		return nil
	}
	if err := releasesRepo.Update(ctx, release.ID, map[string]any{"release_type": inferred}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update release type")
	}
	release.ReleaseType = inferred
	return nil
}
