package artists

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

type membershipsRepository interface {
	UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

// Service exposes artist profile management scoped to an organization.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Artist, error)
	Get(ctx context.Context, actorID, orgID, artistID uuid.UUID) (*models.Artist, error)
	List(ctx context.Context, actorID, orgID uuid.UUID) ([]models.Artist, error)
	Update(ctx context.Context, input UpdateInput) (*models.Artist, error)
	Delete(ctx context.Context, actorID, orgID, artistID uuid.UUID) error
}

type service struct {
	repo        Repository
	memberships membershipsRepository
}

// NewService builds an artists service with the required dependencies.
func NewService(repo Repository, memberships membershipsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("artists repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	return &service{repo: repo, memberships: memberships}, nil
}

// CreateInput captures the fields for a new artist profile.
type CreateInput struct {
	ActorID         uuid.UUID
	OrgID           uuid.UUID
	Name            string
	SpotifyArtistID *string
	AppleArtistID   *string
}

// UpdateInput carries the mutable artist fields.
type UpdateInput struct {
	ActorID         uuid.UUID
	OrgID           uuid.UUID
	ArtistID        uuid.UUID
	Name            *string
	SpotifyArtistID *string
	AppleArtistID   *string
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
	if orgID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "org id required")
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

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Artist, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist name is required")
	}

	artist := &models.Artist{
		OrgID:           input.OrgID,
		Name:            name,
		SpotifyArtistID: input.SpotifyArtistID,
		AppleArtistID:   input.AppleArtistID,
	}
	if _, err := s.repo.Create(ctx, artist); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create artist")
	}
	return artist, nil
}

func (s *service) Get(ctx context.Context, actorID, orgID, artistID uuid.UUID) (*models.Artist, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	artist, err := s.loadOrgArtist(ctx, orgID, artistID)
	if err != nil {
		return nil, err
	}
	return artist, nil
}

func (s *service) List(ctx context.Context, actorID, orgID uuid.UUID) ([]models.Artist, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	artists, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list artists")
	}
	return artists, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Artist, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	artist, err := s.loadOrgArtist(ctx, input.OrgID, input.ArtistID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist name cannot be empty")
		}
		updates["name"] = name
		artist.Name = name
	}
	if input.SpotifyArtistID != nil {
		updates["spotify_artist_id"] = input.SpotifyArtistID
		artist.SpotifyArtistID = input.SpotifyArtistID
	}
	if input.AppleArtistID != nil {
		updates["apple_artist_id"] = input.AppleArtistID
		artist.AppleArtistID = input.AppleArtistID
	}
	if len(updates) == 0 {
		return artist, nil
	}

	if err := s.repo.Update(ctx, artist.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update artist")
	}
	return artist, nil
}

func (s *service) Delete(ctx context.Context, actorID, orgID, artistID uuid.UUID) error {
	if err := s.requireEditor(ctx, actorID, orgID); err != nil {
		return err
	}
	artist, err := s.loadOrgArtist(ctx, orgID, artistID)
	if err != nil {
		return err
	}

	count, err := s.repo.CountReleases(ctx, artist.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count artist releases")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "artist has releases and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, artist.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete artist")
	}
	return nil
}

func (s *service) loadOrgArtist(ctx context.Context, orgID, artistID uuid.UUID) (*models.Artist, error) {
	if artistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist id required")
	}
	artist, err := s.repo.FindByID(ctx, artistID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artist")
	}
	if artist.OrgID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artist not found")
	}
	return artist, nil
}
