package artists

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	artists      map[uuid.UUID]*models.Artist
	releaseCount map[uuid.UUID]int64
	deleted      []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		artists:      make(map[uuid.UUID]*models.Artist),
		releaseCount: make(map[uuid.UUID]int64),
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, artist *models.Artist) (*models.Artist, error) {
	if artist.ID == uuid.Nil {
		artist.ID = uuid.New()
	}
	s.artists[artist.ID] = artist
	return artist, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Artist, error) {
	artist, ok := s.artists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return artist, nil
}

func (s *stubRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Artist, error) {
	var out []models.Artist
	for _, a := range s.artists {
		if a.OrgID == orgID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.artists, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) CountReleases(ctx context.Context, artistID uuid.UUID) (int64, error) {
	return s.releaseCount[artistID], nil
}

type stubMemberships struct {
	roles map[uuid.UUID]enums.MemberRole
}

func (s *stubMemberships) UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	role, ok := s.roles[userID]
	if !ok {
		return false, nil
	}
	if len(roles) == 0 {
		return true, nil
	}
	for _, candidate := range roles {
		if candidate == role {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(t *testing.T, repo Repository, memberships membershipsRepository) Service {
	t.Helper()
	svc, err := NewService(repo, memberships)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateRequiresEditorRole(t *testing.T) {
	repo := newStubRepo()
	actor := uuid.New()
	svc := newTestService(t, repo, &stubMemberships{roles: map[uuid.UUID]enums.MemberRole{actor: enums.MemberRoleViewer}})

	_, err := svc.Create(context.Background(), CreateInput{
		ActorID: actor,
		OrgID:   uuid.New(),
		Name:    "Dead Letter Office",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestCreateTrimsName(t *testing.T) {
	repo := newStubRepo()
	actor := uuid.New()
	svc := newTestService(t, repo, &stubMemberships{roles: map[uuid.UUID]enums.MemberRole{actor: enums.MemberRoleEditor}})

	artist, err := svc.Create(context.Background(), CreateInput{
		ActorID: actor,
		OrgID:   uuid.New(),
		Name:    "  Dead Letter Office  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if artist.Name != "Dead Letter Office" {
		t.Fatalf("expected trimmed name, got %q", artist.Name)
	}
}

func TestGetHidesArtistsFromOtherOrgs(t *testing.T) {
	repo := newStubRepo()
	actor := uuid.New()
	svc := newTestService(t, repo, &stubMemberships{roles: map[uuid.UUID]enums.MemberRole{actor: enums.MemberRoleViewer}})

	other := &models.Artist{ID: uuid.New(), OrgID: uuid.New(), Name: "Someone Else"}
	repo.artists[other.ID] = other

	_, err := svc.Get(context.Background(), actor, uuid.New(), other.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestDeleteRefusesWhenReleasesExist(t *testing.T) {
	repo := newStubRepo()
	actor := uuid.New()
	orgID := uuid.New()
	svc := newTestService(t, repo, &stubMemberships{roles: map[uuid.UUID]enums.MemberRole{actor: enums.MemberRoleOwner}})

	artist := &models.Artist{ID: uuid.New(), OrgID: orgID, Name: "Busy Artist"}
	repo.artists[artist.ID] = artist
	repo.releaseCount[artist.ID] = 3

	err := svc.Delete(context.Background(), actor, orgID, artist.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("expected no deletion, got %v", repo.deleted)
	}
}
