package orgs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/users"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	orgs       map[uuid.UUID]*models.Organization
	members    map[uuid.UUID][]models.OrgMember
	rolesByUID map[uuid.UUID]enums.MemberRole
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orgs:       make(map[uuid.UUID]*models.Organization),
		members:    make(map[uuid.UUID][]models.OrgMember),
		rolesByUID: make(map[uuid.UUID]enums.MemberRole),
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	s.orgs[org.ID] = org
	return org, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, ok := s.orgs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return org, nil
}

func (s *stubRepo) CreateMember(ctx context.Context, member *models.OrgMember) (*models.OrgMember, error) {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	s.members[member.OrgID] = append(s.members[member.OrgID], *member)
	s.rolesByUID[member.UserID] = member.Role
	return member, nil
}

func (s *stubRepo) FindMember(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMember, error) {
	for _, m := range s.members[orgID] {
		if m.UserID == userID {
			member := m
			return &member, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListMembers(ctx context.Context, orgID uuid.UUID) ([]models.OrgMember, error) {
	return s.members[orgID], nil
}

func (s *stubRepo) DeleteMember(ctx context.Context, orgID, userID uuid.UUID) error {
	kept := s.members[orgID][:0]
	for _, m := range s.members[orgID] {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	s.members[orgID] = kept
	return nil
}

func (s *stubRepo) UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	role, ok := s.rolesByUID[userID]
	if !ok {
		return false, nil
	}
	for _, candidate := range roles {
		if candidate == role {
			return true, nil
		}
	}
	return false, nil
}

type stubUsersRepo struct {
	users.Repository
	byEmail map[string]*models.User
	linked  map[uuid.UUID][]uuid.UUID
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		byEmail: make(map[string]*models.User),
		linked:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsersRepo) AppendOrgID(ctx context.Context, userID, orgID uuid.UUID) error {
	s.linked[userID] = append(s.linked[userID], orgID)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubAudit struct {
	entries []audit.Entry
}

func (s *stubAudit) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func newTestService(t *testing.T, repo Repository, usersRepo users.Repository, recorder audit.Recorder) Service {
	t.Helper()
	svc, err := NewService(repo, usersRepo, stubTx{}, recorder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestProvisionCreatesOrgWithOwnerMembership(t *testing.T) {
	repo := newStubRepo()
	usersRepo := newStubUsersRepo()
	recorder := &stubAudit{}
	svc := newTestService(t, repo, usersRepo, recorder)

	ownerID := uuid.New()
	org, err := svc.Provision(context.Background(), ProvisionInput{
		OwnerID: ownerID,
		Name:    "Night Signal Records",
		Type:    enums.OrgTypeLabel,
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}

	if org.Plan != enums.PlanTypeFree {
		t.Fatalf("expected FREE plan, got %s", org.Plan)
	}
	if org.MonthlyReleaseLimit != 2 {
		t.Fatalf("expected default limit 2, got %d", org.MonthlyReleaseLimit)
	}

	members := repo.members[org.ID]
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if members[0].Role != enums.MemberRoleOwner {
		t.Fatalf("expected OWNER role, got %s", members[0].Role)
	}
	if len(usersRepo.linked[ownerID]) != 1 {
		t.Fatalf("expected org linked to owner")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != "org.provisioned" {
		t.Fatalf("expected provision audit entry, got %+v", recorder.entries)
	}
}

func TestProvisionRejectsMissingName(t *testing.T) {
	svc := newTestService(t, newStubRepo(), newStubUsersRepo(), &stubAudit{})

	_, err := svc.Provision(context.Background(), ProvisionInput{
		OwnerID: uuid.New(),
		Name:    "   ",
		Type:    enums.OrgTypeArtist,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddMemberRequiresManagerRole(t *testing.T) {
	repo := newStubRepo()
	usersRepo := newStubUsersRepo()
	svc := newTestService(t, repo, usersRepo, &stubAudit{})

	orgID := uuid.New()
	actor := uuid.New()
	repo.members[orgID] = []models.OrgMember{{ID: uuid.New(), OrgID: orgID, UserID: actor, Role: enums.MemberRoleViewer}}
	repo.rolesByUID[actor] = enums.MemberRoleViewer

	target := &models.User{ID: uuid.New(), Email: "collab@example.com", CreatedAt: time.Now()}
	usersRepo.byEmail[target.Email] = target

	_, err := svc.AddMember(context.Background(), AddMemberInput{
		ActorID: actor,
		OrgID:   orgID,
		Email:   target.Email,
		Role:    enums.MemberRoleEditor,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestRemoveMemberProtectsOwner(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, newStubUsersRepo(), &stubAudit{})

	orgID := uuid.New()
	actor := uuid.New()
	owner := uuid.New()
	repo.members[orgID] = []models.OrgMember{
		{ID: uuid.New(), OrgID: orgID, UserID: actor, Role: enums.MemberRoleManager},
		{ID: uuid.New(), OrgID: orgID, UserID: owner, Role: enums.MemberRoleOwner},
	}
	repo.rolesByUID[actor] = enums.MemberRoleManager
	repo.rolesByUID[owner] = enums.MemberRoleOwner

	err := svc.RemoveMember(context.Background(), actor, orgID, owner)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
}
