package orgs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/users"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers organization provisioning and membership management.
type Service interface {
	Provision(ctx context.Context, input ProvisionInput) (*models.Organization, error)
	Get(ctx context.Context, actorID, orgID uuid.UUID) (*models.Organization, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error)
	AddMember(ctx context.Context, input AddMemberInput) (*models.OrgMember, error)
	ListMembers(ctx context.Context, actorID, orgID uuid.UUID) ([]models.OrgMember, error)
	RemoveMember(ctx context.Context, actorID, orgID, userID uuid.UUID) error
}

type service struct {
	repo  Repository
	users users.Repository
	tx    txRunner
	audit audit.Recorder
}

// NewService builds an orgs service with the required dependencies.
func NewService(repo Repository, usersRepo users.Repository, tx txRunner, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orgs repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{repo: repo, users: usersRepo, tx: tx, audit: recorder}, nil
}

// ProvisionInput captures the fields needed to create an organization.
type ProvisionInput struct {
	OwnerID uuid.UUID
	Name    string
	Type    enums.OrgType
}

// AddMemberInput adds an existing user to an organization by email.
type AddMemberInput struct {
	ActorID uuid.UUID
	OrgID   uuid.UUID
	Email   string
	Role    enums.MemberRole
}

func (s *service) Provision(ctx context.Context, input ProvisionInput) (*models.Organization, error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid organization type")
	}

	org := &models.Organization{
		Name:                name,
		Type:                input.Type,
		Plan:                enums.PlanTypeFree,
		MonthlyReleaseLimit: enums.PlanTypeFree.DefaultMonthlyReleaseLimit(),
		OwnerID:             input.OwnerID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		usersRepo := s.users.WithTx(tx)

		if _, err := repo.Create(ctx, org); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create organization")
		}

		member := &models.OrgMember{
			OrgID:  org.ID,
			UserID: input.OwnerID,
			Role:   enums.MemberRoleOwner,
		}
		if _, err := repo.CreateMember(ctx, member); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
		}

		if err := usersRepo.AppendOrgID(ctx, input.OwnerID, org.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link org to user")
		}

		actor := input.OwnerID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &org.ID,
			Action:     "org.provisioned",
			EntityType: "organization",
			EntityID:   org.ID,
			Payload:    map[string]any{"name": org.Name, "type": org.Type},
		})
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (s *service) Get(ctx context.Context, actorID, orgID uuid.UUID) (*models.Organization, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if _, err := s.repo.FindMember(ctx, orgID, actorID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this organization")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return org, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orgs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list organizations")
	}
	return orgs, nil
}

func (s *service) AddMember(ctx context.Context, input AddMemberInput) (*models.OrgMember, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member role")
	}
	if input.Role == enums.MemberRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner membership is assigned at provisioning")
	}

	allowed, err := s.repo.UserHasRole(ctx, input.ActorID, input.OrgID, enums.MemberRoleOwner, enums.MemberRoleManager)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership role")
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	target, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account for that email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}

	member := &models.OrgMember{
		OrgID:  input.OrgID,
		UserID: target.ID,
		Role:   input.Role,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		usersRepo := s.users.WithTx(tx)

		if _, err := repo.CreateMember(ctx, member); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "create membership")
		}
		if err := usersRepo.AppendOrgID(ctx, target.ID, input.OrgID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link org to user")
		}

		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &input.OrgID,
			Action:     "org.member_added",
			EntityType: "org_member",
			EntityID:   member.ID,
			Payload:    map[string]any{"user_id": target.ID, "role": input.Role},
		})
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) ListMembers(ctx context.Context, actorID, orgID uuid.UUID) ([]models.OrgMember, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if _, err := s.repo.FindMember(ctx, orgID, actorID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this organization")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	members, err := s.repo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	return members, nil
}

func (s *service) RemoveMember(ctx context.Context, actorID, orgID, userID uuid.UUID) error {
	if orgID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "org id and user id required")
	}

	allowed, err := s.repo.UserHasRole(ctx, actorID, orgID, enums.MemberRoleOwner, enums.MemberRoleManager)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership role")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	member, err := s.repo.FindMember(ctx, orgID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if member.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "organization owner cannot be removed")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteMember(ctx, orgID, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
		}
		actor := actorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &orgID,
			Action:     "org.member_removed",
			EntityType: "org_member",
			EntityID:   member.ID,
			Payload:    map[string]any{"user_id": userID},
		})
	})
}
