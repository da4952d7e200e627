package reports

import (
	"context"
	"fmt"
	"regexp"
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
	CountByStatus(ctx context.Context, orgID uuid.UUID, statuses ...enums.ReleaseStatus) (int64, error)
}

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Service ingests revenue report rows and serves per-org summaries and
// dashboard stats.
type Service interface {
	Ingest(ctx context.Context, actor Actor, input IngestInput) (int, error)
	Summary(ctx context.Context, actorID, orgID uuid.UUID, fromPeriod, toPeriod string) ([]SummaryRow, error)
	Stats(ctx context.Context, actorID, orgID uuid.UUID) (*OrgStats, error)
}

// Actor identifies the caller of an ingest operation.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// OrgStats is the organization dashboard snapshot.
type OrgStats struct {
	ActiveReleases int64           `json:"active_releases"`
	PendingReview  int64           `json:"pending_review"`
	TotalUnits     int64           `json:"total_units"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
}

type service struct {
	repo        Repository
	releases    releasesRepository
	memberships membershipsRepository
	tx          txRunner
	audit       audit.Recorder
}

// NewService builds a reports service with the required dependencies.
func NewService(repo Repository, releasesRepo releasesRepository, memberships membershipsRepository, tx txRunner, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
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
	}, nil
}

// RowInput is one revenue line in an ingest batch.
type RowInput struct {
	ReleaseID *uuid.UUID
	TrackID   *uuid.UUID
	Territory string
	Units     int64
	Revenue   decimal.Decimal
	Currency  string
}

// IngestInput is a batch of report rows for one org, source, and period.
type IngestInput struct {
	OrgID       uuid.UUID
	Source      enums.ReportSource
	PeriodMonth string
	Rows        []RowInput
}

func (s *service) Ingest(ctx context.Context, actor Actor, input IngestInput) (int, error) {
	if actor.ID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.Role != enums.UserRoleAdmin {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	if input.OrgID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if !input.Source.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid report source")
	}
	if !periodPattern.MatchString(input.PeriodMonth) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "period_month must be YYYY-MM")
	}
	if len(input.Rows) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one row required")
	}

	rows := make([]models.ReportRow, 0, len(input.Rows))
	for i, row := range input.Rows {
		if row.Units < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("row %d: units cannot be negative", i))
		}
		if row.Revenue.IsNegative() {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("row %d: revenue cannot be negative", i))
		}
		currency := strings.ToUpper(strings.TrimSpace(row.Currency))
		if currency == "" {
			currency = "USD"
		}
		if len(currency) != 3 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("row %d: currency must be a 3-letter code", i))
		}
		var territory *string
		if t := strings.ToUpper(strings.TrimSpace(row.Territory)); t != "" {
			territory = &t
		}
		rows = append(rows, models.ReportRow{
			OrgID:       input.OrgID,
			ReleaseID:   row.ReleaseID,
			TrackID:     row.TrackID,
			Source:      input.Source,
			PeriodMonth: input.PeriodMonth,
			Territory:   territory,
			Units:       row.Units,
			Revenue:     row.Revenue,
			Currency:    currency,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateRows(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create report rows")
		}
		adminID := actor.ID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &adminID,
			OrgID:      &input.OrgID,
			Action:     "reports.ingested",
			EntityType: "report_batch",
			EntityID:   uuid.New(),
			Payload: map[string]any{
				"source": input.Source,
				"period": input.PeriodMonth,
				"rows":   len(rows),
			},
		})
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *service) Summary(ctx context.Context, actorID, orgID uuid.UUID, fromPeriod, toPeriod string) ([]SummaryRow, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	for _, period := range []string{fromPeriod, toPeriod} {
		if period != "" && !periodPattern.MatchString(period) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "period filters must be YYYY-MM")
		}
	}
	rows, err := s.repo.Summary(ctx, orgID, fromPeriod, toPeriod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load revenue summary")
	}
	return rows, nil
}

func (s *service) Stats(ctx context.Context, actorID, orgID uuid.UUID) (*OrgStats, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}

	active, err := s.releases.CountByStatus(ctx, orgID,
		enums.ReleaseStatusApproved,
		enums.ReleaseStatusDelivering,
		enums.ReleaseStatusDelivered,
	)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active releases")
	}
	pending, err := s.releases.CountByStatus(ctx, orgID, enums.ReleaseStatusInReview)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending releases")
	}
	totals, err := s.repo.Totals(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load report totals")
	}

	return &OrgStats{
		ActiveReleases: active,
		PendingReview:  pending,
		TotalUnits:     totals.Units,
		TotalRevenue:   totals.Revenue,
	}, nil
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
