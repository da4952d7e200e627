package releases

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/artists"
	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/codes"
	"github.com/okovalchuk/distrohub-backend/internal/orgs"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
	"github.com/okovalchuk/distrohub-backend/pkg/metrics"
	"github.com/okovalchuk/distrohub-backend/pkg/pagination"
)

const (
	submittedQCMessage  = "Release submitted for quality control review"
	defaultRejectReason = "Release rejected by admin"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies the caller of a lifecycle operation.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// Detail aggregates a release with its dependent rows for the detail view.
type Detail struct {
	Release      *models.Release
	Tracks       []models.Track
	QCItems      []models.QCItem
	DeliveryJobs []models.DeliveryJob
}

// Service enforces the release lifecycle: DRAFT -> IN_REVIEW ->
// APPROVED/REJECTED -> DELIVERING -> DELIVERED, with TAKEDOWN as the terminal
// admin action. Every transition writes its status change and side effects in
// one transaction.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Release, error)
	Get(ctx context.Context, actorID, orgID, releaseID uuid.UUID) (*Detail, error)
	List(ctx context.Context, input ListInput) ([]models.Release, *pagination.Cursor, error)
	ListRecent(ctx context.Context, actorID, orgID uuid.UUID, limit int) ([]models.Release, error)
	Update(ctx context.Context, input UpdateInput) (*models.Release, error)
	Submit(ctx context.Context, actorID, orgID, releaseID uuid.UUID) (*models.Release, error)

	AdminGet(ctx context.Context, actor Actor, releaseID uuid.UUID) (*Detail, error)
	Approve(ctx context.Context, actor Actor, releaseID uuid.UUID) (*models.Release, error)
	Reject(ctx context.Context, actor Actor, releaseID uuid.UUID, reason string) (*models.Release, error)
	AdminUpdate(ctx context.Context, actor Actor, releaseID uuid.UUID, fields map[string]any) (*models.Release, error)
	Takedown(ctx context.Context, actor Actor, releaseID uuid.UUID) (*models.Release, error)
	ReviewQueue(ctx context.Context, actor Actor, limit int, cursor string) ([]models.Release, *pagination.Cursor, error)
}

type service struct {
	repo    Repository
	orgs    orgs.Repository
	artists artists.Repository
	tx      txRunner
	audit   audit.Recorder
	metrics *metrics.LifecycleMetrics
	now     func() time.Time
}

// NewService builds a releases service with the required dependencies.
// Lifecycle metrics may be nil when no registry is wired.
func NewService(repo Repository, orgsRepo orgs.Repository, artistsRepo artists.Repository, tx txRunner, recorder audit.Recorder, lifecycle *metrics.LifecycleMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("releases repository required")
	}
	if orgsRepo == nil {
		return nil, fmt.Errorf("orgs repository required")
	}
	if artistsRepo == nil {
		return nil, fmt.Errorf("artists repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:    repo,
		orgs:    orgsRepo,
		artists: artistsRepo,
		tx:      tx,
		audit:   recorder,
		metrics: lifecycle,
		now:     time.Now,
	}, nil
}

// CreateInput captures the fields for a new DRAFT release.
type CreateInput struct {
	ActorID     uuid.UUID
	OrgID       uuid.UUID
	ArtistID    uuid.UUID
	Title       string
	ReleaseType *enums.ReleaseType

	PrimaryGenre        *string
	SecondaryGenre      *string
	Language            *string
	AlbumVersion        *string
	OriginalReleaseDate *time.Time
	ReleaseDate         *time.Time
	ReleaseTime         *string
	SubLabel            *string
	LabelName           *string
	PCopyright          *string
	Territories         []string
}

// ListInput filters the org-scoped release listing.
type ListInput struct {
	ActorID uuid.UUID
	OrgID   uuid.UUID
	Status  *enums.ReleaseStatus
	Limit   int
	Cursor  string
}

// UpdateInput carries the owner-editable release fields. Only DRAFT and
// REJECTED releases accept edits.
type UpdateInput struct {
	ActorID   uuid.UUID
	OrgID     uuid.UUID
	ReleaseID uuid.UUID

	Title               *string
	ReleaseType         *enums.ReleaseType
	PrimaryGenre        *string
	SecondaryGenre      *string
	Language            *string
	AlbumVersion        *string
	OriginalReleaseDate *time.Time
	ReleaseDate         *time.Time
	ReleaseTime         *string
	SubLabel            *string
	LabelName           *string
	PCopyright          *string
	Territories         []string
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
	ok, err := s.orgs.UserHasRole(ctx, actorID, orgID, editorRoles...)
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
	ok, err := s.orgs.UserHasRole(ctx, actorID, orgID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this organization")
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if actor.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "administrator role required")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Release, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "release title is required")
	}
	if input.ArtistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artist id required")
	}

	artist, err := s.artists.FindByID(ctx, input.ArtistID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artist")
	}
	if artist.OrgID != input.OrgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "artist not found")
	}

	org, err := s.orgs.FindByID(ctx, input.OrgID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	created, err := s.repo.CountCreatedSince(ctx, input.OrgID, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count releases this month")
	}
	if org.MonthlyReleaseLimit > 0 && created >= int64(org.MonthlyReleaseLimit) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "monthly release limit reached for the current plan").
			WithDetails(map[string]any{"limit": org.MonthlyReleaseLimit, "plan": org.Plan})
	}

	releaseType := enums.ReleaseTypeSingle
	if input.ReleaseType != nil {
		if !input.ReleaseType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid release type")
		}
		releaseType = *input.ReleaseType
	}

	territories, err := normalizeTerritories(input.Territories)
	if err != nil {
		return nil, err
	}

	upc, err := codes.GenerateUPC()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate upc")
	}

	release := &models.Release{
		OrgID:               input.OrgID,
		ArtistID:            input.ArtistID,
		Title:               title,
		ReleaseType:         releaseType,
		Status:              enums.ReleaseStatusDraft,
		UPC:                 &upc,
		PrimaryGenre:        input.PrimaryGenre,
		SecondaryGenre:      input.SecondaryGenre,
		Language:            input.Language,
		AlbumVersion:        input.AlbumVersion,
		OriginalReleaseDate: input.OriginalReleaseDate,
		ReleaseDate:         input.ReleaseDate,
		ReleaseTime:         input.ReleaseTime,
		SubLabel:            input.SubLabel,
		LabelName:           input.LabelName,
		PCopyright:          input.PCopyright,
		Territories:         territories,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, release); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create release")
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &input.OrgID,
			Action:     "release.created",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"title": release.Title, "artist_id": release.ArtistID, "upc": upc},
		})
	})
	if err != nil {
		return nil, err
	}
	return release, nil
}

func (s *service) Get(ctx context.Context, actorID, orgID, releaseID uuid.UUID) (*Detail, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	release, err := s.loadOrgRelease(ctx, orgID, releaseID)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, release)
}

func (s *service) loadDetail(ctx context.Context, release *models.Release) (*Detail, error) {
	tracks, err := s.repo.ListTracks(ctx, release.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tracks")
	}
	items, err := s.repo.ListQCItems(ctx, release.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list qc items")
	}
	jobs, err := s.repo.ListDeliveryJobs(ctx, release.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery jobs")
	}
	return &Detail{Release: release, Tracks: tracks, QCItems: items, DeliveryJobs: jobs}, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Release, *pagination.Cursor, error) {
	if err := s.requireMember(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid release status filter")
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	releases, next, err := s.repo.List(ctx, ListParams{
		OrgID:  input.OrgID,
		Status: input.Status,
		Limit:  input.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list releases")
	}
	return releases, next, nil
}

func (s *service) ListRecent(ctx context.Context, actorID, orgID uuid.UUID, limit int) ([]models.Release, error) {
	if err := s.requireMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	releases, err := s.repo.ListRecent(ctx, orgID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent releases")
	}
	return releases, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Release, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	release, err := s.loadOrgRelease(ctx, input.OrgID, input.ReleaseID)
	if err != nil {
		return nil, err
	}
	if release.Status != enums.ReleaseStatusDraft && release.Status != enums.ReleaseStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft or rejected releases can be edited").
			WithDetails(map[string]any{"status": release.Status})
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "release title cannot be empty")
		}
		updates["title"] = title
		release.Title = title
	}
	if input.ReleaseType != nil {
		if !input.ReleaseType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid release type")
		}
		updates["release_type"] = *input.ReleaseType
		release.ReleaseType = *input.ReleaseType
	}
	if input.PrimaryGenre != nil {
		updates["primary_genre"] = input.PrimaryGenre
		release.PrimaryGenre = input.PrimaryGenre
	}
	if input.SecondaryGenre != nil {
		updates["secondary_genre"] = input.SecondaryGenre
		release.SecondaryGenre = input.SecondaryGenre
	}
	if input.Language != nil {
		updates["language"] = input.Language
		release.Language = input.Language
	}
	if input.AlbumVersion != nil {
		updates["album_version"] = input.AlbumVersion
		release.AlbumVersion = input.AlbumVersion
	}
	if input.OriginalReleaseDate != nil {
		updates["original_release_date"] = input.OriginalReleaseDate
		release.OriginalReleaseDate = input.OriginalReleaseDate
	}
	if input.ReleaseDate != nil {
		updates["release_date"] = input.ReleaseDate
		release.ReleaseDate = input.ReleaseDate
	}
	if input.ReleaseTime != nil {
		updates["release_time"] = input.ReleaseTime
		release.ReleaseTime = input.ReleaseTime
	}
	if input.SubLabel != nil {
		updates["sub_label"] = input.SubLabel
		release.SubLabel = input.SubLabel
	}
	if input.LabelName != nil {
		updates["label_name"] = input.LabelName
		release.LabelName = input.LabelName
	}
	if input.PCopyright != nil {
		updates["p_copyright"] = input.PCopyright
		release.PCopyright = input.PCopyright
	}
	if input.Territories != nil {
		territories, err := normalizeTerritories(input.Territories)
		if err != nil {
			return nil, err
		}
		updates["territories"] = territories
		release.Territories = territories
	}
	if len(updates) == 0 {
		return release, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, release.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update release")
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &input.OrgID,
			Action:     "release.updated",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"fields": sortedKeys(updates)},
		})
	})
	if err != nil {
		return nil, err
	}
	return release, nil
}

func (s *service) Submit(ctx context.Context, actorID, orgID, releaseID uuid.UUID) (*models.Release, error) {
	if err := s.requireEditor(ctx, actorID, orgID); err != nil {
		return nil, err
	}
	release, err := s.loadOrgRelease(ctx, orgID, releaseID)
	if err != nil {
		return nil, err
	}
	if release.Status != enums.ReleaseStatusDraft && release.Status != enums.ReleaseStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft or rejected releases can be submitted").
			WithDetails(map[string]any{"status": release.Status})
	}

	artist, err := s.artists.FindByID(ctx, release.ArtistID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load artist")
	}
	tracks, err := s.repo.ListTracks(ctx, release.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tracks")
	}
	trackIDs := make([]uuid.UUID, 0, len(tracks))
	for _, track := range tracks {
		trackIDs = append(trackIDs, track.ID)
	}
	shares, err := s.repo.ListSplits(ctx, trackIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list splits")
	}
	splitsByTrack := make(map[uuid.UUID][]models.SplitShare, len(tracks))
	for _, share := range shares {
		splitsByTrack[share.TrackID] = append(splitsByTrack[share.TrackID], share)
	}

	now := s.now().UTC()
	failures := RunChecklist(ChecklistInput{
		Release: release,
		Artist:  artist,
		Tracks:  tracks,
		Splits:  splitsByTrack,
		Now:     now,
	})
	if len(failures) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "release failed submission checks").
			WithDetails(map[string]any{"failures": failures})
	}

	previous := release.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, release.ID, map[string]any{
			"status":       enums.ReleaseStatusInReview,
			"submitted_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update release status")
		}
		if err := repo.CreateQCItem(ctx, &models.QCItem{
			ReleaseID: release.ID,
			Severity:  enums.QCSeverityInfo,
			Message:   submittedQCMessage,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create qc item")
		}
		actor := actorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &orgID,
			Action:     "release.submitted",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"from": previous, "to": enums.ReleaseStatusInReview},
		})
	})
	if err != nil {
		return nil, err
	}

	release.Status = enums.ReleaseStatusInReview
	release.SubmittedAt = &now
	s.metrics.ObserveTransition(previous.String(), release.Status.String())
	s.metrics.IncQCItem(enums.QCSeverityInfo.String())
	return release, nil
}

func (s *service) AdminGet(ctx context.Context, actor Actor, releaseID uuid.UUID) (*Detail, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	release, err := s.loadRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	return s.loadDetail(ctx, release)
}

func (s *service) Approve(ctx context.Context, actor Actor, releaseID uuid.UUID) (*models.Release, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	release, err := s.loadRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if release.Status != enums.ReleaseStatusInReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only releases in review can be approved").
			WithDetails(map[string]any{"status": release.Status})
	}

	now := s.now().UTC()
	targets := enums.DeliveryTargets()
	jobs := make([]models.DeliveryJob, 0, len(targets))
	for _, target := range targets {
		jobs = append(jobs, models.DeliveryJob{
			ReleaseID: release.ID,
			Target:    target,
			Status:    enums.DeliveryStatusPending,
		})
	}

	previous := release.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, release.ID, map[string]any{
			"status":      enums.ReleaseStatusApproved,
			"reviewed_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update release status")
		}
		if err := repo.CreateDeliveryJobs(ctx, jobs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery jobs")
		}
		adminID := actor.ID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &adminID,
			OrgID:      &release.OrgID,
			Action:     "release.approved",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"targets": targets},
		})
	})
	if err != nil {
		return nil, err
	}

	release.Status = enums.ReleaseStatusApproved
	release.ReviewedAt = &now
	s.metrics.ObserveTransition(previous.String(), release.Status.String())
	for _, target := range targets {
		s.metrics.IncDeliveryJob(target.String())
	}
	return release, nil
}

func (s *service) Reject(ctx context.Context, actor Actor, releaseID uuid.UUID, reason string) (*models.Release, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	release, err := s.loadRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	message := strings.TrimSpace(reason)
	if message == "" {
		message = defaultRejectReason
	}

	now := s.now().UTC()
	previous := release.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, release.ID, map[string]any{
			"status":      enums.ReleaseStatusRejected,
			"reviewed_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update release status")
		}
		if err := repo.CreateQCItem(ctx, &models.QCItem{
			ReleaseID: release.ID,
			Severity:  enums.QCSeverityError,
			Message:   message,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create qc item")
		}
		adminID := actor.ID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &adminID,
			OrgID:      &release.OrgID,
			Action:     "release.rejected",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"reason": message, "from": previous},
		})
	})
	if err != nil {
		return nil, err
	}

	release.Status = enums.ReleaseStatusRejected
	release.ReviewedAt = &now
	s.metrics.ObserveTransition(previous.String(), release.Status.String())
	s.metrics.IncQCItem(enums.QCSeverityError.String())
	return release, nil
}

// adminFieldParsers maps every accepted admin-update field to its column
// converter. A payload key outside this map is a validation error, never a
// silent drop.
var adminFieldParsers = map[string]func(value any) (string, any, error){
	"title":               stringField("title", true),
	"upc":                 upcField,
	"primaryGenre":        stringField("primary_genre", false),
	"secondaryGenre":      stringField("secondary_genre", false),
	"language":            stringField("language", false),
	"albumVersion":        stringField("album_version", false),
	"originalReleaseDate": dateField("original_release_date"),
	"releaseDate":         dateField("release_date"),
	"releaseTime":         stringField("release_time", false),
	"subLabel":            stringField("sub_label", false),
	"status":              statusField,
	"territories":         territoriesField,
	"labelName":           stringField("label_name", false),
	"pCopyright":          stringField("p_copyright", false),
}

func (s *service) AdminUpdate(ctx context.Context, actor Actor, releaseID uuid.UUID, fields map[string]any) (*models.Release, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields provided")
	}

	var rejected []string
	for key := range fields {
		if _, ok := adminFieldParsers[key]; !ok {
			rejected = append(rejected, key)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fields outside the admin allow-list").
			WithDetails(map[string]any{"fields": rejected})
	}

	release, err := s.loadRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	for key, value := range fields {
		column, converted, err := adminFieldParsers[key](value)
		if err != nil {
			return nil, err
		}
		updates[column] = converted
	}

	previous := release.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, release.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update release")
		}
		adminID := actor.ID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &adminID,
			OrgID:      &release.OrgID,
			Action:     "release.admin_updated",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"fields": sortedKeys(updates)},
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.loadRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if updated.Status != previous {
		s.metrics.ObserveTransition(previous.String(), updated.Status.String())
	}
	return updated, nil
}

// takedownFrom lists the statuses a release can be taken down from. Earlier
// stages are handled by reject or by deleting the draft.
var takedownFrom = map[enums.ReleaseStatus]struct{}{
	enums.ReleaseStatusApproved:   {},
	enums.ReleaseStatusDelivering: {},
	enums.ReleaseStatusDelivered:  {},
}

func (s *service) Takedown(ctx context.Context, actor Actor, releaseID uuid.UUID) (*models.Release, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	release, err := s.loadRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if _, ok := takedownFrom[release.Status]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "release is not live and cannot be taken down").
			WithDetails(map[string]any{"status": release.Status})
	}

	previous := release.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, release.ID, map[string]any{"status": enums.ReleaseStatusTakedown}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update release status")
		}
		adminID := actor.ID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &adminID,
			OrgID:      &release.OrgID,
			Action:     "release.takedown",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"from": previous},
		})
	})
	if err != nil {
		return nil, err
	}

	release.Status = enums.ReleaseStatusTakedown
	s.metrics.ObserveTransition(previous.String(), release.Status.String())
	return release, nil
}

func (s *service) ReviewQueue(ctx context.Context, actor Actor, limit int, cursor string) ([]models.Release, *pagination.Cursor, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}
	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	releases, next, err := s.repo.ListReviewQueue(ctx, limit, parsed)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list review queue")
	}
	return releases, next, nil
}

func (s *service) loadRelease(ctx context.Context, releaseID uuid.UUID) (*models.Release, error) {
	if releaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "release id required")
	}
	release, err := s.repo.FindByID(ctx, releaseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "release not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load release")
	}
	return release, nil
}

func (s *service) loadOrgRelease(ctx context.Context, orgID, releaseID uuid.UUID) (*models.Release, error) {
	release, err := s.loadRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	if release.OrgID != orgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "release not found")
	}
	return release, nil
}

func normalizeTerritories(territories []string) (pq.StringArray, error) {
	if territories == nil {
		return nil, nil
	}
	normalized := make(pq.StringArray, 0, len(territories))
	for _, territory := range territories {
		code := strings.ToUpper(strings.TrimSpace(territory))
		if code == "" {
			continue
		}
		if code != territoryWorldwide && !territoryCodePattern.MatchString(code) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("territory %q is not a recognized code", territory))
		}
		normalized = append(normalized, code)
	}
	return normalized, nil
}

func sortedKeys(updates map[string]any) []string {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringField(column string, required bool) func(value any) (string, any, error) {
	return func(value any) (string, any, error) {
		if value == nil {
			if required {
				return "", nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be null", column))
			}
			return column, nil, nil
		}
		text, ok := value.(string)
		if !ok {
			return "", nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a string", column))
		}
		text = strings.TrimSpace(text)
		if required && text == "" {
			return "", nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s cannot be empty", column))
		}
		return column, text, nil
	}
}

func upcField(value any) (string, any, error) {
	text, ok := value.(string)
	if !ok {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "upc must be a string")
	}
	if !codes.ValidateUPC(text) {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "upc is not a valid 12-digit code")
	}
	return "upc", text, nil
}

func dateField(column string) func(value any) (string, any, error) {
	return func(value any) (string, any, error) {
		if value == nil {
			return column, nil, nil
		}
		text, ok := value.(string)
		if !ok {
			return "", nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a YYYY-MM-DD string", column))
		}
		parsed, err := time.Parse("2006-01-02", text)
		if err != nil {
			return "", nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a YYYY-MM-DD string", column))
		}
		return column, parsed, nil
	}
}

func statusField(value any) (string, any, error) {
	text, ok := value.(string)
	if !ok {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be a string")
	}
	status, err := enums.ParseReleaseStatus(text)
	if err != nil {
		return "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid release status")
	}
	return "status", status, nil
}

func territoriesField(value any) (string, any, error) {
	var raw []string
	switch typed := value.(type) {
	case []string:
		raw = typed
	case []any:
		for _, item := range typed {
			text, ok := item.(string)
			if !ok {
				return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "territories must be a list of strings")
			}
			raw = append(raw, text)
		}
	default:
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "territories must be a list of strings")
	}
	normalized, err := normalizeTerritories(raw)
	if err != nil {
		return "", nil, err
	}
	return "territories", normalized, nil
}
