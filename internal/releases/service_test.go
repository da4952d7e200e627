package releases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/artists"
	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/codes"
	"github.com/okovalchuk/distrohub-backend/internal/orgs"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	releases     map[uuid.UUID]*models.Release
	tracks       map[uuid.UUID][]models.Track
	splits       map[uuid.UUID][]models.SplitShare
	qcItems      []models.QCItem
	jobs         []models.DeliveryJob
	createdCount int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		releases: make(map[uuid.UUID]*models.Release),
		tracks:   make(map[uuid.UUID][]models.Track),
		splits:   make(map[uuid.UUID][]models.SplitShare),
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, release *models.Release) (*models.Release, error) {
	if release.ID == uuid.Nil {
		release.ID = uuid.New()
	}
	s.releases[release.ID] = release
	return release, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Release, error) {
	release, ok := s.releases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return release, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	release, ok := s.releases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range updates {
		switch column {
		case "status":
			release.Status = value.(enums.ReleaseStatus)
		case "title":
			release.Title = value.(string)
		case "upc":
			upc := value.(string)
			release.UPC = &upc
		case "submitted_at":
			at := value.(time.Time)
			release.SubmittedAt = &at
		case "reviewed_at":
			at := value.(time.Time)
			release.ReviewedAt = &at
		case "territories":
			release.Territories = value.(pq.StringArray)
		}
	}
	return nil
}

func (s *stubRepo) CountCreatedSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	return s.createdCount, nil
}

func (s *stubRepo) ListTracks(ctx context.Context, releaseID uuid.UUID) ([]models.Track, error) {
	return s.tracks[releaseID], nil
}

func (s *stubRepo) ListSplits(ctx context.Context, trackIDs []uuid.UUID) ([]models.SplitShare, error) {
	var out []models.SplitShare
	for _, trackID := range trackIDs {
		out = append(out, s.splits[trackID]...)
	}
	return out, nil
}

func (s *stubRepo) CreateQCItem(ctx context.Context, item *models.QCItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.qcItems = append(s.qcItems, *item)
	return nil
}

func (s *stubRepo) ListQCItems(ctx context.Context, releaseID uuid.UUID) ([]models.QCItem, error) {
	var out []models.QCItem
	for _, item := range s.qcItems {
		if item.ReleaseID == releaseID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubRepo) CreateDeliveryJobs(ctx context.Context, jobs []models.DeliveryJob) error {
	s.jobs = append(s.jobs, jobs...)
	return nil
}

func (s *stubRepo) ListDeliveryJobs(ctx context.Context, releaseID uuid.UUID) ([]models.DeliveryJob, error) {
	var out []models.DeliveryJob
	for _, job := range s.jobs {
		if job.ReleaseID == releaseID {
			out = append(out, job)
		}
	}
	return out, nil
}

type stubOrgs struct {
	orgs.Repository
	org   *models.Organization
	roles map[uuid.UUID]enums.MemberRole
}

func (s *stubOrgs) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if s.org == nil || s.org.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.org, nil
}

func (s *stubOrgs) UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
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

type stubArtists struct {
	artists.Repository
	artists map[uuid.UUID]*models.Artist
}

func (s *stubArtists) FindByID(ctx context.Context, id uuid.UUID) (*models.Artist, error) {
	artist, ok := s.artists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return artist, nil
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

type fixture struct {
	svc      *service
	repo     *stubRepo
	orgs     *stubOrgs
	artists  *stubArtists
	audit    *stubAudit
	now      time.Time
	orgID    uuid.UUID
	editorID uuid.UUID
	artistID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	orgID := uuid.New()
	editorID := uuid.New()
	artistID := uuid.New()

	repo := newStubRepo()
	orgsRepo := &stubOrgs{
		org: &models.Organization{
			ID:                  orgID,
			Name:                "Night Signal Records",
			Plan:                enums.PlanTypeFree,
			MonthlyReleaseLimit: 2,
		},
		roles: map[uuid.UUID]enums.MemberRole{editorID: enums.MemberRoleEditor},
	}
	artistsRepo := &stubArtists{artists: map[uuid.UUID]*models.Artist{
		artistID: {ID: artistID, OrgID: orgID, Name: "Night Signal"},
	}}
	recorder := &stubAudit{}

	svc := &service{
		repo:    repo,
		orgs:    orgsRepo,
		artists: artistsRepo,
		tx:      stubTx{},
		audit:   recorder,
		now:     func() time.Time { return now },
	}
	return &fixture{
		svc:      svc,
		repo:     repo,
		orgs:     orgsRepo,
		artists:  artistsRepo,
		audit:    recorder,
		now:      now,
		orgID:    orgID,
		editorID: editorID,
		artistID: artistID,
	}
}

func (f *fixture) seedReadyRelease(status enums.ReleaseStatus) *models.Release {
	releaseDate := f.now.Add(10 * 24 * time.Hour)
	release := &models.Release{
		ID:           uuid.New(),
		OrgID:        f.orgID,
		ArtistID:     f.artistID,
		Title:        "Midnight Transmission",
		ReleaseType:  enums.ReleaseTypeSingle,
		Status:       status,
		PrimaryGenre: strPtr("Electronic"),
		Language:     strPtr("en"),
		ReleaseDate:  &releaseDate,
		ArtworkKey:   strPtr("uploads/artwork/cover.jpg"),
		Territories:  pq.StringArray{"WW"},
		CreatedAt:    f.now,
	}
	f.repo.releases[release.ID] = release

	track := models.Track{
		ID:         uuid.New(),
		ReleaseID:  release.ID,
		TrackIndex: 1,
		Title:      "Midnight Transmission",
		AudioKey:   strPtr("uploads/audio/track1.wav"),
	}
	f.repo.tracks[release.ID] = []models.Track{track}
	f.repo.splits[track.ID] = []models.SplitShare{
		{TrackID: track.ID, Email: "a@x.com", Role: "artist", Percent: decimal.NewFromInt(100)},
	}
	return release
}

func adminActor() Actor {
	return Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestCreateAssignsUPCAndStartsInDraft(t *testing.T) {
	f := newFixture(t)

	release, err := f.svc.Create(context.Background(), CreateInput{
		ActorID:  f.editorID,
		OrgID:    f.orgID,
		ArtistID: f.artistID,
		Title:    "First Light",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if release.Status != enums.ReleaseStatusDraft {
		t.Fatalf("expected DRAFT, got %s", release.Status)
	}
	if release.UPC == nil || !codes.ValidateUPC(*release.UPC) {
		t.Fatalf("expected a valid UPC, got %v", release.UPC)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "release.created" {
		t.Fatalf("expected create audit entry, got %+v", f.audit.entries)
	}
}

func TestCreateEnforcesMonthlyLimit(t *testing.T) {
	f := newFixture(t)
	f.repo.createdCount = 2

	_, err := f.svc.Create(context.Background(), CreateInput{
		ActorID:  f.editorID,
		OrgID:    f.orgID,
		ArtistID: f.artistID,
		Title:    "One Too Many",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSubmitCollectsAllChecklistFailures(t *testing.T) {
	f := newFixture(t)
	release := &models.Release{
		ID:       uuid.New(),
		OrgID:    f.orgID,
		ArtistID: f.artistID,
		Title:    "Test",
		Status:   enums.ReleaseStatusDraft,
	}
	f.repo.releases[release.ID] = release

	_, err := f.svc.Submit(context.Background(), f.editorID, f.orgID, release.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	failures, ok := details["failures"].([]string)
	if !ok || len(failures) < 2 {
		t.Fatalf("expected multiple checklist failures, got %v", details)
	}

	if release.Status != enums.ReleaseStatusDraft {
		t.Fatalf("status must not change on a failed submit, got %s", release.Status)
	}
	if len(f.repo.qcItems) != 0 {
		t.Fatalf("expected no qc items on a failed submit, got %d", len(f.repo.qcItems))
	}
}

func TestSubmitMovesReleaseToReview(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusDraft)

	updated, err := f.svc.Submit(context.Background(), f.editorID, f.orgID, release.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if updated.Status != enums.ReleaseStatusInReview {
		t.Fatalf("expected IN_REVIEW, got %s", updated.Status)
	}
	if updated.SubmittedAt == nil || !updated.SubmittedAt.Equal(f.now) {
		t.Fatalf("expected submitted_at %v, got %v", f.now, updated.SubmittedAt)
	}
	if len(f.repo.qcItems) != 1 {
		t.Fatalf("expected exactly one qc item, got %d", len(f.repo.qcItems))
	}
	item := f.repo.qcItems[0]
	if item.Severity != enums.QCSeverityInfo || item.Message != submittedQCMessage {
		t.Fatalf("unexpected qc item %+v", item)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "release.submitted" {
		t.Fatalf("expected submit audit entry, got %+v", f.audit.entries)
	}
}

func TestSubmitAllowedFromRejected(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusRejected)

	updated, err := f.svc.Submit(context.Background(), f.editorID, f.orgID, release.ID)
	if err != nil {
		t.Fatalf("submit after rejection: %v", err)
	}
	if updated.Status != enums.ReleaseStatusInReview {
		t.Fatalf("expected IN_REVIEW, got %s", updated.Status)
	}
}

func TestSubmitBlockedOnceInReview(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	_, err := f.svc.Submit(context.Background(), f.editorID, f.orgID, release.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
}

func TestApproveCreatesOneJobPerTarget(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	updated, err := f.svc.Approve(context.Background(), adminActor(), release.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if updated.Status != enums.ReleaseStatusApproved {
		t.Fatalf("expected APPROVED, got %s", updated.Status)
	}
	if updated.ReviewedAt == nil {
		t.Fatalf("expected reviewed_at to be set")
	}
	if len(f.repo.jobs) != 3 {
		t.Fatalf("expected exactly 3 delivery jobs, got %d", len(f.repo.jobs))
	}

	seen := map[enums.DeliveryTarget]bool{}
	for _, job := range f.repo.jobs {
		if job.Status != enums.DeliveryStatusPending {
			t.Fatalf("expected PENDING job, got %s", job.Status)
		}
		if seen[job.Target] {
			t.Fatalf("duplicate job for target %s", job.Target)
		}
		seen[job.Target] = true
	}
	for _, target := range enums.DeliveryTargets() {
		if !seen[target] {
			t.Fatalf("missing delivery job for %s", target)
		}
	}
}

func TestApproveRequiresInReview(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusDraft)

	_, err := f.svc.Approve(context.Background(), adminActor(), release.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
	if len(f.repo.jobs) != 0 {
		t.Fatalf("expected no delivery jobs, got %d", len(f.repo.jobs))
	}
}

func TestApproveRequiresAdminRole(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	_, err := f.svc.Approve(context.Background(), Actor{ID: f.editorID, Role: enums.UserRoleArtist}, release.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestRejectRecordsReason(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	updated, err := f.svc.Reject(context.Background(), adminActor(), release.ID, "Low audio quality")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	if updated.Status != enums.ReleaseStatusRejected {
		t.Fatalf("expected REJECTED, got %s", updated.Status)
	}
	if len(f.repo.qcItems) != 1 {
		t.Fatalf("expected exactly one qc item, got %d", len(f.repo.qcItems))
	}
	item := f.repo.qcItems[0]
	if item.Severity != enums.QCSeverityError || item.Message != "Low audio quality" {
		t.Fatalf("unexpected qc item %+v", item)
	}
}

func TestRejectSubstitutesDefaultReason(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	_, err := f.svc.Reject(context.Background(), adminActor(), release.ID, "   ")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if f.repo.qcItems[0].Message != defaultRejectReason {
		t.Fatalf("expected default reason, got %q", f.repo.qcItems[0].Message)
	}
}

func TestAdminUpdateRejectsUnknownFields(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	_, err := f.svc.AdminUpdate(context.Background(), adminActor(), release.ID, map[string]any{
		"title": "Renamed",
		"orgId": uuid.New().String(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if release.Title != "Midnight Transmission" {
		t.Fatalf("title must not change when the payload is rejected, got %q", release.Title)
	}
}

func TestAdminUpdateAppliesAllowListedFields(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusDelivering)

	updated, err := f.svc.AdminUpdate(context.Background(), adminActor(), release.ID, map[string]any{
		"title":  "Remastered",
		"status": "DELIVERED",
	})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}

	if updated.Title != "Remastered" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.Status != enums.ReleaseStatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", updated.Status)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != "release.admin_updated" {
		t.Fatalf("expected admin update audit entry, got %+v", f.audit.entries)
	}
}

func TestAdminUpdateRejectsMalformedValues(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	cases := map[string]map[string]any{
		"bad upc":    {"upc": "123"},
		"bad status": {"status": "SHIPPED"},
		"bad date":   {"releaseDate": "March 1st"},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.AdminUpdate(context.Background(), adminActor(), release.ID, fields)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTakedownOnlyFromLiveStatuses(t *testing.T) {
	f := newFixture(t)

	live := f.seedReadyRelease(enums.ReleaseStatusDelivered)
	updated, err := f.svc.Takedown(context.Background(), adminActor(), live.ID)
	if err != nil {
		t.Fatalf("takedown: %v", err)
	}
	if updated.Status != enums.ReleaseStatusTakedown {
		t.Fatalf("expected TAKEDOWN, got %s", updated.Status)
	}

	draft := f.seedReadyRelease(enums.ReleaseStatusDraft)
	_, err = f.svc.Takedown(context.Background(), adminActor(), draft.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
}

func TestUpdateBlockedOutsideDraftAndRejected(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusInReview)

	_, err := f.svc.Update(context.Background(), UpdateInput{
		ActorID:   f.editorID,
		OrgID:     f.orgID,
		ReleaseID: release.ID,
		Title:     strPtr("Renamed"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
}

func TestGetScopedToOrg(t *testing.T) {
	f := newFixture(t)
	release := f.seedReadyRelease(enums.ReleaseStatusDraft)

	otherOrg := uuid.New()
	f.orgs.roles[f.editorID] = enums.MemberRoleEditor

	_, err := f.svc.Get(context.Background(), f.editorID, otherOrg, release.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
