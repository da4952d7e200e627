package tracks

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/codes"
	"github.com/okovalchuk/distrohub-backend/internal/releases"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
)

type stubRepo struct {
	Repository
	tracks map[uuid.UUID]*models.Track
}

func newStubRepo() *stubRepo {
	return &stubRepo{tracks: make(map[uuid.UUID]*models.Track)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, track *models.Track) (*models.Track, error) {
	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}
	s.tracks[track.ID] = track
	return track, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	track, ok := s.tracks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return track, nil
}

func (s *stubRepo) ListByRelease(ctx context.Context, releaseID uuid.UUID) ([]models.Track, error) {
	var out []models.Track
	for _, track := range s.tracks {
		if track.ReleaseID == releaseID {
			out = append(out, *track)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackIndex < out[j].TrackIndex })
	return out, nil
}

func (s *stubRepo) CountByRelease(ctx context.Context, releaseID uuid.UUID) (int64, error) {
	tracks, _ := s.ListByRelease(ctx, releaseID)
	return int64(len(tracks)), nil
}

func (s *stubRepo) NextIndex(ctx context.Context, releaseID uuid.UUID) (int, error) {
	max := 0
	for _, track := range s.tracks {
		if track.ReleaseID == releaseID && track.TrackIndex > max {
			max = track.TrackIndex
		}
	}
	return max + 1, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	track, ok := s.tracks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if title, ok := updates["title"].(string); ok {
		track.Title = title
	}
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.tracks, id)
	return nil
}

func (s *stubRepo) Renumber(ctx context.Context, releaseID uuid.UUID) error {
	ordered, _ := s.ListByRelease(ctx, releaseID)
	for position, track := range ordered {
		s.tracks[track.ID].TrackIndex = position + 1
	}
	return nil
}

type stubReleases struct {
	releases.Repository
	releases map[uuid.UUID]*models.Release
}

func (s *stubReleases) WithTx(tx *gorm.DB) releases.Repository { return s }

func (s *stubReleases) FindByID(ctx context.Context, id uuid.UUID) (*models.Release, error) {
	release, ok := s.releases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return release, nil
}

func (s *stubReleases) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	release, ok := s.releases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if releaseType, ok := updates["release_type"].(enums.ReleaseType); ok {
		release.ReleaseType = releaseType
	}
	return nil
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
	svc       Service
	repo      *stubRepo
	releases  *stubReleases
	audit     *stubAudit
	orgID     uuid.UUID
	editorID  uuid.UUID
	releaseID uuid.UUID
}

func newFixture(t *testing.T, status enums.ReleaseStatus) *fixture {
	t.Helper()
	orgID := uuid.New()
	editorID := uuid.New()
	release := &models.Release{
		ID:          uuid.New(),
		OrgID:       orgID,
		Title:       "Midnight Transmission",
		ReleaseType: enums.ReleaseTypeSingle,
		Status:      status,
	}

	repo := newStubRepo()
	releasesRepo := &stubReleases{releases: map[uuid.UUID]*models.Release{release.ID: release}}
	memberships := &stubMemberships{roles: map[uuid.UUID]enums.MemberRole{editorID: enums.MemberRoleEditor}}
	recorder := &stubAudit{}

	svc, err := NewService(repo, releasesRepo, memberships, stubTx{}, recorder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{
		svc:       svc,
		repo:      repo,
		releases:  releasesRepo,
		audit:     recorder,
		orgID:     orgID,
		editorID:  editorID,
		releaseID: release.ID,
	}
}

func (f *fixture) addTracks(t *testing.T, count int) []*models.Track {
	t.Helper()
	out := make([]*models.Track, 0, count)
	for i := 0; i < count; i++ {
		track, err := f.svc.Add(context.Background(), AddInput{
			ActorID:   f.editorID,
			OrgID:     f.orgID,
			ReleaseID: f.releaseID,
			Title:     "Track",
		})
		if err != nil {
			t.Fatalf("add track %d: %v", i+1, err)
		}
		out = append(out, track)
	}
	return out
}

func TestAddAssignsSequentialIndexAndISRC(t *testing.T) {
	f := newFixture(t, enums.ReleaseStatusDraft)

	added := f.addTracks(t, 2)
	if added[0].TrackIndex != 1 || added[1].TrackIndex != 2 {
		t.Fatalf("expected indices 1 and 2, got %d and %d", added[0].TrackIndex, added[1].TrackIndex)
	}
	for _, track := range added {
		if track.ISRC == nil || !codes.ValidateISRC(*track.ISRC) {
			t.Fatalf("expected a valid ISRC, got %v", track.ISRC)
		}
	}
}

func TestAddRecomputesReleaseType(t *testing.T) {
	f := newFixture(t, enums.ReleaseStatusDraft)

	f.addTracks(t, 1)
	if got := f.releases.releases[f.releaseID].ReleaseType; got != enums.ReleaseTypeSingle {
		t.Fatalf("expected SINGLE with one track, got %s", got)
	}

	f.addTracks(t, 1)
	if got := f.releases.releases[f.releaseID].ReleaseType; got != enums.ReleaseTypeEP {
		t.Fatalf("expected EP with two tracks, got %s", got)
	}

	f.addTracks(t, 5)
	if got := f.releases.releases[f.releaseID].ReleaseType; got != enums.ReleaseTypeAlbum {
		t.Fatalf("expected ALBUM with seven tracks, got %s", got)
	}
}

func TestDeleteKeepsIndicesContiguous(t *testing.T) {
	f := newFixture(t, enums.ReleaseStatusDraft)
	added := f.addTracks(t, 5)

	// Remove the middle track and expect 1..4 with relative order preserved.
	err := f.svc.Delete(context.Background(), f.editorID, f.orgID, f.releaseID, added[2].ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := f.svc.List(context.Background(), f.editorID, f.orgID, f.releaseID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 4 {
		t.Fatalf("expected 4 tracks, got %d", len(remaining))
	}
	wantOrder := []uuid.UUID{added[0].ID, added[1].ID, added[3].ID, added[4].ID}
	for i, track := range remaining {
		if track.TrackIndex != i+1 {
			t.Fatalf("expected index %d at position %d, got %d", i+1, i, track.TrackIndex)
		}
		if track.ID != wantOrder[i] {
			t.Fatalf("relative order not preserved at position %d", i)
		}
	}
}

func TestMutationsBlockedOutsideDraftAndRejected(t *testing.T) {
	f := newFixture(t, enums.ReleaseStatusInReview)

	_, err := f.svc.Add(context.Background(), AddInput{
		ActorID:   f.editorID,
		OrgID:     f.orgID,
		ReleaseID: f.releaseID,
		Title:     "Late Addition",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict error, got %v", err)
	}
}

func TestAddRequiresEditorRole(t *testing.T) {
	f := newFixture(t, enums.ReleaseStatusDraft)
	viewer := uuid.New()

	_, err := f.svc.Add(context.Background(), AddInput{
		ActorID:   viewer,
		OrgID:     f.orgID,
		ReleaseID: f.releaseID,
		Title:     "Nope",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
