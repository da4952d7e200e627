package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/releases"
	"github.com/okovalchuk/distrohub-backend/internal/tracks"
	"github.com/okovalchuk/distrohub-backend/pkg/config"
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

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
}

// Service validates upload requests and signs PUT URLs. Validation happens
// here, before any reference is attached to a release or track; the platform
// stores only the resulting object key, never file bytes.
type Service interface {
	PresignArtwork(ctx context.Context, input ArtworkInput) (*PresignOutput, error)
	PresignAudio(ctx context.Context, input AudioInput) (*PresignOutput, error)
}

type service struct {
	releases    releases.Repository
	tracks      tracks.Repository
	memberships membershipsRepository
	gcs         gcsClient
	tx          txRunner
	audit       audit.Recorder
	bucket      string
	uploadTTL   time.Duration
	rules       config.MediaConfig
}

// NewService constructs a media service backed by the provided repositories and GCS signer.
func NewService(releasesRepo releases.Repository, tracksRepo tracks.Repository, memberships membershipsRepository, gcsClient gcsClient, tx txRunner, recorder audit.Recorder, bucket string, uploadTTL time.Duration, rules config.MediaConfig) (Service, error) {
	if releasesRepo == nil {
		return nil, fmt.Errorf("releases repository required")
	}
	if tracksRepo == nil {
		return nil, fmt.Errorf("tracks repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if gcsClient == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if uploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	return &service{
		releases:    releasesRepo,
		tracks:      tracksRepo,
		memberships: memberships,
		gcs:         gcsClient,
		tx:          tx,
		audit:       recorder,
		bucket:      bucket,
		uploadTTL:   uploadTTL,
		rules:       rules,
	}, nil
}

// ArtworkInput models an artwork upload request. Dimensions are the client's
// declared pixel sizes; the exact-square rule is enforced against them.
type ArtworkInput struct {
	ActorID   uuid.UUID
	OrgID     uuid.UUID
	ReleaseID uuid.UUID
	MimeType  string
	FileName  string
	SizeBytes int64
	WidthPx   int
	HeightPx  int
}

// AudioInput models an audio upload request for one track.
type AudioInput struct {
	ActorID   uuid.UUID
	OrgID     uuid.UUID
	TrackID   uuid.UUID
	MimeType  string
	FileName  string
	SizeBytes int64
}

// PresignOutput contains the signed upload URL and the stored object key.
type PresignOutput struct {
	Key          string    `json:"key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

var mimeTypesByKind = map[enums.MediaKind][]string{
	enums.MediaKindArtwork: {"image/jpeg", "image/png"},
	enums.MediaKindAudio:   {"audio/wav", "audio/x-wav", "audio/flac", "audio/x-flac"},
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

func (s *service) PresignArtwork(ctx context.Context, input ArtworkInput) (*PresignOutput, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	mimeType, fileName, err := validateUpload(enums.MediaKindArtwork, input.MimeType, input.FileName, input.SizeBytes, int64(s.rules.ArtworkMaxMB)*1024*1024)
	if err != nil {
		return nil, err
	}
	if input.WidthPx != s.rules.ArtworkDimensionPx || input.HeightPx != s.rules.ArtworkDimensionPx {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("artwork must be exactly %dx%d pixels", s.rules.ArtworkDimensionPx, s.rules.ArtworkDimensionPx)).
			WithDetails(map[string]any{"width": input.WidthPx, "height": input.HeightPx})
	}

	release, err := s.loadEditableRelease(ctx, input.OrgID, input.ReleaseID)
	if err != nil {
		return nil, err
	}

	key := buildObjectKey(enums.MediaKindArtwork, release.ID, fileName)
	out, err := s.signAndAttach(ctx, key, mimeType, func(tx *gorm.DB) error {
		if err := s.releases.WithTx(tx).Update(ctx, release.ID, map[string]any{"artwork_key": key}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach artwork key")
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &release.OrgID,
			Action:     "media.artwork_presigned",
			EntityType: "release",
			EntityID:   release.ID,
			Payload:    map[string]any{"key": key, "mime_type": mimeType},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) PresignAudio(ctx context.Context, input AudioInput) (*PresignOutput, error) {
	if err := s.requireEditor(ctx, input.ActorID, input.OrgID); err != nil {
		return nil, err
	}
	mimeType, fileName, err := validateUpload(enums.MediaKindAudio, input.MimeType, input.FileName, input.SizeBytes, int64(s.rules.AudioMaxMB)*1024*1024)
	if err != nil {
		return nil, err
	}

	if input.TrackID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "track id required")
	}
	track, err := s.tracks.FindByID(ctx, input.TrackID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "track not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load track")
	}
	release, err := s.loadEditableRelease(ctx, input.OrgID, track.ReleaseID)
	if err != nil {
		return nil, err
	}

	key := buildObjectKey(enums.MediaKindAudio, track.ID, fileName)
	out, err := s.signAndAttach(ctx, key, mimeType, func(tx *gorm.DB) error {
		if err := s.tracks.WithTx(tx).Update(ctx, track.ID, map[string]any{"audio_key": key}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach audio key")
		}
		actor := input.ActorID
		return s.audit.Record(ctx, tx, audit.Entry{
			ActorID:    &actor,
			OrgID:      &release.OrgID,
			Action:     "media.audio_presigned",
			EntityType: "track",
			EntityID:   track.ID,
			Payload:    map[string]any{"key": key, "mime_type": mimeType},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) signAndAttach(ctx context.Context, key, mimeType string, attach func(tx *gorm.DB) error) (*PresignOutput, error) {
	signedURL, err := s.gcs.SignedURL(s.bucket, key, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}
	if err := s.tx.WithTx(ctx, attach); err != nil {
		return nil, err
	}
	return &PresignOutput{
		Key:          key,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().Add(s.uploadTTL),
	}, nil
}

func (s *service) loadEditableRelease(ctx context.Context, orgID, releaseID uuid.UUID) (*models.Release, error) {
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
	if release.Status != enums.ReleaseStatusDraft && release.Status != enums.ReleaseStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "uploads can only change while the release is draft or rejected").
			WithDetails(map[string]any{"status": release.Status})
	}
	return release, nil
}

func validateUpload(kind enums.MediaKind, mimeType, fileName string, sizeBytes, maxBytes int64) (string, string, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if sizeBytes <= 0 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if sizeBytes > maxBytes {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be ≤ %d bytes", maxBytes))
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "mime_type is required")
	}
	if !isAllowedMime(kind, mimeType) {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for this upload")
	}
	return mimeType, fileName, nil
}

func isAllowedMime(kind enums.MediaKind, mimeType string) bool {
	for _, candidate := range mimeTypesByKind[kind] {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

func buildObjectKey(kind enums.MediaKind, owner uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = owner.String()
	}
	return fmt.Sprintf("uploads/%s/%s/%s", strings.ToLower(kind.String()), owner.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
