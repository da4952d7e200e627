package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/okovalchuk/distrohub-backend/api/responses"
	"github.com/okovalchuk/distrohub-backend/api/validators"
	"github.com/okovalchuk/distrohub-backend/internal/releases"
	"github.com/okovalchuk/distrohub-backend/pkg/db/models"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
	"github.com/okovalchuk/distrohub-backend/pkg/logger"
	"github.com/okovalchuk/distrohub-backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

type releasePage struct {
	Items      []models.Release `json:"items"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

func newReleasePage(items []models.Release, next *pagination.Cursor) releasePage {
	page := releasePage{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dates must use YYYY-MM-DD")
	}
	return &parsed, nil
}

func parseReleaseType(value *string) (*enums.ReleaseType, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := enums.ParseReleaseType(*value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid release type")
	}
	return &parsed, nil
}

type releaseCreateRequest struct {
	ArtistID string  `json:"artist_id" validate:"required"`
	Title    string  `json:"title" validate:"required,min=1"`
	Type     *string `json:"type,omitempty"`

	PrimaryGenre        *string  `json:"primary_genre,omitempty"`
	SecondaryGenre      *string  `json:"secondary_genre,omitempty"`
	Language            *string  `json:"language,omitempty"`
	AlbumVersion        *string  `json:"album_version,omitempty"`
	OriginalReleaseDate *string  `json:"original_release_date,omitempty"`
	ReleaseDate         *string  `json:"release_date,omitempty"`
	ReleaseTime         *string  `json:"release_time,omitempty"`
	SubLabel            *string  `json:"sub_label,omitempty"`
	LabelName           *string  `json:"label_name,omitempty"`
	PCopyright          *string  `json:"p_copyright,omitempty"`
	Territories         []string `json:"territories,omitempty"`
}

func ReleaseCreate(svc releases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "releases service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body releaseCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := releases.CreateInput{
			ActorID:        actorID,
			OrgID:          orgID,
			Title:          body.Title,
			PrimaryGenre:   body.PrimaryGenre,
			SecondaryGenre: body.SecondaryGenre,
			Language:       body.Language,
			AlbumVersion:   body.AlbumVersion,
			ReleaseTime:    body.ReleaseTime,
			SubLabel:       body.SubLabel,
			LabelName:      body.LabelName,
			PCopyright:     body.PCopyright,
			Territories:    body.Territories,
		}

		artistID, err := parseBodyUUID(body.ArtistID, "artist_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ArtistID = artistID

		if input.ReleaseType, err = parseReleaseType(body.Type); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.OriginalReleaseDate, err = parseDate(body.OriginalReleaseDate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ReleaseDate, err = parseDate(body.ReleaseDate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		release, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, release)
	}
}

func ReleaseList(svc releases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "releases service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := releases.ListInput{
			ActorID: actorID,
			OrgID:   orgID,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseReleaseStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			input.Status = &status
		}

		items, next, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReleasePage(items, next))
	}
}

// ReleaseRecent returns the org's newest releases for the dashboard strip.
func ReleaseRecent(svc releases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "releases service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 5, 1, 25)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListRecent(r.Context(), actorID, orgID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, releasePage{Items: items})
	}
}

func ReleaseGet(svc releases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "releases service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		releaseID, err := pathUUID(r, "releaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), actorID, orgID, releaseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

type releaseUpdateRequest struct {
	Title               *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Type                *string  `json:"type,omitempty"`
	PrimaryGenre        *string  `json:"primary_genre,omitempty"`
	SecondaryGenre      *string  `json:"secondary_genre,omitempty"`
	Language            *string  `json:"language,omitempty"`
	AlbumVersion        *string  `json:"album_version,omitempty"`
	OriginalReleaseDate *string  `json:"original_release_date,omitempty"`
	ReleaseDate         *string  `json:"release_date,omitempty"`
	ReleaseTime         *string  `json:"release_time,omitempty"`
	SubLabel            *string  `json:"sub_label,omitempty"`
	LabelName           *string  `json:"label_name,omitempty"`
	PCopyright          *string  `json:"p_copyright,omitempty"`
	Territories         []string `json:"territories,omitempty"`
}

func ReleaseUpdate(svc releases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "releases service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		releaseID, err := pathUUID(r, "releaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body releaseUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := releases.UpdateInput{
			ActorID:        actorID,
			OrgID:          orgID,
			ReleaseID:      releaseID,
			Title:          body.Title,
			PrimaryGenre:   body.PrimaryGenre,
			SecondaryGenre: body.SecondaryGenre,
			Language:       body.Language,
			AlbumVersion:   body.AlbumVersion,
			ReleaseTime:    body.ReleaseTime,
			SubLabel:       body.SubLabel,
			LabelName:      body.LabelName,
			PCopyright:     body.PCopyright,
			Territories:    body.Territories,
		}

		if input.ReleaseType, err = parseReleaseType(body.Type); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.OriginalReleaseDate, err = parseDate(body.OriginalReleaseDate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.ReleaseDate, err = parseDate(body.ReleaseDate); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		release, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, release)
	}
}

// ReleaseSubmit runs the submission checklist and moves the release to review.
func ReleaseSubmit(svc releases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "releases service unavailable"))
			return
		}

		actorID, err := actorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		releaseID, err := pathUUID(r, "releaseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		release, err := svc.Submit(r.Context(), actorID, orgID, releaseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, release)
	}
}
