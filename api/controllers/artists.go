package controllers

import (
	"net/http"

	"github.com/okovalchuk/distrohub-backend/api/responses"
	"github.com/okovalchuk/distrohub-backend/api/validators"
	"github.com/okovalchuk/distrohub-backend/internal/artists"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
	"github.com/okovalchuk/distrohub-backend/pkg/logger"
)

type artistCreateRequest struct {
	Name            string  `json:"name" validate:"required,min=1"`
	SpotifyArtistID *string `json:"spotify_artist_id,omitempty"`
	AppleArtistID   *string `json:"apple_artist_id,omitempty"`
}

func ArtistCreate(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artists service unavailable"))
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

		var body artistCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artist, err := svc.Create(r.Context(), artists.CreateInput{
			ActorID:         actorID,
			OrgID:           orgID,
			Name:            body.Name,
			SpotifyArtistID: body.SpotifyArtistID,
			AppleArtistID:   body.AppleArtistID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, artist)
	}
}

func ArtistList(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artists service unavailable"))
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

		list, err := svc.List(r.Context(), actorID, orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func ArtistGet(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artists service unavailable"))
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

		artistID, err := pathUUID(r, "artistId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artist, err := svc.Get(r.Context(), actorID, orgID, artistID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, artist)
	}
}

type artistUpdateRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1"`
	SpotifyArtistID *string `json:"spotify_artist_id,omitempty"`
	AppleArtistID   *string `json:"apple_artist_id,omitempty"`
}

func ArtistUpdate(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artists service unavailable"))
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

		artistID, err := pathUUID(r, "artistId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body artistUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		artist, err := svc.Update(r.Context(), artists.UpdateInput{
			ActorID:         actorID,
			OrgID:           orgID,
			ArtistID:        artistID,
			Name:            body.Name,
			SpotifyArtistID: body.SpotifyArtistID,
			AppleArtistID:   body.AppleArtistID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, artist)
	}
}

func ArtistDelete(svc artists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "artists service unavailable"))
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

		artistID, err := pathUUID(r, "artistId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorID, orgID, artistID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
