package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/okovalchuk/distrohub-backend/api/responses"
	"github.com/okovalchuk/distrohub-backend/internal/codes"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
	"github.com/okovalchuk/distrohub-backend/pkg/logger"
)

// CodesGenerateUPC returns a fresh 12-digit UPC with a valid check digit.
func CodesGenerateUPC(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := codes.GenerateUPC()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate upc"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"value": value})
	}
}

// CodesGenerateISRC returns a fresh ISRC stamped with the current year.
func CodesGenerateISRC(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := codes.GenerateISRC(time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate isrc"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"value": value})
	}
}

// CodesValidateUPC checks the check digit of a submitted UPC.
func CodesValidateUPC(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := strings.TrimSpace(r.URL.Query().Get("value"))
		if value == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "value is required"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"value": value,
			"valid": codes.ValidateUPC(value),
		})
	}
}

// CodesValidateISRC checks the structure of a submitted ISRC.
func CodesValidateISRC(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := strings.TrimSpace(r.URL.Query().Get("value"))
		if value == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "value is required"))
			return
		}
		normalized := codes.NormalizeISRC(value)
		responses.WriteSuccess(w, map[string]any{
			"value": normalized,
			"valid": codes.ValidateISRC(normalized),
		})
	}
}
