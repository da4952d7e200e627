package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okovalchuk/distrohub-backend/api/responses"
	"github.com/okovalchuk/distrohub-backend/api/validators"
	"github.com/okovalchuk/distrohub-backend/internal/reports"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	pkgerrors "github.com/okovalchuk/distrohub-backend/pkg/errors"
	"github.com/okovalchuk/distrohub-backend/pkg/logger"
)

type reportRowRequest struct {
	ReleaseID *string         `json:"release_id,omitempty"`
	TrackID   *string         `json:"track_id,omitempty"`
	Territory string          `json:"territory"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Currency  string          `json:"currency"`
}

type reportIngestRequest struct {
	OrgID       string             `json:"org_id" validate:"required"`
	Source      string             `json:"source" validate:"required"`
	PeriodMonth string             `json:"period_month" validate:"required"`
	Rows        []reportRowRequest `json:"rows" validate:"required,min=1"`
}

// ReportsIngest loads a batch of revenue rows for one org and period.
func ReportsIngest(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reportIngestRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orgID, err := parseBodyUUID(body.OrgID, "org_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		source, err := enums.ParseReportSource(body.Source)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report source"))
			return
		}

		rows := make([]reports.RowInput, 0, len(body.Rows))
		for _, row := range body.Rows {
			input := reports.RowInput{
				Territory: row.Territory,
				Units:     row.Units,
				Revenue:   row.Revenue,
				Currency:  row.Currency,
			}
			if row.ReleaseID != nil {
				id, err := parseBodyUUID(*row.ReleaseID, "release_id")
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				input.ReleaseID = &id
			}
			if row.TrackID != nil {
				id, err := parseBodyUUID(*row.TrackID, "track_id")
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				input.TrackID = &id
			}
			rows = append(rows, input)
		}

		count, err := svc.Ingest(r.Context(), reports.Actor{ID: actor.ID, Role: actor.Role}, reports.IngestInput{
			OrgID:       orgID,
			Source:      source,
			PeriodMonth: body.PeriodMonth,
			Rows:        rows,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]int{"ingested": count})
	}
}

// OrgReportSummary returns the aggregated revenue slices for an org.
func OrgReportSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
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

		from := strings.TrimSpace(r.URL.Query().Get("from"))
		to := strings.TrimSpace(r.URL.Query().Get("to"))

		rows, err := svc.Summary(r.Context(), actorID, orgID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// OrgStats returns the dashboard snapshot for an org.
func OrgStats(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
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

		stats, err := svc.Stats(r.Context(), actorID, orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
