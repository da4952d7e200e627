package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okovalchuk/distrohub-backend/api/controllers"
	"github.com/okovalchuk/distrohub-backend/api/middleware"
	"github.com/okovalchuk/distrohub-backend/internal/artists"
	"github.com/okovalchuk/distrohub-backend/internal/auth"
	"github.com/okovalchuk/distrohub-backend/internal/media"
	"github.com/okovalchuk/distrohub-backend/internal/orgs"
	"github.com/okovalchuk/distrohub-backend/internal/releases"
	"github.com/okovalchuk/distrohub-backend/internal/reports"
	"github.com/okovalchuk/distrohub-backend/internal/splits"
	"github.com/okovalchuk/distrohub-backend/internal/tracks"
	"github.com/okovalchuk/distrohub-backend/pkg/auth/session"
	"github.com/okovalchuk/distrohub-backend/pkg/config"
	"github.com/okovalchuk/distrohub-backend/pkg/enums"
	"github.com/okovalchuk/distrohub-backend/pkg/logger"
)

// Pinger is the health-check surface each backing dependency exposes.
type Pinger = controllers.Pinger

// Services bundles the domain services the router wires into controllers.
type Services struct {
	Auth     auth.Service
	Orgs     orgs.Service
	Artists  artists.Service
	Releases releases.Service
	Tracks   tracks.Service
	Splits   splits.Service
	Media    media.Service
	Reports  reports.Service
}

// Dependencies carries the infrastructure handles health checks ping.
type Dependencies struct {
	DB    Pinger
	Redis Pinger
	GCS   Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	deps Dependencies,
	sessions session.AccessSessionChecker,
	memberships middleware.MembershipChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.GCS))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Get("/google/url", controllers.AuthGoogleURL(svcs.Auth, logg))
		r.Post("/google/callback", controllers.AuthGoogleCallback(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/orgs", func(r chi.Router) {
			r.Post("/", controllers.OrgCreate(svcs.Orgs, logg))
			r.Get("/", controllers.OrgList(svcs.Orgs, logg))

			r.Route("/{orgId}", func(r chi.Router) {
				r.Get("/", controllers.OrgGet(svcs.Orgs, logg))
				r.Get("/stats", controllers.OrgStats(svcs.Reports, logg))
				r.Get("/reports/summary", controllers.OrgReportSummary(svcs.Reports, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireOrgRoles(memberships, logg,
						enums.MemberRoleOwner, enums.MemberRoleManager))
					r.Post("/members", controllers.OrgAddMember(svcs.Orgs, logg))
					r.Delete("/members/{userId}", controllers.OrgRemoveMember(svcs.Orgs, logg))
				})
				r.Get("/members", controllers.OrgMembers(svcs.Orgs, logg))

				r.Route("/artists", func(r chi.Router) {
					r.Post("/", controllers.ArtistCreate(svcs.Artists, logg))
					r.Get("/", controllers.ArtistList(svcs.Artists, logg))
					r.Get("/{artistId}", controllers.ArtistGet(svcs.Artists, logg))
					r.Patch("/{artistId}", controllers.ArtistUpdate(svcs.Artists, logg))
					r.Delete("/{artistId}", controllers.ArtistDelete(svcs.Artists, logg))
				})

				r.Route("/releases", func(r chi.Router) {
					r.Post("/", controllers.ReleaseCreate(svcs.Releases, logg))
					r.Get("/", controllers.ReleaseList(svcs.Releases, logg))
					r.Get("/recent", controllers.ReleaseRecent(svcs.Releases, logg))

					r.Route("/{releaseId}", func(r chi.Router) {
						r.Get("/", controllers.ReleaseGet(svcs.Releases, logg))
						r.Patch("/", controllers.ReleaseUpdate(svcs.Releases, logg))
						r.Post("/submit", controllers.ReleaseSubmit(svcs.Releases, logg))
						r.Post("/artwork/presign", controllers.ArtworkPresign(svcs.Media, logg))

						r.Route("/tracks", func(r chi.Router) {
							r.Post("/", controllers.TrackAdd(svcs.Tracks, logg))
							r.Get("/", controllers.TrackList(svcs.Tracks, logg))
							r.Patch("/{trackId}", controllers.TrackUpdate(svcs.Tracks, logg))
							r.Delete("/{trackId}", controllers.TrackDelete(svcs.Tracks, logg))
						})
					})
				})

				r.Route("/tracks/{trackId}", func(r chi.Router) {
					r.Post("/audio/presign", controllers.AudioPresign(svcs.Media, logg))
					r.Route("/splits", func(r chi.Router) {
						r.Post("/", controllers.SplitAdd(svcs.Splits, logg))
						r.Get("/", controllers.SplitList(svcs.Splits, logg))
						r.Patch("/{shareId}", controllers.SplitUpdate(svcs.Splits, logg))
						r.Delete("/{shareId}", controllers.SplitDelete(svcs.Splits, logg))
					})
				})
			})
		})

		r.Route("/codes", func(r chi.Router) {
			r.Get("/upc/generate", controllers.CodesGenerateUPC(logg))
			r.Get("/upc/validate", controllers.CodesValidateUPC(logg))
			r.Get("/isrc/generate", controllers.CodesGenerateISRC(logg))
			r.Get("/isrc/validate", controllers.CodesValidateISRC(logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/releases", func(r chi.Router) {
			r.Get("/queue", controllers.AdminReviewQueue(svcs.Releases, logg))
			r.Route("/{releaseId}", func(r chi.Router) {
				r.Get("/", controllers.AdminGetRelease(svcs.Releases, logg))
				r.Patch("/", controllers.AdminPatchRelease(svcs.Releases, logg))
				r.Post("/approve", controllers.AdminApproveRelease(svcs.Releases, logg))
				r.Post("/reject", controllers.AdminRejectRelease(svcs.Releases, logg))
				r.Post("/takedown", controllers.AdminTakedownRelease(svcs.Releases, logg))
			})
		})

		r.Post("/reports/ingest", controllers.ReportsIngest(svcs.Reports, logg))
	})

	return r
}
