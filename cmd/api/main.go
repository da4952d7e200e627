package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/okovalchuk/distrohub-backend/api/routes"
	"github.com/okovalchuk/distrohub-backend/internal/artists"
	"github.com/okovalchuk/distrohub-backend/internal/audit"
	"github.com/okovalchuk/distrohub-backend/internal/auth"
	"github.com/okovalchuk/distrohub-backend/internal/media"
	"github.com/okovalchuk/distrohub-backend/internal/orgs"
	"github.com/okovalchuk/distrohub-backend/internal/releases"
	"github.com/okovalchuk/distrohub-backend/internal/reports"
	"github.com/okovalchuk/distrohub-backend/internal/splits"
	"github.com/okovalchuk/distrohub-backend/internal/tracks"
	"github.com/okovalchuk/distrohub-backend/internal/users"
	"github.com/okovalchuk/distrohub-backend/pkg/auth/session"
	"github.com/okovalchuk/distrohub-backend/pkg/config"
	"github.com/okovalchuk/distrohub-backend/pkg/db"
	"github.com/okovalchuk/distrohub-backend/pkg/logger"
	"github.com/okovalchuk/distrohub-backend/pkg/metrics"
	"github.com/okovalchuk/distrohub-backend/pkg/migrate"
	"github.com/okovalchuk/distrohub-backend/pkg/redis"
	"github.com/okovalchuk/distrohub-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	googleProvider, err := auth.NewGoogleProvider(cfg.Google)
	if err != nil {
		logg.Error(context.Background(), "failed to configure google oauth", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	orgsRepo := orgs.NewRepository(dbClient.DB())
	artistsRepo := artists.NewRepository(dbClient.DB())
	releasesRepo := releases.NewRepository(dbClient.DB())
	tracksRepo := tracks.NewRepository(dbClient.DB())
	splitsRepo := splits.NewRepository(dbClient.DB())
	reportsRepo := reports.NewRepository(dbClient.DB())
	recorder := audit.NewRecorder()
	lifecycle := metrics.NewLifecycleMetrics(prometheus.DefaultRegisterer)

	authService, err := auth.NewService(auth.ServiceParams{
		Provider:       googleProvider,
		UserRepo:       usersRepo,
		OrgsRepo:       orgsRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	orgsService, err := orgs.NewService(orgsRepo, usersRepo, dbClient, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create orgs service", err)
		os.Exit(1)
	}

	artistsService, err := artists.NewService(artistsRepo, orgsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create artists service", err)
		os.Exit(1)
	}

	releasesService, err := releases.NewService(releasesRepo, orgsRepo, artistsRepo, dbClient, recorder, lifecycle)
	if err != nil {
		logg.Error(context.Background(), "failed to create releases service", err)
		os.Exit(1)
	}

	tracksService, err := tracks.NewService(tracksRepo, releasesRepo, orgsRepo, dbClient, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracks service", err)
		os.Exit(1)
	}

	splitsService, err := splits.NewService(splitsRepo, tracksRepo, releasesRepo, orgsRepo, dbClient, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create splits service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(releasesRepo, tracksRepo, orgsRepo, gcsClient, dbClient, recorder,
		cfg.GCS.BucketName, cfg.GCS.UploadURLExpiry, cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(reportsRepo, releasesRepo, orgsRepo, dbClient, recorder)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	router := routes.NewRouter(cfg, logg,
		routes.Dependencies{DB: dbClient, Redis: redisClient, GCS: gcsClient},
		sessionManager,
		orgsRepo,
		routes.Services{
			Auth:     authService,
			Orgs:     orgsService,
			Artists:  artistsService,
			Releases: releasesService,
			Tracks:   tracksService,
			Splits:   splitsService,
			Media:    mediaService,
			Reports:  reportsService,
		},
	)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
