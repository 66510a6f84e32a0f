package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bedside-care/bedside/internal/auth"
	"github.com/bedside-care/bedside/internal/config"
	"github.com/bedside-care/bedside/internal/database"
	"github.com/bedside-care/bedside/internal/demo"
	"github.com/bedside-care/bedside/internal/exchange"
	"github.com/bedside-care/bedside/internal/family"
	"github.com/bedside-care/bedside/internal/kvstore"
	"github.com/bedside-care/bedside/internal/tokens"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Api struct {
	Config *config.Config
	Router *chi.Mux

	db       *database.Database
	tokens   *tokens.Manager
	authSvc  *auth.Service
	tokenMgr *auth.TokenManager
	guard    *demo.Guard
	importer *exchange.Importer
	archiver *exchange.Archiver
	family   *family.Family
	loc      *time.Location
	logger   *zap.Logger
}

// NewApi wires the service components onto a router
func NewApi(cfg *config.Config, db *database.Database, kv kvstore.Store, logger *zap.Logger) (*Api, error) {
	loc := time.Local
	if cfg.Reports.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Reports.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid reports timezone: %w", err)
		}
	}

	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.SessionHours)*time.Hour)
	manager := tokens.NewManager(kv, db, logger)

	var archiver *exchange.Archiver
	if cfg.Archive.Enabled {
		var err error
		archiver, err = exchange.NewArchiver(
			cfg.Archive.Endpoint, cfg.Archive.Region, cfg.Archive.Bucket,
			cfg.Archive.AccessKeyID, cfg.Archive.SecretAccessKey,
		)
		if err != nil {
			return nil, err
		}
	}

	api := &Api{
		Config:   cfg,
		Router:   chi.NewRouter(),
		db:       db,
		tokens:   manager,
		authSvc:  auth.NewService(db, tokenMgr, logger),
		tokenMgr: tokenMgr,
		guard:    demo.NewGuard(kv, db, cfg.Demo.TrialDays, time.Duration(cfg.Demo.CheckInterval)*time.Second, logger),
		importer: exchange.NewImporter(db, logger),
		archiver: archiver,
		family:   family.New(manager, db, loc, cfg.Family.AutoProvision, logger),
		loc:      loc,
		logger:   logger,
	}

	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://*.local:*", "http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/heartbeat"))

	// Public routes
	r.Post("/auth/register", api.RegisterHandler)
	r.Post("/auth/login", api.LoginHandler)
	r.Post("/demo/signup", api.DemoSignupHandler)
	r.Get("/demo/status", api.DemoStatusHandler)

	// Family portal: identity travels in the path
	r.Mount("/family", api.family.Routes())

	// Staff routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(api.tokenMgr))

		r.Get("/patients", api.ListPatientsHandler)
		r.Post("/patients", api.CreatePatientHandler)
		r.Get("/patients/{patientID}", api.GetPatientHandler)
		r.Put("/patients/{patientID}", api.UpdatePatientHandler)
		r.Delete("/patients/{patientID}", api.DischargePatientHandler)

		r.Get("/patients/{patientID}/events", api.ListEventsHandler)
		r.Post("/patients/{patientID}/events", api.CreateEventHandler)
		r.Delete("/events/{eventID}", api.DeleteEventHandler)

		r.Get("/patients/{patientID}/report", api.ReportHandler)
		r.Get("/patients/{patientID}/export", api.ExportHandler)
		r.Post("/patients/{patientID}/import", api.ImportHandler)

		r.Post("/patients/{patientID}/tokens", api.CreateFamilyTokenHandler)
		r.Get("/patients/{patientID}/tokens", api.ListFamilyTokensHandler)
		r.Delete("/tokens/{tokenID}", api.RevokeFamilyTokenHandler)
	})
}

// Serve starts the API server and the demo session re-evaluation loop
func (api *Api) Serve(ctx context.Context) error {
	go api.guard.Run(ctx)

	addr := fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort)
	api.logger.Info("starting API server", zap.String("addr", addr))

	server := &http.Server{Addr: addr, Handler: api.Router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
