package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/api/swagger"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/classifier"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/handler"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/middleware"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/repository"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/internal/service"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/config"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/logger"
	corsmiddleware "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/middleware/cors"
	reqidmiddleware "github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/middleware/requestid"
	"github.com/wpitts2299/AI-Club-Hackathon-Student-Health-Project/pkg/storage"
)

// @title Student Wellness API
// @version 1.0.0
// @description Wellness check-in scoring, sealed high-risk alerts, extra-credit ledger and therapist review board
// @BasePath /
// @schemes http

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	textClassifier, err := newClassifier(cfg)
	if err != nil {
		logr.Sugar().Fatalw("classifier init failed", "error", err)
	}

	rosterRepo := repository.NewRosterRepository(cfg.Roster.Path)
	therapistRepo := repository.NewTherapistRepository(cfg.Therapist.CredentialsPath)

	var signer *storage.SignedURLSigner
	if cfg.Alerts.SignedURLSecret != "" {
		signer = storage.NewSignedURLSigner(cfg.Alerts.SignedURLSecret, cfg.Alerts.SignedURLTTL)
	}
	alertSvc := service.NewAlertService(
		storage.NewLocalStorage(cfg.Alerts.Dir, 0o600),
		signer,
		metrics,
		logr.Named("alerts"),
		service.AlertConfig{Enabled: cfg.Alerts.EncryptionEnabled, APIPrefix: cfg.APIPrefix},
	)

	scoring := service.NewScoringService(textClassifier, alertSvc, metrics, logr.Named("scoring"), service.ScoringConfig{
		MinResponseWords:          cfg.Analysis.MinResponseWords,
		MultiLabel:                cfg.Analysis.MultiLabel,
		ActiveThreshold:           cfg.Analysis.ActiveThreshold,
		SuicidalFallbackThreshold: cfg.Analysis.SuicidalFallbackThreshold,
		SegmentMinChars:           cfg.Analysis.SegmentMinChars,
	})
	roster := service.NewRosterService(rosterRepo, metrics, logr.Named("roster"))
	history := service.NewHistoryService(cfg.History.Limit)
	analysis := service.NewAnalysisService(roster, scoring, history, validate, logr.Named("analysis"))
	auth := service.NewAuthService(therapistRepo, validate, metrics, logr.Named("auth"))
	dashboard := service.NewDashboardService(history, alertSvc, logr.Named("dashboard"))
	exports := service.NewExportService(history, logr.Named("export"), nil, nil)

	cookie := middleware.CookieOptions{Name: cfg.Therapist.CookieName, Secure: cfg.Therapist.CookieSecure}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, handler.Routes{
		Prefix:    cfg.APIPrefix,
		APIKey:    cfg.APIKey,
		Cookie:    cookie,
		Sessions:  auth,
		Students:  handler.NewStudentHandler(analysis),
		Therapist: handler.NewTherapistHandler(auth, dashboard, exports, alertSvc, cookie),
		Metrics: handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
			"roster": func() error {
				_, err := os.Stat(cfg.Roster.Path)
				return err
			},
		}),
		Logger: logr.Named("audit"),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.APIKey == "" {
		logr.Warn("API_KEY not set; student endpoints are open")
	}
	if !cfg.Alerts.EncryptionEnabled {
		logr.Warn("alert encryption disabled; high-risk submissions will not be sealed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "multi_label", cfg.Analysis.MultiLabel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}

func newClassifier(cfg *config.Config) (classifier.Classifier, error) {
	mode := classifier.Mode{MultiLabel: cfg.Analysis.MultiLabel}
	if cfg.Classifier.BaseURL == "" {
		return classifier.NewStaticClassifier(mode), nil
	}
	remote, err := classifier.NewHTTPClassifier(classifier.HTTPConfig{
		BaseURL: cfg.Classifier.BaseURL,
		Timeout: cfg.Classifier.Timeout,
		ModelNames: map[classifier.Model]string{
			classifier.ModelAcademicStress: cfg.Classifier.StressModel,
			classifier.ModelMentalHealth:   cfg.Classifier.MentalModel,
			classifier.ModelEmotion:        cfg.Classifier.EmotionModel,
		},
		Mode: mode,
	}, nil)
	if err != nil {
		return nil, err
	}
	return remote, nil
}
