package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mathbymoves/backend/internal/antispam"
	"github.com/mathbymoves/backend/internal/config"
	"github.com/mathbymoves/backend/internal/handler"
	"github.com/mathbymoves/backend/internal/logging"
	"github.com/mathbymoves/backend/internal/mailer"
	"github.com/mathbymoves/backend/internal/metrics"
	"github.com/mathbymoves/backend/internal/ratelimit"
	"github.com/mathbymoves/backend/internal/repository"
	"github.com/mathbymoves/backend/internal/service"
	"github.com/mathbymoves/backend/pkg/auth"
)

const sweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repository.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeRepo()

	rules := antispam.DefaultRules()
	if cfg.FilterRulesPath != "" {
		rules, err = antispam.LoadRules(cfg.FilterRulesPath)
		if err != nil {
			logging.Fatal("failed to load filter rules", "path", cfg.FilterRulesPath, "error", err)
		}
	}

	limiter := ratelimit.NewSubmissionLimiter(cfg.RateLimitPerIP, cfg.RateLimitPerEmail, cfg.RateLimitWindow)
	go limiter.Run(ctx, sweepInterval)

	sender := mailer.NewRetrySender(
		mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}),
		mailer.RetryPolicy{MaxAttempts: cfg.MailMaxAttempts, Backoff: cfg.MailRetryBackoff},
	)
	dispatcher := mailer.NewDispatcher(sender, mailer.DispatcherConfig{
		From:       cfg.SMTP.From,
		OwnerEmail: cfg.OwnerEmail,
		OwnerName:  cfg.OwnerName,
		TokenTTL:   cfg.TokenTTL,
	})

	m := metrics.New()
	contactService := service.NewContactService(repo, dispatcher, antispam.New(rules), limiter, service.ContactConfig{
		TokenTTL: cfg.TokenTTL,
		Metrics:  m,
	})

	h := handler.New(repo, cfg.FrontendURL)
	contactHandler := handler.NewContactHandler(contactService, handler.ContactHandlerConfig{
		OwnerName:     cfg.OwnerName,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	verifyThrottle := handler.NewThrottle(cfg.VerifyRatePerMinute).
		OnReject(http.HandlerFunc(contactHandler.TooManyAttempts))
	go verifyThrottle.Run(ctx, sweepInterval)
	requireAdmin := auth.RequireAdminToken(cfg.AdminToken)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/contact", contactHandler.Submit)
	mux.Handle("GET /api/verify-email", verifyThrottle.Middleware(http.HandlerFunc(contactHandler.VerifyEmail)))
	mux.Handle("GET /api/contact-messages", requireAdmin(http.HandlerFunc(contactHandler.List)))
	mux.Handle("GET /metrics", m.Handler())
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(h.CORS(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// SMTP retries run inside the submit request.
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"store", cfg.StoreDriver,
			"admin_guard", cfg.AdminToken != "",
			"static_dir", cfg.StaticDir,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
