// Package server wires configuration, storage, domain services and the HTTP
// router into a runnable application.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"hrdesk/internal/domain/attendance"
	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/feedback"
	"hrdesk/internal/domain/leave"
	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/domain/org"
	"hrdesk/internal/domain/people"
	"hrdesk/internal/domain/salary"
	"hrdesk/internal/platform/config"
	cryptoutil "hrdesk/internal/platform/crypto"
	"hrdesk/internal/platform/db"
	"hrdesk/internal/platform/email"
	"hrdesk/internal/platform/jobs"
	"hrdesk/internal/platform/lock"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/platform/storage"
	"hrdesk/internal/transport/http/api"
	attendancehandler "hrdesk/internal/transport/http/handlers/attendance"
	audithandler "hrdesk/internal/transport/http/handlers/audit"
	authhandler "hrdesk/internal/transport/http/handlers/auth"
	feedbackhandler "hrdesk/internal/transport/http/handlers/feedback"
	leavehandler "hrdesk/internal/transport/http/handlers/leave"
	notificationshandler "hrdesk/internal/transport/http/handlers/notifications"
	orghandler "hrdesk/internal/transport/http/handlers/org"
	peoplehandler "hrdesk/internal/transport/http/handlers/people"
	salaryhandler "hrdesk/internal/transport/http/handlers/salary"
	"hrdesk/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

// Routes is implemented by every handler package.
type Routes interface {
	RegisterRoutes(r chi.Router)
}

type App struct {
	Config       config.Config
	DB           *pgxpool.Pool
	Router       http.Handler
	Jobs         *jobs.Service
	Dispatcher   *notifications.Dispatcher
	closeBackend func() error
}

// NewLogger returns a JSON slog logger at the configured level.
func NewLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// New connects to Postgres (and Redis when configured), applies migrations
// and seed data per cfg, and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	policy, err := attendance.NewPolicy(cfg.Attendance)
	if err != nil {
		return nil, err
	}
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	backend, err := lock.Open(ctx, cfg.RedisURL)
	if err != nil {
		slog.Warn("redis unavailable, using in-process lock and rate counters", "err", err)
		backend, _ = lock.Open(ctx, "")
	}

	dispatcher := notifications.NewDispatcher(email.New(cfg), cfg.EmailQueueSize)
	notifier := notifications.New(notifications.NewStore(pool), dispatcher, cfg.EmailFrom)
	auditSvc := audit.New(pool)
	media := storage.NewMedia(cfg.MediaDir)

	leaveSvc := leave.NewService(leave.NewStore(pool), notifier, func() time.Time { return policy.Day(time.Now()) })
	attendanceSvc := attendance.NewService(attendance.NewStore(pool), leaveSvc, backend.Locker, notifier, policy)
	collector := metrics.New()
	attendanceSvc.Events = collector
	jobsSvc := jobs.New(jobs.NewStore(pool), attendanceSvc, cfg.AutoClockOutInterval)

	routes := []Routes{
		authhandler.NewHandler(auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)),
		peoplehandler.NewHandler(people.NewService(people.NewStore(pool, crypto), media), media, auditSvc, cfg.MaxUploadBytes),
		orghandler.NewHandler(org.NewService(org.NewStore(pool)), auditSvc),
		leavehandler.NewHandler(leaveSvc, auditSvc),
		feedbackhandler.NewHandler(feedback.NewService(feedback.NewStore(pool), notifier), auditSvc),
		salaryhandler.NewHandler(salary.NewService(salary.NewStore(pool), notifier), auditSvc),
		attendancehandler.NewHandler(attendanceSvc, jobsSvc, auditSvc),
		notificationshandler.NewHandler(notifier),
		audithandler.NewHandler(auditSvc),
	}

	return &App{
		Config:       cfg,
		DB:           pool,
		Router:       NewRouter(cfg, pool.Ping, collector, backend.Counter, routes...),
		Jobs:         jobsSvc,
		Dispatcher:   dispatcher,
		closeBackend: backend.Close,
	}, nil
}

// NewRouter mounts routes under /api/v1 behind the shared middleware stack.
// ready backs /readyz; counter, when set, shares rate limits across replicas.
func NewRouter(cfg config.Config, ready func(context.Context) error, collector *metrics.Collector, counter lock.Counter, routes ...Routes) http.Handler {
	var recorder middleware.RequestRecorder
	if collector != nil {
		recorder = collector
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(slog.Default(), recorder))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if ready != nil {
			if err := ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.WithCounter(counter)))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.WithCounter(counter)))
		for _, routes := range routes {
			routes.RegisterRoutes(r)
		}
		if collector != nil {
			r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}
	})

	return router
}

// Run serves HTTP and runs the background workers until ctx is cancelled,
// then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Addr)
	if err != nil {
		return err
	}
	return a.serve(ctx, ln)
}

// serve stops the mail dispatcher only after the HTTP server and jobs have
// finished, so mail enqueued by in-flight requests is still delivered.
func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	mailCtx, stopMail := context.WithCancel(context.Background())
	defer stopMail()
	mailDone := make(chan error, 1)
	go func() { mailDone <- a.Dispatcher.Run(mailCtx) }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Jobs.Run(gctx) })
	g.Go(func() error {
		slog.Info("hrdesk listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()

	stopMail()
	if mailErr := <-mailDone; err == nil {
		err = mailErr
	}
	return err
}

func (a *App) Close() {
	if a.closeBackend != nil {
		if err := a.closeBackend(); err != nil {
			slog.Warn("close lock backend failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
