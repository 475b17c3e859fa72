package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/application"
	"github.com/example/irfit-gateway/internal/config"
	httptransport "github.com/example/irfit-gateway/internal/http"
	"github.com/example/irfit-gateway/internal/jobs"
	"github.com/example/irfit-gateway/internal/persistence"
	"github.com/example/irfit-gateway/internal/persistence/sqlite"
	"github.com/example/irfit-gateway/internal/record"
	"github.com/example/irfit-gateway/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	gw, err := newGateway(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start gateway", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := gw.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	gw.scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           gw.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := gw.scheduler.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop background jobs", "error", err)
		}
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("irfit gateway listening", "addr", server.Addr, "webhook", cfg.WebhookBaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// gateway bundles the wired HTTP handler with the resources it owns.
type gateway struct {
	handler   http.Handler
	storage   *sqlite.Storage
	scheduler *jobs.Scheduler
	auth      *application.AuthService
}

func newGateway(ctx context.Context, cfg config.Config, logger *slog.Logger) (*gateway, error) {
	storage, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	digester, err := application.NewTokenDigester(cfg.SessionSecret)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	client := webhook.NewClient(cfg.WebhookBaseURL,
		webhook.WithTimeout(cfg.WebhookTimeout),
		webhook.WithAPIKey(cfg.WebhookAPIKey),
		webhook.WithLogger(logger),
	)

	location := cfg.Location()
	now := time.Now

	schedules := newScheduleBackend(client)
	events := newEventBackend(client)
	requests := newTeacherRequestBackend(client)

	authService := application.NewAuthServiceWithLogger(
		newIdentityProviderAdapter(client),
		newSessionRepositoryAdapter(sqlite.NewSessionStore(storage)),
		digester,
		uuid.NewString,
		now,
		cfg.SessionTTL,
		logger,
	)
	scheduleService := application.NewScheduleService(schedules, now, logger)
	eventService := application.NewEventService(events, now, logger)
	requestService := application.NewTeacherRequestService(requests, now, logger)
	exportService := application.NewCalendarExportService(schedules, events, location, now, logger)

	scheduler := jobs.NewScheduler(location, logger)
	if _, err := scheduler.RegisterSessionPruning(cfg.SessionPruneCron, authService); err != nil {
		_ = storage.Close()
		return nil, err
	}

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, logger),
		Schedules: httptransport.NewScheduleHandler(scheduleService, logger),
		Events:    httptransport.NewEventHandler(eventService, logger),
		Calendar: httptransport.NewCalendarHandler(httptransport.CalendarConfig{
			Schedules: scheduleService,
			Events:    eventService,
			Export:    exportService,
			Location:  location,
			Now:       now,
		}, logger),
		TeacherRequests: httptransport.NewTeacherRequestHandler(requestService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.ResolveViewer(authService, logger),
		},
	})

	return &gateway{handler: handler, storage: storage, scheduler: scheduler, auth: authService}, nil
}

// Close releases the session database.
func (g *gateway) Close() error {
	return g.storage.Close()
}

// webhookBackend adapts one resource of the webhook client to
// application.RecordBackend and translates its errors.
type webhookBackend[T any] struct {
	list   func(context.Context) ([]T, error)
	create func(context.Context, T) (T, error)
	update func(context.Context, T) (T, error)
	remove func(context.Context, record.ID) error
}

func newScheduleBackend(client *webhook.Client) *webhookBackend[record.Schedule] {
	return &webhookBackend[record.Schedule]{
		list:   client.ListSchedules,
		create: client.CreateSchedule,
		update: client.UpdateSchedule,
		remove: client.DeleteSchedule,
	}
}

func newEventBackend(client *webhook.Client) *webhookBackend[record.Event] {
	return &webhookBackend[record.Event]{
		list:   client.ListEvents,
		create: client.CreateEvent,
		update: client.UpdateEvent,
		remove: client.DeleteEvent,
	}
}

func newTeacherRequestBackend(client *webhook.Client) *webhookBackend[record.TeacherRequest] {
	return &webhookBackend[record.TeacherRequest]{
		list:   client.ListTeacherRequests,
		create: client.CreateTeacherRequest,
		update: client.UpdateTeacherRequest,
		remove: client.DeleteTeacherRequest,
	}
}

func (b *webhookBackend[T]) List(ctx context.Context) ([]T, error) {
	records, err := b.list(ctx)
	if err != nil {
		return nil, mapWebhookError(err)
	}
	return records, nil
}

func (b *webhookBackend[T]) Create(ctx context.Context, rec T) (T, error) {
	created, err := b.create(ctx, rec)
	if err != nil {
		var zero T
		return zero, mapWebhookError(err)
	}
	return created, nil
}

func (b *webhookBackend[T]) Update(ctx context.Context, rec T) (T, error) {
	updated, err := b.update(ctx, rec)
	if err != nil {
		var zero T
		return zero, mapWebhookError(err)
	}
	return updated, nil
}

func (b *webhookBackend[T]) Delete(ctx context.Context, id record.ID) error {
	return mapWebhookError(b.remove(ctx, id))
}

func mapWebhookError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, webhook.ErrNotFound):
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	case errors.Is(err, webhook.ErrUnauthorized):
		return fmt.Errorf("%w: %w", application.ErrInvalidCredentials, err)
	default:
		return fmt.Errorf("%w: %w", application.ErrUpstream, err)
	}
}

type identityProviderAdapter struct {
	client *webhook.Client
}

func newIdentityProviderAdapter(client *webhook.Client) *identityProviderAdapter {
	return &identityProviderAdapter{client: client}
}

func (a *identityProviderAdapter) Login(ctx context.Context, email, password string) (application.Identity, error) {
	identity, err := a.client.Login(ctx, email, password)
	if err != nil {
		return application.Identity{}, mapWebhookError(err)
	}
	return application.Identity{
		ID:    identity.ID,
		Role:  identity.Role,
		Name:  identity.Name,
		Email: identity.Email,
	}, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSessionByDigest(ctx context.Context, digest string) (application.Session, error) {
	stored, err := a.repo.GetSessionByDigest(ctx, digest)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) TouchSession(ctx context.Context, id string, at time.Time) error {
	return mapPersistenceError(a.repo.TouchSession(ctx, id, at))
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, digest string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, digest, revokedAt)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	removed, err := a.repo.DeleteExpiredSessions(ctx, reference)
	return removed, mapPersistenceError(err)
}

func mapPersistenceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %w", application.ErrNotFound, err)
	}
	return err
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:          model.ID,
		TokenDigest: model.TokenDigest,
		UserID:      record.ParseID(model.UserID, model.UserIDNumeric),
		Role:        access.ParseRole(model.Role),
		Name:        model.Name,
		ExpiresAt:   model.ExpiresAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		RevokedAt:   cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:            session.ID,
		TokenDigest:   session.TokenDigest,
		UserID:        session.UserID.String(),
		UserIDNumeric: session.UserID.Numeric(),
		Role:          string(session.Role),
		Name:          session.Name,
		ExpiresAt:     session.ExpiresAt,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
		RevokedAt:     cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
