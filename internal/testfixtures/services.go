package testfixtures

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/irfit-gateway/internal/application"
	"github.com/example/irfit-gateway/internal/record"
)

// ServiceFactory builds application services that share a Clock, a token
// IDGenerator and a silent logger.
type ServiceFactory struct {
	Clock  *Clock
	IDs    *IDGenerator
	Logger *slog.Logger
}

// ServiceFactoryOption customises the factory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory returns a factory with a ReferenceTime clock and "token"
// identifiers.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:  NewClock(time.Time{}),
		IDs:    NewIDGenerator("token"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the factory clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(f *ServiceFactory) {
		f.Clock = clock
	}
}

// WithLogger overrides the factory logger.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(f *ServiceFactory) {
		f.Logger = logger
	}
}

func (f *ServiceFactory) NewScheduleService(backend application.RecordBackend[record.Schedule]) *application.ScheduleService {
	return application.NewScheduleService(backend, f.Clock.NowFunc(), f.Logger)
}

func (f *ServiceFactory) NewEventService(backend application.RecordBackend[record.Event]) *application.EventService {
	return application.NewEventService(backend, f.Clock.NowFunc(), f.Logger)
}

func (f *ServiceFactory) NewTeacherRequestService(backend application.RecordBackend[record.TeacherRequest]) *application.TeacherRequestService {
	return application.NewTeacherRequestService(backend, f.Clock.NowFunc(), f.Logger)
}

func (f *ServiceFactory) NewCalendarExportService(schedules application.RecordBackend[record.Schedule], events application.RecordBackend[record.Event], loc *time.Location) *application.CalendarExportService {
	return application.NewCalendarExportService(schedules, events, loc, f.Clock.NowFunc(), f.Logger)
}

// AuthServiceDeps lists the collaborators of an AuthService. TTL defaults to
// one day.
type AuthServiceDeps struct {
	Identities application.IdentityProvider
	Sessions   application.SessionRepository
	Secret     string
	TTL        time.Duration
}

// NewAuthService builds an AuthService whose tokens come from f.IDs.
func (f *ServiceFactory) NewAuthService(tb testing.TB, deps AuthServiceDeps) *application.AuthService {
	tb.Helper()

	secret := deps.Secret
	if secret == "" {
		secret = "fixture-secret"
	}
	digester, err := application.NewTokenDigester(secret)
	if err != nil {
		tb.Fatalf("NewTokenDigester failed: %v", err)
	}
	ttl := deps.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return application.NewAuthServiceWithLogger(deps.Identities, deps.Sessions, digester, f.IDs.NextFunc(), f.Clock.NowFunc(), ttl, f.Logger)
}
