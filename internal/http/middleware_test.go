package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/application"
	"github.com/example/irfit-gateway/internal/logging"
	"github.com/example/irfit-gateway/internal/record"
)

type fakeSessionValidator struct {
	viewers map[string]*access.Viewer
	err     error
}

func (f fakeSessionValidator) ValidateSession(ctx context.Context, token string) (*access.Viewer, error) {
	if f.err != nil {
		return nil, f.err
	}
	viewer, ok := f.viewers[token]
	if !ok {
		return nil, application.ErrInvalidCredentials
	}
	return viewer, nil
}

func TestResolveViewer(t *testing.T) {
	t.Parallel()

	teacher := &access.Viewer{ID: record.NumericID("7"), Role: access.RoleTeacher}
	validator := fakeSessionValidator{viewers: map[string]*access.Viewer{"valid-token": teacher}}

	tests := []struct {
		name       string
		configure  func(r *http.Request)
		validator  SessionValidator
		wantViewer *access.Viewer
		wantStatus int
	}{
		{
			name:       "no credentials stays anonymous",
			configure:  func(r *http.Request) {},
			validator:  validator,
			wantStatus: http.StatusOK,
		},
		{
			name:       "bearer header resolves the viewer",
			configure:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer valid-token") },
			validator:  validator,
			wantViewer: teacher,
			wantStatus: http.StatusOK,
		},
		{
			name:       "cookie resolves the viewer",
			configure:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"}) },
			validator:  validator,
			wantViewer: teacher,
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejected token stays anonymous",
			configure:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer revoked") },
			validator:  validator,
			wantStatus: http.StatusOK,
		},
		{
			name:       "expired session stays anonymous",
			configure:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer valid-token") },
			validator:  fakeSessionValidator{err: application.ErrSessionExpired},
			wantStatus: http.StatusOK,
		},
		{
			name:       "storage failure ends the request",
			configure:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer valid-token") },
			validator:  fakeSessionValidator{err: errors.New("database is locked")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var (
				called bool
				seen   *access.Viewer
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				seen = ViewerFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/schedules", nil)
			tc.configure(req)
			rec := httptest.NewRecorder()

			ResolveViewer(tc.validator, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantStatus != http.StatusOK {
				if called {
					t.Fatalf("next handler must not run after a storage failure")
				}
				return
			}
			if seen != tc.wantViewer {
				t.Fatalf("expected viewer %+v, got %+v", tc.wantViewer, seen)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var hasLogger bool
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasLogger = logging.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !hasLogger {
		t.Fatalf("expected a request scoped logger in the context")
	}
	if rec.Header().Get("X-Request-Id") != "1" {
		t.Fatalf("expected request id header, got %q", rec.Header().Get("X-Request-Id"))
	}
	output := buf.String()
	if !strings.Contains(output, "request completed") || !strings.Contains(output, "status=418") {
		t.Fatalf("expected completion log with status, got %q", output)
	}
}

func TestExtractTokenFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "from-cookie"})
	if got := extractTokenFromRequest(req); got != "from-cookie" {
		t.Fatalf("expected cookie fallback, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer  from-header ")
	if got := extractTokenFromRequest(req); got != "from-header" {
		t.Fatalf("expected header token, got %q", got)
	}
}
