package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterConfig lists the handlers mounted by NewRouter. Nil handlers leave
// their routes unregistered.
type RouterConfig struct {
	Auth            *AuthHandler
	Schedules       *ScheduleHandler
	Events          *EventHandler
	Calendar        *CalendarHandler
	TeacherRequests *TeacherRequestHandler
	Middleware      []func(http.Handler) http.Handler
}

// NewRouter builds the gateway API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	if cfg.Auth != nil {
		r.HandleFunc("/sessions", cfg.Auth.CreateSession).Methods(http.MethodPost)
		r.HandleFunc("/sessions/current", cfg.Auth.DeleteCurrentSession).Methods(http.MethodDelete)
		r.HandleFunc("/me", cfg.Auth.Me).Methods(http.MethodGet)
	}

	if cfg.Schedules != nil {
		r.HandleFunc("/schedules", cfg.Schedules.List).Methods(http.MethodGet)
		r.HandleFunc("/schedules", cfg.Schedules.Create).Methods(http.MethodPost)
		r.HandleFunc("/schedules/{id}", cfg.Schedules.Update).Methods(http.MethodPut)
		r.HandleFunc("/schedules/{id}", cfg.Schedules.Delete).Methods(http.MethodDelete)
	}

	if cfg.Events != nil {
		r.HandleFunc("/events", cfg.Events.List).Methods(http.MethodGet)
		r.HandleFunc("/events", cfg.Events.Create).Methods(http.MethodPost)
		r.HandleFunc("/events/{id}", cfg.Events.Update).Methods(http.MethodPut)
		r.HandleFunc("/events/{id}", cfg.Events.Delete).Methods(http.MethodDelete)
	}

	if cfg.Calendar != nil {
		r.HandleFunc("/calendar.ics", cfg.Calendar.Export).Methods(http.MethodGet)
		r.HandleFunc("/calendar/{kind}", cfg.Calendar.Month).Methods(http.MethodGet)
	}

	if cfg.TeacherRequests != nil {
		r.HandleFunc("/teacher-requests", cfg.TeacherRequests.List).Methods(http.MethodGet)
		r.HandleFunc("/teacher-requests", cfg.TeacherRequests.Submit).Methods(http.MethodPost)
		r.HandleFunc("/teacher-requests/{id}", cfg.TeacherRequests.Review).Methods(http.MethodPut)
		r.HandleFunc("/teacher-requests/{id}", cfg.TeacherRequests.Delete).Methods(http.MethodDelete)
	}

	var handler http.Handler = r
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
