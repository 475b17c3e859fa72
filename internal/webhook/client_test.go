package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/irfit-gateway/internal/record"
)

func TestDecodeList_Shapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want int
	}{
		{name: "bare array", body: `[{"id":1,"date":"2024-03-05"},{"id":"b","date":"2024-03-06"}]`, want: 2},
		{name: "data envelope", body: `{"data":[{"id":1,"date":"2024-03-05"}]}`, want: 1},
		{name: "items envelope", body: `{"items":[{"id":1},{"id":2},{"id":3}]}`, want: 3},
		{name: "schedules envelope", body: `{"schedules":[{"id":1}]}`, want: 1},
		{name: "null envelope", body: `{"records":null}`, want: 0},
		{name: "empty body", body: ``, want: 0},
		{name: "null body", body: `null`, want: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeList[record.Schedule]([]byte(tc.body), nil)
			if err != nil {
				t.Fatalf("decodeList returned error: %v", err)
			}
			if got == nil || len(got) != tc.want {
				t.Fatalf("expected %d records, got %#v", tc.want, got)
			}
		})
	}
}

func TestDecodeList_RejectsUnknownShapes(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"total":3}`, `"text"`, `42`, `{"data":{"id":1}}`} {
		if _, err := decodeList[record.Schedule]([]byte(body), nil); !errors.Is(err, ErrUnexpectedShape) {
			t.Fatalf("body %s: expected ErrUnexpectedShape, got %v", body, err)
		}
	}
}

func TestDecodeList_SkipsMalformedRecords(t *testing.T) {
	t.Parallel()

	body := `[
		{"id":1,"date":"2024-03-05","title":"Хатха"},
		{"id":2,"date":"2024-03-06","isActive":"false"},
		{"id":3,"date":"2024-03-07","maxParticipants":"10"},
		"oops",
		{"id":4,"date":"2024-03-08","isActive":true}
	]`

	var skipped []int
	got, err := decodeList[record.Schedule]([]byte(body), func(index int, err error) {
		skipped = append(skipped, index)
	})
	if err != nil {
		t.Fatalf("decodeList returned error: %v", err)
	}
	if len(got) != 2 || got[0].ID != record.NumericID("1") || got[1].ID != record.NumericID("4") {
		t.Fatalf("expected records 1 and 4, got %+v", got)
	}
	if len(skipped) != 3 || skipped[0] != 1 || skipped[1] != 2 || skipped[2] != 3 {
		t.Fatalf("unexpected skipped indexes: %v", skipped)
	}
}

func TestDecodeOne_Shapes(t *testing.T) {
	t.Parallel()

	bare, err := decodeOne[record.Event]([]byte(`{"id":7,"title":"Retreat"}`))
	if err != nil || bare.Title != "Retreat" || bare.ID != record.NumericID("7") {
		t.Fatalf("unexpected bare decode: %+v, %v", bare, err)
	}

	wrapped, err := decodeOne[record.Event]([]byte(`{"data":{"id":"e-1","title":"Workshop"}}`))
	if err != nil || wrapped.Title != "Workshop" || wrapped.ID != record.StringID("e-1") {
		t.Fatalf("unexpected wrapped decode: %+v, %v", wrapped, err)
	}

	if _, err := decodeOne[record.Event]([]byte(`[1,2]`)); !errors.Is(err, ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape for an array, got %v", err)
	}
}

func TestClient_ListSchedulesSendsAPIKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/hooks/schedules" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "k-123" {
			t.Errorf("expected api key header, got %q", r.Header.Get("X-Api-Key"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"id":1,"date":"2024-03-05","isActive":false,"createdById":"T1","title":"Yoga"}]}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL+"/hooks/", WithAPIKey("k-123"), WithTimeout(time.Second))
	schedules, err := client.ListSchedules(context.Background())
	if err != nil {
		t.Fatalf("ListSchedules returned error: %v", err)
	}
	if len(schedules) != 1 {
		t.Fatalf("expected one schedule, got %d", len(schedules))
	}
	got := schedules[0]
	if got.Title != "Yoga" || got.Active() || got.CreatedByID != record.StringID("T1") {
		t.Fatalf("unexpected schedule: %+v", got)
	}
}

func TestClient_ListKeepsWellFormedRecords(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"events":[{"id":"e1","date":"2024-04-01","title":"Ретрит"},{"id":"e2","isActive":"no"}]}`)
	}))
	t.Cleanup(server.Close)

	var logs bytes.Buffer
	client := NewClient(server.URL, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	events, err := client.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 1 || events[0].ID != record.StringID("e1") {
		t.Fatalf("expected only e1, got %+v", events)
	}
	if out := logs.String(); !strings.Contains(out, "skipping malformed record") || !strings.Contains(out, "index=1") {
		t.Fatalf("expected a warning for the skipped record, got %q", out)
	}
}

func TestClient_CreateAndUpdate(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		var payload record.Event
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		switch r.Method {
		case http.MethodPost:
			payload.ID = record.NumericID("41")
			_ = json.NewEncoder(w).Encode(map[string]any{"data": payload})
		case http.MethodPut:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	created, err := client.CreateEvent(context.Background(), record.Event{Title: "Meetup"})
	if err != nil {
		t.Fatalf("CreateEvent returned error: %v", err)
	}
	if created.ID != record.NumericID("41") {
		t.Fatalf("expected backend id 41, got %v", created.ID)
	}

	created.Title = "Meetup (moved)"
	updated, err := client.UpdateEvent(context.Background(), created)
	if err != nil {
		t.Fatalf("UpdateEvent returned error: %v", err)
	}
	if updated.Title != "Meetup (moved)" {
		t.Fatalf("empty acknowledgement should echo the payload, got %+v", updated)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != "POST /events" || seen[1] != "PUT /events/41" {
		t.Fatalf("unexpected requests: %v", seen)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events/missing":
			http.Error(w, "no such event", http.StatusNotFound)
		case "/auth/login":
			http.Error(w, "bad credentials", http.StatusUnauthorized)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)

	err := client.DeleteEvent(context.Background(), record.StringID("missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := client.Login(context.Background(), "a@b.c", "nope"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	_, err = client.ListTeacherRequests(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError || statusErr.Body != "boom" {
		t.Fatalf("expected StatusError 500, got %v", err)
	}
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] == "wrapped@irfit.ru" {
			_, _ = io.WriteString(w, `{"user":{"id":12,"role":"teacher","name":"Анна","email":"wrapped@irfit.ru"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"adm","role":"admin","name":"Admin","email":"bare@irfit.ru"}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)

	wrapped, err := client.Login(context.Background(), "wrapped@irfit.ru", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if wrapped.ID != record.NumericID("12") || wrapped.Role != "teacher" {
		t.Fatalf("unexpected identity: %+v", wrapped)
	}

	bare, err := client.Login(context.Background(), "bare@irfit.ru", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if bare.ID != record.StringID("adm") || bare.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", bare)
	}
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	if got := redactURL("https://n8n.example.com/webhook/secret?token=abc"); got != "https://n8n.example.com/...(redacted)" {
		t.Fatalf("unexpected redaction: %s", got)
	}
	if got := redactURL("::::"); got != "(redacted)" {
		t.Fatalf("unexpected redaction for invalid url: %s", got)
	}
}
