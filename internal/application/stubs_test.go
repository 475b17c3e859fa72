package application

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/example/irfit-gateway/internal/record"
)

// backendStub is an in-memory RecordBackend that counts calls.
type backendStub[T Entry[T]] struct {
	mu        sync.Mutex
	records   []T
	listErr   error
	listCalls int
	created   []T
	updated   []T
	deleted   []record.ID
	nextID    int
}

func newBackendStub[T Entry[T]](records ...T) *backendStub[T] {
	return &backendStub[T]{records: records, nextID: 100}
}

func (b *backendStub[T]) List(ctx context.Context) ([]T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]T, len(b.records))
	copy(out, b.records)
	return out, nil
}

func (b *backendStub[T]) Create(ctx context.Context, rec T) (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	base := rec.Base()
	base.ID = record.NumericID(strconv.Itoa(b.nextID))
	rec = rec.WithBase(base)
	b.created = append(b.created, rec)
	b.records = append(b.records, rec)
	return rec, nil
}

func (b *backendStub[T]) Update(ctx context.Context, rec T) (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, rec)
	for i, existing := range b.records {
		if existing.RecordID() == rec.RecordID() {
			b.records[i] = rec
		}
	}
	return rec, nil
}

func (b *backendStub[T]) Delete(ctx context.Context, id record.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

// requestBackendStub is an in-memory backend for teacher requests.
type requestBackendStub struct {
	mu       sync.Mutex
	requests []record.TeacherRequest
	created  []record.TeacherRequest
	updated  []record.TeacherRequest
	deleted  []record.ID
}

func (b *requestBackendStub) List(ctx context.Context) ([]record.TeacherRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]record.TeacherRequest, len(b.requests))
	copy(out, b.requests)
	return out, nil
}

func (b *requestBackendStub) Create(ctx context.Context, req record.TeacherRequest) (record.TeacherRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req.ID = record.StringID("req-" + strconv.Itoa(len(b.created)+1))
	b.created = append(b.created, req)
	b.requests = append(b.requests, req)
	return req, nil
}

func (b *requestBackendStub) Update(ctx context.Context, req record.TeacherRequest) (record.TeacherRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = append(b.updated, req)
	return req, nil
}

func (b *requestBackendStub) Delete(ctx context.Context, id record.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

// identityProviderStub answers logins from a fixed table.
type identityProviderStub struct {
	identities map[string]Identity
	err        error
	calls      int
}

func (p *identityProviderStub) Login(ctx context.Context, email, password string) (Identity, error) {
	p.calls++
	if p.err != nil {
		return Identity{}, p.err
	}
	identity, ok := p.identities[email]
	if !ok || password != "secret" {
		return Identity{}, ErrInvalidCredentials
	}
	return identity, nil
}

// sessionRepositoryStub provides an in-memory implementation of SessionRepository for tests.
type sessionRepositoryStub struct {
	mu          sync.Mutex
	byDigest    map[string]Session
	touchCalls  []string
	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{byDigest: make(map[string]Session)}
}

func (s *sessionRepositoryStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDigest[session.TokenDigest] = session
	return session, nil
}

func (s *sessionRepositoryStub) GetSessionByDigest(ctx context.Context, digest string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byDigest[digest]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionRepositoryStub) TouchSession(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchCalls = append(s.touchCalls, id)
	for digest, session := range s.byDigest {
		if session.ID == id {
			session.UpdatedAt = at
			s.byDigest[digest] = session
			return nil
		}
	}
	return ErrNotFound
}

func (s *sessionRepositoryStub) RevokeSession(ctx context.Context, digest string, revokedAt time.Time) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byDigest[digest]
	if !ok {
		return Session{}, ErrNotFound
	}
	if session.RevokedAt == nil {
		at := revokedAt
		session.RevokedAt = &at
		s.byDigest[digest] = session
	}
	return session, nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, reference)
	var removed int64
	for digest, session := range s.byDigest {
		if !session.ExpiresAt.After(reference) {
			delete(s.byDigest, digest)
			removed++
		}
	}
	return removed, nil
}
