package testfixtures

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/example/irfit-gateway/internal/application"
	"github.com/example/irfit-gateway/internal/record"
)

// MemoryBackend is an application.RecordBackend holding schedules or events in
// memory. ListErr, when set, fails every List call. Created records receive
// numeric identifiers starting at 501.
type MemoryBackend[T application.Entry[T]] struct {
	mu        sync.Mutex
	records   []T
	nextID    int
	listCalls int

	ListErr error
}

// NewMemoryBackend returns a backend seeded with records.
func NewMemoryBackend[T application.Entry[T]](records ...T) *MemoryBackend[T] {
	return &MemoryBackend[T]{records: append([]T(nil), records...)}
}

func (b *MemoryBackend[T]) List(ctx context.Context) ([]T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	return append([]T(nil), b.records...), nil
}

func (b *MemoryBackend[T]) Create(ctx context.Context, rec T) (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	base := rec.Base()
	base.ID = record.NumericID(strconv.Itoa(500 + b.nextID))
	rec = rec.WithBase(base)
	b.records = append(b.records, rec)
	return rec, nil
}

func (b *MemoryBackend[T]) Update(ctx context.Context, rec T) (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.records {
		if b.records[i].RecordID() == rec.RecordID() {
			b.records[i] = rec
			return rec, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("update %s: %w", rec.RecordID(), application.ErrNotFound)
}

func (b *MemoryBackend[T]) Delete(ctx context.Context, id record.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, rec := range b.records {
		if rec.RecordID() == id {
			b.records = append(b.records[:i], b.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, application.ErrNotFound)
}

// Seed appends records as if the backend already held them.
func (b *MemoryBackend[T]) Seed(records ...T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, records...)
}

// Records returns a copy of the stored records.
func (b *MemoryBackend[T]) Records() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]T(nil), b.records...)
}

// ListCalls reports how many times List was invoked.
func (b *MemoryBackend[T]) ListCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

// RequestBackend is the teacher request counterpart of MemoryBackend.
// Submitted requests receive identifiers req-1, req-2, ...
type RequestBackend struct {
	mu       sync.Mutex
	requests []record.TeacherRequest
	nextID   int
}

// NewRequestBackend returns a backend seeded with requests.
func NewRequestBackend(requests ...record.TeacherRequest) *RequestBackend {
	return &RequestBackend{requests: append([]record.TeacherRequest(nil), requests...)}
}

func (b *RequestBackend) List(ctx context.Context) ([]record.TeacherRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]record.TeacherRequest(nil), b.requests...), nil
}

func (b *RequestBackend) Create(ctx context.Context, req record.TeacherRequest) (record.TeacherRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	req.ID = record.StringID(fmt.Sprintf("req-%d", b.nextID))
	b.requests = append(b.requests, req)
	return req, nil
}

func (b *RequestBackend) Update(ctx context.Context, req record.TeacherRequest) (record.TeacherRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.requests {
		if b.requests[i].ID == req.ID {
			b.requests[i] = req
			return req, nil
		}
	}
	return record.TeacherRequest{}, fmt.Errorf("update %s: %w", req.ID, application.ErrNotFound)
}

func (b *RequestBackend) Delete(ctx context.Context, id record.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, req := range b.requests {
		if req.ID == id {
			b.requests = append(b.requests[:i], b.requests[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, application.ErrNotFound)
}
