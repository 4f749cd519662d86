package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func investRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/investments", bytes.NewBufferString(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func TestIdempotency_SkipsReadsAndKeylessRequests(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
	}{
		{"GET request", httptest.NewRequest(http.MethodGet, "/api/v1/wallet/transactions", nil)},
		{"POST without key", investRequest("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewIdempotencyMiddleware(&fakeIdempotencyStore{
				checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
					t.Fatal("store should not be consulted")
					return false, nil, nil
				},
			}, time.Hour)

			called := false
			rr := httptest.NewRecorder()
			mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})).ServeHTTP(rr, tt.req)

			if !called {
				t.Fatal("expected next handler to run")
			}
		})
	}
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	mw := NewIdempotencyMiddleware(&fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(`{"id":"inv-1","status":"active"}`), nil
		},
	}, time.Hour)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on replay")
	})).ServeHTTP(rr, investRequest("key-123"))

	if rr.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatal("expected replay header")
	}
	if got := rr.Body.String(); got != `{"id":"inv-1","status":"active"}` {
		t.Fatalf("unexpected replayed body: %s", got)
	}
}

func TestIdempotency_StoresSuccessfulResponse(t *testing.T) {
	var stored []byte
	mw := NewIdempotencyMiddleware(&fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			stored = append([]byte(nil), response...)
			return nil
		},
	}, time.Hour)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"inv-1"}`))
	})).ServeHTTP(rr, investRequest("key-456"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if string(stored) != `{"id":"inv-1"}` {
		t.Fatalf("expected response to be stored for replay, got %s", stored)
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	updated := false
	mw := NewIdempotencyMiddleware(&fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}, time.Hour)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})).ServeHTTP(rr, investRequest("key-fail"))

	if updated {
		t.Fatal("failed responses must stay retryable")
	}
}

func TestIdempotency_FailsClosedOnStoreError(t *testing.T) {
	mw := NewIdempotencyMiddleware(&fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}, time.Hour)

	called := false
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, investRequest("key-err"))

	if called {
		t.Fatal("handler must not run when the store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
