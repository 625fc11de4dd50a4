package syncfeed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/fieldside/matchlog/internal/platform/resilience"
	"github.com/fieldside/matchlog/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherNotifyMatchChanged_SendsNoticeWithDedupHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/feed/match-changes" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer feed-secret" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		if got := r.Header.Get("X-Deduplication-Id"); got != "sub-0042" {
			t.Fatalf("unexpected deduplication header: %s", got)
		}

		var notice map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&notice); err != nil {
			t.Fatalf("decode notice: %v", err)
		}
		if notice["match_id"] != "idn-2025-08-psj-psb" {
			t.Fatalf("unexpected match id: %s", notice["match_id"])
		}
		if notice["kind"] != "substitution" {
			t.Fatalf("unexpected kind: %s", notice["kind"])
		}
		if notice["occurred_at"] == "" {
			t.Fatalf("expected occurred_at to be set")
		}

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	publisher := NewPublisher(PublisherConfig{
		BaseURL: srv.URL,
		Token:   "feed-secret",
	}, discardLogger())

	err := publisher.NotifyMatchChanged(context.Background(), "idn-2025-08-psj-psb", "substitution", "sub-0042")
	if err != nil {
		t.Fatalf("notify failed: %v", err)
	}
}

func TestPublisherNotifyMatchChanged_Non2xxIsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	publisher := NewPublisher(PublisherConfig{
		BaseURL: srv.URL,
		Token:   "feed-secret",
	}, discardLogger())

	err := publisher.NotifyMatchChanged(context.Background(), "idn-2025-08-psj-psb", "lineup", "int-0001")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestPublisherNotifyMatchChanged_CircuitStopsCalls(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	publisher := NewPublisher(PublisherConfig{
		BaseURL: srv.URL,
		Token:   "feed-secret",
		Breaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, discardLogger())

	for i := 0; i < 3; i++ {
		err := publisher.NotifyMatchChanged(context.Background(), "idn-2025-08-psj-psb", "period", "per-0001")
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
		}
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 upstream calls before the circuit opened, got %d", got)
	}
}

func TestNopNotifier(t *testing.T) {
	t.Parallel()

	if err := (NopNotifier{}).NotifyMatchChanged(context.Background(), "m-1", "lineup", "d-1"); err != nil {
		t.Fatalf("nop notifier returned error: %v", err)
	}
}
