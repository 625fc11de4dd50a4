// Package syncfeed pushes change notifications to the club's sync feed so
// downstream consumers can refresh their copy of a match.
package syncfeed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldside/matchlog/internal/platform/resilience"
	"github.com/fieldside/matchlog/internal/usecase"
)

const publishPath = "/v1/feed/match-changes"

type PublisherConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Breaker resilience.CircuitBreakerConfig
}

// Publisher implements usecase.ChangeNotifier over the sync feed HTTP API.
// The dedup id travels as a header so the feed can drop replayed
// notifications without parsing the body.
type Publisher struct {
	client  *http.Client
	baseURL string
	token   string
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
	now     func() time.Time
}

func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	var breaker *resilience.CircuitBreaker
	if cfg.Breaker.Enabled {
		normalized := resilience.NormalizeCircuitBreakerConfig(cfg.Breaker)
		breaker = resilience.NewCircuitBreaker(normalized.FailureThreshold, normalized.OpenTimeout, normalized.HalfOpenMaxReq)
	}

	return &Publisher{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:   strings.TrimSpace(cfg.Token),
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
	}
}

type changeNotice struct {
	MatchID    string `json:"match_id"`
	Kind       string `json:"kind"`
	OccurredAt string `json:"occurred_at"`
}

func (p *Publisher) NotifyMatchChanged(ctx context.Context, matchID, kind, dedupID string) error {
	matchID = strings.TrimSpace(matchID)
	kind = strings.TrimSpace(kind)
	if matchID == "" || kind == "" {
		return crerr.New("match id and kind are required")
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid SYNC_FEED_BASE_URL")
	}
	publishURL := baseURL + publishPath

	if p.breaker != nil {
		if err := p.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: sync feed circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	err = p.publish(ctx, publishURL, matchID, kind, dedupID)
	if p.breaker != nil {
		if err != nil {
			p.breaker.RecordFailure()
		} else {
			p.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}

	p.logger.InfoContext(ctx, "sync feed notified",
		"match_id", matchID,
		"kind", kind,
		"deduplication_id", dedupID,
	)
	return nil
}

func (p *Publisher) publish(ctx context.Context, publishURL, matchID, kind, dedupID string) error {
	notice := changeNotice{
		MatchID:    matchID,
		Kind:       kind,
		OccurredAt: p.now().UTC().Format(time.RFC3339),
	}

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	encoded, err := sonic.Marshal(notice)
	if err != nil {
		return crerr.Wrap(err, "marshal change notice")
	}
	_, _ = body.Write(encoded)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("syncfeed.publish_url", publishURL),
			attribute.String("syncfeed.match_id", matchID),
			attribute.String("syncfeed.kind", kind),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(body.String()))
	if err != nil {
		return crerr.Wrap(err, "create sync feed request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(dedupID) != "" {
		req.Header.Set("X-Deduplication-Id", strings.TrimSpace(dedupID))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Wrapf(err, "publish change notice url=%s", publishURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return crerr.Newf(
			"publish change notice status=%d url=%s body=%s",
			resp.StatusCode,
			publishURL,
			strings.TrimSpace(string(raw)),
		)
	}

	return nil
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

// NopNotifier satisfies usecase.ChangeNotifier when the feed is disabled.
type NopNotifier struct{}

func (NopNotifier) NotifyMatchChanged(context.Context, string, string, string) error {
	return nil
}
