// Package authsvc verifies bearer tokens against the central auth service.
package authsvc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/fieldside/matchlog/internal/domain/user"
	"github.com/fieldside/matchlog/internal/platform/resilience"
	"github.com/fieldside/matchlog/internal/usecase"
)

var errAuthTransient = crerr.New("auth service transient failure")

const (
	principalCacheTTL        = 30 * time.Second
	principalCacheMaxEntries = 10_000
)

// Client introspects access tokens and resolves them to principals.
// Successful lookups are cached briefly so hot clients do not hammer the
// auth service on every request.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	breaker       *resilience.CircuitBreaker
	cache         *principalCache
	logger        *slog.Logger
}

func NewClient(
	httpClient *http.Client,
	baseURL, introspectPath string,
	breakerCfg resilience.CircuitBreakerConfig,
	logger *slog.Logger,
) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var breaker *resilience.CircuitBreaker
	if breakerCfg.Enabled {
		cfg := resilience.NormalizeCircuitBreakerConfig(breakerCfg)
		breaker = resilience.NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		breaker:       breaker,
		cache:         newPrincipalCache(principalCacheTTL, principalCacheMaxEntries),
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := hashToken(token)
	if principal, ok := c.cache.Get(cacheKey); ok {
		return principal, nil
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, fmt.Errorf("%w: auth circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	principal, err := c.introspect(ctx, token)
	if c.breaker != nil {
		if errors.Is(err, errAuthTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if errors.Is(err, errAuthTransient) {
			return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return user.Principal{}, err
	}

	c.cache.Set(cacheKey, principal)

	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", errAuthTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "read introspect response")
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "auth introspection non-200",
			"status_code", resp.StatusCode,
		)
		return user.Principal{}, fmt.Errorf("%w: introspection status %d", errAuthTransient, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
		Admin:  hasAdminRole(decoded.Roles),
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool     `json:"active"`
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

func hasAdminRole(roles []string) bool {
	for _, role := range roles {
		if strings.EqualFold(strings.TrimSpace(role), "admin") {
			return true
		}
	}
	return false
}
