package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
)

// SessionAgent is an http.RoundTripper that keeps the caller authenticated
// across access token expiry. It attaches the bearer token to every request
// and, on a 401, performs a single coordinated refresh: the first failing
// request drives the refresh call while every concurrent 401 parks on a
// waiter channel, so one expiry window produces at most one refresh no
// matter how many requests race. Each original request is retried at most
// once with the fresh token.
type SessionAgent struct {
	base             http.RoundTripper
	store            TokenStore
	refreshURL       string
	refreshClient    *http.Client
	onSessionExpired func()

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome
}

type refreshOutcome struct {
	token string
	err   error
}

type SessionAgentConfig struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string
	// Store holds the access token between requests.
	Store TokenStore
	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper
	// Jar must be shared with the client that performs login, so the
	// refresh call can present the rt cookie and absorb its rotated
	// successor.
	Jar http.CookieJar
	// RefreshTimeout bounds the refresh call itself.
	RefreshTimeout time.Duration
	// OnSessionExpired runs after a failed refresh has cleared local
	// state, the client-side counterpart of being logged out.
	OnSessionExpired func()
}

func NewSessionAgent(cfg SessionAgentConfig) *SessionAgent {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	timeout := cfg.RefreshTimeout
	if timeout <= 0 {
		timeout = constants.DefaultRefreshCallTimeout
	}

	return &SessionAgent{
		base:       base,
		store:      cfg.Store,
		refreshURL: strings.TrimRight(cfg.BaseURL, "/") + "/auth/refresh",
		// The refresh client is not routed through the agent, so a
		// failing refresh can never trigger another refresh.
		refreshClient: &http.Client{
			Jar:     cfg.Jar,
			Timeout: timeout,
		},
		onSessionExpired: cfg.OnSessionExpired,
	}
}

func (a *SessionAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := a.send(req, a.store.Token(), false)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A body that cannot be rebuilt rules out a retry.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	token, err := a.refreshToken(req.Context())
	if err != nil {
		drainBody(resp)
		return nil, err
	}
	drainBody(resp)

	return a.send(req, token, true)
}

// send issues a clone of req with the bearer token attached. The retry
// pass sets rewind because the first attempt consumed the original body.
func (a *SessionAgent) send(req *http.Request, token string, rewind bool) (*http.Response, error) {
	r := req.Clone(req.Context())
	if rewind && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rebuild request body: %w", err)
		}
		r.Body = body
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return a.base.RoundTrip(r)
}

// refreshToken coordinates the single-flight refresh. Exactly one caller
// performs the network call; the rest block on a waiter channel until the
// outcome is published or their own request context is done.
func (a *SessionAgent) refreshToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.refreshing {
		ch := make(chan refreshOutcome, 1)
		a.waiters = append(a.waiters, ch)
		a.mu.Unlock()

		select {
		case out := <-ch:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	a.refreshing = true
	a.mu.Unlock()

	token, err := a.callRefresh()
	if err != nil {
		err = a.expireSession(err)
	}

	a.mu.Lock()
	waiters := a.waiters
	a.waiters = nil
	a.refreshing = false
	a.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshOutcome{token: token, err: err}
	}
	return token, err
}

// callRefresh posts the refresh endpoint through the separate client; the
// cookie jar presents the rt cookie and receives its rotated successor.
// The call is bounded by that client's timeout rather than the triggering
// request's context, so one canceled request cannot fail the shared
// refresh for everyone parked behind it.
func (a *SessionAgent) callRefresh() (string, error) {
	req, err := http.NewRequest(http.MethodPost, a.refreshURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := a.refreshClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if body.Token == "" {
		return "", errors.New("refresh response carried no token")
	}

	a.store.SetToken(body.Token)
	return body.Token, nil
}

// expireSession is the hard logout path: local state is wiped and the
// refresh failure surfaces behind ErrSessionExpired.
func (a *SessionAgent) expireSession(cause error) error {
	a.store.Clear()
	if a.onSessionExpired != nil {
		a.onSessionExpired()
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
	resp.Body.Close()
}
