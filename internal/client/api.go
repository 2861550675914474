package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
)

// User is the public projection the server returns; it never carries
// credential material.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Snippet struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Language      string    `json:"language"`
	Code          string    `json:"code"`
	Documentation string    `json:"documentation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type GenerateResult struct {
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SnippetInput struct {
	Title         string `json:"title"`
	Language      string `json:"language"`
	Code          string `json:"code"`
	Documentation string `json:"documentation,omitempty"`
}

// SnippetPatch updates only its non-nil fields.
type SnippetPatch struct {
	Title         *string `json:"title,omitempty"`
	Language      *string `json:"language,omitempty"`
	Code          *string `json:"code,omitempty"`
	Documentation *string `json:"documentation,omitempty"`
}

type GenerateInput struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Title    string `json:"title,omitempty"`
}

type loginPayload struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type forgotPasswordPayload struct {
	Email string `json:"email"`
}

type resetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type sessionPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Client is the typed API surface the CLI drives. Protected calls are
// routed through the SessionAgent; session lifecycle calls use a plain
// client sharing the same cookie jar, so a failed login surfaces its own
// status instead of triggering a refresh cycle.
type Client struct {
	baseURL string
	store   TokenStore
	agent   *SessionAgent
	http    *http.Client
	auth    *http.Client
}

type Config struct {
	BaseURL string
	// Store defaults to an in-memory store.
	Store TokenStore
	// Timeout bounds each API call end to end, including a possible
	// refresh and retry.
	Timeout          time.Duration
	RefreshTimeout   time.Duration
	OnSessionExpired func()
}

func New(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("build cookie jar: %w", err)
	}

	store := cfg.Store
	if store == nil {
		store = NewMemoryTokenStore()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	agent := NewSessionAgent(SessionAgentConfig{
		BaseURL:          baseURL,
		Store:            store,
		Jar:              jar,
		RefreshTimeout:   cfg.RefreshTimeout,
		OnSessionExpired: cfg.OnSessionExpired,
	})

	return &Client{
		baseURL: baseURL,
		store:   store,
		agent:   agent,
		http:    &http.Client{Transport: agent, Jar: jar, Timeout: timeout},
		auth:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Register creates the account and opens a session, storing the returned
// access token. The refresh cookie lands in the shared jar.
func (c *Client) Register(ctx context.Context, in RegisterInput) (User, error) {
	var out sessionPayload
	if err := c.do(ctx, c.auth, http.MethodPost, "/auth/register", in, &out); err != nil {
		return User{}, err
	}
	c.store.SetToken(out.Token)
	return out.User, nil
}

// Login authenticates by email or username.
func (c *Client) Login(ctx context.Context, identifier, password string) (User, error) {
	var out sessionPayload
	in := loginPayload{Identifier: identifier, Password: password}
	if err := c.do(ctx, c.auth, http.MethodPost, "/auth/login", in, &out); err != nil {
		return User{}, err
	}
	c.store.SetToken(out.Token)
	return out.User, nil
}

// Logout revokes the server-side session and clears local state. Local
// state is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, c.auth, http.MethodPost, "/auth/logout", nil, nil)
	c.store.Clear()
	return err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, c.auth, http.MethodPost, "/auth/forgot-password", forgotPasswordPayload{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	in := resetPasswordPayload{Token: token, Password: password}
	return c.do(ctx, c.auth, http.MethodPost, "/auth/reset-password", in, nil)
}

// CurrentUser resolves the session owner through the protected route.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, c.http, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return User{}, err
	}
	return out.User, nil
}

func (c *Client) CreateSnippet(ctx context.Context, in SnippetInput) (Snippet, error) {
	var out Snippet
	if err := c.do(ctx, c.http, http.MethodPost, "/api/snippets", in, &out); err != nil {
		return Snippet{}, err
	}
	return out, nil
}

// Snippets lists the caller's snippets, newest first. Zero limit and
// offset leave paging to the server defaults.
func (c *Client) Snippets(ctx context.Context, limit, offset int) ([]Snippet, error) {
	path := "/api/snippets"
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Snippets []Snippet `json:"snippets"`
	}
	if err := c.do(ctx, c.http, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Snippets, nil
}

func (c *Client) Snippet(ctx context.Context, id string) (Snippet, error) {
	var out Snippet
	if err := c.do(ctx, c.http, http.MethodGet, "/api/snippets/"+id, nil, &out); err != nil {
		return Snippet{}, err
	}
	return out, nil
}

func (c *Client) UpdateSnippet(ctx context.Context, id string, patch SnippetPatch) (Snippet, error) {
	var out Snippet
	if err := c.do(ctx, c.http, http.MethodPut, "/api/snippets/"+id, patch, &out); err != nil {
		return Snippet{}, err
	}
	return out, nil
}

func (c *Client) DeleteSnippet(ctx context.Context, id string) error {
	return c.do(ctx, c.http, http.MethodDelete, "/api/snippets/"+id, nil, nil)
}

func (c *Client) GenerateDocs(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	var out GenerateResult
	if err := c.do(ctx, c.http, http.MethodPost, "/api/docs/generate", in, &out); err != nil {
		return GenerateResult{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return unwrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// unwrapTransportError strips the url.Error wrapper when the agent already
// produced a session error, keeping errors.Is checks and messages clean.
func unwrapTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && errors.Is(urlErr.Err, ErrSessionExpired) {
		return urlErr.Err
	}
	return err
}
