package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apiclient "github.com/Soodgit/ai-code-documenter/internal/client"
)

func newTestClient(t *testing.T, srv *httptest.Server) *apiclient.Client {
	t.Helper()

	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func TestClient_LoginThenProtectedCall(t *testing.T) {
	var sawBearer string

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Identifier string `json:"identifier"`
			Password   string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Identifier != "alice" || in.Password != "password1" {
			writeJSON(w, http.StatusUnauthorized, `{"code":"INVALID_CREDENTIALS","message":"invalid credentials"}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "rt", Value: "refresh-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, `{"token":"access-1","user":{"id":"u1","username":"alice","email":"alice@example.com"}}`)
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		sawBearer = r.Header.Get("Authorization")
		if sawBearer != "Bearer access-1" {
			writeJSON(w, http.StatusUnauthorized, `{"code":"UNAUTHENTICATED","message":"invalid token"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"alice","email":"alice@example.com"}}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := newTestClient(t, srv)

	user, err := c.Login(context.Background(), "alice", "password1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("user = %q, want alice", user.Username)
	}

	me, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if me.ID != "u1" {
		t.Errorf("me.ID = %q, want u1", me.ID)
	}
	if sawBearer != "Bearer access-1" {
		t.Errorf("protected call carried %q, want the login token", sawBearer)
	}
}

// A rejected login is a credentials problem, not an expired session. It must
// surface as a typed API error and must not set off the refresh machinery.
func TestClient_LoginFailureIsTypedError(t *testing.T) {
	var refreshCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"code":"INVALID_CREDENTIALS","message":"invalid credentials"}`)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusUnauthorized, `{"code":"INVALID_REFRESH_TOKEN","message":"invalid refresh token"}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := newTestClient(t, srv)

	_, err := c.Login(context.Background(), "alice", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.Status)
	}
	if apiErr.Code != "INVALID_CREDENTIALS" {
		t.Errorf("code = %q, want INVALID_CREDENTIALS", apiErr.Code)
	}
	if errors.Is(err, apiclient.ErrSessionExpired) {
		t.Error("a login failure must not look like an expired session")
	}
	if atomic.LoadInt32(&refreshCalls) != 0 {
		t.Error("a login failure must not trigger a refresh")
	}
}

func TestClient_ExpiredTokenRefreshedWithCookie(t *testing.T) {
	var sawRefreshCookie string

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "rt", Value: "refresh-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, `{"token":"access-1","user":{"id":"u1","username":"alice"}}`)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("rt")
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, `{"code":"MISSING_REFRESH_TOKEN","message":"missing refresh token"}`)
			return
		}
		sawRefreshCookie = cookie.Value
		http.SetCookie(w, &http.Cookie{Name: "rt", Value: "refresh-2", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, `{"token":"access-2"}`)
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		// Only the rotated token is accepted, as if the first one expired.
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeJSON(w, http.StatusUnauthorized, `{"code":"UNAUTHENTICATED","message":"invalid token"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"user":{"id":"u1","username":"alice"}}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := newTestClient(t, srv)

	if _, err := c.Login(context.Background(), "alice", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	user, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("user = %q, want alice", user.Username)
	}
	if sawRefreshCookie != "refresh-1" {
		t.Errorf("refresh call carried cookie %q, want the one set at login", sawRefreshCookie)
	}
}

func TestClient_LogoutClearsStateEvenWhenServerFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "rt", Value: "refresh-1", Path: "/"})
		writeJSON(w, http.StatusOK, `{"token":"access-1","user":{"id":"u1","username":"alice"}}`)
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"code":"INTERNAL_ERROR","message":"internal server error"}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := apiclient.NewMemoryTokenStore()
	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Store: store})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := c.Login(context.Background(), "alice", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if store.Token() == "" {
		t.Fatal("login must store the access token")
	}

	err = c.Logout(context.Background())
	if err == nil {
		t.Fatal("expected the server error to surface")
	}
	if store.Token() != "" {
		t.Error("logout must clear local state even when the server call fails")
	}
}

func TestClient_UnstructuredErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>Bad Gateway</html>")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := newTestClient(t, srv)

	err := c.ForgotPassword(context.Background(), "alice@example.com")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apiErr.Status)
	}
	if !errors.Is(err, apiclient.ErrNoStructuredError) {
		t.Error("an unparseable body must be marked ErrNoStructuredError")
	}
}

func TestClient_SnippetsPaging(t *testing.T) {
	var queries []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/snippets", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, `{"snippets":[{"id":"s1","title":"First","language":"go","code":"package main"}]}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := apiclient.NewMemoryTokenStore()
	store.SetToken("access-1")
	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Store: store})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	snippets, err := c.Snippets(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("Snippets failed: %v", err)
	}
	if len(snippets) != 1 || snippets[0].ID != "s1" {
		t.Errorf("snippets = %+v", snippets)
	}

	if _, err := c.Snippets(context.Background(), 0, 0); err != nil {
		t.Fatalf("Snippets failed: %v", err)
	}

	if len(queries) != 2 {
		t.Fatalf("server saw %d calls, want 2", len(queries))
	}
	if queries[0] != "limit=5&offset=10" {
		t.Errorf("query = %q, want limit=5&offset=10", queries[0])
	}
	if queries[1] != "" {
		t.Errorf("query = %q, want empty for server-side defaults", queries[1])
	}
}

func TestClient_UpdateSnippetSendsOnlyChangedFields(t *testing.T) {
	var patch map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/api/snippets/s1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			writeJSON(w, http.StatusMethodNotAllowed, `{"code":"METHOD_NOT_ALLOWED","message":"method not allowed"}`)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"code":"INVALID_JSON","message":"invalid json"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"s1","title":"Renamed","language":"go","code":"package main"}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := apiclient.NewMemoryTokenStore()
	store.SetToken("access-1")
	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Store: store})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	title := "Renamed"
	updated, err := c.UpdateSnippet(context.Background(), "s1", apiclient.SnippetPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateSnippet failed: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", updated.Title)
	}

	if len(patch) != 1 {
		t.Errorf("patch carried %d fields, want only the changed one: %v", len(patch), patch)
	}
	if patch["title"] != "Renamed" {
		t.Errorf("patch = %v", patch)
	}
}
