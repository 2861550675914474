package docs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/Soodgit/ai-code-documenter/internal/docs/service"
)

type streamEvent struct {
	Stage    string `json:"stage"`
	Markdown string `json:"markdown"`
	Source   string `json:"source"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func dialStream(t *testing.T, srv *httptest.Server, token string) *gorillaWS.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/docs/stream?token=" + url.QueryEscape(token)
	conn, resp, err := gorillaWS.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn
}

func TestDocsStream_GeneratesOverWebsocket(t *testing.T) {
	provider := &mockGenerator{
		generateFunc: func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
			return service.GenerateResult{Markdown: "# Streamed docs\n", Source: service.SourceProvider}, nil
		},
	}
	handler, token := setupDocsHandler(t, provider)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	conn := dialStream(t, srv, token)
	defer conn.Close()

	request := map[string]string{"language": "go", "code": "func main() {}", "title": "Entry"}
	if err := conn.WriteJSON(request); err != nil {
		t.Fatalf("write request: %v", err)
	}

	wantStages := []string{"accepted", "generating", "done"}
	var last streamEvent
	for i, want := range wantStages {
		var event streamEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read event %d: %v", i, err)
		}
		if event.Stage != want {
			t.Fatalf("stage %d = %q, want %q", i, event.Stage, want)
		}
		last = event
	}

	if last.Markdown != "# Streamed docs\n" {
		t.Errorf("markdown = %q, want the generated output", last.Markdown)
	}
	if last.Source != service.SourceProvider {
		t.Errorf("source = %q, want %q", last.Source, service.SourceProvider)
	}
}

func TestDocsStream_RejectsMissingOrBadTokens(t *testing.T) {
	handler, _ := setupDocsHandler(t, &mockGenerator{})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/docs/stream"
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing token", query: ""},
		{name: "garbage token", query: "?token=garbage"},
	}
	for _, tt := range tests {
		conn, resp, err := gorillaWS.DefaultDialer.Dial(base+tt.query, nil)
		if err == nil {
			conn.Close()
			t.Fatalf("%s: dial succeeded, want a handshake rejection", tt.name)
		}
		if resp == nil {
			t.Fatalf("%s: no handshake response", tt.name)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: handshake status = %d, want %d", tt.name, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}

func TestDocsStream_ReportsErrorsInBand(t *testing.T) {
	handler, token := setupDocsHandler(t, &mockGenerator{})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	conn := dialStream(t, srv, token)
	if err := conn.WriteMessage(gorillaWS.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write malformed frame: %v", err)
	}
	var event streamEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read error event: %v", err)
	}
	conn.Close()
	if event.Stage != "error" || event.Code != "INVALID_JSON" {
		t.Errorf("event = %+v, want stage error with code INVALID_JSON", event)
	}

	// Validation failures surface after the progress stages, still in band.
	conn = dialStream(t, srv, token)
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"language": "go"}); err != nil {
		t.Fatalf("write request: %v", err)
	}
	stages := []string{}
	for {
		event = streamEvent{}
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read event: %v", err)
		}
		stages = append(stages, event.Stage)
		if event.Stage == "error" || event.Stage == "done" {
			break
		}
	}
	if event.Stage != "error" || event.Code != "VALIDATION_FAILED" {
		t.Errorf("final event = %+v, want a VALIDATION_FAILED error", event)
	}
	if len(stages) < 3 || stages[0] != "accepted" || stages[1] != "generating" {
		t.Errorf("stages = %v, want progress stages before the error", stages)
	}
}
