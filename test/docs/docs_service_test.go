package docs

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/common/resilience"
	"github.com/Soodgit/ai-code-documenter/internal/docs/service"
)

const breakerThreshold = 3

func setupDocsService(t *testing.T, provider service.Generator) *service.DocsService {
	return setupDocsServiceWithReset(t, provider, time.Minute)
}

func setupDocsServiceWithReset(t *testing.T, provider service.Generator, resetAfter time.Duration) *service.DocsService {
	_ = t

	log, _ := logger.New("", "test", "info")
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  breakerThreshold,
		Timeout:    time.Second,
		ResetAfter: resetAfter,
		Name:       "docs-provider",
		Logger:     log,
	})

	return service.NewDocsService(
		service.NewCache(nil, time.Hour, log),
		provider,
		service.NewFallbackGenerator(),
		breaker,
		log,
	)
}

func TestDocsService_ServesProviderResult(t *testing.T) {
	providerCalls := 0
	var gotReq service.GenerateRequest
	provider := &mockGenerator{
		generateFunc: func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
			providerCalls++
			gotReq = req
			return service.GenerateResult{Markdown: "# Real docs\n", Source: service.SourceProvider}, nil
		},
	}
	svc := setupDocsService(t, provider)

	req := service.GenerateRequest{Language: "go", Code: "func main() {}", Title: "Entry point"}
	result, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.Source != service.SourceProvider {
		t.Errorf("source = %q, want %q", result.Source, service.SourceProvider)
	}
	if result.Markdown != "# Real docs\n" {
		t.Errorf("markdown = %q, want the provider output", result.Markdown)
	}
	if providerCalls != 1 {
		t.Errorf("provider calls = %d, want 1", providerCalls)
	}
	if gotReq != req {
		t.Errorf("provider request = %+v, want %+v", gotReq, req)
	}
}

func TestDocsService_ValidatesRequest(t *testing.T) {
	providerCalls := 0
	provider := &mockGenerator{
		generateFunc: func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
			providerCalls++
			return service.GenerateResult{Markdown: "# Docs\n", Source: service.SourceProvider}, nil
		},
	}
	svc := setupDocsService(t, provider)

	tests := []struct {
		name        string
		req         service.GenerateRequest
		detailField string
	}{
		{
			name:        "empty language",
			req:         service.GenerateRequest{Code: "x"},
			detailField: "language",
		},
		{
			name:        "language too long",
			req:         service.GenerateRequest{Language: strings.Repeat("a", constants.LanguageMaxLength+1), Code: "x"},
			detailField: "language",
		},
		{
			name:        "empty code",
			req:         service.GenerateRequest{Language: "go"},
			detailField: "code",
		},
		{
			name:        "code too large",
			req:         service.GenerateRequest{Language: "go", Code: strings.Repeat("a", constants.MaxCodeSizeBytes+1)},
			detailField: "code",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)

			domainErr, ok := commonerrors.AsDomainError(err)
			if !ok {
				t.Fatalf("Generate() error = %v, want a domain error", err)
			}
			if domainErr.Code() != "VALIDATION_FAILED" {
				t.Errorf("code = %q, want VALIDATION_FAILED", domainErr.Code())
			}
			if domainErr.Details()[tt.detailField] == "" {
				t.Errorf("details = %v, want an entry for %q", domainErr.Details(), tt.detailField)
			}
		})
	}

	if providerCalls != 0 {
		t.Errorf("provider calls = %d, want 0 for invalid requests", providerCalls)
	}
}

func TestDocsService_FallsBackWhenProviderFails(t *testing.T) {
	provider := &mockGenerator{
		generateFunc: func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
			return service.GenerateResult{}, errors.New("upstream returned 503")
		},
	}
	svc := setupDocsService(t, provider)

	result, err := svc.Generate(context.Background(), service.GenerateRequest{
		Language: "go",
		Code:     "func A() {}\nfunc B() {}",
		Title:    "Helpers",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v, want a degraded result", err)
	}

	if result.Source != service.SourceFallback {
		t.Errorf("source = %q, want %q", result.Source, service.SourceFallback)
	}
	if !strings.Contains(result.Markdown, "# Helpers") {
		t.Errorf("markdown missing the title heading:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "```go") {
		t.Errorf("markdown missing the fenced source block:\n%s", result.Markdown)
	}
}

func TestDocsService_NoProviderConfigured(t *testing.T) {
	svc := setupDocsService(t, nil)

	result, err := svc.Generate(context.Background(), service.GenerateRequest{Language: "go", Code: "func main() {}"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Source != service.SourceFallback {
		t.Errorf("source = %q, want %q", result.Source, service.SourceFallback)
	}
}

func TestDocsService_BreakerShortCircuitsAfterRepeatedFailures(t *testing.T) {
	providerCalls := 0
	provider := &mockGenerator{
		generateFunc: func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
			providerCalls++
			return service.GenerateResult{}, errors.New("upstream down")
		},
	}
	svc := setupDocsService(t, provider)

	req := service.GenerateRequest{Language: "go", Code: "func main() {}"}
	for i := 0; i < 5; i++ {
		result, err := svc.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate() #%d error = %v", i+1, err)
		}
		if result.Source != service.SourceFallback {
			t.Fatalf("Generate() #%d source = %q, want %q", i+1, result.Source, service.SourceFallback)
		}
	}

	if providerCalls != breakerThreshold {
		t.Errorf("provider calls = %d, want %d once the circuit opened", providerCalls, breakerThreshold)
	}
}

func TestDocsService_BreakerRecoversAfterQuietPeriod(t *testing.T) {
	providerCalls := 0
	healthy := false
	provider := &mockGenerator{
		generateFunc: func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
			providerCalls++
			if !healthy {
				return service.GenerateResult{}, errors.New("upstream down")
			}
			return service.GenerateResult{Markdown: "# Back online\n", Source: service.SourceProvider}, nil
		},
	}
	svc := setupDocsServiceWithReset(t, provider, 100*time.Millisecond)

	req := service.GenerateRequest{Language: "go", Code: "func main() {}"}
	for i := 0; i < breakerThreshold; i++ {
		if _, err := svc.Generate(context.Background(), req); err != nil {
			t.Fatalf("Generate() #%d error = %v", i+1, err)
		}
	}
	healthy = true

	result, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() inside quiet period error = %v", err)
	}
	if result.Source != service.SourceFallback {
		t.Fatalf("source inside quiet period = %q, want %q", result.Source, service.SourceFallback)
	}
	if providerCalls != breakerThreshold {
		t.Fatalf("provider calls = %d, want %d while the circuit is open", providerCalls, breakerThreshold)
	}

	time.Sleep(150 * time.Millisecond)

	result, err = svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() after quiet period error = %v", err)
	}
	if result.Source != service.SourceProvider {
		t.Errorf("source after quiet period = %q, want %q", result.Source, service.SourceProvider)
	}
	if providerCalls != breakerThreshold+1 {
		t.Errorf("provider calls = %d, want %d after the circuit closed again", providerCalls, breakerThreshold+1)
	}
}

func TestDocsService_ReportsFailureWhenAllSourcesFail(t *testing.T) {
	failing := &mockGenerator{
		generateFunc: func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
			return service.GenerateResult{}, errors.New("no sources available")
		},
	}

	log, _ := logger.New("", "test", "info")
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  breakerThreshold,
		Timeout:    time.Second,
		ResetAfter: time.Minute,
		Name:       "docs-provider",
		Logger:     log,
	})
	svc := service.NewDocsService(service.NewCache(nil, time.Hour, log), failing, failing, breaker, log)

	_, err := svc.Generate(context.Background(), service.GenerateRequest{Language: "go", Code: "func main() {}"})

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("Generate() error = %v, want a domain error", err)
	}
	if domainErr.Code() != "GENERATION_FAILED" {
		t.Errorf("code = %q, want GENERATION_FAILED", domainErr.Code())
	}
	if domainErr.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", domainErr.HTTPStatus(), http.StatusInternalServerError)
	}
}

func TestDocsCache_DisabledWithoutRedis(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	cache := service.NewCache(nil, time.Hour, log)

	req := service.GenerateRequest{Language: "go", Code: "package main"}
	if markdown, ok := cache.Get(context.Background(), req); ok || markdown != "" {
		t.Errorf("Get() = (%q, %v), want a miss when no redis is configured", markdown, ok)
	}

	cache.Set(context.Background(), req, "# Docs\n")
	if _, ok := cache.Get(context.Background(), req); ok {
		t.Error("Set() stored a value even though caching is disabled")
	}
}
