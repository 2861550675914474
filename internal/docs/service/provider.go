package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/observability/metrics"
)

type providerRequest struct {
	Model    string `json:"model"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

type providerResponse struct {
	Markdown string `json:"markdown"`
}

// ProviderClient calls the external model endpoint that writes the actual
// documentation. It carries its own http.Client so provider latency is
// bounded independently of the caller's deadline.
type ProviderClient struct {
	url    string
	apiKey string
	model  string
	client *http.Client
	log    *logger.Logger
}

func NewProviderClient(url, apiKey, model string, timeout time.Duration, log *logger.Logger) *ProviderClient {
	return &ProviderClient{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (p *ProviderClient) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	start := time.Now()

	body, err := json.Marshal(providerRequest{
		Model:    p.model,
		Language: req.Language,
		Code:     req.Code,
	})
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to marshal provider request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to build provider request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		metrics.ProviderRequestDurationSeconds.Observe(time.Since(start).Seconds())
		return GenerateResult{}, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.ProviderRequestDurationSeconds.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.log.WithFields(ctx, logger.Fields{
			"status": resp.StatusCode,
			"action": "provider_request_failed",
		}).Warnf("provider returned %d: %s", resp.StatusCode, snippet)
		return GenerateResult{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var providerResp providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&providerResp); err != nil {
		return GenerateResult{}, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if providerResp.Markdown == "" {
		return GenerateResult{}, errors.New("provider returned empty markdown")
	}

	return GenerateResult{Markdown: providerResp.Markdown, Source: SourceProvider}, nil
}
