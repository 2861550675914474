package service

import (
	"context"
	"time"

	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/common/resilience"
	"github.com/Soodgit/ai-code-documenter/internal/observability/metrics"
)

// DocsService answers generation requests from the cheapest source able to
// serve them: the cache first, then the provider behind a circuit breaker,
// then the deterministic fallback. Only provider output is cached so a
// degraded answer never shadows a real one.
type DocsService struct {
	cache    *Cache
	provider Generator
	fallback Generator
	breaker  *resilience.CircuitBreaker
	log      *logger.Logger
}

func NewDocsService(
	cache *Cache,
	provider Generator,
	fallback Generator,
	breaker *resilience.CircuitBreaker,
	log *logger.Logger,
) *DocsService {
	return &DocsService{
		cache:    cache,
		provider: provider,
		fallback: fallback,
		breaker:  breaker,
		log:      log,
	}
}

func (s *DocsService) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	start := time.Now()

	if err := validateGenerateRequest(req); err != nil {
		return GenerateResult{}, err
	}

	if markdown, ok := s.cache.Get(ctx, req); ok {
		s.observe(SourceCache, start)
		s.log.WithFields(ctx, logger.Fields{
			"language": req.Language,
			"action":   "docs_cache_hit",
		}).Info("docs served from cache")
		return GenerateResult{Markdown: markdown, Source: SourceCache}, nil
	}

	result, err := s.generateFresh(ctx, req)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"language": req.Language,
			"action":   "docs_generation_failed",
		}).Errorf("docs generation failed: %v", err)
		return GenerateResult{}, ErrGenerationFailed.WithCause(err)
	}

	if result.Source == SourceProvider {
		s.cache.Set(ctx, req, result.Markdown)
	}

	s.observe(result.Source, start)
	s.log.WithFields(ctx, logger.Fields{
		"language": req.Language,
		"source":   result.Source,
		"action":   "docs_generated",
	}).Info("docs generated")

	return result, nil
}

func (s *DocsService) generateFresh(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if s.provider == nil {
		return s.fallback.Generate(ctx, req)
	}

	var result GenerateResult
	err := s.breaker.CallWithFallback(
		ctx,
		func(callCtx context.Context) error {
			providerResult, err := s.provider.Generate(callCtx, req)
			if err != nil {
				return err
			}
			result = providerResult
			return nil
		},
		func() error {
			fallbackResult, err := s.fallback.Generate(ctx, req)
			if err != nil {
				return err
			}
			result = fallbackResult
			return nil
		},
	)
	if err != nil {
		return GenerateResult{}, err
	}
	return result, nil
}

func (s *DocsService) observe(source string, start time.Time) {
	metrics.DocsGenerationsTotal.WithLabelValues(source).Inc()
	metrics.DocsGenerationDurationSeconds.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

func validateGenerateRequest(req GenerateRequest) error {
	if req.Language == "" || len(req.Language) > constants.LanguageMaxLength {
		return ErrValidationLanguage
	}
	if req.Code == "" {
		return ErrValidationCode
	}
	if len(req.Code) > constants.MaxCodeSizeBytes {
		return ErrValidationCodeSize
	}
	return nil
}
