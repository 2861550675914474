package service

import (
	"context"
	"fmt"
	"strings"
)

// FallbackGenerator writes a deterministic documentation skeleton without
// calling any external service. It is the degraded mode the circuit breaker
// falls back to when the provider is unavailable.
type FallbackGenerator struct{}

func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

func (g *FallbackGenerator) Generate(_ context.Context, req GenerateRequest) (GenerateResult, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Code documentation"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Automatically generated outline for a %s snippet. The documentation service was unavailable, so this is a structural summary only.\n\n", displayLanguage(req.Language))
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Language: %s\n", displayLanguage(req.Language))
	fmt.Fprintf(&b, "- Size: %d lines\n\n", countLines(req.Code))
	b.WriteString("## Source\n\n")
	fmt.Fprintf(&b, "```%s\n%s\n```\n\n", req.Language, strings.TrimRight(req.Code, "\n"))
	b.WriteString("## Notes\n\n")
	b.WriteString("- Regenerate once the documentation service is reachable for a full description.\n")

	return GenerateResult{Markdown: b.String(), Source: SourceFallback}, nil
}

func displayLanguage(language string) string {
	if language == "" {
		return "plain text"
	}
	return language
}

func countLines(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(strings.TrimRight(code, "\n"), "\n") + 1
}
