package service

import "context"

// Source identifies where a documentation result came from.
const (
	SourceCache    = "cache"
	SourceProvider = "provider"
	SourceFallback = "fallback"
)

type GenerateRequest struct {
	Language string
	Code     string
	Title    string
}

type GenerateResult struct {
	Markdown string
	Source   string
}

// Generator produces Markdown documentation for a piece of code.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}
