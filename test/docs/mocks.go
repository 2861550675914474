package docs

import (
	"context"

	"github.com/Soodgit/ai-code-documenter/internal/docs/service"
)

type mockGenerator struct {
	generateFunc func(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, req service.GenerateRequest) (service.GenerateResult, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return service.GenerateResult{Markdown: "# Stub\n", Source: service.SourceProvider}, nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "test-id-123", nil
}
