package snippet

import (
	"context"

	snippetdomain "github.com/Soodgit/ai-code-documenter/internal/snippet/domain"
	snippetrepo "github.com/Soodgit/ai-code-documenter/internal/snippet/repository"
)

type mockSnippetRepo struct {
	createFunc     func(ctx context.Context, snippet snippetdomain.Snippet) error
	listByUserFunc func(ctx context.Context, userID string, limit, offset int) ([]snippetdomain.Snippet, error)
	findByIDFunc   func(ctx context.Context, id snippetdomain.SnippetID, userID string) (snippetdomain.Snippet, error)
	updateFunc     func(ctx context.Context, snippet snippetdomain.Snippet) (bool, error)
	deleteFunc     func(ctx context.Context, id snippetdomain.SnippetID, userID string) (bool, error)
}

func (m *mockSnippetRepo) Create(ctx context.Context, snippet snippetdomain.Snippet) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, snippet)
	}
	return nil
}

func (m *mockSnippetRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]snippetdomain.Snippet, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockSnippetRepo) FindByID(ctx context.Context, id snippetdomain.SnippetID, userID string) (snippetdomain.Snippet, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id, userID)
	}
	return snippetdomain.Snippet{}, snippetrepo.ErrSnippetNotFound
}

func (m *mockSnippetRepo) Update(ctx context.Context, snippet snippetdomain.Snippet) (bool, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, snippet)
	}
	return true, nil
}

func (m *mockSnippetRepo) Delete(ctx context.Context, id snippetdomain.SnippetID, userID string) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return true, nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return testSnippetID, nil
}
