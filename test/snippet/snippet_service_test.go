package snippet

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Soodgit/ai-code-documenter/internal/common/clock"
	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	snippetdomain "github.com/Soodgit/ai-code-documenter/internal/snippet/domain"
	"github.com/Soodgit/ai-code-documenter/internal/snippet/service"
)

const (
	testSnippetID = "6fa459ea-ee8a-3ca4-894e-db77e160355e"
	testUserID    = "user-1"
)

func setupSnippetService(t *testing.T) (*service.SnippetService, *mockSnippetRepo, *clock.MockClock) {
	_ = t
	repo := &mockSnippetRepo{}
	mockClock := clock.NewMockClock(time.Now())
	log, _ := logger.New("", "test", "info")

	svc := service.NewSnippetService(repo, &mockIDGenerator{}, mockClock, log)
	return svc, repo, mockClock
}

func TestSnippetService_Create_Success(t *testing.T) {
	svc, repo, mockClock := setupSnippetService(t)

	var created snippetdomain.Snippet
	repo.createFunc = func(ctx context.Context, snippet snippetdomain.Snippet) error {
		created = snippet
		return nil
	}

	snippet, err := svc.Create(context.Background(), service.CreateInput{
		UserID:   testUserID,
		Title:    "  HTTP retry helper  ",
		Language: "go",
		Code:     "package retry",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID != testSnippetID {
		t.Errorf("id = %q, want %q", created.ID, testSnippetID)
	}
	if created.UserID != testUserID {
		t.Errorf("owner = %q, want %q", created.UserID, testUserID)
	}
	if created.Title != "HTTP retry helper" {
		t.Errorf("title = %q, want it trimmed", created.Title)
	}
	if !created.CreatedAt.Equal(mockClock.Now()) || !created.UpdatedAt.Equal(mockClock.Now()) {
		t.Error("timestamps must come from the clock")
	}
	if snippet.ID != created.ID {
		t.Error("returned snippet must match the stored one")
	}
}

func TestSnippetService_Create_Validation(t *testing.T) {
	tests := []struct {
		name        string
		input       service.CreateInput
		detailField string
	}{
		{
			name:        "empty title",
			input:       service.CreateInput{UserID: testUserID, Title: "   ", Language: "go", Code: "x"},
			detailField: "title",
		},
		{
			name:        "title too long",
			input:       service.CreateInput{UserID: testUserID, Title: strings.Repeat("t", constants.TitleMaxLength+1), Language: "go", Code: "x"},
			detailField: "title",
		},
		{
			name:        "empty language",
			input:       service.CreateInput{UserID: testUserID, Title: "Title", Language: "", Code: "x"},
			detailField: "language",
		},
		{
			name:        "empty code",
			input:       service.CreateInput{UserID: testUserID, Title: "Title", Language: "go", Code: ""},
			detailField: "code",
		},
		{
			name:        "code too large",
			input:       service.CreateInput{UserID: testUserID, Title: "Title", Language: "go", Code: strings.Repeat("a", constants.MaxCodeSizeBytes+1)},
			detailField: "code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setupSnippetService(t)

			created := false
			repo.createFunc = func(ctx context.Context, snippet snippetdomain.Snippet) error {
				created = true
				return nil
			}

			_, err := svc.Create(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			de, ok := commonerrors.AsDomainError(err)
			if !ok {
				t.Fatalf("expected domain error, got %T", err)
			}
			if de.Code() != "VALIDATION_FAILED" {
				t.Errorf("error code = %q, want VALIDATION_FAILED", de.Code())
			}
			if _, has := de.Details()[tt.detailField]; !has {
				t.Errorf("details = %v, want field %q", de.Details(), tt.detailField)
			}
			if created {
				t.Error("nothing must be stored on validation failure")
			}
		})
	}
}

func TestSnippetService_List_ClampsPaging(t *testing.T) {
	tests := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{name: "defaults", limit: 0, offset: 0, wantLimit: constants.DefaultSnippetsLimit, wantOffset: 0},
		{name: "negative values", limit: -5, offset: -3, wantLimit: constants.DefaultSnippetsLimit, wantOffset: 0},
		{name: "limit capped", limit: 1000, offset: 50, wantLimit: constants.MaxSnippetsPageLimit, wantOffset: 50},
		{name: "in range", limit: 25, offset: 10, wantLimit: 25, wantOffset: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := setupSnippetService(t)

			var gotLimit, gotOffset int
			repo.listByUserFunc = func(ctx context.Context, userID string, limit, offset int) ([]snippetdomain.Snippet, error) {
				gotLimit = limit
				gotOffset = offset
				return nil, nil
			}

			if _, err := svc.List(context.Background(), testUserID, tt.limit, tt.offset); err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", gotLimit, tt.wantLimit)
			}
			if gotOffset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", gotOffset, tt.wantOffset)
			}
		})
	}
}

func TestSnippetService_Get_NotFound(t *testing.T) {
	svc, _, _ := setupSnippetService(t)

	_, err := svc.Get(context.Background(), "missing", testUserID)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, service.ErrSnippetNotFound) {
		t.Errorf("error = %v, want ErrSnippetNotFound", err)
	}
}

func TestSnippetService_Update_PartialPatch(t *testing.T) {
	svc, repo, mockClock := setupSnippetService(t)

	createdAt := mockClock.Now().Add(-time.Hour)
	stored := snippetdomain.Snippet{
		ID:        testSnippetID,
		UserID:    testUserID,
		Title:     "Old title",
		Language:  "go",
		Code:      "package old",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	repo.findByIDFunc = func(ctx context.Context, id snippetdomain.SnippetID, userID string) (snippetdomain.Snippet, error) {
		return stored, nil
	}

	var written snippetdomain.Snippet
	repo.updateFunc = func(ctx context.Context, snippet snippetdomain.Snippet) (bool, error) {
		written = snippet
		return true, nil
	}

	title := "  New title  "
	updated, err := svc.Update(context.Background(), testSnippetID, testUserID, service.UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if written.Title != "New title" {
		t.Errorf("title = %q, want the trimmed patch value", written.Title)
	}
	if written.Code != "package old" || written.Language != "go" {
		t.Error("fields without a patch value must keep the stored content")
	}
	if !written.CreatedAt.Equal(createdAt) {
		t.Error("CreatedAt must not move on update")
	}
	if !written.UpdatedAt.Equal(mockClock.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", written.UpdatedAt, mockClock.Now())
	}
	if updated.Title != "New title" {
		t.Errorf("returned title = %q", updated.Title)
	}
}

func TestSnippetService_Update_ValidatesThePatchedResult(t *testing.T) {
	svc, repo, _ := setupSnippetService(t)

	repo.findByIDFunc = func(ctx context.Context, id snippetdomain.SnippetID, userID string) (snippetdomain.Snippet, error) {
		return snippetdomain.Snippet{ID: id, UserID: userID, Title: "Title", Language: "go", Code: "x"}, nil
	}

	empty := ""
	_, err := svc.Update(context.Background(), testSnippetID, testUserID, service.UpdateInput{Code: &empty})
	if err == nil {
		t.Fatal("expected error")
	}

	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %T", err)
	}
	if de.Code() != "VALIDATION_FAILED" {
		t.Errorf("error code = %q, want VALIDATION_FAILED", de.Code())
	}
}

func TestSnippetService_Update_GoneBetweenReadAndWrite(t *testing.T) {
	svc, repo, _ := setupSnippetService(t)

	repo.findByIDFunc = func(ctx context.Context, id snippetdomain.SnippetID, userID string) (snippetdomain.Snippet, error) {
		return snippetdomain.Snippet{ID: id, UserID: userID, Title: "Title", Language: "go", Code: "x"}, nil
	}
	repo.updateFunc = func(ctx context.Context, snippet snippetdomain.Snippet) (bool, error) {
		return false, nil
	}

	title := "New"
	_, err := svc.Update(context.Background(), testSnippetID, testUserID, service.UpdateInput{Title: &title})
	if !errors.Is(err, service.ErrSnippetNotFound) {
		t.Errorf("error = %v, want ErrSnippetNotFound", err)
	}
}

func TestSnippetService_Delete(t *testing.T) {
	svc, repo, _ := setupSnippetService(t)

	var deletedID snippetdomain.SnippetID
	repo.deleteFunc = func(ctx context.Context, id snippetdomain.SnippetID, userID string) (bool, error) {
		deletedID = id
		return true, nil
	}

	if err := svc.Delete(context.Background(), testSnippetID, testUserID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deletedID != testSnippetID {
		t.Errorf("deleted %q, want %q", deletedID, testSnippetID)
	}

	repo.deleteFunc = func(ctx context.Context, id snippetdomain.SnippetID, userID string) (bool, error) {
		return false, nil
	}
	if err := svc.Delete(context.Background(), testSnippetID, testUserID); !errors.Is(err, service.ErrSnippetNotFound) {
		t.Errorf("error = %v, want ErrSnippetNotFound", err)
	}

	repo.deleteFunc = func(ctx context.Context, id snippetdomain.SnippetID, userID string) (bool, error) {
		return false, errors.New("connection refused")
	}
	err := svc.Delete(context.Background(), testSnippetID, testUserID)
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %T", err)
	}
	if de.Code() != "DB_ERROR" {
		t.Errorf("error code = %q, want DB_ERROR", de.Code())
	}
}
