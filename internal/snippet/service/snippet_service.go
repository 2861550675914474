package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Soodgit/ai-code-documenter/internal/common/clock"
	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	commoncrypto "github.com/Soodgit/ai-code-documenter/internal/common/crypto"
	commonerrors "github.com/Soodgit/ai-code-documenter/internal/common/errors"
	"github.com/Soodgit/ai-code-documenter/internal/common/logger"
	"github.com/Soodgit/ai-code-documenter/internal/observability/metrics"
	"github.com/Soodgit/ai-code-documenter/internal/snippet/domain"
	snippetrepo "github.com/Soodgit/ai-code-documenter/internal/snippet/repository"
)

type SnippetService struct {
	repo        snippetrepo.SnippetRepository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
}

func NewSnippetService(
	repo snippetrepo.SnippetRepository,
	idGenerator commoncrypto.IDGenerator,
	clock clock.Clock,
	log *logger.Logger,
) *SnippetService {
	return &SnippetService{
		repo:        repo,
		idGenerator: idGenerator,
		clock:       clock,
		log:         log,
	}
}

type CreateInput struct {
	UserID        string
	Title         string
	Language      string
	Code          string
	Documentation string
}

// UpdateInput carries only the fields the caller wants to change. A nil
// field keeps the stored value.
type UpdateInput struct {
	Title         *string
	Language      *string
	Code          *string
	Documentation *string
}

func (s *SnippetService) Create(ctx context.Context, input CreateInput) (domain.Snippet, error) {
	s.log.WithFields(ctx, logger.Fields{
		"user_id": input.UserID,
		"action":  "snippet_create_attempt",
	}).Info("snippet create attempt")

	input.Title = strings.TrimSpace(input.Title)
	if err := validateSnippetFields(input.Title, input.Language, input.Code); err != nil {
		return domain.Snippet{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": input.UserID,
			"action":  "snippet_id_generation_failed",
		}).Errorf("snippet create failed: id generation error: %v", err)
		return domain.Snippet{}, err
	}

	now := s.clock.Now()
	snippet := domain.Snippet{
		ID:            domain.SnippetID(id),
		UserID:        input.UserID,
		Title:         input.Title,
		Language:      input.Language,
		Code:          input.Code,
		Documentation: input.Documentation,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": input.UserID,
			"action":  "snippet_create_failed",
		}).Errorf("snippet create failed: %v", err)
		return domain.Snippet{}, newInternalError("failed to create snippet", err)
	}

	metrics.SnippetsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":    input.UserID,
		"snippet_id": string(snippet.ID),
		"action":     "snippet_create_success",
	}).Info("snippet created")

	return snippet, nil
}

func (s *SnippetService) List(ctx context.Context, userID string, limit, offset int) ([]domain.Snippet, error) {
	if limit <= 0 {
		limit = constants.DefaultSnippetsLimit
	}
	if limit > constants.MaxSnippetsPageLimit {
		limit = constants.MaxSnippetsPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "snippet_list_failed",
		}).Errorf("snippet list failed: %v", err)
		return nil, newInternalError("failed to list snippets", err)
	}

	return snippets, nil
}

func (s *SnippetService) Get(ctx context.Context, id domain.SnippetID, userID string) (domain.Snippet, error) {
	snippet, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, snippetrepo.ErrSnippetNotFound) {
			return domain.Snippet{}, ErrSnippetNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    userID,
			"snippet_id": string(id),
			"action":     "snippet_fetch_failed",
		}).Errorf("snippet fetch failed: %v", err)
		return domain.Snippet{}, newInternalError("failed to fetch snippet", err)
	}

	return snippet, nil
}

func (s *SnippetService) Update(ctx context.Context, id domain.SnippetID, userID string, input UpdateInput) (domain.Snippet, error) {
	snippet, err := s.Get(ctx, id, userID)
	if err != nil {
		return domain.Snippet{}, err
	}

	if input.Title != nil {
		snippet.Title = strings.TrimSpace(*input.Title)
	}
	if input.Language != nil {
		snippet.Language = *input.Language
	}
	if input.Code != nil {
		snippet.Code = *input.Code
	}
	if input.Documentation != nil {
		snippet.Documentation = *input.Documentation
	}

	if err := validateSnippetFields(snippet.Title, snippet.Language, snippet.Code); err != nil {
		return domain.Snippet{}, err
	}

	snippet.UpdatedAt = s.clock.Now()

	updated, err := s.repo.Update(ctx, snippet)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    userID,
			"snippet_id": string(id),
			"action":     "snippet_update_failed",
		}).Errorf("snippet update failed: %v", err)
		return domain.Snippet{}, newInternalError("failed to update snippet", err)
	}
	if !updated {
		return domain.Snippet{}, ErrSnippetNotFound
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id":    userID,
		"snippet_id": string(id),
		"action":     "snippet_update_success",
	}).Info("snippet updated")

	return snippet, nil
}

func (s *SnippetService) Delete(ctx context.Context, id domain.SnippetID, userID string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":    userID,
			"snippet_id": string(id),
			"action":     "snippet_delete_failed",
		}).Errorf("snippet delete failed: %v", err)
		return newInternalError("failed to delete snippet", err)
	}
	if !deleted {
		return ErrSnippetNotFound
	}

	metrics.SnippetsDeleted.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":    userID,
		"snippet_id": string(id),
		"action":     "snippet_delete_success",
	}).Info("snippet deleted")

	return nil
}

func validateSnippetFields(title, language, code string) error {
	if title == "" || len(title) > constants.TitleMaxLength {
		return ErrValidationTitle
	}
	if language == "" || len(language) > constants.LanguageMaxLength {
		return ErrValidationLanguage
	}
	if code == "" {
		return ErrValidationCode
	}
	if len(code) > constants.MaxCodeSizeBytes {
		return ErrValidationCodeSize
	}
	return nil
}

func newInternalError(message string, cause error) commonerrors.DomainError {
	return commonerrors.NewDomainError(
		"DB_ERROR",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	).WithCause(cause)
}
