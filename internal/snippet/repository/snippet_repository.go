package repository

import (
	"context"
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Soodgit/ai-code-documenter/internal/common/db"
	"github.com/Soodgit/ai-code-documenter/internal/snippet/domain"
)

// SnippetRepository scopes every read and write to the owning user, so a
// snippet belonging to someone else behaves exactly like a missing one.
type SnippetRepository interface {
	Create(ctx context.Context, snippet domain.Snippet) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Snippet, error)
	FindByID(ctx context.Context, id domain.SnippetID, userID string) (domain.Snippet, error)
	Update(ctx context.Context, snippet domain.Snippet) (bool, error)
	Delete(ctx context.Context, id domain.SnippetID, userID string) (bool, error)
}

type PgSnippetRepository struct {
	pool *pgxpool.Pool
}

func NewPgSnippetRepository(pool *pgxpool.Pool) *PgSnippetRepository {
	return &PgSnippetRepository{pool: pool}
}

const snippetColumns = `id, user_id, title, language, code, documentation, created_at, updated_at`

func (r *PgSnippetRepository) Create(ctx context.Context, snippet domain.Snippet) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO snippets (id, user_id, title, language, code, documentation, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(snippet.ID),
		snippet.UserID,
		snippet.Title,
		snippet.Language,
		snippet.Code,
		snippet.Documentation,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	return db.HandleExecError(err, "create snippet", start)
}

func (r *PgSnippetRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Snippet, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+snippetColumns+` FROM snippets
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list snippets", start)
	}
	defer rows.Close()

	snippets := make([]domain.Snippet, 0)
	for rows.Next() {
		snippet, err := scanSnippet(rows)
		if err != nil {
			return nil, db.HandleExecError(err, "list snippets", start)
		}
		snippets = append(snippets, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleExecError(err, "list snippets", start)
	}

	db.MeasureQueryDuration("list snippets", start)
	return snippets, nil
}

func (r *PgSnippetRepository) FindByID(ctx context.Context, id domain.SnippetID, userID string) (domain.Snippet, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = $1 AND user_id = $2`,
		string(id),
		userID,
	)

	snippet, err := scanSnippet(row)
	if err := db.HandleQueryError(err, ErrSnippetNotFound, "find snippet by id", start); err != nil {
		return domain.Snippet{}, err
	}
	return snippet, nil
}

func (r *PgSnippetRepository) Update(ctx context.Context, snippet domain.Snippet) (bool, error) {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`UPDATE snippets
		 SET title = $3, language = $4, code = $5, documentation = $6, updated_at = $7
		 WHERE id = $1 AND user_id = $2`,
		string(snippet.ID),
		snippet.UserID,
		snippet.Title,
		snippet.Language,
		snippet.Code,
		snippet.Documentation,
		snippet.UpdatedAt,
	)
	if err != nil {
		return false, db.HandleExecError(err, "update snippet", start)
	}
	db.MeasureQueryDuration("update snippet", start)
	return res.RowsAffected() == 1, nil
}

func (r *PgSnippetRepository) Delete(ctx context.Context, id domain.SnippetID, userID string) (bool, error) {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM snippets WHERE id = $1 AND user_id = $2`,
		string(id),
		userID,
	)
	if err != nil {
		return false, db.HandleExecError(err, "delete snippet", start)
	}
	db.MeasureQueryDuration("delete snippet", start)
	return res.RowsAffected() == 1, nil
}

func scanSnippet(row pgx.Row) (domain.Snippet, error) {
	var snippet domain.Snippet

	err := row.Scan(
		&snippet.ID,
		&snippet.UserID,
		&snippet.Title,
		&snippet.Language,
		&snippet.Code,
		&snippet.Documentation,
		&snippet.CreatedAt,
		&snippet.UpdatedAt,
	)
	if err != nil {
		return domain.Snippet{}, err
	}

	return snippet, nil
}

var ErrSnippetNotFound = errors.New("snippet not found")
