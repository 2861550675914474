package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Soodgit/ai-code-documenter/internal/auth/domain"
	"github.com/Soodgit/ai-code-documenter/internal/common/constants"
	"github.com/Soodgit/ai-code-documenter/internal/common/db"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.UserID) (domain.User, error)
	UpdateRefreshToken(ctx context.Context, id domain.UserID, tokenHash string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, id domain.UserID, oldHash, newHash string, expiresAt time.Time) (bool, error)
	ClearRefreshToken(ctx context.Context, id domain.UserID) error
	SetResetToken(ctx context.Context, id domain.UserID, tokenHash string, expiresAt time.Time) error
	FindByResetTokenHash(ctx context.Context, tokenHash string) (domain.User, error)
	UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error
	ClearExpiredRefreshTokens(ctx context.Context) (int64, error)
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash,
	refresh_token_hash, refresh_token_expires_at,
	reset_password_token_hash, reset_password_expires_at,
	created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return ErrEmailAlreadyExists
			}
			return ErrUsernameAlreadyExists
		}
		return db.HandleExecError(err, "create user", start)
	}
	db.MeasureQueryDuration("create user", start)
	return nil
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	return scanUser(row, "find user by email", start)
}

func (r *PgUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)
	return scanUser(row, "find user by username", start)
}

func (r *PgUserRepository) FindByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		string(id),
	)
	return scanUser(row, "find user by id", start)
}

func (r *PgUserRepository) UpdateRefreshToken(ctx context.Context, id domain.UserID, tokenHash string, expiresAt time.Time) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET refresh_token_hash = $2, refresh_token_expires_at = $3
		 WHERE id = $1`,
		string(id),
		tokenHash,
		expiresAt,
	)
	return db.HandleExecError(err, "update refresh token", start)
}

// RotateRefreshToken swaps the stored token only if it still equals oldHash.
// A false result means another request rotated first and the presented token
// is no longer the active one.
func (r *PgUserRepository) RotateRefreshToken(ctx context.Context, id domain.UserID, oldHash, newHash string, expiresAt time.Time) (bool, error) {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET refresh_token_hash = $3, refresh_token_expires_at = $4
		 WHERE id = $1 AND refresh_token_hash = $2`,
		string(id),
		oldHash,
		newHash,
		expiresAt,
	)
	if err != nil {
		return false, db.HandleExecError(err, "rotate refresh token", start)
	}
	db.MeasureQueryDuration("rotate refresh token", start)
	return res.RowsAffected() == 1, nil
}

func (r *PgUserRepository) ClearRefreshToken(ctx context.Context, id domain.UserID) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET refresh_token_hash = NULL, refresh_token_expires_at = NULL
		 WHERE id = $1`,
		string(id),
	)
	return db.HandleExecError(err, "clear refresh token", start)
}

func (r *PgUserRepository) SetResetToken(ctx context.Context, id domain.UserID, tokenHash string, expiresAt time.Time) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET reset_password_token_hash = $2, reset_password_expires_at = $3
		 WHERE id = $1`,
		string(id),
		tokenHash,
		expiresAt,
	)
	return db.HandleExecError(err, "set reset password token", start)
}

func (r *PgUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_password_token_hash = $1`,
		tokenHash,
	)
	return scanUser(row, "find user by reset password token", start)
}

// UpdatePassword also revokes the active refresh token and the reset token,
// so every session has to log in again with the new password.
func (r *PgUserRepository) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET password_hash = $2,
		     refresh_token_hash = NULL, refresh_token_expires_at = NULL,
		     reset_password_token_hash = NULL, reset_password_expires_at = NULL
		 WHERE id = $1`,
		string(id),
		passwordHash,
	)
	return db.HandleExecError(err, "update password", start)
}

func (r *PgUserRepository) ClearExpiredRefreshTokens(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET refresh_token_hash = NULL, refresh_token_expires_at = NULL
		 WHERE refresh_token_expires_at IS NOT NULL AND refresh_token_expires_at < NOW()`,
	)
	if err != nil {
		return 0, db.HandleExecError(err, "clear expired refresh tokens", start)
	}
	db.MeasureQueryDuration("clear expired refresh tokens", start)
	return res.RowsAffected(), nil
}

func (r *PgUserRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DBQueryTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`UPDATE users
		 SET reset_password_token_hash = NULL, reset_password_expires_at = NULL
		 WHERE reset_password_expires_at IS NOT NULL AND reset_password_expires_at < NOW()`,
	)
	if err != nil {
		return 0, db.HandleExecError(err, "clear expired reset password tokens", start)
	}
	db.MeasureQueryDuration("clear expired reset password tokens", start)
	return res.RowsAffected(), nil
}

func scanUser(row pgx.Row, operation string, start time.Time) (domain.User, error) {
	var (
		user        domain.User
		refreshHash sql.NullString
		refreshExp  sql.NullTime
		resetHash   sql.NullString
		resetExp    sql.NullTime
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&refreshHash,
		&refreshExp,
		&resetHash,
		&resetExp,
		&user.CreatedAt,
	)
	if err := db.HandleQueryError(err, ErrUserNotFound, operation, start); err != nil {
		return domain.User{}, err
	}

	user.RefreshTokenHash = refreshHash.String
	user.RefreshTokenExpiresAt = refreshExp.Time
	user.ResetPasswordTokenHash = resetHash.String
	user.ResetPasswordExpiresAt = resetExp.Time
	return user, nil
}

var ErrUserNotFound = errors.New("user not found")

var ErrUsernameAlreadyExists = errors.New("username already exists")

var ErrEmailAlreadyExists = errors.New("email already exists")
