package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

const refreshTokenColumns = `id, user_id, token_hash, fingerprint, issued_at, expires_at, revoked_at, replaced_by, created_at, updated_at`

func (r *RefreshTokenRepository) Create(ctx context.Context, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            id, user_id, token_hash, fingerprint, issued_at, expires_at, revoked_at, replaced_by, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
    `

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.Fingerprint, token.IssuedAt, token.ExpiresAt,
		token.RevokedAt, token.ReplacedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash []byte) (model.RefreshToken, error) {
	const query = `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`

	var rt model.RefreshToken
	err := r.db.QueryRow(ctx, query, hash).Scan(
		&rt.ID, &rt.UserID, &rt.TokenHash, &rt.Fingerprint, &rt.IssuedAt, &rt.ExpiresAt,
		&rt.RevokedAt, &rt.ReplacedBy, &rt.CreatedAt, &rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by hash: %w", err)
	}
	return rt, nil
}

// Rotate revokes the old record and inserts the replacement in one
// transaction. The revocation is conditional on the record still being
// active, which makes concurrent rotations of the same token resolve to
// exactly one winner even across server instances.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID uuid.UUID, replacement model.RefreshToken) error {
	if replacement.ID == uuid.Nil {
		replacement.ID = uuid.New()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rotate transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const revoke = `
        UPDATE refresh_tokens SET revoked_at = NOW(), replaced_by = $2, updated_at = NOW()
        WHERE id = $1 AND revoked_at IS NULL
    `
	tag, err := tx.Exec(ctx, revoke, oldID, replacement.ID)
	if err != nil {
		return fmt.Errorf("failed to revoke old refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTokenRevoked
	}

	const insert = `
        INSERT INTO refresh_tokens (
            id, user_id, token_hash, fingerprint, issued_at, expires_at, revoked_at, replaced_by, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,NULL,NULL,NOW(),NOW())
    `
	_, err = tx.Exec(ctx, insert,
		replacement.ID, replacement.UserID, replacement.TokenHash, replacement.Fingerprint,
		replacement.IssuedAt, replacement.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create replacement refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rotate transaction: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeByID(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE refresh_tokens SET revoked_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `
        UPDATE refresh_tokens SET revoked_at = NOW(), updated_at = NOW()
        WHERE user_id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	return nil
}

// DeleteExpired purges records whose lifetime ended before the given
// instant. Correctness never depends on this running; expiry and
// revocation are checked at verification time.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)`

	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
