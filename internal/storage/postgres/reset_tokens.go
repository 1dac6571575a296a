package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finflow/internal/storage"

	"github.com/jackc/pgx/v5"
)

func (s *Storage) SaveResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	const op = "storage.postgres.SaveResetToken"

	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3);
	`

	if _, err := s.pool.Exec(ctx, query, userID, token, expiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConsumeResetToken redeems an unused, unexpired reset token and updates
// the owner's password in one transaction. The conditional UPDATE on the
// used flag is what closes the race between concurrent redemptions: only
// one of them sees the row with used = FALSE.
func (s *Storage) ConsumeResetToken(ctx context.Context, token string, passHash []byte) (int64, error) {
	const op = "storage.postgres.ConsumeResetToken"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer tx.Rollback(ctx)

	consume := `
		UPDATE password_reset_tokens
		SET used = TRUE
		WHERE token = $1 AND used = FALSE AND expires_at > now()
		RETURNING user_id;
	`

	var userID int64
	if err := tx.QueryRow(ctx, consume, token).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrResetTokenNotFound
		}

		return 0, fmt.Errorf("%s: failed to consume token: %w", op, err)
	}

	update := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2;`

	if _, err := tx.Exec(ctx, update, string(passHash), userID); err != nil {
		return 0, fmt.Errorf("%s: failed to update password: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return userID, nil
}
