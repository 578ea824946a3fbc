package repositories

import (
	"context"
	"database/sql"
	"errors"
)

// DeviceTokenRepository stores FCM registration tokens per user for
// fire-and-forget pushes.
type DeviceTokenRepository struct {
	DB *sql.DB
}

func (r *DeviceTokenRepository) SaveToken(ctx context.Context, userID int, token string) error {
	_, err := r.DB.ExecContext(ctx, `
                INSERT INTO device_tokens (user_id, token) VALUES (?, ?)
                ON DUPLICATE KEY UPDATE token = VALUES(token)`, userID, token)
	return err
}

func (r *DeviceTokenRepository) GetToken(ctx context.Context, userID int) (string, error) {
	var token string
	err := r.DB.QueryRowContext(ctx, `SELECT token FROM device_tokens WHERE user_id = ?`, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return token, err
}
