package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MadridBabajev/ShoppingCart/internal/models"
)

func (r *GormRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

// ValidRefreshTokens loads the user's rows for which the presented value
// matches either the current token (unexpired) or the previous one inside
// its grace window.
func (r *GormRepo) ValidRefreshTokens(ctx context.Context, userID uuid.UUID, presented string, now time.Time) ([]models.RefreshToken, error) {
	var rows []models.RefreshToken
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(
			r.DB.Where("token = ? AND expires_at > ?", presented, now).
				Or("previous_token = ? AND previous_expires_at > ?", presented, now),
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Save(token).Error
}

// PurgeExpiredRefreshTokens removes rows whose current and previous values
// are both past expiration. Best effort, run on login.
func (r *GormRepo) PurgeExpiredRefreshTokens(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND expires_at < ?", userID, now).
		Where("previous_expires_at IS NULL OR previous_expires_at < ?", now).
		Delete(&models.RefreshToken{}).Error
}

// DeleteRefreshTokens removes every row whose current or previous value
// equals the given token and reports how many went away.
func (r *GormRepo) DeleteRefreshTokens(ctx context.Context, userID uuid.UUID, token string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("token = ? OR previous_token = ?", token, token).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
