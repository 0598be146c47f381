package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userhub/internal/model"
)

// TokenRepository manages the active-token rows attached to users.
type TokenRepository interface {
	Append(ctx context.Context, userID uuid.UUID, token string) error
	Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	Remove(ctx context.Context, userID uuid.UUID, token string) error
	RemoveAll(ctx context.Context, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Token, error)
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository builds a GORM-backed token repository.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Append(ctx context.Context, userID uuid.UUID, token string) error {
	row := &model.Token{UserID: userID, Token: token}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *tokenRepository) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Token{}).
		Where("user_id = ? AND token = ?", userID, token).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tokenRepository) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&model.Token{}).Error
}

func (r *tokenRepository) RemoveAll(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Token{}).Error
}

func (r *tokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Token, error) {
	var tokens []model.Token
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}
