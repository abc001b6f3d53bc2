package db

import (
	"context"
	"errors"

	"cspwatch/internal/domain"

	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Insert(ctx context.Context, prefix, hash string) error {
	model := APITokenModel{Prefix: prefix, Hash: hash}
	return r.db.WithContext(ctx).Create(&model).Error
}

// ExistsByHash is the membership check behind every authenticated
// request. Absence is not an error.
func (r *TokenRepository) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var model APITokenModel
	err := r.db.WithContext(ctx).Select("id").First(&model, "hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *TokenRepository) List(ctx context.Context) ([]domain.Token, error) {
	var models []APITokenModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	tokens := make([]domain.Token, 0, len(models))
	for _, m := range models {
		tokens = append(tokens, domain.Token{ID: m.ID, Prefix: m.Prefix})
	}
	return tokens, nil
}

// Delete removes a token row by id. Deleting a missing id succeeds.
func (r *TokenRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&APITokenModel{}, id).Error
}
