package repository

import (
	"context"
	"errors"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDBNotReady = errors.New("database not initialized")

type UserRepository interface {
	Upsert(ctx context.Context, u *model.User) error
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	SetFCMToken(ctx context.Context, uid, token string) error
	SetDB(db *gorm.DB)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, u *model.User) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "email", "phone", "photo_url",
				"bank_account_name", "bank_account_number", "bank_code",
			}),
		}).
		Create(u).Error
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) SetFCMToken(ctx context.Context, uid, token string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("uid = ?", uid).
		Update("fcm_token", token).Error
}

func (r *userRepository) SetDB(db *gorm.DB) {
	r.db = db
}
