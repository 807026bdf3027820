package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ethioshop/ethioshop-backend/internal/model"
	"github.com/ethioshop/ethioshop-backend/internal/repository"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	DisplayName       string
	Email             string
	Phone             string
	PhotoURL          *string
	BankAccountName   string
	BankAccountNumber string
	BankCode          string
}

type UserService interface {
	UpdateProfile(ctx context.Context, uid string, in UpdateProfileInput) (*model.User, error)
	RegisterFCMToken(ctx context.Context, uid, token string) error
	Get(ctx context.Context, uid string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) UpdateProfile(ctx context.Context, uid string, in UpdateProfileInput) (*model.User, error) {
	if uid == "" {
		return nil, errors.New("uid is required")
	}
	u := &model.User{
		UID:               uid,
		DisplayName:       strings.TrimSpace(in.DisplayName),
		Email:             strings.TrimSpace(in.Email),
		Phone:             strings.TrimSpace(in.Phone),
		PhotoURL:          in.PhotoURL,
		BankAccountName:   strings.TrimSpace(in.BankAccountName),
		BankAccountNumber: strings.TrimSpace(in.BankAccountNumber),
		BankCode:          strings.TrimSpace(in.BankCode),
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return s.repo.FindByUID(ctx, uid)
}

func (s *userService) RegisterFCMToken(ctx context.Context, uid, token string) error {
	if uid == "" {
		return errors.New("uid is required")
	}
	if token == "" {
		return errors.New("token is required")
	}
	if _, err := s.repo.FindByUID(ctx, uid); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.repo.Upsert(ctx, &model.User{UID: uid}); err != nil {
			return err
		}
	}
	return s.repo.SetFCMToken(ctx, uid, token)
}

func (s *userService) Get(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
