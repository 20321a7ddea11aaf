package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"novadrive/internal/auth"
	"novadrive/internal/repository"
)

const (
	tokenTTL          = time.Hour
	minPasswordLength = 8
)

type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateAdmin(ctx context.Context, email, password string) error
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	secret string
	now    func() time.Time
}

func NewAdminAuthService(repo repository.AdminAuthRepository, secret string) AdminAuthService {
	return &adminAuthService{repo: repo, secret: secret, now: time.Now}
}

func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, error) {
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return auth.IssueToken(s.secret, admin.ID, admin.Email, tokenTTL, s.now())
}

func (s *adminAuthService) CreateAdmin(ctx context.Context, email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid(ErrInvalidAdmin, "invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return invalid(ErrInvalidAdmin, "password must be at least %d characters", minPasswordLength)
	}
	if err := s.repo.CreateNewUser(ctx, email, password); err != nil {
		return fmt.Errorf("creating admin %s: %w", email, err)
	}
	return nil
}
