package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/validation"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SignupInput registers a new account.
type SignupInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegisterUser creates a user with a bcrypt-hashed password and an empty
// profile.
func (s *DashboardService) RegisterUser(ctx context.Context, in SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.MinLength("password", in.Password, MinPasswordLength, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	u := &models.User{Email: email, Name: strings.TrimSpace(in.Name), Password: string(hash), CreatedAt: now, UpdatedAt: now}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return s.storageErr("signup: lookup", "", err)
		}
		if n > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(u).Error; err != nil {
			return s.storageErr("signup: create user", "", err)
		}
		p := &models.Profile{ID: u.ID, FullName: nullIfEmpty(u.Name), CreatedAt: now, UpdatedAt: now}
		if err := tx.Create(p).Error; err != nil {
			return s.storageErr("signup: create profile", u.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks an email/password pair.
func (s *DashboardService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, s.storageErr("login", "", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// UserExists reports whether id names a stored user. It backs the session
// verifier.
func (s *DashboardService) UserExists(ctx context.Context, id string) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		s.log.Warn("user lookup failed", zap.String("user_id", id), zap.Error(err))
		return false
	}
	return n > 0
}
