package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/clientsync/gate"
	"github.com/diewo77/clientsync/internal/models"
	"github.com/diewo77/clientsync/validation"
)

// MinPasswordLength is enforced on signup and password change.
const MinPasswordLength = 8

var avatarExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// ProfileInput updates a profile; nil fields are left unchanged and empty
// strings clear the value.
type ProfileInput struct {
	FullName    *string `json:"full_name"`
	CompanyName *string `json:"company_name"`
	Phone       *string `json:"phone"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// GetProfile loads the user's profile. A user without one yields ErrNotFound.
func (s *DashboardService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	var p models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, s.storageErr("get profile", userID, err)
	}
	if err := s.gate.Authorize(ctx, userID, gate.ActionView, gate.ResourceProfile, &p); err != nil {
		return nil, ErrForbidden
	}
	return &p, nil
}

// UpdateProfile upserts the profile keyed by the user's id.
func (s *DashboardService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	p, err := s.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		p = &models.Profile{ID: userID, CreatedAt: s.clock()}
	case err != nil:
		return nil, err
	}
	apply := func(dst **string, v *string) {
		if v != nil {
			*dst = nullIfEmpty(*v)
		}
	}
	apply(&p.FullName, in.FullName)
	apply(&p.CompanyName, in.CompanyName)
	apply(&p.Phone, in.Phone)
	apply(&p.Bio, in.Bio)
	apply(&p.AvatarURL, in.AvatarURL)
	p.UpdatedAt = s.clock()

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "company_name", "phone", "bio", "avatar_url", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return nil, s.storageErr("upsert profile", userID, err)
	}
	s.senders.Invalidate(userID)
	return p, nil
}

// UploadAvatar stores an image as "<userID>-<unix ms><ext>" and records its
// URL on the profile.
func (s *DashboardService) UploadAvatar(ctx context.Context, userID, filename string, r io.Reader) (string, error) {
	if userID == "" {
		return "", ErrNoSession
	}
	if s.avatars == nil {
		return "", errors.New("avatar storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarExts[ext] {
		return "", &ValidationError{Violations: validation.Violations{"avatar": "unsupported_type"}}
	}
	name := fmt.Sprintf("%s-%d%s", userID, s.clock().UnixMilli(), ext)
	url, err := s.avatars.Put(ctx, name, r)
	if errors.Is(err, ErrAvatarTooLarge) {
		return "", &ValidationError{Violations: validation.Violations{"avatar": "too_large"}}
	}
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	if _, err := s.UpdateProfile(ctx, userID, ProfileInput{AvatarURL: &url}); err != nil {
		return "", err
	}
	return url, nil
}

// UpdatePassword changes targetUserID's password. Only the signed-in user
// may change their own password; a mismatch is rejected before any write.
func (s *DashboardService) UpdatePassword(ctx context.Context, actingUserID, targetUserID, newPassword string) error {
	if actingUserID == "" {
		return ErrNoSession
	}
	if actingUserID != targetUserID {
		return ErrIdentityMismatch
	}
	v := validation.Violations{}
	validation.MinLength("password", newPassword, MinPasswordLength, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", targetUserID).
		Updates(map[string]any{"password": string(hash), "updated_at": s.clock()})
	if res.Error != nil {
		return s.storageErr("update password", actingUserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
