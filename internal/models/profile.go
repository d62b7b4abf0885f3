package models

import "time"

// Profile holds display settings for a user. Its ID equals the user's ID.
type Profile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FullName    *string   `gorm:"size:255" json:"full_name"`
	CompanyName *string   `gorm:"size:255" json:"company_name"`
	Phone       *string   `gorm:"size:50" json:"phone"`
	Bio         *string   `gorm:"type:text" json:"bio"`
	AvatarURL   *string   `gorm:"size:512" json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetUserID implements policy.Ownable.
func (p *Profile) GetUserID() string { return p.ID }

// DisplayName returns the full name when set, otherwise fallback.
func (p *Profile) DisplayName(fallback string) string {
	if p != nil && p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return fallback
}
