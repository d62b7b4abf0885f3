package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientStatus is toggled by the user; inactive clients become eligible
// for cleanup.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s ClientStatus) Valid() bool { return s == ClientActive || s == ClientInactive }

// Client is a customer tracked by a user.
type Client struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	UserID    string       `gorm:"size:36;not null;index" json:"user_id"`
	Name      string       `gorm:"size:255;not null" json:"name"`
	Email     string       `gorm:"size:255;not null" json:"email"`
	Company   *string      `gorm:"size:255" json:"company"`
	Phone     *string      `gorm:"size:50" json:"phone"`
	Notes     *string      `gorm:"type:text" json:"notes"`
	Status    ClientStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// GetUserID implements policy.Ownable.
func (c *Client) GetUserID() string { return c.UserID }

// ClientSummary is the subset of client columns attached to task reads.
type ClientSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company"`
}
