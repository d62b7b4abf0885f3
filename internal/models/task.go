package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus tracks a task from pending through completion.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// Open reports whether the task still needs work.
func (s TaskStatus) Open() bool { return s == TaskPending || s == TaskInProgress }

// Task is a dated follow-up action tied to one client. DueDate is stored
// as YYYY-MM-DD text so lexical order is chronological order.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"size:36;not null;index" json:"user_id"`
	ClientID    string     `gorm:"size:36;not null;index" json:"client_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	DueDate     string     `gorm:"size:10;not null;index" json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Client *ClientSummary `gorm:"-" json:"clients,omitempty"`
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// GetUserID implements policy.Ownable.
func (t *Task) GetUserID() string { return t.UserID }
