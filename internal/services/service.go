// Package services is the persistence gateway for ClientSync. Every
// operation is scoped to the calling user's id; an empty id yields an empty
// result rather than an error, while storage failures are logged and
// returned wrapped in ErrStorage so callers can tell "nothing" from "failed".
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/clientsync/gate"
	"github.com/diewo77/clientsync/internal/policy"
	"github.com/diewo77/clientsync/validation"
)

var (
	ErrStorage          = errors.New("storage error")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation failed")
	ErrNoSession        = errors.New("user not authenticated")
	ErrIdentityMismatch = errors.New("cannot change another user's password")
)

// ValidationError carries per-field violation codes.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DefaultRetention is how long an inactive client is kept before the
// passive cleanup policy removes it.
const DefaultRetention = 30 * 24 * time.Hour

// DashboardService is the single gateway to clients, tasks and profiles.
type DashboardService struct {
	db            *gorm.DB
	log           *zap.Logger
	gate          *gate.Gate[string]
	now           func() time.Time
	retention     time.Duration
	cleanupOnRead bool
	avatars       AvatarStore
	senders       *SenderResolver
}

// Option configures a DashboardService.
type Option func(*DashboardService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) { s.now = now }
}

// WithRetention sets the age after which inactive clients are purged.
func WithRetention(d time.Duration) Option {
	return func(s *DashboardService) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithCleanupOnRead makes DashboardStats run the passive cleanup first.
func WithCleanupOnRead(enabled bool) Option {
	return func(s *DashboardService) { s.cleanupOnRead = enabled }
}

// WithAvatarStore sets where uploaded avatars are written.
func WithAvatarStore(store AvatarStore) Option {
	return func(s *DashboardService) { s.avatars = store }
}

// WithSenderTTL sets how long resolved senders are cached.
func WithSenderTTL(ttl time.Duration) Option {
	return func(s *DashboardService) { s.senders.ttl = ttl }
}

// NewDashboardService wires the gateway around an open connection.
func NewDashboardService(db *gorm.DB, log *zap.Logger, opts ...Option) *DashboardService {
	s := &DashboardService{
		db:        db,
		log:       log.Named("services"),
		gate:      policy.NewGate(),
		now:       time.Now,
		retention: DefaultRetention,
	}
	s.senders = newSenderResolver(db, 5*time.Minute, func() time.Time { return s.now() })
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retention returns the passive cleanup age threshold.
func (s *DashboardService) Retention() time.Duration { return s.retention }

func (s *DashboardService) clock() time.Time { return s.now().UTC() }

func (s *DashboardService) storageErr(op, userID string, err error) error {
	s.log.Error("storage operation failed", zap.String("op", op), zap.String("user_id", userID), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(term))) + "%"
}
