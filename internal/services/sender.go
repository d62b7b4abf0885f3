package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/clientsync/internal/models"
)

// Sender identifies who an outbound email is from.
type Sender struct {
	Email string
	Name  string
}

// SenderResolver looks up a user's email and display name, caching
// results for ttl so sending mail does not hit the database every time.
type SenderResolver struct {
	db    *gorm.DB
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	cache map[string]senderEntry
}

type senderEntry struct {
	sender    Sender
	expiresAt time.Time
}

func newSenderResolver(db *gorm.DB, ttl time.Duration, now func() time.Time) *SenderResolver {
	return &SenderResolver{db: db, ttl: ttl, now: now, cache: make(map[string]senderEntry)}
}

// Resolve returns the sender for userID. A user without an email yields
// ErrNotFound.
func (r *SenderResolver) Resolve(ctx context.Context, userID string) (Sender, error) {
	r.mu.RLock()
	entry, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.sender, nil
	}

	var u models.User
	err := r.db.WithContext(ctx).Select("id", "email", "name").Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && u.Email == "") {
		return Sender{}, ErrNotFound
	}
	if err != nil {
		return Sender{}, errors.Join(ErrStorage, err)
	}
	var p models.Profile
	name := u.Name
	if err := r.db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&p).Error; err == nil && p.ID != "" {
		name = p.DisplayName(name)
	}
	if name == "" {
		name = u.Email
	}
	sender := Sender{Email: u.Email, Name: name}

	r.mu.Lock()
	r.cache[userID] = senderEntry{sender: sender, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return sender, nil
}

// Invalidate drops userID from the cache.
func (r *SenderResolver) Invalidate(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

// ResolveSender returns the cached sender identity of userID.
func (s *DashboardService) ResolveSender(ctx context.Context, userID string) (Sender, error) {
	if userID == "" {
		return Sender{}, ErrNoSession
	}
	return s.senders.Resolve(ctx, userID)
}
