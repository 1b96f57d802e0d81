package poll

import (
	"context"
	"time"
)

// DefaultDuration is applied when a poll is created without an explicit
// expiry.
const DefaultDuration = 7 * 24 * time.Hour

type Poll struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	CreatorID   int64      `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Expired reports whether the poll is expired at the given instant. A poll
// is expired once the instant reaches or passes ExpiresAt. Creation always
// sets ExpiresAt; a nil value is treated as never-expiring.
func (p *Poll) Expired(at time.Time) bool {
	if p.ExpiresAt == nil {
		return false
	}
	return !at.Before(*p.ExpiresAt)
}

type Option struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, p *Poll, options []Option) (int64, error)
	GetByID(ctx context.Context, id int64) (*Poll, []Option, error)
	// List returns polls that are not yet expired at the given instant;
	// a nil instant returns everything.
	List(ctx context.Context, activeAt *time.Time) ([]Poll, error)
	AddOption(ctx context.Context, o *Option) error
	Delete(ctx context.Context, id int64) error
}
