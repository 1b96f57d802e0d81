package poll

import (
	"context"
	"errors"
	"time"

	"online-poll-system/internal/cache"
)

var (
	ErrPollExpired = errors.New("poll has expired")
)

type Service struct {
	repo  Repository
	cache cache.Store
}

func NewService(repo Repository, store cache.Store) *Service {
	return &Service{repo: repo, cache: store}
}

// Create persists a poll with its initial options. ExpiresAt defaults to
// CreatedAt plus DefaultDuration so it is never unset at rest.
func (s *Service) Create(ctx context.Context, p *Poll, options []Option) (int64, error) {
	if p.Title == "" {
		return 0, errors.New("title required")
	}
	if len(options) < 2 {
		return 0, errors.New("poll must have at least 2 options")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.ExpiresAt == nil {
		exp := p.CreatedAt.Add(DefaultDuration)
		p.ExpiresAt = &exp
	}
	return s.repo.Create(ctx, p, options)
}

func (s *Service) Get(ctx context.Context, id int64) (*Poll, []Option, error) {
	return s.repo.GetByID(ctx, id)
}

// ListActive returns polls still open at the given instant.
func (s *Service) ListActive(ctx context.Context, at time.Time) ([]Poll, error) {
	return s.repo.List(ctx, &at)
}

// AddOption appends an option to an unexpired poll and drops the cached
// results for that poll, since any cached aggregate no longer lists every
// option.
func (s *Service) AddOption(ctx context.Context, pollID int64, text string, at time.Time) (*Option, error) {
	if text == "" {
		return nil, errors.New("option text required")
	}

	p, _, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if p.Expired(at) {
		return nil, ErrPollExpired
	}

	o := &Option{PollID: pollID, Text: text}
	if err := s.repo.AddOption(ctx, o); err != nil {
		return nil, err
	}

	s.cache.Delete(cache.PollResultsKey(pollID))
	return o, nil
}

// Delete removes a poll; options and votes go with it via storage cascade.
// The cached aggregate is dropped as well. Stale user_vote entries age out
// within their TTL.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(cache.PollResultsKey(id))
	return nil
}
