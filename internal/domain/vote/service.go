package vote

import (
	"context"
	"errors"
	"time"

	"online-poll-system/internal/cache"
	"online-poll-system/internal/domain/poll"
	"online-poll-system/internal/metrics"
)

var (
	ErrAlreadyVoted   = errors.New("user already voted in this poll")
	ErrOptionNotFound = errors.New("option not found in poll")
	ErrVoteNotFound   = errors.New("vote not found")
)

type Service struct {
	votes Repository
	polls poll.Repository
	cache cache.Store
}

func NewService(votes Repository, polls poll.Repository, store cache.Store) *Service {
	return &Service{votes: votes, polls: polls, cache: store}
}

// Cast records a single vote. Validation order: expiry gate, option
// membership, then the insert itself. A pre-existing vote surfaces as
// ErrAlreadyVoted from the storage uniqueness constraint; there is no
// advisory pre-check, since two racing casts would both pass it.
//
// The durable write happens before any cache mutation. Afterwards the
// user's vote is cached and the poll's cached results are dropped; the
// next reader recomputes them.
func (s *Service) Cast(ctx context.Context, pollID, optionID, userID int64, now time.Time) (*Vote, error) {
	p, opts, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if p.Expired(now) {
		return nil, poll.ErrPollExpired
	}

	if !optionInPoll(opts, optionID) {
		return nil, ErrOptionNotFound
	}

	v := &Vote{
		PollID:   pollID,
		OptionID: optionID,
		UserID:   userID,
	}
	if err := s.votes.Create(ctx, v); err != nil {
		return nil, err
	}

	s.cache.Set(cache.UserVoteKey(userID, pollID), v, cache.UserVoteTTL)
	s.cache.Delete(cache.PollResultsKey(pollID))

	return v, nil
}

// UserVote looks up the caller's vote on a poll, read-through cached for
// five minutes.
func (s *Service) UserVote(ctx context.Context, userID, pollID int64) (*Vote, error) {
	key := cache.UserVoteKey(userID, pollID)
	if cached, ok := s.cache.Get(key); ok {
		if v, ok := cached.(*Vote); ok {
			metrics.IncCache("user_vote", true)
			return v, nil
		}
	}
	metrics.IncCache("user_vote", false)

	v, err := s.votes.GetByUserAndPoll(ctx, userID, pollID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, v, cache.UserVoteTTL)
	return v, nil
}

// Retract deletes the caller's vote and invalidates both cache entries
// touched by it.
func (s *Service) Retract(ctx context.Context, userID, pollID int64) error {
	if err := s.votes.DeleteByUserAndPoll(ctx, userID, pollID); err != nil {
		return err
	}
	s.cache.Delete(cache.UserVoteKey(userID, pollID))
	s.cache.Delete(cache.PollResultsKey(pollID))
	return nil
}

// Results returns per-option vote counts for a poll, cached for one
// minute. On a miss the counts come from a single grouped query; options
// without votes are reported with a zero count. Concurrent recomputation
// is harmless: storage is the source, the last writer to the cache wins.
func (s *Service) Results(ctx context.Context, pollID int64) (*PollResults, error) {
	key := cache.PollResultsKey(pollID)
	if cached, ok := s.cache.Get(key); ok {
		if res, ok := cached.(*PollResults); ok {
			metrics.IncCache("poll_results", true)
			return res, nil
		}
	}
	metrics.IncCache("poll_results", false)

	_, opts, err := s.polls.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	counts, total, err := s.votes.CountByPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	res := &PollResults{
		PollID:     pollID,
		TotalVotes: total,
		Options:    make([]OptionResult, 0, len(opts)),
	}
	for _, o := range opts {
		res.Options = append(res.Options, OptionResult{
			OptionID:   o.ID,
			Text:       o.Text,
			VotesCount: counts[o.ID],
		})
	}

	s.cache.Set(key, res, cache.PollResultsTTL)
	return res, nil
}

func optionInPoll(opts []poll.Option, optionID int64) bool {
	for _, o := range opts {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
