package vote

import (
	"context"
	"time"
)

type Vote struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	OptionID  int64     `json:"option_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository is the durable vote store. Create must report a violation of
// the (user_id, poll_id) uniqueness constraint as ErrAlreadyVoted; that
// constraint is the final arbiter under concurrent casts.
type Repository interface {
	Create(ctx context.Context, v *Vote) error
	GetByUserAndPoll(ctx context.Context, userID, pollID int64) (*Vote, error)
	DeleteByUserAndPoll(ctx context.Context, userID, pollID int64) error
	// CountByPoll returns votes per option for the poll in one grouped
	// query, plus the total.
	CountByPoll(ctx context.Context, pollID int64) (map[int64]int64, int64, error)
}

type OptionResult struct {
	OptionID   int64  `json:"option_id"`
	Text       string `json:"text"`
	VotesCount int64  `json:"votes_count"`
}

type PollResults struct {
	PollID     int64          `json:"poll_id"`
	TotalVotes int64          `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}
