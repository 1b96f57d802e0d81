package worker

import (
	"context"
	"log/slog"

	"online-poll-system/internal/metrics"
)

type VoteEvent struct {
	PollID   int64
	OptionID int64
	UserID   int64
}

// StatsWorker consumes accepted-vote events off the request path and feeds
// the vote counter. Handlers send non-blocking, so a full channel drops
// events rather than stalling a request.
type StatsWorker struct {
	Ch <-chan VoteEvent
}

func NewStatsWorker(ch <-chan VoteEvent) *StatsWorker {
	return &StatsWorker{Ch: ch}
}

func (w *StatsWorker) Run(ctx context.Context) {
	slog.Info("stats worker started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("stats worker stopped")
			return
		case ev := <-w.Ch:
			metrics.IncVote()
			slog.Debug("vote event",
				"poll_id", ev.PollID,
				"option_id", ev.OptionID,
				"user_id", ev.UserID,
			)
		}
	}
}
