package vote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"online-poll-system/internal/cache"
	"online-poll-system/internal/domain/poll"
)

type memoryPollRepo struct {
	mu         sync.Mutex
	polls      map[int64]*poll.Poll
	opts       map[int64][]poll.Option
	nextPollID int64
	nextOptID  int64
}

func newMemoryPollRepo() *memoryPollRepo {
	return &memoryPollRepo{
		polls:      make(map[int64]*poll.Poll),
		opts:       make(map[int64][]poll.Option),
		nextPollID: 1,
		nextOptID:  1,
	}
}

func (r *memoryPollRepo) Create(ctx context.Context, p *poll.Poll, options []poll.Option) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextPollID
	r.nextPollID++
	copyPoll := *p
	r.polls[p.ID] = &copyPoll

	cloned := make([]poll.Option, len(options))
	for i := range options {
		options[i].ID = r.nextOptID
		r.nextOptID++
		options[i].PollID = p.ID
		cloned[i] = options[i]
	}
	r.opts[p.ID] = cloned
	return p.ID, nil
}

func (r *memoryPollRepo) GetByID(ctx context.Context, id int64) (*poll.Poll, []poll.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return nil, nil, errors.New("poll not found")
	}
	copyPoll := *p
	copied := make([]poll.Option, len(r.opts[id]))
	copy(copied, r.opts[id])
	return &copyPoll, copied, nil
}

func (r *memoryPollRepo) List(ctx context.Context, activeAt *time.Time) ([]poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []poll.Poll{}
	for _, p := range r.polls {
		if activeAt != nil && p.Expired(*activeAt) {
			continue
		}
		res = append(res, *p)
	}
	return res, nil
}

func (r *memoryPollRepo) AddOption(ctx context.Context, o *poll.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[o.PollID]; !ok {
		return errors.New("poll not found")
	}
	o.ID = r.nextOptID
	r.nextOptID++
	r.opts[o.PollID] = append(r.opts[o.PollID], *o)
	return nil
}

func (r *memoryPollRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.polls, id)
	delete(r.opts, id)
	return nil
}

// memoryVoteRepo enforces (user, poll) uniqueness under a mutex the way the
// database constraint does.
type memoryVoteRepo struct {
	mu         sync.Mutex
	votes      map[string]*Vote
	nextID     int64
	countCalls int
	getCalls   int
}

func newMemoryVoteRepo() *memoryVoteRepo {
	return &memoryVoteRepo{votes: make(map[string]*Vote), nextID: 1}
}

func voteKey(userID, pollID int64) string {
	return fmt.Sprintf("%d:%d", userID, pollID)
}

func (r *memoryVoteRepo) Create(ctx context.Context, v *Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := voteKey(v.UserID, v.PollID)
	if _, exists := r.votes[key]; exists {
		return ErrAlreadyVoted
	}
	v.ID = r.nextID
	r.nextID++
	v.CreatedAt = time.Now()
	copyVote := *v
	r.votes[key] = &copyVote
	return nil
}

func (r *memoryVoteRepo) GetByUserAndPoll(ctx context.Context, userID, pollID int64) (*Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	v, ok := r.votes[voteKey(userID, pollID)]
	if !ok {
		return nil, ErrVoteNotFound
	}
	copyVote := *v
	return &copyVote, nil
}

func (r *memoryVoteRepo) DeleteByUserAndPoll(ctx context.Context, userID, pollID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := voteKey(userID, pollID)
	if _, ok := r.votes[key]; !ok {
		return ErrVoteNotFound
	}
	delete(r.votes, key)
	return nil
}

func (r *memoryVoteRepo) CountByPoll(ctx context.Context, pollID int64) (map[int64]int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countCalls++
	res := make(map[int64]int64)
	var total int64
	for _, v := range r.votes {
		if v.PollID != pollID {
			continue
		}
		res[v.OptionID]++
		total++
	}
	return res, total, nil
}

func (r *memoryVoteRepo) rowCount(pollID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.votes {
		if v.PollID == pollID {
			n++
		}
	}
	return n
}

func seedPoll(t *testing.T, repo *memoryPollRepo, expiresAt time.Time, optionTexts ...string) (int64, []poll.Option) {
	t.Helper()
	opts := make([]poll.Option, 0, len(optionTexts))
	for _, text := range optionTexts {
		opts = append(opts, poll.Option{Text: text})
	}
	p := &poll.Poll{Title: "test poll", CreatorID: 1, CreatedAt: time.Now(), ExpiresAt: &expiresAt}
	id, err := repo.Create(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("seed poll: %v", err)
	}
	return id, repo.opts[id]
}

func newTestService() (*Service, *memoryPollRepo, *memoryVoteRepo, *cache.Memory) {
	pollRepo := newMemoryPollRepo()
	voteRepo := newMemoryVoteRepo()
	store := cache.NewMemory()
	return NewService(voteRepo, pollRepo, store), pollRepo, voteRepo, store
}

func TestCastAndDuplicate(t *testing.T) {
	svc, pollRepo, voteRepo, _ := newTestService()
	ctx := context.Background()
	now := time.Now()

	pollID, opts := seedPoll(t, pollRepo, now.Add(time.Hour), "yes", "no")

	v, err := svc.Cast(ctx, pollID, opts[0].ID, 42, now)
	if err != nil {
		t.Fatalf("first cast: %v", err)
	}
	if v.ID == 0 || v.PollID != pollID || v.OptionID != opts[0].ID {
		t.Fatalf("unexpected vote %+v", v)
	}

	// second cast for any option must lose to the uniqueness constraint
	if _, err := svc.Cast(ctx, pollID, opts[1].ID, 42, now); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if n := voteRepo.rowCount(pollID); n != 1 {
		t.Fatalf("expected exactly one vote row, got %d", n)
	}
}

func TestCastExpiredPoll(t *testing.T) {
	svc, pollRepo, voteRepo, _ := newTestService()
	ctx := context.Background()
	now := time.Now()

	pollID, opts := seedPoll(t, pollRepo, now.Add(-time.Hour), "a", "b")

	if _, err := svc.Cast(ctx, pollID, opts[0].ID, 1, now); !errors.Is(err, poll.ErrPollExpired) {
		t.Fatalf("expected ErrPollExpired, got %v", err)
	}
	if n := voteRepo.rowCount(pollID); n != 0 {
		t.Fatalf("expected no vote rows, got %d", n)
	}
}

func TestCastExpiryBoundary(t *testing.T) {
	svc, pollRepo, _, _ := newTestService()
	ctx := context.Background()
	now := time.Now()

	// a poll is expired the instant now reaches expires_at
	pollID, opts := seedPoll(t, pollRepo, now, "a", "b")
	if _, err := svc.Cast(ctx, pollID, opts[0].ID, 1, now); !errors.Is(err, poll.ErrPollExpired) {
		t.Fatalf("expected ErrPollExpired at boundary, got %v", err)
	}
}

func TestCastOptionFromAnotherPoll(t *testing.T) {
	svc, pollRepo, voteRepo, _ := newTestService()
	ctx := context.Background()
	now := time.Now()

	pollA, _ := seedPoll(t, pollRepo, now.Add(time.Hour), "a1", "a2")
	_, optsB := seedPoll(t, pollRepo, now.Add(time.Hour), "b1", "b2")

	if _, err := svc.Cast(ctx, pollA, optsB[0].ID, 1, now); !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("expected ErrOptionNotFound, got %v", err)
	}
	if _, err := svc.Cast(ctx, pollA, 9999, 1, now); !errors.Is(err, ErrOptionNotFound) {
		t.Fatalf("expected ErrOptionNotFound for unknown option, got %v", err)
	}
	if n := voteRepo.rowCount(pollA); n != 0 {
		t.Fatalf("expected no vote rows, got %d", n)
	}
}

func TestConcurrentCastsSingleWinner(t *testing.T) {
	svc, pollRepo, voteRepo, _ := newTestService()
	ctx := context.Background()
	now := time.Now()

	pollID, opts := seedPoll(t, pollRepo, now.Add(time.Hour), "a", "b")

	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Cast(ctx, pollID, opts[i%2].ID, 7, now)
		}(i)
	}
	close(start)
	wg.Wait()

	var okCount, dupCount int
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, ErrAlreadyVoted):
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || dupCount != workers-1 {
		t.Fatalf("expected 1 winner and %d duplicates, got %d/%d", workers-1, okCount, dupCount)
	}
	if n := voteRepo.rowCount(pollID); n != 1 {
		t.Fatalf("expected exactly one vote row, got %d", n)
	}
}

func TestResultsAggregationAndCaching(t *testing.T) {
	svc, pollRepo, voteRepo, _ := newTestService()
	ctx := context.Background()
	now := time.Now()

	pollID, opts := seedPoll(t, pollRepo, now.Add(time.Hour), "A", "B", "C")

	if _, err := svc.Cast(ctx, pollID, opts[0].ID, 1, now); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	if _, err := svc.Cast(ctx, pollID, opts[1].ID, 2, now); err != nil {
		t.Fatalf("vote 2: %v", err)
	}

	res, err := svc.Results(ctx, pollID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res.TotalVotes != 2 {
		t.Fatalf("expected total 2, got %d", res.TotalVotes)
	}
	if len(res.Options) != 3 {
		t.Fatalf("expected all 3 options in results, got %d", len(res.Options))
	}
	byOption := make(map[int64]int64)
	for _, o := range res.Options {
		byOption[o.OptionID] = o.VotesCount
	}
	if byOption[opts[0].ID] != 1 || byOption[opts[1].ID] != 1 || byOption[opts[2].ID] != 0 {
		t.Fatalf("unexpected per-option counts %+v", byOption)
	}
	if voteRepo.countCalls != 1 {
		t.Fatalf("expected one aggregation query, got %d", voteRepo.countCalls)
	}

	// repeated read with no intervening votes is served from cache and
	// identical
	res2, err := svc.Results(ctx, pollID)
	if err != nil {
		t.Fatalf("cached results: %v", err)
	}
	if voteRepo.countCalls != 1 {
		t.Fatalf("expected cached read, aggregation ran %d times", voteRepo.countCalls)
	}
	if res2.TotalVotes != res.TotalVotes || len(res2.Options) != len(res.Options) {
		t.Fatalf("cached results differ: %+v vs %+v", res2, res)
	}

	// a new vote invalidates; the next read recomputes and sees it
	if _, err := svc.Cast(ctx, pollID, opts[2].ID, 3, now); err != nil {
		t.Fatalf("vote 3: %v", err)
	}
	res3, err := svc.Results(ctx, pollID)
	if err != nil {
		t.Fatalf("results after vote: %v", err)
	}
	if voteRepo.countCalls != 2 {
		t.Fatalf("expected recomputation after invalidation, got %d calls", voteRepo.countCalls)
	}
	if res3.TotalVotes != 3 {
		t.Fatalf("expected total 3, got %d", res3.TotalVotes)
	}
}

func TestAddOptionInvalidatesResults(t *testing.T) {
	svc, pollRepo, _, store := newTestService()
	pollSvc := poll.NewService(pollRepo, store)
	ctx := context.Background()
	now := time.Now()

	pollID, opts := seedPoll(t, pollRepo, now.Add(time.Hour), "A", "B")

	if _, err := svc.Cast(ctx, pollID, opts[0].ID, 1, now); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if _, err := svc.Results(ctx, pollID); err != nil {
		t.Fatalf("results: %v", err)
	}

	added, err := pollSvc.AddOption(ctx, pollID, "C", now)
	if err != nil {
		t.Fatalf("add option: %v", err)
	}

	res, err := svc.Results(ctx, pollID)
	if err != nil {
		t.Fatalf("results after add: %v", err)
	}
	if len(res.Options) != 3 {
		t.Fatalf("expected new option in results, got %d options", len(res.Options))
	}
	for _, o := range res.Options {
		if o.OptionID == added.ID && o.VotesCount != 0 {
			t.Fatalf("new option should have 0 votes, got %d", o.VotesCount)
		}
	}
}

func TestUserVoteReadThrough(t *testing.T) {
	svc, pollRepo, voteRepo, store := newTestService()
	ctx := context.Background()
	now := time.Now()

	pollID, opts := seedPoll(t, pollRepo, now.Add(time.Hour), "a", "b")

	cast, err := svc.Cast(ctx, pollID, opts[0].ID, 42, now)
	if err != nil {
		t.Fatalf("cast: %v", err)
	}

	// Cast warmed the cache, so the lookup must not touch storage
	got, err := svc.UserVote(ctx, 42, pollID)
	if err != nil {
		t.Fatalf("user vote: %v", err)
	}
	if got.ID != cast.ID {
		t.Fatalf("expected vote %d, got %d", cast.ID, got.ID)
	}
	if voteRepo.getCalls != 0 {
		t.Fatalf("expected cached lookup, storage hit %d times", voteRepo.getCalls)
	}

	// after the entry is gone, the lookup falls through and repopulates
	store.Delete(cache.UserVoteKey(42, pollID))
	if _, err := svc.UserVote(ctx, 42, pollID); err != nil {
		t.Fatalf("user vote after miss: %v", err)
	}
	if voteRepo.getCalls != 1 {
		t.Fatalf("expected one storage lookup, got %d", voteRepo.getCalls)
	}
	if _, err := svc.UserVote(ctx, 42, pollID); err != nil {
		t.Fatalf("user vote repopulated: %v", err)
	}
	if voteRepo.getCalls != 1 {
		t.Fatalf("expected repopulated cache, storage hit %d times", voteRepo.getCalls)
	}
}

func TestRetractInvalidatesBothEntries(t *testing.T) {
	svc, pollRepo, voteRepo, _ := newTestService()
	ctx := context.Background()
	now := time.Now()

	pollID, opts := seedPoll(t, pollRepo, now.Add(time.Hour), "a", "b")

	if _, err := svc.Cast(ctx, pollID, opts[0].ID, 42, now); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if _, err := svc.Results(ctx, pollID); err != nil {
		t.Fatalf("results: %v", err)
	}

	if err := svc.Retract(ctx, 42, pollID); err != nil {
		t.Fatalf("retract: %v", err)
	}
	if _, err := svc.UserVote(ctx, 42, pollID); !errors.Is(err, ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound after retract, got %v", err)
	}

	res, err := svc.Results(ctx, pollID)
	if err != nil {
		t.Fatalf("results after retract: %v", err)
	}
	if res.TotalVotes != 0 {
		t.Fatalf("expected 0 votes after retract, got %d", res.TotalVotes)
	}
	if voteRepo.countCalls != 2 {
		t.Fatalf("expected recomputation after retract, got %d calls", voteRepo.countCalls)
	}
}
