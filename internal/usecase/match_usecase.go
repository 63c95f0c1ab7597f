package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"jobmatch/internal/docstore"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/matching"
	"jobmatch/internal/domain/seeker"
	"jobmatch/internal/logger"
	"jobmatch/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateMatchInput struct {
	JobID       string
	JobSeekerID string
	// EmployerID defaults to the posting's employer; a different value is
	// rejected.
	EmployerID string
}

type ListMatchesParams struct {
	Status match.Status
	Limit  int
}

type MatchUsecase interface {
	CreateMatch(ctx context.Context, in CreateMatchInput) (m match.Result, created bool, err error)
	UpdateMatchStatus(ctx context.Context, id string, status match.Status) (match.Result, error)
	GetMatch(ctx context.Context, id string) (match.Result, error)
	ScorePair(ctx context.Context, jobID, seekerID string) (matching.Result, error)
	ListByJobSeeker(ctx context.Context, seekerID string, params ListMatchesParams) ([]match.Result, error)
	ListByEmployer(ctx context.Context, employerID string, params ListMatchesParams) ([]match.Result, error)
	ListByJob(ctx context.Context, jobID string, params ListMatchesParams) ([]match.Result, error)
}

type Matches struct {
	jobs     *docstore.Repository[job.Posting]
	seekers  *docstore.Repository[seeker.Profile]
	matches  *docstore.Repository[match.Result]
	cache    SearchCache
	lockTTL  time.Duration
	notifier MatchNotifier
	logger   *zap.Logger
}

type MatchOption func(*Matches)

// WithPairLock guards match creation with a cache lock on stores that
// cannot enforce uniqueness themselves.
func WithPairLock(cache SearchCache, ttl time.Duration) MatchOption {
	return func(u *Matches) {
		u.cache = cache
		u.lockTTL = ttl
	}
}

func WithNotifier(n MatchNotifier) MatchOption {
	return func(u *Matches) {
		if n != nil {
			u.notifier = n
		}
	}
}

func NewMatchUsecase(store docstore.Store, log *zap.Logger, opts ...MatchOption) *Matches {
	u := &Matches{
		jobs:     NewJobRepository(store),
		seekers:  NewSeekerRepository(store),
		matches:  NewMatchRepository(store),
		lockTTL:  30 * time.Second,
		notifier: nopNotifier{},
		logger:   logger.OrNop(log).Named("matches"),
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// CreateMatch scores the pair and records a pending match. It is
// idempotent: an existing match for the pair is returned with
// created=false.
//
// Uniqueness is enforced by the store when it implements
// docstore.UniqueCreator. Otherwise a check-then-act guarded by a cache
// lock is used, and a concurrent creation in flight yields
// domain.ErrDuplicateMatch.
func (u *Matches) CreateMatch(ctx context.Context, in CreateMatchInput) (match.Result, bool, error) {
	in.JobID = strings.TrimSpace(in.JobID)
	in.JobSeekerID = strings.TrimSpace(in.JobSeekerID)
	in.EmployerID = strings.TrimSpace(in.EmployerID)
	if in.JobID == "" || in.JobSeekerID == "" {
		return match.Result{}, false, domain.InvalidInputf("jobId and jobSeekerId are required")
	}

	p, err := u.jobs.Get(ctx, in.JobID)
	if err != nil {
		return match.Result{}, false, storeErr("getJob", err)
	}
	s, err := u.seekers.Get(ctx, in.JobSeekerID)
	if err != nil {
		return match.Result{}, false, storeErr("getProfile", err)
	}
	if in.EmployerID == "" {
		in.EmployerID = p.EmployerID
	} else if in.EmployerID != p.EmployerID {
		return match.Result{}, false, domain.InvalidInputf("employer %q does not own job %q", in.EmployerID, in.JobID)
	}

	scored, err := matching.Score(p, s)
	if err != nil {
		return match.Result{}, false, err
	}

	rec := match.Result{
		JobID:       p.ID,
		JobSeekerID: s.ID,
		EmployerID:  in.EmployerID,
		Score:       scored.Score,
		Criteria:    scored.Criteria,
		Status:      match.StatusPending,
	}
	pair := match.PairKey(p.ID, s.ID)

	out, created, supported, err := u.matches.CreateUnique(ctx, pair, rec)
	if supported {
		if err != nil {
			return match.Result{}, false, storeErr("createUnique", err)
		}
		if created {
			u.created(out)
		}
		return out, created, nil
	}

	return u.createGuarded(ctx, pair, rec)
}

func (u *Matches) createGuarded(ctx context.Context, pair string, rec match.Result) (match.Result, bool, error) {
	if existing, found, err := u.findPair(ctx, rec.JobID, rec.JobSeekerID); err != nil || found {
		return existing, false, err
	}

	if u.cache != nil && u.cache.Available() {
		lockKey := MatchLockKey(pair)
		owner := uuid.NewString()
		acquired, err := u.cache.SetIfNotExists(ctx, lockKey, owner, u.lockTTL)
		switch {
		case err != nil:
			u.logger.Warn("match pair lock failed, creating unguarded", zap.String("pair", pair), zap.Error(err))
		case !acquired:
			existing, found, err := u.findPair(ctx, rec.JobID, rec.JobSeekerID)
			if err != nil || found {
				return existing, false, err
			}
			return match.Result{}, false, domain.ErrDuplicateMatch
		default:
			defer func() {
				released, err := u.cache.DeleteIfValue(context.WithoutCancel(ctx), lockKey, owner)
				if err != nil {
					u.logger.Warn("match pair unlock failed", zap.String("pair", pair), zap.Error(err))
					return
				}
				if !released {
					u.logger.Warn("match pair lock expired before unlock", zap.String("pair", pair))
				}
			}()
			// Another creator may have finished between the first check
			// and taking the lock.
			if existing, found, err := u.findPair(ctx, rec.JobID, rec.JobSeekerID); err != nil || found {
				return existing, false, err
			}
		}
	}

	out, err := u.matches.Create(ctx, rec)
	if err != nil {
		return match.Result{}, false, storeErr("createMatch", err)
	}
	u.created(out)
	return out, true, nil
}

func (u *Matches) findPair(ctx context.Context, jobID, seekerID string) (match.Result, bool, error) {
	found, err := u.matches.FindWhere(ctx, []docstore.Condition{
		docstore.Eq("jobId", jobID),
		docstore.Eq("jobSeekerId", seekerID),
	}, 1)
	if err != nil {
		return match.Result{}, false, storeErr("queryEquality", err)
	}
	if len(found) == 0 {
		return match.Result{}, false, nil
	}
	return found[0], true, nil
}

func (u *Matches) created(m match.Result) {
	u.logger.Info("match created",
		zap.String("match_id", m.ID),
		zap.String("job_id", m.JobID),
		zap.String("seeker_id", m.JobSeekerID),
		zap.Float64("score", m.Score),
	)
	u.notifier.MatchCreated(m)
}

// UpdateMatchStatus applies a status transition. Only pending matches can
// move, to accepted or rejected.
func (u *Matches) UpdateMatchStatus(ctx context.Context, id string, status match.Status) (match.Result, error) {
	to, err := match.ParseStatus(string(status))
	if err != nil {
		return match.Result{}, err
	}
	cur, err := u.GetMatch(ctx, id)
	if err != nil {
		return match.Result{}, err
	}
	if !match.IsTransitionAllowed(cur.Status, to) {
		return match.Result{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, cur.Status, to)
	}

	fields := map[string]any{"status": to}
	out, applied, ok, err := u.matches.UpdateIf(ctx, id, []docstore.Condition{docstore.Eq("status", cur.Status)}, fields)
	if err != nil {
		return match.Result{}, storeErr("updateMatchStatus", err)
	}
	if !ok {
		// Stores without conditional writes fall back to check-then-write.
		if out, err = u.matches.Update(ctx, id, fields); err != nil {
			return match.Result{}, storeErr("updateMatchStatus", err)
		}
	} else if !applied {
		return match.Result{}, fmt.Errorf("%w: %s changed concurrently", domain.ErrInvalidTransition, cur.Status)
	}
	u.logger.Info("match status changed",
		zap.String("match_id", id),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(to)),
	)
	u.notifier.MatchStatusChanged(out, cur.Status)
	return out, nil
}

func (u *Matches) GetMatch(ctx context.Context, id string) (match.Result, error) {
	m, err := u.matches.Get(ctx, id)
	if err != nil {
		return match.Result{}, storeErr("getMatch", err)
	}
	return m, nil
}

// ScorePair scores a posting against a seeker without recording anything.
func (u *Matches) ScorePair(ctx context.Context, jobID, seekerID string) (matching.Result, error) {
	p, err := u.jobs.Get(ctx, jobID)
	if err != nil {
		return matching.Result{}, storeErr("getJob", err)
	}
	s, err := u.seekers.Get(ctx, seekerID)
	if err != nil {
		return matching.Result{}, storeErr("getProfile", err)
	}
	return matching.Score(p, s)
}

func (u *Matches) ListByJobSeeker(ctx context.Context, seekerID string, params ListMatchesParams) ([]match.Result, error) {
	return u.list(ctx, "jobSeekerId", seekerID, params)
}

func (u *Matches) ListByEmployer(ctx context.Context, employerID string, params ListMatchesParams) ([]match.Result, error) {
	return u.list(ctx, "employerId", employerID, params)
}

func (u *Matches) ListByJob(ctx context.Context, jobID string, params ListMatchesParams) ([]match.Result, error) {
	return u.list(ctx, "jobId", jobID, params)
}

// list returns the newest Limit matches, newest first.
func (u *Matches) list(ctx context.Context, field, value string, params ListMatchesParams) ([]match.Result, error) {
	if strings.TrimSpace(value) == "" {
		return nil, domain.InvalidInputf("%s is required", field)
	}
	if params.Limit <= 0 {
		return nil, domain.InvalidInputf("limit must be > 0, got %d", params.Limit)
	}
	conds := []docstore.Condition{docstore.Eq(field, value)}
	if params.Status != "" {
		st, err := match.ParseStatus(string(params.Status))
		if err != nil {
			return nil, err
		}
		conds = append(conds, docstore.Eq("status", st))
	}

	// Stores return oldest first, so every match is read before sorting.
	var out []match.Result
	for fetch := search.ScaleLimit(params.Limit, candidateOverfetch); ; fetch = search.ScaleLimit(fetch, 2) {
		page, err := u.matches.FindWhere(ctx, conds, fetch)
		if err != nil {
			return nil, storeErr("queryEquality", err)
		}
		out = page
		if len(page) < fetch || fetch == math.MaxInt {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}
