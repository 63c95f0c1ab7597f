package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"jobmatch/internal/docstore"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/logger"
	"jobmatch/internal/search"

	"go.uber.org/zap"
)

// candidateOverfetch sizes the first store read of a query that is followed
// by in-memory predicates.
const candidateOverfetch = 4

// fillCandidates calls read with a growing fetch size until it keeps at
// least want results or the store returns fewer than fetch rows. read
// reports the raw row count next to the results that passed its filters.
func fillCandidates[T any](want int, read func(fetch int) (raw int, kept []T, err error)) ([]T, error) {
	fetch := search.ScaleLimit(want, candidateOverfetch)
	for {
		raw, kept, err := read(fetch)
		if err != nil {
			return nil, err
		}
		if len(kept) >= want || raw < fetch || fetch == math.MaxInt {
			return kept, nil
		}
		fetch = search.ScaleLimit(fetch, 2)
	}
}

type NearbyParams struct {
	Center     geo.Point
	RadiusKm   float64
	Limit      int
	Exact      bool
	Predicates search.Predicates
}

type NearbyJob struct {
	Posting    job.Posting
	DistanceKm float64
}

// cachedNearbyJob carries the store-owned fields that job.Posting keeps out
// of its JSON form.
type cachedNearbyJob struct {
	ID         string      `json:"id"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Posting    job.Posting `json:"posting"`
	DistanceKm float64     `json:"distanceKm"`
}

type JobUsecase interface {
	CreateJob(ctx context.Context, p job.Posting) (job.Posting, error)
	GetJob(ctx context.Context, id string) (job.Posting, error)
	CloseJob(ctx context.Context, id string) (job.Posting, error)
	IncrementCounter(ctx context.Context, id, field string, delta int64) error
	SearchNearby(ctx context.Context, params NearbyParams) ([]NearbyJob, error)
}

type Jobs struct {
	jobs   *docstore.Repository[job.Posting]
	nearby *search.Nearby
	cache  SearchCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewJobUsecase(store docstore.Store, cache SearchCache, ttl time.Duration, log *zap.Logger) *Jobs {
	return &Jobs{
		jobs:   NewJobRepository(store),
		nearby: search.NewNearby(store),
		cache:  cache,
		ttl:    ttl,
		logger: logger.OrNop(log).Named("jobs"),
	}
}

func (u *Jobs) CreateJob(ctx context.Context, p job.Posting) (job.Posting, error) {
	p.Normalize()
	p.Status = job.StatusActive
	p.Counters = job.Counters{}
	if err := p.Validate(); err != nil {
		return job.Posting{}, err
	}

	created, err := u.jobs.Create(ctx, p)
	if err != nil {
		return job.Posting{}, storeErr("createJob", err)
	}
	u.invalidateNearby(ctx)
	u.logger.Info("job created", zap.String("job_id", created.ID), zap.String("employer_id", created.EmployerID))
	return created, nil
}

func (u *Jobs) GetJob(ctx context.Context, id string) (job.Posting, error) {
	p, err := u.jobs.Get(ctx, id)
	if err != nil {
		return job.Posting{}, storeErr("getJob", err)
	}
	return p, nil
}

// CloseJob marks a posting closed. Closing an already closed posting is a
// no-op.
func (u *Jobs) CloseJob(ctx context.Context, id string) (job.Posting, error) {
	p, err := u.GetJob(ctx, id)
	if err != nil {
		return job.Posting{}, err
	}
	if p.Status == job.StatusClosed {
		return p, nil
	}

	p, err = u.jobs.Update(ctx, id, map[string]any{"status": job.StatusClosed})
	if err != nil {
		return job.Posting{}, storeErr("closeJob", err)
	}
	u.invalidateNearby(ctx)
	u.logger.Info("job closed", zap.String("job_id", id))
	return p, nil
}

// IncrementCounter bumps a posting counter. Counters only grow, so delta
// must be positive. Cached searches are not invalidated for counter
// changes; they expire with the cache TTL.
func (u *Jobs) IncrementCounter(ctx context.Context, id, field string, delta int64) error {
	if delta < 1 {
		return domain.InvalidInputf("delta must be >= 1, got %d", delta)
	}
	path, err := job.CounterPath(field)
	if err != nil {
		return err
	}
	if err := u.jobs.Increment(ctx, id, path, delta); err != nil {
		return storeErr("atomicIncrement", err)
	}
	return nil
}

// SearchNearby finds postings around a point, applies predicates and
// returns at most Limit results. Exact searches drop box-corner false
// positives and order by distance.
func (u *Jobs) SearchNearby(ctx context.Context, params NearbyParams) ([]NearbyJob, error) {
	if params.Limit <= 0 {
		return nil, domain.InvalidInputf("limit must be > 0, got %d", params.Limit)
	}
	if err := params.Predicates.Validate(); err != nil {
		return nil, err
	}

	key := NearbyCacheKey(params)
	if u.cache != nil {
		var cached []cachedNearbyJob
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		switch {
		case err != nil:
			u.logger.Warn("nearby cache read failed", zap.String("key", key), zap.Error(err))
		case hit:
			u.logger.Debug("nearby cache hit", zap.String("key", key))
			out := make([]NearbyJob, 0, len(cached))
			for _, c := range cached {
				c.Posting.ID, c.Posting.CreatedAt, c.Posting.UpdatedAt = c.ID, c.CreatedAt, c.UpdatedAt
				out = append(out, NearbyJob{Posting: c.Posting, DistanceKm: c.DistanceKm})
			}
			return out, nil
		default:
			u.logger.Debug("nearby cache miss", zap.String("key", key))
		}
	}

	out, err := u.searchNearby(ctx, params)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		entries := make([]cachedNearbyJob, 0, len(out))
		for _, nj := range out {
			entries = append(entries, cachedNearbyJob{
				ID:         nj.Posting.ID,
				CreatedAt:  nj.Posting.CreatedAt,
				UpdatedAt:  nj.Posting.UpdatedAt,
				Posting:    nj.Posting,
				DistanceKm: nj.DistanceKm,
			})
		}
		if err := u.cache.SetJSON(ctx, key, entries, u.ttl); err != nil {
			u.logger.Warn("nearby cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (u *Jobs) searchNearby(ctx context.Context, params NearbyParams) ([]NearbyJob, error) {
	out, err := fillCandidates(params.Limit, func(fetch int) (int, []NearbyJob, error) {
		return u.readNearby(ctx, params, fetch)
	})
	if err != nil {
		return nil, err
	}
	if len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (u *Jobs) readNearby(ctx context.Context, params NearbyParams, fetch int) (int, []NearbyJob, error) {
	type candidate struct {
		rec  docstore.Record
		dist float64
	}
	var cands []candidate
	if params.Exact {
		hits, err := u.nearby.FindNearbyExact(ctx, CollectionJobs, params.Center, params.RadiusKm, fetch)
		if err != nil {
			return 0, nil, err
		}
		for _, h := range hits {
			cands = append(cands, candidate{rec: h.Record, dist: h.DistanceKm})
		}
	} else {
		recs, err := u.nearby.FindNearby(ctx, CollectionJobs, params.Center, params.RadiusKm, fetch)
		if err != nil {
			return 0, nil, err
		}
		for _, rec := range recs {
			d := 0.0
			if p, ok := search.RecordLocation(rec); ok {
				d = geo.HaversineDistanceKm(params.Center, p)
			}
			cands = append(cands, candidate{rec: rec, dist: d})
		}
	}

	postings := make([]job.Posting, 0, len(cands))
	dist := make(map[string]float64, len(cands))
	for _, c := range cands {
		p, err := u.jobs.Decode(c.rec)
		if err != nil {
			return 0, nil, storeErr("decode", err)
		}
		postings = append(postings, p)
		dist[p.ID] = c.dist
	}

	postings = search.Filter(postings, params.Predicates)
	out := make([]NearbyJob, 0, len(postings))
	for _, p := range postings {
		out = append(out, NearbyJob{Posting: p, DistanceKm: dist[p.ID]})
	}
	return len(cands), out, nil
}

func (u *Jobs) invalidateNearby(ctx context.Context) {
	if u.cache == nil {
		return
	}
	if err := u.cache.DeleteByPattern(ctx, NearbyCachePattern); err != nil && !errors.Is(err, context.Canceled) {
		u.logger.Warn("nearby cache invalidation failed", zap.Error(err))
	}
}
