package usecase

import (
	"context"
	"errors"
	"sort"

	"jobmatch/internal/docstore"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/matching"
	"jobmatch/internal/domain/seeker"
	"jobmatch/internal/logger"
	"jobmatch/internal/search"

	"go.uber.org/zap"
)

type RecommendParams struct {
	Predicates search.Predicates
	Limit      int
	MinScore   float64
}

type JobRecommendation struct {
	Posting job.Posting
	Result  matching.Result
}

type Candidate struct {
	Profile seeker.Profile
	Result  matching.Result
}

type RecommendationUsecase interface {
	RecommendJobs(ctx context.Context, seekerID string, params RecommendParams) ([]JobRecommendation, error)
	CandidatesForJob(ctx context.Context, jobID string, limit int, minScore float64) ([]Candidate, error)
}

type Recommendations struct {
	jobs    *docstore.Repository[job.Posting]
	seekers *docstore.Repository[seeker.Profile]
	nearby  *search.Nearby
	logger  *zap.Logger
}

func NewRecommendationUsecase(store docstore.Store, log *zap.Logger) *Recommendations {
	return &Recommendations{
		jobs:    NewJobRepository(store),
		seekers: NewSeekerRepository(store),
		nearby:  search.NewNearby(store),
		logger:  logger.OrNop(log).Named("recommendations"),
	}
}

// RecommendJobs ranks postings inside the seeker's search radius. Only
// active postings are considered unless Predicates.Status says otherwise.
func (u *Recommendations) RecommendJobs(ctx context.Context, seekerID string, params RecommendParams) ([]JobRecommendation, error) {
	if err := validateRanking(params.Limit, params.MinScore); err != nil {
		return nil, err
	}
	if err := params.Predicates.Validate(); err != nil {
		return nil, err
	}
	if params.Predicates.Status == "" {
		params.Predicates.Status = job.StatusActive
	}

	s, err := u.seekers.Get(ctx, seekerID)
	if err != nil {
		return nil, storeErr("getProfile", err)
	}

	out, err := fillCandidates(params.Limit, func(fetch int) (int, []JobRecommendation, error) {
		hits, err := u.nearby.FindNearbyExact(ctx, CollectionJobs, s.CurrentLocation, s.SearchRadiusKm, fetch)
		if err != nil {
			return 0, nil, err
		}
		postings := make([]job.Posting, 0, len(hits))
		for _, h := range hits {
			p, err := u.jobs.Decode(h.Record)
			if err != nil {
				return 0, nil, storeErr("decode", err)
			}
			postings = append(postings, p)
		}
		postings = search.Filter(postings, params.Predicates)

		kept := make([]JobRecommendation, 0, len(postings))
		for _, p := range postings {
			res, err := matching.Score(p, s)
			if errors.Is(err, domain.ErrInvalidInput) {
				u.logger.Debug("skipping unscorable job", zap.String("job_id", p.ID), zap.Error(err))
				continue
			}
			if err != nil {
				return 0, nil, err
			}
			if res.Score < params.MinScore {
				continue
			}
			kept = append(kept, JobRecommendation{Posting: p, Result: res})
		}
		return len(hits), kept, nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Result.Score != out[j].Result.Score {
			return out[i].Result.Score > out[j].Result.Score
		}
		return out[i].Result.DistanceKm < out[j].Result.DistanceKm
	})
	if len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

// CandidatesForJob ranks seekers around the posting's primary location. The
// search covers the largest radius a seeker may choose; each seeker's own
// radius then decides the location criterion.
func (u *Recommendations) CandidatesForJob(ctx context.Context, jobID string, limit int, minScore float64) ([]Candidate, error) {
	if err := validateRanking(limit, minScore); err != nil {
		return nil, err
	}
	p, err := u.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, storeErr("getJob", err)
	}
	center, ok := p.PrimaryLocation()
	if !ok {
		return nil, domain.InvalidInputf("job has no location")
	}

	out, err := fillCandidates(limit, func(fetch int) (int, []Candidate, error) {
		hits, err := u.nearby.FindNearbyExact(ctx, CollectionJobSeekers, center, seeker.MaxSearchRadiusKm, fetch)
		if err != nil {
			return 0, nil, err
		}
		kept := make([]Candidate, 0, len(hits))
		for _, h := range hits {
			s, err := u.seekers.Decode(h.Record)
			if err != nil {
				return 0, nil, storeErr("decode", err)
			}
			res, err := matching.Score(p, s)
			if err != nil {
				return 0, nil, err
			}
			if res.Score < minScore {
				continue
			}
			kept = append(kept, Candidate{Profile: s, Result: res})
		}
		return len(hits), kept, nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Result.Score != out[j].Result.Score {
			return out[i].Result.Score > out[j].Result.Score
		}
		return out[i].Result.DistanceKm < out[j].Result.DistanceKm
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func validateRanking(limit int, minScore float64) error {
	if limit <= 0 {
		return domain.InvalidInputf("limit must be > 0, got %d", limit)
	}
	if minScore < 0 || minScore > 100 {
		return domain.InvalidInputf("min score must be within [0,100], got %v", minScore)
	}
	return nil
}
