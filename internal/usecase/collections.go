package usecase

import (
	"jobmatch/internal/docstore"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/domain/seeker"
)

const (
	CollectionJobs       = "jobs"
	CollectionJobSeekers = "job_seekers"
	CollectionMatches    = "matches"
)

func NewJobRepository(store docstore.Store) *docstore.Repository[job.Posting] {
	return docstore.NewRepository(store, CollectionJobs, func(p *job.Posting, m docstore.Meta) {
		p.ID, p.CreatedAt, p.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	})
}

func NewSeekerRepository(store docstore.Store) *docstore.Repository[seeker.Profile] {
	return docstore.NewRepository(store, CollectionJobSeekers, func(p *seeker.Profile, m docstore.Meta) {
		p.ID, p.CreatedAt, p.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	})
}

func NewMatchRepository(store docstore.Store) *docstore.Repository[match.Result] {
	return docstore.NewRepository(store, CollectionMatches, func(r *match.Result, m docstore.Meta) {
		r.ID, r.CreatedAt, r.UpdatedAt = m.ID, m.CreatedAt, m.UpdatedAt
	})
}
