package usecase_test

import (
	"context"
	"errors"
	"testing"

	"jobmatch/internal/docstore/memory"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/job"
	"jobmatch/internal/search"
	"jobmatch/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestJobs_CreateJob(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewJobUsecase(memory.New(), nil, 0, zap.NewNop())

	in := newPosting("emp-1", jakarta, "Go", " go ", "SQL")
	in.Status = job.StatusClosed
	in.Counters = job.Counters{Views: 99}

	got, err := uc.CreateJob(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, []string{"go", "sql"}, got.Skills)
	assert.Equal(t, job.StatusActive, got.Status)
	assert.Equal(t, job.Counters{}, got.Counters)
	assert.Equal(t, jakarta, got.Location)
	assert.False(t, got.CreatedAt.IsZero())

	fetched, err := uc.GetJob(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, fetched)
}

func TestJobs_CreateJob_Invalid(t *testing.T) {
	uc := usecase.NewJobUsecase(memory.New(), nil, 0, zap.NewNop())

	noSkills := newPosting("emp-1", jakarta)
	noSkills.Skills = nil
	noLocation := newPosting("emp-1", jakarta)
	noLocation.Locations = nil
	badCoords := newPosting("emp-1", geo.Point{Latitude: 95})
	negSalary := newPosting("emp-1", jakarta)
	negSalary.Salary.Amount = -1

	for _, p := range []job.Posting{noSkills, noLocation, badCoords, negSalary} {
		_, err := uc.CreateJob(context.Background(), p)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestJobs_GetJob_NotFound(t *testing.T) {
	uc := usecase.NewJobUsecase(memory.New(), nil, 0, zap.NewNop())
	_, err := uc.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobs_CloseJob(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewJobUsecase(memory.New(), nil, 0, zap.NewNop())

	p, err := uc.CreateJob(ctx, newPosting("emp-1", jakarta))
	require.NoError(t, err)

	closed, err := uc.CloseJob(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusClosed, closed.Status)

	again, err := uc.CloseJob(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusClosed, again.Status)

	_, err = uc.CloseJob(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobs_IncrementCounter(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewJobUsecase(memory.New(), nil, 0, zap.NewNop())

	p, err := uc.CreateJob(ctx, newPosting("emp-1", jakarta))
	require.NoError(t, err)

	require.NoError(t, uc.IncrementCounter(ctx, p.ID, job.CounterViews, 1))
	require.NoError(t, uc.IncrementCounter(ctx, p.ID, job.CounterViews, 2))
	require.NoError(t, uc.IncrementCounter(ctx, p.ID, job.CounterRightSwipes, 1))

	got, err := uc.GetJob(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, job.Counters{Views: 3, RightSwipeCount: 1}, got.Counters)

	assert.ErrorIs(t, uc.IncrementCounter(ctx, p.ID, job.CounterViews, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.IncrementCounter(ctx, p.ID, job.CounterViews, -1), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.IncrementCounter(ctx, p.ID, "likes", 1), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.IncrementCounter(ctx, "missing", job.CounterViews, 1), domain.ErrNotFound)
}

func TestJobs_SearchNearby(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewJobUsecase(memory.New(), nil, 0, zap.NewNop())

	near, err := uc.CreateJob(ctx, newPosting("emp-1", geo.Point{Latitude: -6.21, Longitude: 106.81}))
	require.NoError(t, err)
	contract := newPosting("emp-1", geo.Point{Latitude: -6.22, Longitude: 106.8})
	contract.EmploymentType = job.EmploymentContract
	_, err = uc.CreateJob(ctx, contract)
	require.NoError(t, err)
	_, err = uc.CreateJob(ctx, newPosting("emp-1", geo.Point{Latitude: -7.8, Longitude: 110.4}))
	require.NoError(t, err)

	got, err := uc.SearchNearby(ctx, usecase.NearbyParams{
		Center:     jakarta,
		RadiusKm:   10,
		Limit:      10,
		Exact:      true,
		Predicates: search.Predicates{EmploymentType: job.EmploymentFullTime},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, near.ID, got[0].Posting.ID)
	assert.InDelta(t, geo.HaversineDistanceKm(jakarta, near.Location), got[0].DistanceKm, 1e-9)

	_, err = uc.SearchNearby(ctx, usecase.NearbyParams{Center: jakarta, RadiusKm: 10, Limit: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.SearchNearby(ctx, usecase.NearbyParams{Center: jakarta, RadiusKm: -1, Limit: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJobs_SearchNearby_CachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	uc := usecase.NewJobUsecase(memory.New(), cache, 0, zap.NewNop())

	p, err := uc.CreateJob(ctx, newPosting("emp-1", jakarta))
	require.NoError(t, err)

	params := usecase.NearbyParams{Center: jakarta, RadiusKm: 5, Limit: 5}
	first, err := uc.SearchNearby(ctx, params)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.entries())

	second, err := uc.SearchNearby(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	require.Len(t, second, 1)
	assert.Equal(t, p.ID, second[0].Posting.ID)
	assert.True(t, first[0].Posting.CreatedAt.Equal(second[0].Posting.CreatedAt))

	_, err = uc.CloseJob(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.entries())
}

func TestJobs_SearchNearby_CacheReadErrorFallsThrough(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	cache.getErr = errors.New("decode cached nearby: unexpected end of JSON input")
	core, logs := observer.New(zap.WarnLevel)
	uc := usecase.NewJobUsecase(memory.New(), cache, 0, zap.New(core))

	p, err := uc.CreateJob(ctx, newPosting("emp-1", jakarta))
	require.NoError(t, err)

	got, err := uc.SearchNearby(ctx, usecase.NearbyParams{Center: jakarta, RadiusKm: 5, Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].Posting.ID)

	warned := logs.FilterMessage("nearby cache read failed").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "decode cached nearby: unexpected end of JSON input", warned[0].ContextMap()["error"])
}

// Older postings that fail the predicates fill the first store reads.
func TestJobs_SearchNearby_ReadsPastFilteredBacklog(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewJobUsecase(memory.New(), nil, 0, zap.NewNop())

	for i := 0; i < 16; i++ {
		contract := newPosting("emp-1", jakarta)
		contract.EmploymentType = job.EmploymentContract
		_, err := uc.CreateJob(ctx, contract)
		require.NoError(t, err)
	}
	fullTime, err := uc.CreateJob(ctx, newPosting("emp-1", jakarta))
	require.NoError(t, err)

	for _, exact := range []bool{false, true} {
		got, err := uc.SearchNearby(ctx, usecase.NearbyParams{
			Center:     jakarta,
			RadiusKm:   5,
			Limit:      1,
			Exact:      exact,
			Predicates: search.Predicates{EmploymentType: job.EmploymentFullTime},
		})
		require.NoError(t, err)
		require.Len(t, got, 1, "exact=%v", exact)
		assert.Equal(t, fullTime.ID, got[0].Posting.ID)
	}
}

func TestNearbyCacheKey_Stable(t *testing.T) {
	a := usecase.NearbyParams{Center: jakarta, RadiusKm: 5, Limit: 5, Predicates: search.Predicates{Skills: []string{"Go", "sql"}}}
	b := usecase.NearbyParams{Center: jakarta, RadiusKm: 5, Limit: 5, Predicates: search.Predicates{Skills: []string{"SQL", "go"}}}
	c := a
	c.Exact = true

	assert.Equal(t, usecase.NearbyCacheKey(a), usecase.NearbyCacheKey(b))
	assert.NotEqual(t, usecase.NearbyCacheKey(a), usecase.NearbyCacheKey(c))
	assert.Contains(t, usecase.NearbyCacheKey(a), "jobs:nearby:")
}
