package memory

import (
	"context"
	"sync"
	"testing"

	"jobmatch/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Create(ctx, "jobs", map[string]any{"title": "Go dev", "status": "active"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.GetByID(ctx, "jobs", id)
	require.NoError(t, err)
	assert.Equal(t, "Go dev", rec.Data["title"])
	assert.False(t, rec.CreatedAt.IsZero())

	require.NoError(t, s.Update(ctx, "jobs", id, map[string]any{"status": "closed", "counters.views": 3}))
	rec, err = s.GetByID(ctx, "jobs", id)
	require.NoError(t, err)
	assert.Equal(t, "closed", rec.Data["status"])
	assert.Equal(t, map[string]any{"views": 3.0}, rec.Data["counters"])
	assert.False(t, rec.UpdatedAt.Before(rec.CreatedAt))
}

func TestStore_GetAndUpdateMissing(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetByID(ctx, "jobs", "nope")
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	err = s.Update(ctx, "jobs", "nope", map[string]any{"status": "closed"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestStore_ReturnedDataIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Create(ctx, "jobs", map[string]any{"title": "a"})
	require.NoError(t, err)

	rec, err := s.GetByID(ctx, "jobs", id)
	require.NoError(t, err)
	rec.Data["title"] = "mutated"

	rec, err = s.GetByID(ctx, "jobs", id)
	require.NoError(t, err)
	assert.Equal(t, "a", rec.Data["title"])
}

type status string

func TestStore_QueryEquality(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, _ = s.Create(ctx, "matches", map[string]any{"jobId": "j1", "status": "pending", "score": 80})
	_, _ = s.Create(ctx, "matches", map[string]any{"jobId": "j1", "status": "accepted", "score": 50})
	_, _ = s.Create(ctx, "matches", map[string]any{"jobId": "j2", "status": "pending", "score": 80})

	got, err := s.QueryEquality(ctx, "matches", []docstore.Condition{docstore.Eq("jobId", "j1"), docstore.Eq("status", status("pending"))}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 80.0, got[0].Data["score"])

	got, err = s.QueryEquality(ctx, "matches", []docstore.Condition{docstore.Eq("score", 80)}, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.QueryEquality(ctx, "unknown", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.QueryEquality(ctx, "matches", nil, 0)
	assert.ErrorIs(t, err, docstore.ErrInvalidQuery)
}

func TestStore_QueryRange(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, _ = s.Create(ctx, "jobs", map[string]any{"salary": 10, "location": map[string]any{"latitude": 1.0, "longitude": 1.0}})
	_, _ = s.Create(ctx, "jobs", map[string]any{"salary": 20, "location": map[string]any{"latitude": 1.0, "longitude": 5.0}})
	_, _ = s.Create(ctx, "jobs", map[string]any{"salary": 30})

	got, err := s.QueryRange(ctx, "jobs", "salary", 10, 20, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.QueryRange(ctx, "jobs", "location",
		docstore.LatLng{Latitude: 0, Longitude: 0}, docstore.LatLng{Latitude: 2, Longitude: 2}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0].Data["salary"])

	_, err = s.QueryRange(ctx, "jobs", "salary", 30, 10, 10)
	assert.ErrorIs(t, err, docstore.ErrInvalidQuery)

	_, err = s.QueryRange(ctx, "jobs", "salary", "a", 10, 10)
	assert.ErrorIs(t, err, docstore.ErrInvalidQuery)
}

func TestStore_AtomicIncrementConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Create(ctx, "jobs", map[string]any{"counters": map[string]any{"views": 0}})
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AtomicIncrement(ctx, "jobs", id, "counters.views", 1))
		}()
	}
	wg.Wait()

	rec, err := s.GetByID(ctx, "jobs", id)
	require.NoError(t, err)
	assert.Equal(t, float64(workers), rec.Data["counters"].(map[string]any)["views"])

	require.NoError(t, s.AtomicIncrement(ctx, "jobs", id, "counters.rightSwipeCount", 2))
	err = s.AtomicIncrement(ctx, "jobs", "missing", "counters.views", 1)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestStore_CreateUnique(t *testing.T) {
	ctx := context.Background()
	s := New()

	id1, created, err := s.CreateUnique(ctx, "matches", "j1:s1", map[string]any{"jobId": "j1"})
	require.NoError(t, err)
	assert.True(t, created)

	id2, created, err := s.CreateUnique(ctx, "matches", "j1:s1", map[string]any{"jobId": "j1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id1, id2)

	var _ docstore.UniqueCreator = s
}

func TestStore_UpdateIfConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Create(ctx, "matches", map[string]any{"status": "pending"})
	require.NoError(t, err)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := "accepted"
			if i%2 == 1 {
				to = "rejected"
			}
			ok, err := s.UpdateIf(ctx, "matches", id, []docstore.Condition{docstore.Eq("status", "pending")}, map[string]any{"status": to})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, applied)

	ok, err := s.UpdateIf(ctx, "matches", "missing", nil, map[string]any{"status": "accepted"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.False(t, ok)

	var _ docstore.ConditionalUpdater = s
}
