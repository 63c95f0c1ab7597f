package search

import (
	"context"
	"math"
	"testing"

	"jobmatch/internal/docstore"
	"jobmatch/internal/docstore/memory"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kmPerDegree = geo.EarthRadiusKm * math.Pi / 180

func putAt(t *testing.T, s docstore.Store, name string, p geo.Point) string {
	t.Helper()
	id, err := s.Create(context.Background(), "jobs", map[string]any{
		"name":     name,
		"location": map[string]any{"latitude": p.Latitude, "longitude": p.Longitude},
	})
	require.NoError(t, err)
	return id
}

// Seeker radius 10 km, posting 12 km away on the diagonal: inside the box,
// outside the circle.
func TestNearby_BoxVersusExact(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	n := NewNearby(s)

	center := geo.Point{Latitude: 0, Longitude: 0}
	leg := 12 / math.Sqrt2 / kmPerDegree
	far := geo.Point{Latitude: leg, Longitude: leg}
	require.InDelta(t, 12, geo.HaversineDistanceKm(center, far), 0.05)

	farID := putAt(t, s, "far", far)
	nearID := putAt(t, s, "near", geo.Point{Latitude: 0.01, Longitude: 0.01})
	putAt(t, s, "away", geo.Point{Latitude: 1, Longitude: 1})

	recs, err := n.FindNearby(ctx, "jobs", center, 15, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{farID, nearID}, ids(recs))

	recs, err = n.FindNearby(ctx, "jobs", center, 10, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{farID, nearID}, ids(recs), "box corners admit false positives")

	hits, err := n.FindNearbyExact(ctx, "jobs", center, 10, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, nearID, hits[0].Record.ID)
	assert.Less(t, hits[0].DistanceKm, 10.0)
}

func TestNearby_ExactOrdersByDistanceAndLimits(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	n := NewNearby(s)

	center := geo.Point{Latitude: -6.2, Longitude: 106.8}
	var want []string
	for i := 5; i >= 1; i-- {
		want = append([]string{putAt(t, s, "p", geo.Point{Latitude: center.Latitude + float64(i)*0.01, Longitude: center.Longitude})}, want...)
	}

	hits, err := n.FindNearbyExact(ctx, "jobs", center, 50, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, want[:3], []string{hits[0].Record.ID, hits[1].Record.ID, hits[2].Record.ID})
	assert.True(t, hits[0].DistanceKm <= hits[1].DistanceKm && hits[1].DistanceKm <= hits[2].DistanceKm)
}

// The first box page holds only corner records outside the radius.
func TestNearby_ExactReadsPastCrowdedCorners(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	n := NewNearby(s)

	center := geo.Point{Latitude: 0, Longitude: 0}
	leg := 12 / math.Sqrt2 / kmPerDegree
	for _, corner := range []geo.Point{
		{Latitude: leg, Longitude: leg},
		{Latitude: leg, Longitude: -leg},
		{Latitude: -leg, Longitude: leg},
		{Latitude: -leg, Longitude: -leg},
	} {
		putAt(t, s, "corner", corner)
	}
	nearID := putAt(t, s, "near", geo.Point{Latitude: 0.001, Longitude: 0.001})

	hits, err := n.FindNearbyExact(ctx, "jobs", center, 10, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, nearID, hits[0].Record.ID)
}

func TestNearby_ExactNearestAcrossPages(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	n := NewNearby(s)

	center := geo.Point{Latitude: -6.2, Longitude: 106.8}
	for i := 0; i < 9; i++ {
		putAt(t, s, "edge", geo.Point{Latitude: center.Latitude + 0.05, Longitude: center.Longitude})
	}
	nearest := putAt(t, s, "nearest", center)

	hits, err := n.FindNearbyExact(ctx, "jobs", center, 10, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, nearest, hits[0].Record.ID)
}

func TestScaleLimit(t *testing.T) {
	assert.Equal(t, 40, ScaleLimit(10, 4))
	assert.Equal(t, math.MaxInt, ScaleLimit(math.MaxInt/2+1, 2))
	assert.Equal(t, math.MaxInt, ScaleLimit(math.MaxInt, exactOverfetch))
}

func TestNearby_Antimeridian(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	n := NewNearby(s)

	east := putAt(t, s, "east", geo.Point{Latitude: 0, Longitude: 179.95})
	west := putAt(t, s, "west", geo.Point{Latitude: 0, Longitude: -179.95})

	hits, err := n.FindNearbyExact(ctx, "jobs", geo.Point{Latitude: 0, Longitude: 180}, 20, 10)
	require.NoError(t, err)
	got := make([]string, 0, len(hits))
	for _, h := range hits {
		got = append(got, h.Record.ID)
	}
	assert.ElementsMatch(t, []string{east, west}, got)
}

func TestNearby_InvalidInput(t *testing.T) {
	ctx := context.Background()
	n := NewNearby(memory.New())

	_, err := n.FindNearby(ctx, "jobs", geo.Point{}, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = n.FindNearby(ctx, "jobs", geo.Point{}, 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = n.FindNearbyExact(ctx, "jobs", geo.Point{Latitude: 91}, 10, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordLocation(t *testing.T) {
	p, ok := RecordLocation(docstore.Record{Data: map[string]any{
		"location": map[string]any{"latitude": 1.5, "longitude": -2.0},
	}})
	require.True(t, ok)
	assert.Equal(t, geo.Point{Latitude: 1.5, Longitude: -2}, p)

	_, ok = RecordLocation(docstore.Record{Data: map[string]any{"location": "x"}})
	assert.False(t, ok)
}

func ids(recs []docstore.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}
