package usecase_test

import (
	"context"
	"testing"

	"jobmatch/internal/docstore/memory"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeekers_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSeekerUsecase(memory.New(), zap.NewNop())

	p, err := uc.CreateProfile(ctx, newProfile(jakarta, "Go", "go", "Python"))
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "python"}, p.Skills)

	got, err := uc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = uc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeekers_CreateProfile_RadiusBounds(t *testing.T) {
	uc := usecase.NewSeekerUsecase(memory.New(), zap.NewNop())

	for _, r := range []float64{0, 0.5, 500.1} {
		p := newProfile(jakarta)
		p.SearchRadiusKm = r
		_, err := uc.CreateProfile(context.Background(), p)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "radius %v", r)
	}
	for _, r := range []float64{1, 500} {
		p := newProfile(jakarta)
		p.SearchRadiusKm = r
		_, err := uc.CreateProfile(context.Background(), p)
		assert.NoError(t, err, "radius %v", r)
	}
}

func TestSeekers_UpdateLocation(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSeekerUsecase(memory.New(), zap.NewNop())

	p, err := uc.CreateProfile(ctx, newProfile(jakarta))
	require.NoError(t, err)

	bandung := geo.Point{Latitude: -6.9, Longitude: 107.6}
	got, err := uc.UpdateLocation(ctx, p.ID, bandung, nil)
	require.NoError(t, err)
	assert.Equal(t, bandung, got.CurrentLocation)
	assert.Equal(t, 10.0, got.SearchRadiusKm)

	r := 25.0
	got, err = uc.UpdateLocation(ctx, p.ID, bandung, &r)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got.SearchRadiusKm)

	bad := 600.0
	_, err = uc.UpdateLocation(ctx, p.ID, bandung, &bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UpdateLocation(ctx, p.ID, geo.Point{Longitude: 181}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.UpdateLocation(ctx, "missing", bandung, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
