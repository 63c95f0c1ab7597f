package usecase

import (
	"context"

	"jobmatch/internal/docstore"
	"jobmatch/internal/domain/geo"
	"jobmatch/internal/domain/seeker"
	"jobmatch/internal/logger"

	"go.uber.org/zap"
)

type SeekerUsecase interface {
	CreateProfile(ctx context.Context, p seeker.Profile) (seeker.Profile, error)
	GetProfile(ctx context.Context, id string) (seeker.Profile, error)
	UpdateLocation(ctx context.Context, id string, loc geo.Point, radiusKm *float64) (seeker.Profile, error)
}

type Seekers struct {
	seekers *docstore.Repository[seeker.Profile]
	logger  *zap.Logger
}

func NewSeekerUsecase(store docstore.Store, log *zap.Logger) *Seekers {
	return &Seekers{seekers: NewSeekerRepository(store), logger: logger.OrNop(log).Named("seekers")}
}

func (u *Seekers) CreateProfile(ctx context.Context, p seeker.Profile) (seeker.Profile, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return seeker.Profile{}, err
	}
	created, err := u.seekers.Create(ctx, p)
	if err != nil {
		return seeker.Profile{}, storeErr("createProfile", err)
	}
	u.logger.Info("job seeker created", zap.String("seeker_id", created.ID))
	return created, nil
}

func (u *Seekers) GetProfile(ctx context.Context, id string) (seeker.Profile, error) {
	p, err := u.seekers.Get(ctx, id)
	if err != nil {
		return seeker.Profile{}, storeErr("getProfile", err)
	}
	return p, nil
}

// UpdateLocation moves the seeker and optionally changes the search radius.
func (u *Seekers) UpdateLocation(ctx context.Context, id string, loc geo.Point, radiusKm *float64) (seeker.Profile, error) {
	if err := loc.Validate(); err != nil {
		return seeker.Profile{}, err
	}
	fields := map[string]any{"location": loc}
	if radiusKm != nil {
		if err := seeker.ValidateRadius(*radiusKm); err != nil {
			return seeker.Profile{}, err
		}
		fields["searchRadiusKm"] = *radiusKm
	}

	p, err := u.seekers.Update(ctx, id, fields)
	if err != nil {
		return seeker.Profile{}, storeErr("updateLocation", err)
	}
	return p, nil
}
