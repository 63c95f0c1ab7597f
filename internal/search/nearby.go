// Package search retrieves proximity candidates from the document store and
// narrows them with exact business predicates.
package search

import (
	"context"
	"errors"
	"math"
	"sort"

	"jobmatch/internal/docstore"
	"jobmatch/internal/domain"
	"jobmatch/internal/domain/geo"
)

// LocationField is the composite {latitude, longitude} field every
// searchable document carries.
const LocationField = "location"

// exactOverfetch sizes the first box page read by FindNearbyExact.
const exactOverfetch = 4

// ScaleLimit multiplies a row limit, saturating at math.MaxInt.
func ScaleLimit(limit, factor int) int {
	if factor > 0 && limit > math.MaxInt/factor {
		return math.MaxInt
	}
	return limit * factor
}

type Nearby struct {
	store docstore.Store
}

func NewNearby(store docstore.Store) *Nearby {
	return &Nearby{store: store}
}

// Hit is a record confirmed to lie within the search radius.
type Hit struct {
	Record     docstore.Record
	DistanceKm float64
}

// FindNearby returns up to limit records whose location falls inside the
// bounding box of the circle. Records in the box corners, outside the true
// radius, may be included.
func (n *Nearby) FindNearby(ctx context.Context, collection string, center geo.Point, radiusKm float64, limit int) ([]docstore.Record, error) {
	if limit <= 0 {
		return nil, domain.InvalidInputf("limit must be > 0, got %d", limit)
	}
	box, err := geo.NewBoundingBox(center, radiusKm)
	if err != nil {
		return nil, err
	}
	recs, _, err := n.queryBox(ctx, collection, box, limit)
	return recs, err
}

// FindNearbyExact is FindNearby with a haversine post-filter. Hits are
// ordered nearest first.
func (n *Nearby) FindNearbyExact(ctx context.Context, collection string, center geo.Point, radiusKm float64, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, domain.InvalidInputf("limit must be > 0, got %d", limit)
	}
	box, err := geo.NewBoundingBox(center, radiusKm)
	if err != nil {
		return nil, err
	}
	// The whole box is read so that nearest first holds across every
	// in-radius record, not only the first page.
	var recs []docstore.Record
	for fetch := ScaleLimit(limit, exactOverfetch); ; fetch = ScaleLimit(fetch, 2) {
		page, exhausted, err := n.queryBox(ctx, collection, box, fetch)
		if err != nil {
			return nil, err
		}
		recs = page
		if exhausted || fetch == math.MaxInt {
			break
		}
	}

	hits := make([]Hit, 0, len(recs))
	for _, rec := range recs {
		p, ok := RecordLocation(rec)
		if !ok {
			continue
		}
		d := geo.HaversineDistanceKm(center, p)
		if d > radiusKm {
			continue
		}
		hits = append(hits, Hit{Record: rec, DistanceKm: d})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].DistanceKm < hits[j].DistanceKm })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// queryBox reads up to limit records from the spans of box. exhausted
// reports that every span returned fewer rows than it was asked for.
func (n *Nearby) queryBox(ctx context.Context, collection string, box geo.BoundingBox, limit int) (out []docstore.Record, exhausted bool, err error) {
	seen := make(map[string]struct{})
	out = make([]docstore.Record, 0)
	exhausted = true
	for _, span := range box.Spans() {
		want := limit - len(out)
		recs, err := n.store.QueryRange(ctx, collection, LocationField,
			docstore.LatLng{Latitude: span.Low.Latitude, Longitude: span.Low.Longitude},
			docstore.LatLng{Latitude: span.High.Latitude, Longitude: span.High.Longitude},
			want,
		)
		if err != nil {
			return nil, false, storeErr("queryRange", err)
		}
		if len(recs) >= want {
			exhausted = false
		}
		for _, rec := range recs {
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			out = append(out, rec)
		}
		if len(out) >= limit {
			exhausted = false
			break
		}
	}
	return out, exhausted, nil
}

// RecordLocation reads the location field of a stored record.
func RecordLocation(rec docstore.Record) (geo.Point, bool) {
	m, ok := rec.Data[LocationField].(map[string]any)
	if !ok {
		return geo.Point{}, false
	}
	lat, ok1 := docstore.ToFloat(m["latitude"])
	lng, ok2 := docstore.ToFloat(m["longitude"])
	if !ok1 || !ok2 {
		return geo.Point{}, false
	}
	return geo.Point{Latitude: lat, Longitude: lng}, true
}

func storeErr(op string, err error) error {
	if errors.Is(err, docstore.ErrInvalidQuery) {
		return domain.InvalidInputf("%v", err)
	}
	return &domain.StoreError{Op: op, Err: err}
}
