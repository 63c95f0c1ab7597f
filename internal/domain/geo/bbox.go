package geo

import (
	"math"

	"jobmatch/internal/domain"
)

// BoundingBox is an axis-aligned rectangle in degree space that
// over-approximates a circle. Low.Latitude <= High.Latitude always holds.
// Longitudes are NOT wrap-safe: a box crossing the antimeridian has
// Low.Longitude < -180 or High.Longitude > 180. Use Spans before querying.
type BoundingBox struct {
	Low  Point `json:"low"`
	High Point `json:"high"`
}

// NewBoundingBox returns a box containing every point within radiusKm of
// center.
//
// The latitude delta is radiusKm/EarthRadiusKm converted to degrees. The
// longitude delta is the same angle scaled by 1/cos(latitude); it is widened
// to the exact great-circle extent asin(sin(r)/cos(lat)) where that is larger,
// because the plain scaling under-covers the circle away from the equator.
// When the circle reaches a pole the box covers every longitude.
func NewBoundingBox(center Point, radiusKm float64) (BoundingBox, error) {
	if err := center.Validate(); err != nil {
		return BoundingBox{}, err
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return BoundingBox{}, domain.InvalidInputf("radius must be > 0, got %v", radiusKm)
	}

	angular := radiusKm / EarthRadiusKm
	latDelta := toDegrees(angular)

	low := Point{Latitude: center.Latitude - latDelta}
	high := Point{Latitude: center.Latitude + latDelta}

	coversPole := low.Latitude <= -90 || high.Latitude >= 90
	if low.Latitude < -90 {
		low.Latitude = -90
	}
	if high.Latitude > 90 {
		high.Latitude = 90
	}

	cosLat := math.Cos(toRadians(center.Latitude))
	sinAng := math.Sin(angular)
	if coversPole || angular >= math.Pi/2 || sinAng >= cosLat {
		low.Longitude = -180
		high.Longitude = 180
		return BoundingBox{Low: low, High: high}, nil
	}

	lngDelta := toDegrees(angular / cosLat)
	if exact := toDegrees(math.Asin(sinAng / cosLat)); exact > lngDelta {
		lngDelta = exact
	}
	if lngDelta >= 180 {
		low.Longitude = -180
		high.Longitude = 180
		return BoundingBox{Low: low, High: high}, nil
	}

	low.Longitude = center.Longitude - lngDelta
	high.Longitude = center.Longitude + lngDelta
	return BoundingBox{Low: low, High: high}, nil
}

// Spans splits the box into one or two boxes whose longitudes lie in
// [-180,180], so each can be issued as a plain range query.
func (b BoundingBox) Spans() []BoundingBox {
	if b.High.Longitude-b.Low.Longitude >= 360 {
		return []BoundingBox{{
			Low:  Point{Latitude: b.Low.Latitude, Longitude: -180},
			High: Point{Latitude: b.High.Latitude, Longitude: 180},
		}}
	}
	switch {
	case b.Low.Longitude < -180:
		return []BoundingBox{
			{Low: Point{Latitude: b.Low.Latitude, Longitude: b.Low.Longitude + 360}, High: Point{Latitude: b.High.Latitude, Longitude: 180}},
			{Low: Point{Latitude: b.Low.Latitude, Longitude: -180}, High: b.High},
		}
	case b.High.Longitude > 180:
		return []BoundingBox{
			{Low: b.Low, High: Point{Latitude: b.High.Latitude, Longitude: 180}},
			{Low: Point{Latitude: b.Low.Latitude, Longitude: -180}, High: Point{Latitude: b.High.Latitude, Longitude: b.High.Longitude - 360}},
		}
	default:
		return []BoundingBox{b}
	}
}

// Contains reports whether p lies inside the box, honoring antimeridian wrap.
func (b BoundingBox) Contains(p Point) bool {
	for _, s := range b.Spans() {
		if p.Latitude >= s.Low.Latitude && p.Latitude <= s.High.Latitude &&
			p.Longitude >= s.Low.Longitude && p.Longitude <= s.High.Longitude {
			return true
		}
	}
	return false
}
