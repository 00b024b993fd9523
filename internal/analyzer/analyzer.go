// Package analyzer computes distance, climbing and difficulty metrics for a
// sequence of track points. Every function is pure and safe for concurrent use.
package analyzer

import (
	"math"

	"backend-velohub/internal/shared/geo"
)

// DefaultProfileMax is the number of profile entries charts ask for.
const DefaultProfileMax = 200

// ComputeDistance sums the haversine distance of every consecutive pair.
func ComputeDistance(points []TrackPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += step(points[i-1], points[i])
	}
	return total
}

// ComputeElevationGain sums the positive deltas between consecutive points
// that carry an elevation. Points without elevation are skipped.
func ComputeElevationGain(points []TrackPoint) float64 {
	gain := 0.0
	var prev *float64
	for _, p := range points {
		if p.Elevation == nil {
			continue
		}
		if prev != nil && *p.Elevation > *prev {
			gain += *p.Elevation - *prev
		}
		prev = p.Elevation
	}
	return gain
}

// BuildElevationProfile emits one entry per elevation-bearing point with the
// cumulative distance covered up to it.
func BuildElevationProfile(points []TrackPoint) []ProfilePoint {
	profile := make([]ProfilePoint, 0, len(points))
	cumulative := 0.0
	for i, p := range points {
		if i > 0 {
			cumulative += step(points[i-1], p)
		}
		if p.Elevation == nil {
			continue
		}
		profile = append(profile, ProfilePoint{
			DistanceKm: math.Round(cumulative*10) / 10,
			ElevationM: math.Round(*p.Elevation),
		})
	}
	return profile
}

// DownsampleProfile keeps every Nth entry, N = ceil(len/limit). The final
// entry is always kept.
func DownsampleProfile(profile []ProfilePoint, limit int) []ProfilePoint {
	if limit <= 0 || len(profile) <= limit {
		return profile
	}
	n := int(math.Ceil(float64(len(profile)) / float64(limit)))
	out := make([]ProfilePoint, 0, limit+1)
	for i := 0; i < len(profile); i += n {
		out = append(out, profile[i])
	}
	last := len(profile) - 1
	if last%n != 0 {
		out = append(out, profile[last])
	}
	return out
}

// ComputeBounds returns the bounding box of points. ok is false when points
// is empty.
func ComputeBounds(points []TrackPoint) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinLat: points[0].Lat,
		MaxLat: points[0].Lat,
		MinLon: points[0].Lon,
		MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b, true
}

// ElevationRange returns the lowest and highest elevation, or nils when no
// point carries one.
func ElevationRange(points []TrackPoint) (lo, hi *float64) {
	for _, p := range points {
		if p.Elevation == nil {
			continue
		}
		e := *p.Elevation
		if lo == nil || e < *lo {
			lo = Elevation(e)
		}
		if hi == nil || e > *hi {
			hi = Elevation(e)
		}
	}
	return lo, hi
}

// Analyze runs every computation over points. Callers require at least two
// points before calling it; shorter input still yields zeroed metrics.
func Analyze(points []TrackPoint) Metrics {
	m := Metrics{
		TotalDistanceKm:     ComputeDistance(points),
		TotalElevationGainM: ComputeElevationGain(points),
		ElevationProfile:    BuildElevationProfile(points),
	}
	m.Bounds, _ = ComputeBounds(points)
	if len(points) > 0 {
		first, last := points[0], points[len(points)-1]
		m.StartPoint = LatLon{Lat: first.Lat, Lon: first.Lon}
		m.EndPoint = LatLon{Lat: last.Lat, Lon: last.Lon}
	}
	m.MinElevationM, m.MaxElevationM = ElevationRange(points)
	m.Difficulty = ClassifyDifficulty(m.TotalDistanceKm, m.TotalElevationGainM)
	return m
}

func step(a, b TrackPoint) float64 {
	return geo.HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
}
