package analyzer

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(lat, lon float64) TrackPoint {
	return TrackPoint{Lat: lat, Lon: lon}
}

func ptE(lat, lon, ele float64) TrackPoint {
	return TrackPoint{Lat: lat, Lon: lon, Elevation: Elevation(ele)}
}

func TestComputeDistanceDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, ComputeDistance(nil))
	assert.Equal(t, 0.0, ComputeDistance([]TrackPoint{}))
	assert.Equal(t, 0.0, ComputeDistance([]TrackPoint{pt(49, 18)}))
}

func TestComputeDistanceKnownValue(t *testing.T) {
	expected := 6371.0 * 0.01 * math.Pi / 180 * math.Cos(49*math.Pi/180)
	d := ComputeDistance([]TrackPoint{pt(49.0, 18.0), pt(49.0, 18.01)})
	assert.InEpsilon(t, expected, d, 0.01)
	assert.InDelta(t, 0.73, d, 0.01)
}

func TestComputeDistanceSymmetricAndNonNegative(t *testing.T) {
	points := []TrackPoint{pt(49.0, 18.0), pt(49.02, 18.05), pt(48.97, 18.11), pt(49.05, 18.2)}
	forward := ComputeDistance(points)

	reversed := slices.Clone(points)
	slices.Reverse(reversed)

	assert.GreaterOrEqual(t, forward, 0.0)
	assert.InDelta(t, forward, ComputeDistance(reversed), 1e-9)
}

func TestComputeDistanceNoShortcut(t *testing.T) {
	// out and back: the sum of legs, not the zero displacement
	points := []TrackPoint{pt(49.0, 18.0), pt(49.0, 18.01), pt(49.0, 18.0)}
	leg := ComputeDistance(points[:2])
	assert.InDelta(t, 2*leg, ComputeDistance(points), 1e-9)
}

func TestComputeElevationGain(t *testing.T) {
	tests := []struct {
		name   string
		points []TrackPoint
		want   float64
	}{
		{name: "empty", points: nil, want: 0},
		{name: "descending", points: []TrackPoint{ptE(0, 0, 300), ptE(0, 0.001, 200), ptE(0, 0.002, 100)}, want: 0},
		{name: "up and down", points: []TrackPoint{ptE(0, 0, 100), ptE(0, 0.001, 150), ptE(0, 0.002, 120)}, want: 50},
		{name: "no elevation", points: []TrackPoint{pt(0, 0), pt(0, 0.001)}, want: 0},
		{
			name:   "gaps are transparent",
			points: []TrackPoint{ptE(0, 0, 100), pt(0, 0.001), pt(0, 0.002), ptE(0, 0.003, 130), pt(0, 0.004), ptE(0, 0.005, 125), ptE(0, 0.006, 140)},
			want:   45,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeElevationGain(tt.points), 1e-9)
		})
	}
}

func TestComputeElevationGainAdditive(t *testing.T) {
	points := []TrackPoint{
		ptE(0, 0, 100), ptE(0, 0.001, 140), ptE(0, 0.002, 90),
		ptE(0, 0.003, 160), ptE(0, 0.004, 155), ptE(0, 0.005, 210),
	}
	total := ComputeElevationGain(points)
	for k := 0; k < len(points); k++ {
		split := ComputeElevationGain(points[:k+1]) + ComputeElevationGain(points[k:])
		assert.InDelta(t, total, split, 1e-9, "split at %d", k)
	}
}

func TestAccumulationsAreMonotonic(t *testing.T) {
	points := []TrackPoint{
		ptE(49, 18, 300), pt(49.001, 18.001), ptE(49.002, 18.003, 280),
		ptE(49.004, 18.002, 320), ptE(49.006, 18.004, 310),
	}
	prevDist, prevGain := 0.0, 0.0
	for n := 0; n <= len(points); n++ {
		d := ComputeDistance(points[:n])
		g := ComputeElevationGain(points[:n])
		assert.GreaterOrEqual(t, d, prevDist)
		assert.GreaterOrEqual(t, g, prevGain)
		prevDist, prevGain = d, g
	}
}

func TestBuildElevationProfile(t *testing.T) {
	points := []TrackPoint{ptE(49, 18, 100.4), pt(49, 18.01), ptE(49, 18.02, 150.6)}
	profile := BuildElevationProfile(points)

	require.Len(t, profile, 2)
	assert.Equal(t, ProfilePoint{DistanceKm: 0, ElevationM: 100}, profile[0])
	assert.Equal(t, 151.0, profile[1].ElevationM)
	// the elevation-less point still contributes distance
	assert.InDelta(t, 1.5, profile[1].DistanceKm, 0.05)
	assert.Equal(t, math.Round(profile[1].DistanceKm*10)/10, profile[1].DistanceKm)
}

func TestBuildElevationProfileScenario(t *testing.T) {
	points := []TrackPoint{ptE(0, 0, 100), ptE(0, 0.001, 150), ptE(0, 0.002, 120)}
	want := []ProfilePoint{
		{DistanceKm: 0, ElevationM: 100},
		{DistanceKm: 0.1, ElevationM: 150},
		{DistanceKm: 0.2, ElevationM: 120},
	}
	if diff := cmp.Diff(want, BuildElevationProfile(points)); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildElevationProfileNoElevation(t *testing.T) {
	profile := BuildElevationProfile([]TrackPoint{pt(0, 0), pt(0, 1)})
	assert.Empty(t, profile)
}

func TestDownsampleProfile(t *testing.T) {
	raw := make([]ProfilePoint, 500)
	for i := range raw {
		raw[i] = ProfilePoint{DistanceKm: float64(i) / 10, ElevationM: float64(i)}
	}

	out := DownsampleProfile(raw, DefaultProfileMax)
	require.NotEmpty(t, out)
	assert.Equal(t, raw[0], out[0])
	assert.Equal(t, raw[len(raw)-1], out[len(out)-1])
	assert.LessOrEqual(t, len(out), DefaultProfileMax+1)
	// N = ceil(500/200) = 3
	assert.Equal(t, raw[3], out[1])
}

func TestDownsampleProfileShort(t *testing.T) {
	raw := []ProfilePoint{{0, 1}, {1, 2}}
	assert.Equal(t, raw, DownsampleProfile(raw, DefaultProfileMax))
	assert.Equal(t, raw, DownsampleProfile(raw, 0))
}

func TestDownsampleProfileLastAlreadyKept(t *testing.T) {
	raw := make([]ProfilePoint, 7)
	for i := range raw {
		raw[i] = ProfilePoint{DistanceKm: float64(i)}
	}
	out := DownsampleProfile(raw, 3)
	// N = 3 keeps 0, 3, 6 and 6 is already the last one
	assert.Equal(t, []ProfilePoint{raw[0], raw[3], raw[6]}, out)
}

func TestComputeBounds(t *testing.T) {
	_, ok := ComputeBounds(nil)
	assert.False(t, ok)

	b, ok := ComputeBounds([]TrackPoint{pt(49.1, 18.3), pt(48.9, 18.7), pt(49.4, 18.1)})
	require.True(t, ok)
	assert.Equal(t, Bounds{MinLat: 48.9, MaxLat: 49.4, MinLon: 18.1, MaxLon: 18.7}, b)
}

func TestElevationRange(t *testing.T) {
	lo, hi := ElevationRange([]TrackPoint{pt(0, 0), pt(0, 1)})
	assert.Nil(t, lo)
	assert.Nil(t, hi)

	lo, hi = ElevationRange([]TrackPoint{pt(0, 0), ptE(0, 1, 120), ptE(0, 2, 80)})
	require.NotNil(t, lo)
	require.NotNil(t, hi)
	assert.Equal(t, 80.0, *lo)
	assert.Equal(t, 120.0, *hi)
}

func TestAnalyzeScenario(t *testing.T) {
	m := Analyze([]TrackPoint{ptE(0, 0, 100), ptE(0, 0.001, 150), ptE(0, 0.002, 120)})

	assert.Equal(t, 50.0, m.TotalElevationGainM)
	require.NotNil(t, m.MaxElevationM)
	require.NotNil(t, m.MinElevationM)
	assert.Equal(t, 150.0, *m.MaxElevationM)
	assert.Equal(t, 100.0, *m.MinElevationM)
	assert.Equal(t, LatLon{Lat: 0, Lon: 0}, m.StartPoint)
	assert.Equal(t, LatLon{Lat: 0, Lon: 0.002}, m.EndPoint)
	assert.Len(t, m.ElevationProfile, 3)
	assert.InDelta(t, 0.2224, m.TotalDistanceKm, 0.001)
	// 50 m over 0.22 km is steep
	assert.Equal(t, Hard, m.Difficulty)
}

func TestAnalyzeDegenerate(t *testing.T) {
	m := Analyze(nil)
	assert.Equal(t, 0.0, m.TotalDistanceKm)
	assert.Equal(t, 0.0, m.TotalElevationGainM)
	assert.Nil(t, m.MaxElevationM)
	assert.Nil(t, m.MinElevationM)
	assert.Equal(t, Easy, m.Difficulty)
}

func TestMetricsJSONOmitsAbsentElevation(t *testing.T) {
	m := Analyze([]TrackPoint{pt(49, 18), pt(49, 18.01)})
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "max_elevation_m")
	assert.NotContains(t, decoded, "min_elevation_m")
	assert.Equal(t, "easy", decoded["difficulty"])
	assert.Contains(t, decoded, "bounds")
}
