package analyzer

// TrackPoint is one sampled position along a route. Elevation is nil when the
// source did not record it for this point.
type TrackPoint struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// Difficulty is a coarse route classification.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// ProfilePoint is one chart sample: cumulative distance and elevation.
type ProfilePoint struct {
	DistanceKm float64 `json:"distance_km"`
	ElevationM float64 `json:"elevation_m"`
}

// Metrics is the result of a full track analysis.
type Metrics struct {
	TotalDistanceKm     float64        `json:"total_distance_km"`
	TotalElevationGainM float64        `json:"total_elevation_gain_m"`
	ElevationProfile    []ProfilePoint `json:"elevation_profile"`
	Bounds              Bounds         `json:"bounds"`
	StartPoint          LatLon         `json:"start_point"`
	EndPoint            LatLon         `json:"end_point"`
	MaxElevationM       *float64       `json:"max_elevation_m,omitempty"`
	MinElevationM       *float64       `json:"min_elevation_m,omitempty"`
	Difficulty          Difficulty     `json:"difficulty"`
}

// Elevation returns a pointer to v, for building points with elevation.
func Elevation(v float64) *float64 {
	return &v
}
