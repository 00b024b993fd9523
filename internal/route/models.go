package route

import (
	"time"

	"backend-velohub/internal/analyzer"
)

type Route struct {
	ID             string              `json:"id"`
	EventID        *string             `json:"event_id,omitempty"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	DistanceKm     float64             `json:"distance_km"`
	ElevationGainM float64             `json:"elevation_gain_m"`
	MaxElevationM  *float64            `json:"max_elevation_m,omitempty"`
	MinElevationM  *float64            `json:"min_elevation_m,omitempty"`
	Difficulty     analyzer.Difficulty `json:"difficulty"`
	Bounds         analyzer.Bounds     `json:"bounds"`
	StartPoint     analyzer.LatLon     `json:"start_point"`
	EndPoint       analyzer.LatLon     `json:"end_point"`
	UploadedBy     string              `json:"uploaded_by"`
	CreatedAt      time.Time           `json:"created_at"`
}

type ImportRequest struct {
	UploadedBy  string
	EventID     *string
	Name        string
	Description string
	GPX         []byte
}

// NearbyRoute is a route together with how far its start lies from the query point.
type NearbyRoute struct {
	Route
	StartDistanceKm float64 `json:"start_distance_km"`
}
