package strava

import "time"

// Token is a member's Strava OAuth grant.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type Totals struct {
	Count          int     `json:"count"`
	DistanceM      float64 `json:"distance"`
	MovingTimeSec  int64   `json:"moving_time"`
	ElapsedTimeSec int64   `json:"elapsed_time"`
	ElevationGainM float64 `json:"elevation_gain"`
}

type AthleteStats struct {
	BiggestRideDistanceM float64 `json:"biggest_ride_distance"`
	BiggestClimbM        float64 `json:"biggest_climb_elevation_gain"`
	RecentRideTotals     Totals  `json:"recent_ride_totals"`
	YTDRideTotals        Totals  `json:"ytd_ride_totals"`
	AllRideTotals        Totals  `json:"all_ride_totals"`
}
