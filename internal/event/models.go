package event

import "time"

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	MeetingLat  *float64  `json:"meeting_lat,omitempty"`
	MeetingLon  *float64  `json:"meeting_lon,omitempty"`
	RouteID     *string   `json:"route_id,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	StatusGoing    = "going"
	StatusMaybe    = "maybe"
	StatusDeclined = "declined"
)

type RSVP struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
}
