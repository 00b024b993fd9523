package event

import (
	"context"
	"errors"
	"log"
	"time"

	"backend-velohub/internal/db"
	"backend-velohub/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound        = errors.New("event not found")
	ErrInvalidStatus   = errors.New("status must be going, maybe or declined")
	ErrInvalidLocation = errors.New("invalid meeting location")
	ErrForbidden       = errors.New("only the organizer or an admin may change this event")
)

const announceTimeout = time.Minute

// Announcer tells members about a newly created event.
type Announcer interface {
	AnnounceEvent(ctx context.Context, e Event) error
}

const eventColumns = `id, title, description, starts_at, ST_Y(meeting_location::geometry), ST_X(meeting_location::geometry), route_id, created_by, created_at`

type Service struct {
	db        db.Querier
	announcer Announcer
}

// NewService builds the event service. announcer may be nil.
func NewService(db db.Querier, announcer Announcer) *Service {
	return &Service{db: db, announcer: announcer}
}

func (s *Service) CreateEvent(ctx context.Context, input Event) (Event, error) {
	if err := validateMeeting(input); err != nil {
		return Event{}, err
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO events (id, title, description, starts_at, meeting_location, route_id, created_by)
		VALUES ($1,$2,$3,$4, ST_SetSRID(ST_MakePoint($6,$5), 4326)::geography, $7, $8)
		RETURNING created_at
	`, input.ID, input.Title, input.Description, input.StartsAt, input.MeetingLat, input.MeetingLon, input.RouteID, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Event{}, err
	}

	if s.announcer != nil {
		go s.announce(input)
	}
	return input, nil
}

// announce runs outside the request; the request context is gone by the time
// a slow mail server answers.
func (s *Service) announce(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
	defer cancel()
	if err := s.announcer.AnnounceEvent(ctx, e); err != nil {
		log.Printf("announce event %s: %v", e.ID, err)
	}
}

// UpdateEvent applies the non-empty fields of patch. Only the organizer or an
// admin may update.
func (s *Service) UpdateEvent(ctx context.Context, id, userID string, isAdmin bool, patch Event) (Event, error) {
	ev, err := s.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if ev.CreatedBy != userID && !isAdmin {
		return Event{}, ErrForbidden
	}
	if patch.Title != "" {
		ev.Title = patch.Title
	}
	if patch.Description != "" {
		ev.Description = patch.Description
	}
	if !patch.StartsAt.IsZero() {
		ev.StartsAt = patch.StartsAt
	}
	if patch.MeetingLat != nil && patch.MeetingLon != nil {
		ev.MeetingLat, ev.MeetingLon = patch.MeetingLat, patch.MeetingLon
	}
	if patch.RouteID != nil {
		ev.RouteID = patch.RouteID
	}
	if err := validateMeeting(ev); err != nil {
		return Event{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE events
		SET title=$2, description=$3, starts_at=$4, meeting_location=ST_SetSRID(ST_MakePoint($6,$5), 4326)::geography, route_id=$7
		WHERE id=$1
	`, ev.ID, ev.Title, ev.Description, ev.StartsAt, ev.MeetingLat, ev.MeetingLon, ev.RouteID)
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (Event, error) {
	row := s.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	return ev, err
}

func (s *Service) DeleteEvent(ctx context.Context, id, userID string, isAdmin bool) error {
	var organizer string
	err := s.db.QueryRow(ctx, `SELECT created_by FROM events WHERE id=$1`, id).Scan(&organizer)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if organizer != userID && !isAdmin {
		return ErrForbidden
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upcoming lists events that have not started yet, soonest first.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events WHERE starts_at >= now()
		ORDER BY starts_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Service) RSVP(ctx context.Context, eventID, userID, status string) (RSVP, error) {
	switch status {
	case StatusGoing, StatusMaybe, StatusDeclined:
	default:
		return RSVP{}, ErrInvalidStatus
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO event_rsvps (event_id, user_id, status)
		VALUES ($1,$2,$3)
		ON CONFLICT (event_id, user_id) DO UPDATE SET status=EXCLUDED.status, responded_at=now()
		RETURNING responded_at
	`, eventID, userID, status)
	rsvp := RSVP{EventID: eventID, UserID: userID, Status: status}
	if err := row.Scan(&rsvp.RespondedAt); err != nil {
		return RSVP{}, err
	}
	return rsvp, nil
}

func (s *Service) RSVPs(ctx context.Context, eventID string) ([]RSVP, error) {
	rows, err := s.db.Query(ctx, `
		SELECT event_id, user_id, status, responded_at
		FROM event_rsvps WHERE event_id=$1
		ORDER BY responded_at
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rsvps := []RSVP{}
	for rows.Next() {
		var r RSVP
		if err := rows.Scan(&r.EventID, &r.UserID, &r.Status, &r.RespondedAt); err != nil {
			return nil, err
		}
		rsvps = append(rsvps, r)
	}
	return rsvps, rows.Err()
}

func scanEvent(row pgx.Row) (Event, error) {
	var ev Event
	err := row.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.StartsAt, &ev.MeetingLat, &ev.MeetingLon, &ev.RouteID, &ev.CreatedBy, &ev.CreatedAt)
	return ev, err
}

func validateMeeting(ev Event) error {
	if (ev.MeetingLat == nil) != (ev.MeetingLon == nil) {
		return ErrInvalidLocation
	}
	if ev.MeetingLat != nil && !geo.ValidCoordinate(*ev.MeetingLat, *ev.MeetingLon) {
		return ErrInvalidLocation
	}
	return nil
}
