package ride

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-velohub/internal/analyzer"
	"backend-velohub/internal/db"
	"backend-velohub/internal/gpx"
	"backend-velohub/internal/shared/geo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound     = errors.New("ride session not found")
	ErrNotActive    = errors.New("ride session is not active")
	ErrInvalidPoint = errors.New("invalid point coordinates")
	ErrInvalidSpeed = errors.New("speed must not be negative")
	ErrForbidden    = errors.New("ride session belongs to another member")
	ErrOutOfOrder   = errors.New("point recorded before the latest stored point")
	nowFn           = time.Now
)

// Broadcaster pushes live updates to clients following a ride.
type Broadcaster interface {
	Broadcast(rideID string, payload []byte)
}

const sessionColumns = `id, event_id, user_id, started_at, ended_at, total_distance_m, total_elevation_gain_m, status`

type Service struct {
	db  db.Querier
	hub Broadcaster
}

// NewService builds the ride service. hub may be nil.
func NewService(db db.Querier, hub Broadcaster) *Service {
	return &Service{db: db, hub: hub}
}

func (s *Service) StartSession(ctx context.Context, input Session) (Session, error) {
	input.ID = uuid.NewString()
	if input.StartedAt.IsZero() {
		input.StartedAt = nowFn()
	}
	input.Status = StatusActive

	row := s.db.QueryRow(ctx, `
		INSERT INTO ride_sessions (id, event_id, user_id, started_at, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING started_at, status
	`, input.ID, input.EventID, input.UserID, input.StartedAt, input.Status)
	if err := row.Scan(&input.StartedAt, &input.Status); err != nil {
		return Session{}, err
	}
	return input, nil
}

// AddPoint stores a point and advances the session totals. Distance grows from
// the previous point; climbing grows from the previous point that had an
// elevation, so gaps in elevation neither reset nor add gain. The session row
// is locked for the whole update, and points must arrive in recorded_at order
// so the running totals match an analysis of the stored track.
func (s *Service) AddPoint(ctx context.Context, sessionID, userID string, isAdmin bool, input Point) (Point, error) {
	if !geo.ValidCoordinate(input.Lat, input.Lon) {
		return Point{}, ErrInvalidPoint
	}
	if input.SpeedMps < 0 {
		return Point{}, ErrInvalidSpeed
	}
	if input.RecordedAt.IsZero() {
		input.RecordedAt = nowFn()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Point{}, err
	}
	point, err := addPoint(ctx, tx, sessionID, userID, isAdmin, input)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Point{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Point{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(point)
		s.hub.Broadcast(sessionID, payload)
	}
	return point, nil
}

func addPoint(ctx context.Context, tx pgx.Tx, sessionID, userID string, isAdmin bool, input Point) (Point, error) {
	var status, owner string
	err := tx.QueryRow(ctx, `SELECT status, user_id FROM ride_sessions WHERE id=$1 FOR UPDATE`, sessionID).Scan(&status, &owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return Point{}, ErrNotFound
	}
	if err != nil {
		return Point{}, err
	}
	if owner != userID && !isAdmin {
		return Point{}, ErrForbidden
	}
	if status != StatusActive {
		return Point{}, ErrNotActive
	}

	var (
		lastLat, lastLon float64
		lastAt           time.Time
		hasLast          = true
	)
	err = tx.QueryRow(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry), recorded_at
		FROM ride_points
		WHERE session_id=$1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`, sessionID).Scan(&lastLat, &lastLon, &lastAt)
	if errors.Is(err, pgx.ErrNoRows) {
		hasLast = false
	} else if err != nil {
		return Point{}, err
	}
	if hasLast && input.RecordedAt.Before(lastAt) {
		return Point{}, ErrOutOfOrder
	}

	var lastElevation *float64
	if input.ElevationM != nil {
		err = tx.QueryRow(ctx, `
			SELECT elevation_m
			FROM ride_points
			WHERE session_id=$1 AND elevation_m IS NOT NULL
			ORDER BY recorded_at DESC, id DESC
			LIMIT 1
		`, sessionID).Scan(&lastElevation)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return Point{}, err
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO ride_points (session_id, location, elevation_m, recorded_at, speed_mps)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2,$3), 4326)::geography, $4, $5, $6)
		RETURNING id, created_at
	`, sessionID, input.Lon, input.Lat, input.ElevationM, input.RecordedAt, input.SpeedMps)
	if err := row.Scan(&input.ID, &input.CreatedAt); err != nil {
		return Point{}, err
	}
	input.SessionID = sessionID

	deltaM := 0.0
	if hasLast {
		deltaM = geo.HaversineKm(lastLat, lastLon, input.Lat, input.Lon) * 1000
	}
	deltaElev := 0.0
	if input.ElevationM != nil && lastElevation != nil && *input.ElevationM > *lastElevation {
		deltaElev = *input.ElevationM - *lastElevation
	}
	if deltaM > 0 || deltaElev > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE ride_sessions
			SET total_distance_m = total_distance_m + $2,
			    total_elevation_gain_m = total_elevation_gain_m + $3
			WHERE id=$1
		`, sessionID, deltaM, deltaElev)
		if err != nil {
			return Point{}, err
		}
	}
	return input, nil
}

// FinishSession closes an active session. Only its rider or an admin may.
func (s *Service) FinishSession(ctx context.Context, sessionID, userID string, isAdmin bool) (Session, error) {
	current, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if current.UserID != userID && !isAdmin {
		return Session{}, ErrForbidden
	}

	row := s.db.QueryRow(ctx, `
		UPDATE ride_sessions SET ended_at=$2, status=$3
		WHERE id=$1 AND status=$4
		RETURNING `+sessionColumns, sessionID, nowFn(), StatusFinished, StatusActive)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotActive
	}
	if err != nil {
		return Session{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(session)
		s.hub.Broadcast(sessionID, payload)
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	row := s.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM ride_sessions WHERE id=$1`, sessionID)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return session, err
}

func (s *Service) Summary(ctx context.Context, sessionID string) (Summary, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	var pointCount int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM ride_points WHERE session_id=$1`, sessionID).Scan(&pointCount); err != nil {
		return Summary{}, err
	}

	end := nowFn()
	if session.EndedAt != nil {
		end = *session.EndedAt
	}
	duration := end.Sub(session.StartedAt)
	avgSpeed := 0.0
	if duration.Seconds() > 0 {
		avgSpeed = session.TotalDistanceM / duration.Seconds()
	}

	return Summary{
		SessionID:       session.ID,
		PointCount:      pointCount,
		DistanceM:       session.TotalDistanceM,
		ElevationGainM:  session.TotalElevationGainM,
		DurationSec:     int64(duration.Seconds()),
		AverageSpeedMps: avgSpeed,
		Difficulty:      analyzer.ClassifyDifficulty(session.TotalDistanceM/1000, session.TotalElevationGainM),
	}, nil
}

func (s *Service) Points(ctx context.Context, sessionID string) ([]Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, ST_Y(location::geometry), ST_X(location::geometry), elevation_m, recorded_at, speed_mps, created_at
		FROM ride_points WHERE session_id=$1
		ORDER BY recorded_at, id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []Point{}
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Lat, &p.Lon, &p.ElevationM, &p.RecordedAt, &p.SpeedMps, &p.CreatedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Analyze runs the full track analysis over the recorded points.
func (s *Service) Analyze(ctx context.Context, sessionID string) (analyzer.Metrics, error) {
	points, err := s.Points(ctx, sessionID)
	if err != nil {
		return analyzer.Metrics{}, err
	}
	if len(points) < 2 {
		return analyzer.Metrics{}, gpx.ErrTooFewPoints
	}
	track := make([]analyzer.TrackPoint, len(points))
	for i, p := range points {
		track[i] = analyzer.TrackPoint{Lat: p.Lat, Lon: p.Lon, Elevation: p.ElevationM}
	}
	m := analyzer.Analyze(track)
	m.ElevationProfile = analyzer.DownsampleProfile(m.ElevationProfile, analyzer.DefaultProfileMax)
	return m, nil
}

func scanSession(row pgx.Row) (Session, error) {
	var session Session
	err := row.Scan(&session.ID, &session.EventID, &session.UserID, &session.StartedAt, &session.EndedAt,
		&session.TotalDistanceM, &session.TotalElevationGainM, &session.Status)
	return session, err
}
