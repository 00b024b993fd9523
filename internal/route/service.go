package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"backend-velohub/internal/analyzer"
	"backend-velohub/internal/db"
	"backend-velohub/internal/gpx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound      = errors.New("route not found")
	ErrInvalidRadius = errors.New("radius_km must be positive")
	ErrForbidden     = errors.New("only the uploader or an admin may delete this route")
)

const routeColumns = `id, event_id, name, description, distance_km, elevation_gain_m, max_elevation_m, min_elevation_m, difficulty,
		min_lat, max_lat, min_lon, max_lon,
		ST_Y(start_location::geometry), ST_X(start_location::geometry), ST_Y(end_location::geometry), ST_X(end_location::geometry),
		uploaded_by, created_at`

type Service struct {
	db         db.Querier
	cache      MetricsCache
	profileMax int
}

// NewService wires the route library. cache may be nil, which disables caching.
func NewService(db db.Querier, cache MetricsCache, profileMax int) *Service {
	if profileMax <= 0 {
		profileMax = analyzer.DefaultProfileMax
	}
	return &Service{db: db, cache: cache, profileMax: profileMax}
}

// Analyze parses and analyzes a GPX document without storing it. The profile
// is downsampled to the configured chart size.
func (s *Service) Analyze(ctx context.Context, raw []byte) (analyzer.Metrics, error) {
	doc, err := gpx.ParseBytes(raw)
	if err != nil {
		return analyzer.Metrics{}, err
	}
	m := s.analyze(ctx, raw, doc.Points)
	m.ElevationProfile = analyzer.DownsampleProfile(m.ElevationProfile, s.profileMax)
	return m, nil
}

// AnalyzeCoordinates analyzes points drawn on a map client. Nothing is cached.
func (s *Service) AnalyzeCoordinates(coords []gpx.Coordinate) (analyzer.Metrics, error) {
	points, err := gpx.TrackPoints(coords)
	if err != nil {
		return analyzer.Metrics{}, err
	}
	m := analyzer.Analyze(points)
	m.ElevationProfile = analyzer.DownsampleProfile(m.ElevationProfile, s.profileMax)
	return m, nil
}

func (s *Service) Import(ctx context.Context, req ImportRequest) (Route, error) {
	doc, err := gpx.ParseBytes(req.GPX)
	if err != nil {
		return Route{}, err
	}
	m := s.analyze(ctx, req.GPX, doc.Points)

	r := Route{
		ID:             uuid.NewString(),
		EventID:        req.EventID,
		Name:           firstNonEmpty(req.Name, doc.Name, "Untitled route"),
		Description:    firstNonEmpty(req.Description, doc.Description),
		DistanceKm:     m.TotalDistanceKm,
		ElevationGainM: m.TotalElevationGainM,
		MaxElevationM:  m.MaxElevationM,
		MinElevationM:  m.MinElevationM,
		Difficulty:     m.Difficulty,
		Bounds:         m.Bounds,
		StartPoint:     m.StartPoint,
		EndPoint:       m.EndPoint,
		UploadedBy:     req.UploadedBy,
	}

	profile, err := json.Marshal(m.ElevationProfile)
	if err != nil {
		return Route{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, event_id, name, description, distance_km, elevation_gain_m, max_elevation_m, min_elevation_m, difficulty,
			min_lat, max_lat, min_lon, max_lon, start_location, end_location, path, profile, uploaded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,
			ST_SetSRID(ST_MakePoint($14,$15), 4326)::geography,
			ST_SetSRID(ST_MakePoint($16,$17), 4326)::geography,
			ST_GeogFromText($18), $19, $20)
		RETURNING created_at
	`, r.ID, r.EventID, r.Name, r.Description, r.DistanceKm, r.ElevationGainM, r.MaxElevationM, r.MinElevationM, string(r.Difficulty),
		r.Bounds.MinLat, r.Bounds.MaxLat, r.Bounds.MinLon, r.Bounds.MaxLon,
		r.StartPoint.Lon, r.StartPoint.Lat, r.EndPoint.Lon, r.EndPoint.Lat,
		lineString(doc.Points), profile, r.UploadedBy)
	if err := row.Scan(&r.CreatedAt); err != nil {
		return Route{}, fmt.Errorf("insert route: %w", err)
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (Route, error) {
	row := s.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=$1`, id)
	r, err := scanRoute(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Route{}, ErrNotFound
	}
	return r, err
}

// List returns routes newest first, optionally limited to one event.
func (s *Service) List(ctx context.Context, eventID string) ([]Route, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if eventID == "" {
		rows, err = s.db.Query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY created_at DESC`)
	} else {
		rows, err = s.db.Query(ctx, `SELECT `+routeColumns+` FROM routes WHERE event_id=$1 ORDER BY created_at DESC`, eventID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := []Route{}
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id, userID string, isAdmin bool) error {
	var uploader string
	err := s.db.QueryRow(ctx, `SELECT uploaded_by FROM routes WHERE id=$1`, id).Scan(&uploader)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if uploader != userID && !isAdmin {
		return ErrForbidden
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Profile loads the stored elevation profile, downsampled to at most limit
// entries. limit <= 0 uses the configured default.
func (s *Service) Profile(ctx context.Context, id string, limit int) ([]analyzer.ProfilePoint, error) {
	if limit <= 0 {
		limit = s.profileMax
	}
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT profile FROM routes WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var profile []analyzer.ProfilePoint
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return analyzer.DownsampleProfile(profile, limit), nil
}

// Nearby finds routes whose start lies within radiusKm of the given point.
func (s *Service) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyRoute, error) {
	if radiusKm <= 0 {
		return nil, ErrInvalidRadius
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+routeColumns+`,
			ST_Distance(start_location, ST_SetSRID(ST_MakePoint($2,$1), 4326)::geography) / 1000
		FROM routes
		WHERE ST_DWithin(start_location, ST_SetSRID(ST_MakePoint($2,$1), 4326)::geography, $3)
		ORDER BY 20
	`, lat, lon, radiusKm*1000)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []NearbyRoute{}
	for rows.Next() {
		var n NearbyRoute
		r, err := scanRoute(rows, &n.StartDistanceKm)
		if err != nil {
			return nil, err
		}
		n.Route = r
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) analyze(ctx context.Context, raw []byte, points []analyzer.TrackPoint) analyzer.Metrics {
	if s.cache == nil {
		return analyzer.Analyze(points)
	}
	key := CacheKey(raw)
	m, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("metrics cache get: %v", err)
	}
	if ok {
		return m
	}
	m = analyzer.Analyze(points)
	if err := s.cache.Set(ctx, key, m); err != nil {
		log.Printf("metrics cache set: %v", err)
	}
	return m
}

func scanRoute(row pgx.Row, extra ...any) (Route, error) {
	var (
		r          Route
		difficulty string
	)
	dest := []any{
		&r.ID, &r.EventID, &r.Name, &r.Description, &r.DistanceKm, &r.ElevationGainM, &r.MaxElevationM, &r.MinElevationM, &difficulty,
		&r.Bounds.MinLat, &r.Bounds.MaxLat, &r.Bounds.MinLon, &r.Bounds.MaxLon,
		&r.StartPoint.Lat, &r.StartPoint.Lon, &r.EndPoint.Lat, &r.EndPoint.Lon,
		&r.UploadedBy, &r.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Route{}, err
	}
	r.Difficulty = analyzer.Difficulty(difficulty)
	return r, nil
}

// lineString renders points as WKT in lon/lat order.
func lineString(points []analyzer.TrackPoint) string {
	var b strings.Builder
	b.WriteString("LINESTRING(")
	for i, p := range points {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(p.Lon, 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
