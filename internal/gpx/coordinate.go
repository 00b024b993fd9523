package gpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"backend-velohub/internal/analyzer"
	"backend-velohub/internal/shared/geo"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate accepts the shapes map clients send: [lat, lon], [lat, lon, ele]
// or an object with lat and lng/lon plus an optional ele/elevation.
type Coordinate struct {
	Lat       float64
	Lon       float64
	Elevation *float64
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidCoordinate
	}

	if data[0] == '[' {
		var values []float64
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
		}
		if len(values) < 2 || len(values) > 3 {
			return fmt.Errorf("%w: expected [lat, lon] or [lat, lon, ele]", ErrInvalidCoordinate)
		}
		*c = Coordinate{Lat: values[0], Lon: values[1]}
		if len(values) == 3 {
			c.Elevation = analyzer.Elevation(values[2])
		}
		return nil
	}

	var obj struct {
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Lon       *float64 `json:"lon"`
		Ele       *float64 `json:"ele"`
		Elevation *float64 `json:"elevation"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
	}
	lon := obj.Lng
	if lon == nil {
		lon = obj.Lon
	}
	if obj.Lat == nil || lon == nil {
		return fmt.Errorf("%w: lat and lng required", ErrInvalidCoordinate)
	}
	*c = Coordinate{Lat: *obj.Lat, Lon: *lon, Elevation: obj.Ele}
	if c.Elevation == nil {
		c.Elevation = obj.Elevation
	}
	return nil
}

func (c Coordinate) Validate() error {
	if !geo.ValidCoordinate(c.Lat, c.Lon) {
		return fmt.Errorf("%w: %v,%v out of range", ErrInvalidCoordinate, c.Lat, c.Lon)
	}
	return nil
}

func (c Coordinate) TrackPoint() analyzer.TrackPoint {
	return analyzer.TrackPoint{Lat: c.Lat, Lon: c.Lon, Elevation: c.Elevation}
}

// TrackPoints validates coordinates and converts them in order.
func TrackPoints(coords []Coordinate) ([]analyzer.TrackPoint, error) {
	points := make([]analyzer.TrackPoint, 0, len(coords))
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		points = append(points, c.TrackPoint())
	}
	if len(points) < 2 {
		return points, ErrTooFewPoints
	}
	return points, nil
}
