// Package gpx turns GPX documents and loosely shaped JSON coordinates into
// analyzer track points.
package gpx

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"backend-velohub/internal/analyzer"
	"backend-velohub/internal/shared/geo"

	"github.com/tkrajina/gpxgo/gpx"
)

var (
	// ErrTooFewPoints is returned when a document has fewer than two usable points.
	ErrTooFewPoints = errors.New("at least 2 track points required")
	ErrMalformed    = errors.New("malformed gpx")
)

// Document is the part of a GPX file the club cares about.
type Document struct {
	Name        string
	Description string
	Points      []analyzer.TrackPoint
}

// Parse reads a GPX document. Track points from every track and segment are
// concatenated in order; route points are used only when there are no tracks.
func Parse(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read gpx: %w", err)
	}
	return ParseBytes(data)
}

func ParseBytes(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := Document{Name: g.Name, Description: g.Description}
	for _, trk := range g.Tracks {
		if doc.Name == "" {
			doc.Name = trk.Name
		}
		if doc.Description == "" {
			doc.Description = trk.Description
		}
		for _, seg := range trk.Segments {
			doc.Points = appendPoints(doc.Points, seg.Points)
		}
	}
	if len(doc.Points) == 0 {
		for _, rte := range g.Routes {
			if doc.Name == "" {
				doc.Name = rte.Name
			}
			doc.Points = appendPoints(doc.Points, rte.Points)
		}
	}

	if len(doc.Points) < 2 {
		return doc, ErrTooFewPoints
	}
	return doc, nil
}

func appendPoints(dst []analyzer.TrackPoint, src []gpx.GPXPoint) []analyzer.TrackPoint {
	for _, p := range src {
		if !geo.ValidCoordinate(p.Latitude, p.Longitude) {
			continue
		}
		tp := analyzer.TrackPoint{Lat: p.Latitude, Lon: p.Longitude}
		if p.Elevation.NotNull() {
			tp.Elevation = analyzer.Elevation(p.Elevation.Value())
		}
		dst = append(dst, tp)
	}
	return dst
}
