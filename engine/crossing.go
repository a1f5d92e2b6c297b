package engine

import (
	"time"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/models"
)

// CrossingDetector tests consecutive position pairs of one vessel against
// the reference line. It is a pure function of its two inputs plus the
// immutable line: re-running it on the same pair yields an identical event.
type CrossingDetector struct {
	lineStart Point
	lineEnd   Point
	staleGap  time.Duration

	// Orientation sign of a point east of the line, fixed once from the
	// configured endpoints so direction inference never depends on call
	// order or on course-over-ground (which is noisy near harbors).
	eastSign int
}

// NewCrossingDetector builds a detector from the immutable engine config.
func NewCrossingDetector(cfg config.Engine) *CrossingDetector {
	start := Point{Lat: cfg.LineStart.Lat, Lon: cfg.LineStart.Lon}
	end := Point{Lat: cfg.LineEnd.Lat, Lon: cfg.LineEnd.Lon}

	// Probe a point displaced eastward from the line midpoint to learn
	// which orientation sign means "east side" for these endpoints.
	probe := Point{
		Lat: (start.Lat + end.Lat) / 2,
		Lon: (start.Lon+end.Lon)/2 + 0.1,
	}
	return &CrossingDetector{
		lineStart: start,
		lineEnd:   end,
		staleGap:  cfg.StaleGap,
		eastSign:  lineSide(start, end, probe),
	}
}

// Detect evaluates one consecutive (prev, curr) pair. It returns nil when the
// pair does not produce a crossing: missing reports, non-increasing
// timestamps (duplicates), a gap beyond the staleness bound (a multi-day AIS
// outage is a new track segment, not a straight-line transit), or a track
// that does not cross the line.
func (d *CrossingDetector) Detect(prev, curr *models.Position) *models.Crossing {
	if prev == nil || curr == nil {
		return nil
	}
	if !curr.Timestamp.After(prev.Timestamp) {
		return nil
	}
	if curr.Timestamp.Sub(prev.Timestamp) > d.staleGap {
		return nil
	}

	p1 := Point{Lat: prev.Latitude, Lon: prev.Longitude}
	p2 := Point{Lat: curr.Latitude, Lon: curr.Longitude}
	if !SegmentsCross(p1, p2, d.lineStart, d.lineEnd) {
		return nil
	}

	// Interpolate the crossing point and time along prev->curr using the
	// perpendicular-distance ratio to the line. Linear interpolation is
	// fine at this segment length.
	t := crossRatio(p1, p2, d.lineStart, d.lineEnd)
	lat := p1.Lat + t*(p2.Lat-p1.Lat)
	lon := p1.Lon + t*(p2.Lon-p1.Lon)
	elapsed := curr.Timestamp.Sub(prev.Timestamp)
	when := prev.Timestamp.Add(time.Duration(t * float64(elapsed)))

	direction := models.DirectionWestToEast
	if lineSide(d.lineStart, d.lineEnd, p1) == d.eastSign {
		direction = models.DirectionEastToWest
	}

	return &models.Crossing{
		MMSI:         curr.MMSI,
		CrossingTime: when.Truncate(time.Second),
		Latitude:     lat,
		Longitude:    lon,
		Direction:    direction,
	}
}
