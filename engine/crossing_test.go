package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/models"
)

func knots(v float64) *float64 { return &v }

func report(mmsi int64, ts time.Time, lat, lon float64) models.Position {
	return models.Position{MMSI: mmsi, Timestamp: ts, Latitude: lat, Longitude: lon}
}

func TestDetectEastToWest(t *testing.T) {
	d := NewCrossingDetector(config.DefaultEngine())
	t0 := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	prev := report(257012345, t0, 62.30, 5.20)
	curr := report(257012345, t0.Add(time.Hour), 62.35, 4.50)

	c := d.Detect(&prev, &curr)
	require.NotNil(t, c)
	assert.Equal(t, models.DirectionEastToWest, c.Direction)
	assert.Equal(t, int64(257012345), c.MMSI)

	// The interpolated time lies strictly between the pair.
	assert.True(t, c.CrossingTime.After(prev.Timestamp))
	assert.True(t, c.CrossingTime.Before(curr.Timestamp))

	// The interpolated point lies on the line (in the local projection)
	// and inside the pair's bounding box.
	p := Point{Lat: c.Latitude, Lon: c.Longitude}
	assert.InDelta(t, 0, orientation(lineStart, lineEnd, p, midLatCos(lineStart, lineEnd)), 1e-9)
	assert.Greater(t, c.Latitude, prev.Latitude)
	assert.Less(t, c.Latitude, curr.Latitude)
}

func TestDetectWestToEast(t *testing.T) {
	d := NewCrossingDetector(config.DefaultEngine())
	t0 := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	prev := report(1, t0, 62.35, 4.50)
	curr := report(1, t0.Add(30*time.Minute), 62.30, 5.20)

	c := d.Detect(&prev, &curr)
	require.NotNil(t, c)
	assert.Equal(t, models.DirectionWestToEast, c.Direction)
}

func TestDetectInterpolation(t *testing.T) {
	// Synthetic meridian line at the equator so the expected ratio is
	// exact: the track spans lon -0.5 to +1.5, crossing at lon 0, a
	// quarter of the way in.
	cfg := config.DefaultEngine()
	cfg.LineStart = config.LatLon{Lat: -1, Lon: 0}
	cfg.LineEnd = config.LatLon{Lat: 1, Lon: 0}
	d := NewCrossingDetector(cfg)

	t0 := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	prev := report(1, t0, 0, -0.5)
	curr := report(1, t0.Add(time.Hour), 0, 1.5)

	c := d.Detect(&prev, &curr)
	require.NotNil(t, c)
	assert.Equal(t, t0.Add(15*time.Minute), c.CrossingTime)
	assert.InDelta(t, 0, c.Latitude, 1e-9)
	assert.InDelta(t, 0, c.Longitude, 1e-9)
	// prev is west of the meridian.
	assert.Equal(t, models.DirectionWestToEast, c.Direction)
}

func TestDetectIsPure(t *testing.T) {
	d := NewCrossingDetector(config.DefaultEngine())
	t0 := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	prev := report(1, t0, 62.30, 5.20)
	curr := report(1, t0.Add(time.Hour), 62.35, 4.50)

	first := d.Detect(&prev, &curr)
	second := d.Detect(&prev, &curr)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestDetectSkips(t *testing.T) {
	d := NewCrossingDetector(config.DefaultEngine())
	t0 := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	crossingPrev := report(1, t0, 62.30, 5.20)

	tests := []struct {
		name string
		prev *models.Position
		curr *models.Position
	}{
		{
			name: "missing previous report",
			prev: nil,
			curr: ptr(report(1, t0.Add(time.Hour), 62.35, 4.50)),
		},
		{
			name: "duplicate timestamp",
			prev: &crossingPrev,
			curr: ptr(report(1, t0, 62.35, 4.50)),
		},
		{
			name: "gap beyond staleness bound",
			prev: &crossingPrev,
			curr: ptr(report(1, t0.Add(72*time.Hour), 62.35, 4.50)),
		},
		{
			name: "pair on one side of the line",
			prev: ptr(report(1, t0, 62.25, 5.30)),
			curr: ptr(report(1, t0.Add(time.Hour), 62.20, 5.45)),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Nil(t, d.Detect(test.prev, test.curr))
		})
	}
}

func ptr(p models.Position) *models.Position { return &p }
