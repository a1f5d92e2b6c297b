package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straitwatch/backend/config"
)

func f64(v float64) *float64 { return &v }

func TestTrackToPositions(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	points := []TrackPoint{
		{MsgTime: t0, Latitude: f64(62.3), Longitude: f64(5.2), SpeedOverGround: f64(8.5)},
		// Malformed report without coordinates is dropped.
		{MsgTime: t0.Add(time.Minute), Latitude: nil, Longitude: f64(5.2)},
		{MsgTime: t0.Add(2 * time.Minute), Latitude: f64(62.31), Longitude: f64(5.19)},
	}

	positions := TrackToPositions(257000001, points)
	require.Len(t, positions, 2)
	assert.Equal(t, int64(257000001), positions[0].MMSI)
	assert.Equal(t, 62.3, positions[0].Latitude)
	require.NotNil(t, positions[0].SOG)
	assert.Equal(t, 8.5, *positions[0].SOG)
	assert.Nil(t, positions[1].SOG)
}

func TestFilterForStorage(t *testing.T) {
	cfg := config.DefaultEngine()
	t0 := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	near := TrackPoint{MsgTime: t0, Latitude: f64(62.3), Longitude: f64(5.2)}
	// Roughly 200km north of the line.
	far := TrackPoint{MsgTime: t0.Add(time.Hour), Latitude: f64(64.2), Longitude: f64(5.0)}

	t.Run("distant positions dropped", func(t *testing.T) {
		positions := TrackToPositions(1, []TrackPoint{far, near})
		kept := FilterForStorage(positions, cfg)
		require.Len(t, kept, 1)
		assert.Equal(t, 62.3, kept[0].Latitude)
	})

	t.Run("newest report kept regardless of distance", func(t *testing.T) {
		positions := TrackToPositions(1, []TrackPoint{near, far})
		kept := FilterForStorage(positions, cfg)
		require.Len(t, kept, 2)
	})
}

func TestShipFromTrack(t *testing.T) {
	cargo := 70
	points := []TrackPoint{{Name: "MS TESTSKIP", ShipType: &cargo}}

	ship := ShipFromTrack(257000001, points)
	assert.Equal(t, "MS TESTSKIP", ship.Name)
	assert.Equal(t, "Cargo", ship.ShipTypeName)

	unknown := ShipFromTrack(1, nil)
	assert.Equal(t, "Unknown", unknown.ShipTypeName)
}
