package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/models"
)

func TestProcessTrack(t *testing.T) {
	sink := &memSink{}
	e := New(config.DefaultEngine(), sink)
	t0 := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)

	// Dwell in the east zone past the threshold, then steam west across
	// the line: one waiting event and one crossing.
	track := []models.Position{
		zoneReport(t0, knots(1.0)),
		zoneReport(t0.Add(60*time.Minute), knots(0.5)),
		zoneReport(t0.Add(125*time.Minute), knots(1.0)),
		{MMSI: 257000001, Timestamp: t0.Add(140 * time.Minute), Latitude: 62.30, Longitude: 5.20, SOG: knots(10)},
		{MMSI: 257000001, Timestamp: t0.Add(200 * time.Minute), Latitude: 62.35, Longitude: 4.50, SOG: knots(10)},
	}

	n, err := e.ProcessTrack(track)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, sink.crossings, 1)
	assert.Equal(t, models.DirectionEastToWest, sink.crossings[0].Direction)

	require.Len(t, sink.created, 1)
	assert.False(t, sink.created[0].Open)
	assert.Equal(t, t0, sink.created[0].StartTime)
	assert.Equal(t, t0.Add(125*time.Minute), sink.created[0].EndTime)
}

func TestProcessTrackSkipsDuplicateTimestamps(t *testing.T) {
	sink := &memSink{}
	e := New(config.DefaultEngine(), sink)
	t0 := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)

	track := []models.Position{
		{MMSI: 1, Timestamp: t0, Latitude: 62.30, Longitude: 5.20},
		{MMSI: 1, Timestamp: t0, Latitude: 62.30, Longitude: 5.21},
		{MMSI: 1, Timestamp: t0.Add(time.Hour), Latitude: 62.35, Longitude: 4.50},
	}

	n, err := e.ProcessTrack(track)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcessTrackRerunIsIdentical(t *testing.T) {
	t0 := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	track := []models.Position{
		{MMSI: 1, Timestamp: t0, Latitude: 62.30, Longitude: 5.20},
		{MMSI: 1, Timestamp: t0.Add(time.Hour), Latitude: 62.35, Longitude: 4.50},
	}

	first := &memSink{}
	_, err := New(config.DefaultEngine(), first).ProcessTrack(track)
	require.NoError(t, err)

	second := &memSink{}
	_, err = New(config.DefaultEngine(), second).ProcessTrack(track)
	require.NoError(t, err)

	assert.Equal(t, first.crossings, second.crossings)
}

func TestRunProcessesAllVessels(t *testing.T) {
	sink := &memSink{}
	e := New(config.DefaultEngine(), sink)
	t0 := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)

	tracks := make(map[int64][]models.Position)
	for mmsi := int64(1); mmsi <= 8; mmsi++ {
		tracks[mmsi] = []models.Position{
			{MMSI: mmsi, Timestamp: t0, Latitude: 62.30, Longitude: 5.20},
			{MMSI: mmsi, Timestamp: t0.Add(time.Hour), Latitude: 62.35, Longitude: 4.50},
		}
	}

	require.NoError(t, e.Run(context.Background(), tracks, 4))
	assert.Len(t, sink.crossings, 8)
}

func TestRunCancelled(t *testing.T) {
	sink := &memSink{}
	e := New(config.DefaultEngine(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tracks := map[int64][]models.Position{
		1: {{MMSI: 1, Timestamp: time.Now(), Latitude: 62.30, Longitude: 5.20}},
	}
	assert.ErrorIs(t, e.Run(ctx, tracks, 2), context.Canceled)
}
