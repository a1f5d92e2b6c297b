package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straitwatch/backend/models"
)

func mps(v float64) *float64 { return &v }

func TestAggregateDaily(t *testing.T) {
	day1 := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	crossings := []models.Crossing{
		{MMSI: 1, CrossingTime: day1.Add(2 * time.Hour), Direction: models.DirectionEastToWest},
		{MMSI: 2, CrossingTime: day1.Add(20 * time.Hour), Direction: models.DirectionWestToEast},
		{MMSI: 3, CrossingTime: day2.Add(5 * time.Hour), Direction: models.DirectionEastToWest},
	}
	waits := []models.WaitingEvent{
		{MMSI: 1, Zone: models.ZoneEast, StartTime: day1.Add(3 * time.Hour), EndTime: day1.Add(5 * time.Hour)},
		{MMSI: 2, Zone: models.ZoneWest, StartTime: day1.Add(10 * time.Hour), EndTime: day1.Add(13 * time.Hour)},
	}
	weather := []models.WeatherObservation{
		{Timestamp: day1.Add(time.Hour), WindSpeed: mps(8), WindGust: mps(14)},
		{Timestamp: day1.Add(7 * time.Hour), WindSpeed: mps(12), WindGust: mps(20)},
		{Timestamp: day2.Add(time.Hour), WindSpeed: nil, WindGust: nil},
	}

	stats := AggregateDaily(crossings, waits, weather)
	require.Len(t, stats, 2)

	d1 := stats[0]
	assert.Equal(t, "2025-11-03", d1.Date)
	assert.Equal(t, 2, d1.TotalCrossings)
	assert.Equal(t, 2, d1.WaitingEvents)
	require.NotNil(t, d1.AvgWaitingTime)
	// (120 + 180) / 2 minutes.
	assert.InDelta(t, 150, *d1.AvgWaitingTime, 1e-9)
	require.NotNil(t, d1.AvgWindSpeed)
	assert.InDelta(t, 10, *d1.AvgWindSpeed, 1e-9)
	require.NotNil(t, d1.MaxWindGust)
	assert.InDelta(t, 20, *d1.MaxWindGust, 1e-9)

	d2 := stats[1]
	assert.Equal(t, "2025-11-04", d2.Date)
	assert.Equal(t, 1, d2.TotalCrossings)
	assert.Equal(t, 0, d2.WaitingEvents)
	// Days with no usable samples get nil, never zero.
	assert.Nil(t, d2.AvgWindSpeed)
	assert.Nil(t, d2.MaxWindGust)
	assert.Nil(t, d2.AvgWaitingTime)
}

func TestAggregateDailyDeterministic(t *testing.T) {
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	crossings := []models.Crossing{
		{MMSI: 1, CrossingTime: day.Add(time.Hour), Direction: models.DirectionEastToWest},
	}
	waits := []models.WaitingEvent{
		{MMSI: 1, Zone: models.ZoneEast, StartTime: day, EndTime: day.Add(90 * time.Minute)},
	}

	first := AggregateDaily(crossings, waits, nil)
	second := AggregateDaily(crossings, waits, nil)
	assert.Equal(t, first, second)
}

func TestAggregateDailyWeatherOnlyDate(t *testing.T) {
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	weather := []models.WeatherObservation{
		{Timestamp: day.Add(time.Hour), WindSpeed: mps(5)},
	}

	stats := AggregateDaily(nil, nil, weather)
	require.Len(t, stats, 1)
	assert.Equal(t, 0, stats[0].TotalCrossings)
	assert.Equal(t, 0, stats[0].WaitingEvents)
	require.NotNil(t, stats[0].AvgWindSpeed)
	assert.InDelta(t, 5, *stats[0].AvgWindSpeed, 1e-9)
}

func TestAggregateDailyUTCBoundaries(t *testing.T) {
	// 23:59 and 00:01 land on different dates even one minute apart.
	late := time.Date(2025, 11, 3, 23, 59, 0, 0, time.UTC)
	early := time.Date(2025, 11, 4, 0, 1, 0, 0, time.UTC)

	stats := AggregateDaily([]models.Crossing{
		{MMSI: 1, CrossingTime: late, Direction: models.DirectionEastToWest},
		{MMSI: 1, CrossingTime: early, Direction: models.DirectionWestToEast},
	}, nil, nil)

	require.Len(t, stats, 2)
	assert.Equal(t, "2025-11-03", stats[0].Date)
	assert.Equal(t, "2025-11-04", stats[1].Date)
	assert.Equal(t, 1, stats[0].TotalCrossings)
	assert.Equal(t, 1, stats[1].TotalCrossings)
}
