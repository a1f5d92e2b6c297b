package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanFetchWindowRecent(t *testing.T) {
	now := time.Date(2025, 11, 17, 10, 0, 0, 0, time.UTC)

	// Every date in the horizon has data: fetch the recent window.
	existing := map[string]bool{}
	for d := 0; d <= 14; d++ {
		existing[now.AddDate(0, 0, -d).Format("2006-01-02")] = true
	}

	w := PlanFetchWindow(now, existing, 14)
	assert.False(t, w.Backfill)
	assert.Equal(t, now.Add(-48*time.Hour), w.From)
	assert.Equal(t, now, w.To)
}

func TestPlanFetchWindowBackfill(t *testing.T) {
	now := time.Date(2025, 11, 17, 10, 0, 0, 0, time.UTC)

	existing := map[string]bool{}
	for d := 0; d <= 14; d++ {
		existing[now.AddDate(0, 0, -d).Format("2006-01-02")] = true
	}
	// Punch two holes; the oldest one wins.
	delete(existing, "2025-11-07")
	delete(existing, "2025-11-10")

	w := PlanFetchWindow(now, existing, 14)
	assert.True(t, w.Backfill)
	assert.Equal(t, time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC), w.To)
}

func TestPlanFetchWindowIgnoresRecentGaps(t *testing.T) {
	now := time.Date(2025, 11, 17, 10, 0, 0, 0, time.UTC)

	// Only yesterday is missing; the recent fetch covers it, so no
	// backfill mode.
	existing := map[string]bool{}
	for d := 2; d <= 14; d++ {
		existing[now.AddDate(0, 0, -d).Format("2006-01-02")] = true
	}

	w := PlanFetchWindow(now, existing, 14)
	assert.False(t, w.Backfill)
}

func TestPlanFetchWindowEmptyDatabase(t *testing.T) {
	now := time.Date(2025, 11, 17, 10, 0, 0, 0, time.UTC)

	// Nothing stored yet: backfill from the start of the horizon.
	w := PlanFetchWindow(now, map[string]bool{}, 14)
	assert.True(t, w.Backfill)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), w.From)
}
