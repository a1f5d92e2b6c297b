package database

import (
	"fmt"
	"time"

	"github.com/straitwatch/backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence collaborator the detection engine writes through.
// Methods are safe for concurrent use from per-vessel goroutines; gorm
// serializes over its connection pool.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SavePositions inserts position reports, silently skipping duplicates on
// (mmsi, timestamp) so overlapping fetch windows stay idempotent.
func (s *Store) SavePositions(positions []models.Position) error {
	if len(positions) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mmsi"}, {Name: "timestamp"}},
		DoNothing: true,
	}).Create(&positions).Error
}

// UpsertShip refreshes the basic AIS fields, preserving registry-sourced
// columns (length, width, callsign) unless they are set on the argument.
func (s *Store) UpsertShip(ship *models.Ship) error {
	assign := []string{"name", "ship_type", "ship_type_name"}
	if ship.InfoFetchedAt != nil {
		assign = append(assign, "callsign", "destination", "length", "width", "info_fetched_at")
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mmsi"}},
		DoUpdates: clause.AssignmentColumns(assign),
	}).Create(ship).Error
}

// GetShip loads a ship by MMSI; returns nil without error when unknown.
func (s *Store) GetShip(mmsi int64) (*models.Ship, error) {
	var ship models.Ship
	if err := s.db.First(&ship, "mmsi = ?", mmsi).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ship, nil
}

// SaveCrossing inserts a crossing, ignoring duplicates on
// (mmsi, crossing_time) so re-running detection is idempotent.
func (s *Store) SaveCrossing(c *models.Crossing) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mmsi"}, {Name: "crossing_time"}},
		DoNothing: true,
	}).Create(c).Error
}

// CreateWaitingEvent persists a newly materialized waiting event.
func (s *Store) CreateWaitingEvent(w *models.WaitingEvent) error {
	return s.db.Create(w).Error
}

// UpdateWaitingEvent writes back an extended or closed waiting event.
func (s *Store) UpdateWaitingEvent(w *models.WaitingEvent) error {
	if w.ID == 0 {
		return fmt.Errorf("waiting event has no id")
	}
	return s.db.Save(w).Error
}

// OpenWaitingEvents returns events still being extended, for tracker resume.
func (s *Store) OpenWaitingEvents() ([]models.WaitingEvent, error) {
	var events []models.WaitingEvent
	err := s.db.Where("open = ?", true).Find(&events).Error
	return events, err
}

// UnresolvedWaitingEvents returns closed events awaiting a crossing verdict.
func (s *Store) UnresolvedWaitingEvents() ([]models.WaitingEvent, error) {
	var events []models.WaitingEvent
	err := s.db.Where("open = ? AND resolved = ?", false, false).Find(&events).Error
	return events, err
}

// CrossingsAfter returns a vessel's crossings in (after, until], ordered by
// time, for the correlator's look-ahead.
func (s *Store) CrossingsAfter(mmsi int64, after, until time.Time) ([]models.Crossing, error) {
	var crossings []models.Crossing
	err := s.db.Where("mmsi = ? AND crossing_time > ? AND crossing_time <= ?", mmsi, after, until).
		Order("crossing_time ASC").
		Find(&crossings).Error
	return crossings, err
}

// VesselTrack returns a vessel's positions in timestamp order.
func (s *Store) VesselTrack(mmsi int64, since time.Time) ([]models.Position, error) {
	var positions []models.Position
	err := s.db.Where("mmsi = ? AND timestamp >= ?", mmsi, since).
		Order("timestamp ASC").
		Find(&positions).Error
	return positions, err
}

// SaveWeather inserts observations, skipping duplicates per station+time.
func (s *Store) SaveWeather(obs []models.WeatherObservation) error {
	if len(obs) == 0 {
		return nil
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "station"}, {Name: "timestamp"}},
		DoNothing: true,
	}).Create(&obs).Error
}

// UpsertDailyStat replaces the whole row for a date; re-aggregation of the
// same date must yield the same row, never accumulate.
func (s *Store) UpsertDailyStat(stat *models.DailyStat) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(stat).Error
}

// EventsBetween loads everything the daily aggregator folds over.
func (s *Store) EventsBetween(from, to time.Time) ([]models.Crossing, []models.WaitingEvent, []models.WeatherObservation, error) {
	var crossings []models.Crossing
	if err := s.db.Where("crossing_time >= ? AND crossing_time < ?", from, to).Find(&crossings).Error; err != nil {
		return nil, nil, nil, err
	}
	var waits []models.WaitingEvent
	if err := s.db.Where("start_time >= ? AND start_time < ? AND open = ?", from, to, false).Find(&waits).Error; err != nil {
		return nil, nil, nil, err
	}
	var weather []models.WeatherObservation
	if err := s.db.Where("timestamp >= ? AND timestamp < ?", from, to).Find(&weather).Error; err != nil {
		return nil, nil, nil, err
	}
	return crossings, waits, weather, nil
}

// Summary holds the run-end counters logged by the collector.
type Summary struct {
	ShipsWithData     int64
	ShipsCrossed      int64
	TotalCrossings    int64
	WaitingEvents     int64
	AvgWaitingMinutes float64
}

// Summary computes overall dataset counters.
func (s *Store) Summary() (*Summary, error) {
	var out Summary
	if err := s.db.Model(&models.Position{}).Distinct("mmsi").Count(&out.ShipsWithData).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Crossing{}).Distinct("mmsi").Count(&out.ShipsCrossed).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Crossing{}).Count(&out.TotalCrossings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.WaitingEvent{}).Count(&out.WaitingEvents).Error; err != nil {
		return nil, err
	}
	var avg *float64
	if err := s.db.Model(&models.WaitingEvent{}).Select("AVG(duration_minutes)").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		out.AvgWaitingMinutes = *avg
	}
	return &out, nil
}

// DatesWithPositions returns the distinct UTC dates that already have
// position data since the given time, for backfill planning.
func (s *Store) DatesWithPositions(since time.Time) (map[string]bool, error) {
	var dates []string
	err := s.db.Model(&models.Position{}).
		Where("timestamp >= ?", since).
		Distinct("to_char(timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD')").
		Pluck("to_char(timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD')", &dates).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		seen[d] = true
	}
	return seen, nil
}
