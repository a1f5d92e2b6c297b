package models

import (
	"time"
)

// Direction enum - which way a vessel crossed the reference line
type Direction string

const (
	DirectionEastToWest Direction = "E->W"
	DirectionWestToEast Direction = "W->E"
)

// ZoneID enum - the two waiting zones flanking the strait
type ZoneID string

const (
	ZoneEast ZoneID = "east"
	ZoneWest ZoneID = "west"
)

// Ship model - static vessel data keyed by MMSI
type Ship struct {
	MMSI         int64    `gorm:"primaryKey;column:mmsi" json:"mmsi"`
	Name         string   `gorm:"column:name" json:"name"`
	ShipType     *int     `gorm:"column:ship_type" json:"shipType,omitempty"`
	ShipTypeName string   `gorm:"column:ship_type_name" json:"shipTypeName"`
	Callsign     *string  `gorm:"column:callsign" json:"callsign,omitempty"`
	Destination  *string  `gorm:"column:destination" json:"destination,omitempty"`
	Length       *float64 `gorm:"column:length" json:"length,omitempty"`
	Width        *float64 `gorm:"column:width" json:"width,omitempty"`

	// Set once the external registry lookup has been attempted, so we
	// never hammer the registry for vessels it does not know.
	InfoFetchedAt *time.Time `gorm:"column:info_fetched_at" json:"infoFetchedAt,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Positions     []Position     `gorm:"foreignKey:MMSI;references:MMSI" json:"positions,omitempty"`
	Crossings     []Crossing     `gorm:"foreignKey:MMSI;references:MMSI" json:"crossings,omitempty"`
	WaitingEvents []WaitingEvent `gorm:"foreignKey:MMSI;references:MMSI" json:"waitingEvents,omitempty"`
}

func (Ship) TableName() string {
	return "ships"
}

// Position model - one AIS position report. (mmsi, timestamp) is unique so
// re-ingesting an overlapping time window is idempotent.
type Position struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MMSI      int64     `gorm:"column:mmsi;index;uniqueIndex:idx_position_mmsi_time" json:"mmsi"`
	Timestamp time.Time `gorm:"column:timestamp;index;uniqueIndex:idx_position_mmsi_time" json:"timestamp"`
	Latitude  float64   `gorm:"column:latitude" json:"latitude"`
	Longitude float64   `gorm:"column:longitude" json:"longitude"`
	SOG       *float64  `gorm:"column:sog" json:"sog,omitempty"` // knots
	COG       *float64  `gorm:"column:cog" json:"cog,omitempty"` // degrees
	Heading   *int      `gorm:"column:heading" json:"heading,omitempty"`
}

func (Position) TableName() string {
	return "positions"
}

// Crossing model - a detected crossing of the reference line. Immutable once
// created; (mmsi, crossing_time) is the dedup key.
type Crossing struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MMSI         int64     `gorm:"column:mmsi;index;uniqueIndex:idx_crossing_mmsi_time" json:"mmsi"`
	CrossingTime time.Time `gorm:"column:crossing_time;index;uniqueIndex:idx_crossing_mmsi_time" json:"crossingTime"`
	Latitude     float64   `gorm:"column:crossing_lat" json:"latitude"`
	Longitude    float64   `gorm:"column:crossing_lon" json:"longitude"`
	Direction    Direction `gorm:"column:direction" json:"direction"`

	Ship *Ship `gorm:"foreignKey:MMSI;references:MMSI" json:"ship,omitempty"`
}

func (Crossing) TableName() string {
	return "crossings"
}

// WaitingEvent model - a vessel loitering in one of the waiting zones.
// Created when the dwell threshold is met, extended while the vessel stays
// slow and in-zone, closed on exit. Open events carry enough state
// (end_time = last qualifying report, sample_count) to resume tracking on
// the next run. Crossed/CrossingTime are filled in by the correlator;
// Resolved marks the verdict as final.
type WaitingEvent struct {
	ID              int64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	MMSI            int64      `gorm:"column:mmsi;index" json:"mmsi"`
	Zone            ZoneID     `gorm:"column:zone" json:"zone"`
	StartTime       time.Time  `gorm:"column:start_time;index" json:"startTime"`
	EndTime         time.Time  `gorm:"column:end_time" json:"endTime"`
	DurationMinutes int        `gorm:"column:duration_minutes" json:"durationMinutes"`
	AvgSpeed        float64    `gorm:"column:avg_speed" json:"avgSpeed"`
	SampleCount     int        `gorm:"column:sample_count" json:"sampleCount"`
	Open            bool       `gorm:"column:open;index" json:"open"`
	Crossed         bool       `gorm:"column:crossed" json:"crossed"`
	Resolved        bool       `gorm:"column:resolved;index" json:"resolved"`
	CrossingTime    *time.Time `gorm:"column:crossing_time" json:"crossingTime,omitempty"`

	Ship *Ship `gorm:"foreignKey:MMSI;references:MMSI" json:"ship,omitempty"`
}

func (WaitingEvent) TableName() string {
	return "waiting_events"
}

// Duration of the event so far.
func (w *WaitingEvent) Duration() time.Duration {
	return w.EndTime.Sub(w.StartTime)
}

// WeatherObservation model - one sample from the weather collaborator.
type WeatherObservation struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Timestamp      time.Time `gorm:"column:timestamp;index;uniqueIndex:idx_weather_station_time" json:"timestamp"`
	Station        string    `gorm:"column:station;uniqueIndex:idx_weather_station_time" json:"station"`
	WindSpeed      *float64  `gorm:"column:wind_speed" json:"windSpeed,omitempty"` // m/s
	WindDirection  *float64  `gorm:"column:wind_direction" json:"windDirection,omitempty"`
	WindGust       *float64  `gorm:"column:wind_gust" json:"windGust,omitempty"` // m/s
	AirTemperature *float64  `gorm:"column:air_temperature" json:"airTemperature,omitempty"`
	Pressure       *float64  `gorm:"column:pressure" json:"pressure,omitempty"`
}

func (WeatherObservation) TableName() string {
	return "weather"
}

// DailyStat model - derived aggregate per UTC calendar date, recomputed and
// upserted as a whole row. Weather fields stay NULL when no samples exist.
type DailyStat struct {
	Date           string   `gorm:"primaryKey;column:date;type:date" json:"date"` // YYYY-MM-DD
	TotalCrossings int      `gorm:"column:total_crossings" json:"totalCrossings"`
	AvgWindSpeed   *float64 `gorm:"column:avg_wind_speed" json:"avgWindSpeed,omitempty"`
	MaxWindGust    *float64 `gorm:"column:max_wind_gust" json:"maxWindGust,omitempty"`
	WaitingEvents  int      `gorm:"column:waiting_events" json:"waitingEvents"`
	AvgWaitingTime *float64 `gorm:"column:avg_waiting_time" json:"avgWaitingTime,omitempty"` // minutes
}

func (DailyStat) TableName() string {
	return "daily_stats"
}

// Ship type mapping (AIS ship type codes)
var shipTypes = map[int]string{
	30: "Fishing", 31: "Towing", 32: "Towing (large)",
	33: "Dredging", 34: "Diving", 35: "Military",
	36: "Sailing", 37: "Pleasure craft",
	40: "High speed craft", 50: "Pilot",
	51: "Search and rescue", 52: "Tug",
	53: "Port tender", 54: "Anti-pollution",
	55: "Law enforcement", 58: "Medical",
	60: "Passenger", 70: "Cargo", 80: "Tanker",
	90: "Other",
}

// ShipTypeName converts an AIS ship type code to a readable name. Codes
// within a decade share the base type (e.g. 71-74 are hazardous cargo).
func ShipTypeName(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if name, ok := shipTypes[*code]; ok {
		return name
	}
	if name, ok := shipTypes[*code/10*10]; ok {
		return name
	}
	return "Unknown"
}
