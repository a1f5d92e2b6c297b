package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/straitwatch/backend/models"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	NATS         NATSConfig
	Barentswatch BarentswatchConfig
	Weather      WeatherConfig
	Engine       Engine
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type NATSConfig struct {
	Port int
	URL  string
}

// BarentswatchConfig holds credentials and endpoints for the historic AIS API.
type BarentswatchConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	MMSIAreaURL  string
	TrackURL     string

	// Bounding box polled for vessels, roughly 50km around the line.
	AreaNorthWest LatLon
	AreaSouthEast LatLon
}

// WeatherConfig holds the met.no Frost API settings.
type WeatherConfig struct {
	APIURL   string
	ClientID string
	Station  string // Svinøy Fyr, the closest station with full wind data
}

// LatLon is a geographic coordinate in decimal degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// WaitingZone is one of the two fixed circles where vessels hold before a
// crossing attempt.
type WaitingZone struct {
	ID     models.ZoneID
	Center LatLon
	Radius float64 // meters
}

// Engine holds the immutable detection constants. It is built once and
// passed into each component at construction; nothing mutates it afterwards.
type Engine struct {
	// Reference line across the strait.
	LineStart LatLon
	LineEnd   LatLon

	Zones []WaitingZone

	// A vessel below this speed counts as loitering.
	SpeedThreshold float64 // knots
	// Minimum dwell before a waiting event materializes.
	DurationThreshold time.Duration
	// Gap between consecutive reports beyond which the track is treated
	// as a fresh segment.
	StaleGap time.Duration
	// How long after a waiting event closes a crossing may still be
	// attributed to it.
	LookaheadWindow time.Duration
	// Upstream data retention; bounds backfill and cleanup.
	RetentionDays int
	// Positions farther than this from the line are not stored.
	StoreRadius float64 // meters

	// Which crossing direction a zone is assumed to be waiting for. The
	// east zone implying a westbound crossing is an assumption about
	// sailing intent, so it is configuration rather than a hard-coded rule.
	ExpectedDirection map[models.ZoneID]models.Direction
}

// Zone returns the zone definition for an id, or nil.
func (e Engine) Zone(id models.ZoneID) *WaitingZone {
	for i := range e.Zones {
		if e.Zones[i].ID == id {
			return &e.Zones[i]
		}
	}
	return nil
}

// DefaultEngine returns the Stad strait constants.
func DefaultEngine() Engine {
	return Engine{
		LineStart: LatLon{Lat: 62.194513, Lon: 5.100380},
		LineEnd:   LatLon{Lat: 62.442407, Lon: 4.342984},
		Zones: []WaitingZone{
			{ID: models.ZoneEast, Center: LatLon{Lat: 62.25, Lon: 5.3}, Radius: 10_000},
			{ID: models.ZoneWest, Center: LatLon{Lat: 62.25, Lon: 4.2}, Radius: 10_000},
		},
		SpeedThreshold:    3.0,
		DurationThreshold: 120 * time.Minute,
		StaleGap:          6 * time.Hour,
		LookaheadWindow:   48 * time.Hour,
		RetentionDays:     14,
		StoreRadius:       50_000,
		ExpectedDirection: map[models.ZoneID]models.Direction{
			models.ZoneEast: models.DirectionEastToWest,
			models.ZoneWest: models.DirectionWestToEast,
		},
	}
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 3001)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	natsPort, err := getIntEnv("NATS_PORT", 4233)
	if err != nil {
		return nil, fmt.Errorf("invalid NATS_PORT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "straitwatch"),
			Password: getEnv("DB_PASSWORD", "straitwatch_dev_password"),
			Name:     getEnv("DB_NAME", "straitwatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		NATS: NATSConfig{
			Port: natsPort,
			URL:  getEnv("NATS_URL", fmt.Sprintf("nats://localhost:%d", natsPort)),
		},
		Barentswatch: BarentswatchConfig{
			ClientID:      os.Getenv("BARENTSWATCH_CLIENT_ID"),
			ClientSecret:  os.Getenv("BARENTSWATCH_CLIENT_SECRET"),
			AuthURL:       getEnv("BARENTSWATCH_AUTH_URL", "https://id.barentswatch.no/connect/token"),
			MMSIAreaURL:   getEnv("BARENTSWATCH_MMSI_URL", "https://historic.ais.barentswatch.no/v1/historic/mmsiinarea"),
			TrackURL:      getEnv("BARENTSWATCH_TRACK_URL", "https://historic.ais.barentswatch.no/v1/historic/tracks"),
			AreaNorthWest: LatLon{Lat: 62.75, Lon: 4.0},
			AreaSouthEast: LatLon{Lat: 61.85, Lon: 5.5},
		},
		Weather: WeatherConfig{
			APIURL:   getEnv("MET_API_URL", "https://frost.met.no/observations/v0.jsonld"),
			ClientID: os.Getenv("MET_CLIENT_ID"),
			Station:  getEnv("WEATHER_STATION", "SN59800"),
		},
		Engine: DefaultEngine(),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
