package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/models"
)

// frostElements are the observation elements requested from the Frost API.
const frostElements = "wind_speed,wind_from_direction,max_wind_speed_of_gust(PT1H),air_temperature,air_pressure_at_sea_level"

// WeatherClient fetches observations from the met.no Frost API for the
// configured station.
type WeatherClient struct {
	cfg  config.WeatherConfig
	http *http.Client
}

func NewWeatherClient(cfg config.WeatherConfig) *WeatherClient {
	return &WeatherClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// frostResponse mirrors the subset of the Frost JSON-LD payload we consume.
type frostResponse struct {
	Data []struct {
		ReferenceTime time.Time `json:"referenceTime"`
		Observations  []struct {
			ElementID string   `json:"elementId"`
			Value     *float64 `json:"value"`
		} `json:"observations"`
	} `json:"data"`
}

// FetchObservations returns the station's observations inside [from, to).
// Observations missing an element keep that field nil.
func (c *WeatherClient) FetchObservations(ctx context.Context, from, to time.Time) ([]models.WeatherObservation, error) {
	params := url.Values{
		"sources":       {c.cfg.Station},
		"elements":      {frostElements},
		"referencetime": {fmt.Sprintf("%s/%s", from.Format(time.RFC3339), to.Format(time.RFC3339))},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Frost uses HTTP Basic auth with the client id as username.
	if c.cfg.ClientID != "" {
		req.SetBasicAuth(c.cfg.ClientID, "")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized {
			log.Println("⚠️ Weather API authentication failed - check MET_CLIENT_ID")
		}
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("weather fetch failed: %d - %s", resp.StatusCode, string(body))
	}

	var payload frostResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	return parseFrostObservations(&payload, c.cfg.Station), nil
}

func parseFrostObservations(payload *frostResponse, station string) []models.WeatherObservation {
	observations := make([]models.WeatherObservation, 0, len(payload.Data))
	for _, entry := range payload.Data {
		obs := models.WeatherObservation{
			Timestamp: entry.ReferenceTime,
			Station:   station,
		}
		seen := false
		for _, elem := range entry.Observations {
			if elem.Value == nil {
				continue
			}
			v := *elem.Value
			switch elem.ElementID {
			case "wind_speed":
				obs.WindSpeed = &v
			case "wind_from_direction":
				obs.WindDirection = &v
			case "max_wind_speed_of_gust(PT1H)":
				obs.WindGust = &v
			case "air_temperature":
				obs.AirTemperature = &v
			case "air_pressure_at_sea_level":
				obs.Pressure = &v
			default:
				continue
			}
			seen = true
		}
		if seen {
			observations = append(observations, obs)
		}
	}
	return observations
}
