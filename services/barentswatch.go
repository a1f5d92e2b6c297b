// Package services provides external API clients and business logic services
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/straitwatch/backend/config"
)

const barentswatchTimeFormat = "2006-01-02T15:04:05+00:00"

// TrackPoint is one raw AIS report as returned by the historic track API.
// Coordinates are pointers because the feed occasionally emits reports
// without them; such reports are dropped before storage.
type TrackPoint struct {
	MsgTime          time.Time `json:"msgtime"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	SpeedOverGround  *float64  `json:"speedOverGround"`
	CourseOverGround *float64  `json:"courseOverGround"`
	TrueHeading      *int      `json:"trueHeading"`
	Name             string    `json:"name"`
	ShipType         *int      `json:"shipType"`
}

// BarentswatchClient talks to the Barentswatch historic AIS API. The access
// token is fetched once per client; batch runs are short enough that token
// expiry mid-run is not a concern.
type BarentswatchClient struct {
	cfg   config.BarentswatchConfig
	http  *http.Client
	token string
}

func NewBarentswatchClient(cfg config.BarentswatchConfig) *BarentswatchClient {
	return &BarentswatchClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

// Authenticate performs the OAuth2 client-credentials exchange.
func (c *BarentswatchClient) Authenticate(ctx context.Context) error {
	log.Println("🔑 Authenticating with Barentswatch...")

	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {"ais"},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("authentication failed: %d - %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("authentication returned empty access token")
	}

	c.token = tokenResp.AccessToken
	log.Println("✓ Authenticated with Barentswatch")
	return nil
}

// MMSIInArea lists the vessels seen inside the monitored bounding box during
// the given window.
func (c *BarentswatchClient) MMSIInArea(ctx context.Context, from, to time.Time) ([]int64, error) {
	log.Printf("📡 Fetching MMSI list for %s to %s...", from.Format(barentswatchTimeFormat), to.Format(barentswatchTimeFormat))

	nw, se := c.cfg.AreaNorthWest, c.cfg.AreaSouthEast
	body := map[string]interface{}{
		"msgtimefrom": from.Format(barentswatchTimeFormat),
		"msgtimeto":   to.Format(barentswatchTimeFormat),
		"polygon": map[string]interface{}{
			"type": "Polygon",
			// GeoJSON wants lon,lat order and a closed ring.
			"coordinates": [][][]float64{{
				{nw.Lon, nw.Lat},
				{se.Lon, nw.Lat},
				{se.Lon, se.Lat},
				{nw.Lon, se.Lat},
				{nw.Lon, nw.Lat},
			}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.MMSIAreaURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setAuth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mmsi list request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mmsi list failed: %d - %s", resp.StatusCode, string(respBody))
	}

	var mmsis []int64
	if err := json.NewDecoder(resp.Body).Decode(&mmsis); err != nil {
		return nil, fmt.Errorf("decode mmsi list: %w", err)
	}

	log.Printf("✓ Found %d MMSIs", len(mmsis))
	return mmsis, nil
}

// FetchTrack returns one vessel's raw position reports for the window,
// ordered as the API delivers them (oldest first). A vessel with no data in
// the window yields an empty slice, not an error.
func (c *BarentswatchClient) FetchTrack(ctx context.Context, mmsi int64, from, to time.Time) ([]TrackPoint, error) {
	trackURL := fmt.Sprintf("%s/%d/%s/%s",
		c.cfg.TrackURL, mmsi,
		from.Format(barentswatchTimeFormat),
		to.Format(barentswatchTimeFormat),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, err
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("track request for %d: %w", mmsi, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("track fetch for %d failed: %d - %s", mmsi, resp.StatusCode, string(respBody))
	}

	var points []TrackPoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("decode track for %d: %w", mmsi, err)
	}
	return points, nil
}

func (c *BarentswatchClient) setAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
}
