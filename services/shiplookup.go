package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

const marinesiaProfileURL = "https://api.marinesia.com/api/v1/vessel/%d/profile"

// ShipProfile holds the static vessel data the registry knows about.
type ShipProfile struct {
	Length   *float64 `json:"length"`
	Width    *float64 `json:"width"`
	Callsign *string  `json:"callsign"`
	IMO      *int64   `json:"imo"`
	Country  *string  `json:"country"`
}

// ShipLookup queries the Marinesia vessel registry. Lookups are best-effort:
// a missing key, an unknown vessel or a registry hiccup all yield nil without
// failing the run.
type ShipLookup struct {
	apiKey string
	http   *http.Client
}

func NewShipLookup() *ShipLookup {
	return &ShipLookup{
		apiKey: os.Getenv("MARINESIA_KEY"),
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (s *ShipLookup) Enabled() bool {
	return s.apiKey != ""
}

// Profile fetches a vessel's registry profile, or nil if unknown.
func (s *ShipLookup) Profile(ctx context.Context, mmsi int64) *ShipProfile {
	if !s.Enabled() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(marinesiaProfileURL, mmsi), nil)
	if err != nil {
		return nil
	}
	q := req.URL.Query()
	q.Set("key", s.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := s.http.Do(req)
	if err != nil {
		log.Printf("⚠️ Ship lookup failed for MMSI %d: %v", mmsi, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ Ship lookup error for MMSI %d: %d", mmsi, resp.StatusCode)
		return nil
	}

	var result struct {
		Error bool         `json:"error"`
		Data  *ShipProfile `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("⚠️ Ship lookup decode failed for MMSI %d: %v", mmsi, err)
		return nil
	}
	if result.Error || result.Data == nil {
		return nil
	}
	return result.Data
}
