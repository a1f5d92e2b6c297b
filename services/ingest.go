package services

import (
	"github.com/straitwatch/backend/config"
	"github.com/straitwatch/backend/engine"
	"github.com/straitwatch/backend/models"
)

// TrackToPositions converts raw API reports into position rows, dropping
// malformed reports without coordinates. The result keeps the API's order.
func TrackToPositions(mmsi int64, points []TrackPoint) []models.Position {
	positions := make([]models.Position, 0, len(points))
	for i := range points {
		pt := &points[i]
		if pt.Latitude == nil || pt.Longitude == nil {
			continue
		}
		positions = append(positions, models.Position{
			MMSI:      mmsi,
			Timestamp: pt.MsgTime,
			Latitude:  *pt.Latitude,
			Longitude: *pt.Longitude,
			SOG:       pt.SpeedOverGround,
			COG:       pt.CourseOverGround,
			Heading:   pt.TrueHeading,
		})
	}
	return positions
}

// FilterForStorage keeps positions within the store radius of the reference
// line, plus the newest report regardless of distance so the map always has
// a current marker per vessel. Detection still runs on the full track; this
// only bounds what is persisted.
func FilterForStorage(positions []models.Position, cfg config.Engine) []models.Position {
	lineStart := engine.Point{Lat: cfg.LineStart.Lat, Lon: cfg.LineStart.Lon}
	lineEnd := engine.Point{Lat: cfg.LineEnd.Lat, Lon: cfg.LineEnd.Lon}

	kept := make([]models.Position, 0, len(positions))
	for i := range positions {
		p := engine.Point{Lat: positions[i].Latitude, Lon: positions[i].Longitude}
		last := i == len(positions)-1
		if last || engine.DistanceToLineMeters(p, lineStart, lineEnd) <= cfg.StoreRadius {
			kept = append(kept, positions[i])
		}
	}
	return kept
}

// ShipFromTrack derives the vessel row from a track's first report.
func ShipFromTrack(mmsi int64, points []TrackPoint) models.Ship {
	ship := models.Ship{MMSI: mmsi}
	if len(points) > 0 {
		ship.Name = points[0].Name
		ship.ShipType = points[0].ShipType
	}
	ship.ShipTypeName = models.ShipTypeName(ship.ShipType)
	return ship
}
