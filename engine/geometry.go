// Package engine implements transit event detection for the strait:
// line-crossing detection, waiting-zone tracking, event correlation and
// daily aggregation. All geometry uses planar/haversine approximations,
// which is adequate for a strait a few tens of kilometers wide.
package engine

import (
	"math"
)

const earthRadiusM = 6371000.0

// orientEpsilon bounds the orientation cross product below which three
// points count as collinear. Coordinates are decimal degrees, so segment
// vectors are O(1) and genuine crossings sit many orders above this.
const orientEpsilon = 1e-12

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PointInCircle reports whether p lies within radiusM meters of center.
func PointInCircle(p, center Point, radiusM float64) bool {
	return HaversineMeters(p, center) <= radiusM
}

// DistanceToLineMeters approximates the distance from p to the segment a-b
// as the minimum of the distances to both endpoints and the midpoint. For a
// ~48km line and a 50km cutoff the error of this approximation is well under
// the slack in the cutoff.
func DistanceToLineMeters(p, a, b Point) float64 {
	mid := Point{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
	d := HaversineMeters(p, a)
	if m := HaversineMeters(p, mid); m < d {
		d = m
	}
	if e := HaversineMeters(p, b); e < d {
		d = e
	}
	return d
}

// orientation is the cross product of (b-a) x (p-a) in a local
// equirectangular projection: longitudes are scaled by cos(lat) so a degree
// of longitude and a degree of latitude span comparable distances at this
// latitude. Positive means p is left of a->b, negative right, ~zero collinear.
func orientation(a, b, p Point, cosLat float64) float64 {
	abx := (b.Lon - a.Lon) * cosLat
	aby := b.Lat - a.Lat
	apx := (p.Lon - a.Lon) * cosLat
	apy := p.Lat - a.Lat
	return abx*apy - aby*apx
}

func orientSign(v float64) int {
	switch {
	case v > orientEpsilon:
		return 1
	case v < -orientEpsilon:
		return -1
	default:
		return 0
	}
}

func midLatCos(pts ...Point) float64 {
	var sum float64
	for _, p := range pts {
		sum += p.Lat
	}
	return math.Cos(radians(sum / float64(len(pts))))
}

// SegmentsCross reports whether segments a1-a2 and b1-b2 properly intersect.
// Degenerate contact (an endpoint landing exactly on the other segment, or
// collinear overlap) is treated as no crossing: a track that touches the
// line without passing it must not fire on two consecutive reports.
func SegmentsCross(a1, a2, b1, b2 Point) bool {
	cosLat := midLatCos(a1, a2, b1, b2)

	d1 := orientSign(orientation(b1, b2, a1, cosLat))
	d2 := orientSign(orientation(b1, b2, a2, cosLat))
	d3 := orientSign(orientation(a1, a2, b1, cosLat))
	d4 := orientSign(orientation(a1, a2, b2, cosLat))

	if d1 == 0 || d2 == 0 || d3 == 0 || d4 == 0 {
		return false
	}
	return d1 != d2 && d3 != d4
}

// lineSide returns which side of the infinite extension of a->b the point
// lies on, as an orientation sign.
func lineSide(a, b, p Point) int {
	return orientSign(orientation(a, b, p, midLatCos(a, b)))
}

// crossRatio returns the fraction along prev->curr at which the segment
// meets the infinite line a->b, computed from the perpendicular distance of
// each endpoint to the line. The projection scale cancels in the ratio.
func crossRatio(prev, curr, a, b Point) float64 {
	cosLat := midLatCos(a, b)
	d1 := math.Abs(orientation(a, b, prev, cosLat))
	d2 := math.Abs(orientation(a, b, curr, cosLat))
	if d1+d2 == 0 {
		return 0
	}
	return d1 / (d1 + d2)
}
