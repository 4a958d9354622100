package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// haversine distance
const earthRadiusKM = 6371.0

type Location struct {
	Latitude  float64
	Longitude float64
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func NewLocation(latDegree float64, lonDegree float64) Location {
	return Location{
		Latitude:  degreeToRadians(latDegree),
		Longitude: degreeToRadians(lonDegree),
	}
}

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

func havFormula(locationOne Location, locationTwo Location) float64 {
	latDiff := locationOne.Latitude - locationTwo.Latitude
	lonDiff := locationOne.Longitude - locationTwo.Longitude

	return havFunction(latDiff) + math.Cos(locationOne.Latitude)*math.Cos(locationTwo.Latitude)*havFunction(lonDiff)
}

func archaversine(havAngle float64) float64 {
	// clamp, floating point bisa bikin hav sedikit > 1
	return 2.0 * math.Asin(math.Sqrt(math.Min(1, math.Max(0, havAngle))))
}

// HaversineDistance great-circle distance dalam km.
func HaversineDistance(locationOne Location, locationTwo Location) float64 {
	return earthRadiusKM * archaversine(havFormula(locationOne, locationTwo))
}

// CalculateHaversineDistance great-circle distance dalam km antara 2 titik lat/lon (derajat).
func CalculateHaversineDistance(latOne, lonOne, latTwo, lonTwo float64) float64 {
	return HaversineDistance(NewLocation(latOne, lonOne), NewLocation(latTwo, lonTwo))
}

// DistanceMeters great-circle distance dalam meter.
func DistanceMeters(latOne, lonOne, latTwo, lonTwo float64) float64 {
	return CalculateHaversineDistance(latOne, lonOne, latTwo, lonTwo) * 1000.0
}

// MidPoint titik tengah great-circle segment (lat1,lon1)-(lat2,lon2).
func MidPoint(lat1, lon1 float64, lat2, lon2 float64) (float64, float64) {
	a := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lon1))
	b := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lon2))
	mid := s2.LatLngFromPoint(s2.Interpolate(0.5, a, b))
	return mid.Lat.Degrees(), mid.Lng.Degrees()
}

// BoundAroundPoint bounding box yang memuat semua titik dalam radiusM meter dari (lat, lon).
func BoundAroundPoint(lat, lon, radiusM float64) orb.Bound {
	return orbgeo.NewBoundAroundPoint(orb.Point{lon, lat}, radiusM)
}
