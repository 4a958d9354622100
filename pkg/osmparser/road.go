package osmparser

import (
	"fmt"
	"strconv"
	"strings"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/geo"

	"github.com/paulmach/osm"
)

const (
	defaultWalkSpeedKmh = 5.0
	mphToKmh            = 1.609344
)

var ValidRoadType = map[string]bool{
	"motorway":       true,
	"trunk":          true,
	"primary":        true,
	"secondary":      true,
	"tertiary":       true,
	"unclassified":   true,
	"residential":    true,
	"motorway_link":  true,
	"trunk_link":     true,
	"primary_link":   true,
	"secondary_link": true,
	"tertiary_link":  true,
	"living_street":  true,
	"road":           true,
	"service":        true,
}

func RoadTypeMaxSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 95
	case "trunk":
		return 85
	case "primary":
		return 75
	case "secondary":
		return 65
	case "tertiary":
		return 50
	case "unclassified":
		return 50
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 90
	case "trunk_link":
		return 80
	case "primary_link":
		return 70
	case "secondary_link":
		return 60
	case "tertiary_link":
		return 50
	case "living_street":
		return 20
	default:
		return 40
	}
}

// isOsmWayUsedByCars way yang masuk road network. graph-nya undirected, oneway diabaikan.
func isOsmWayUsedByCars(tagMap map[string]string) bool {
	highway, ok := tagMap["highway"]
	if !ok || !ValidRoadType[highway] {
		return false
	}
	if motorcar, ok := tagMap["motorcar"]; ok && motorcar == "no" {
		return false
	}
	if motorVehicle, ok := tagMap["motor_vehicle"]; ok && motorVehicle == "no" {
		return false
	}
	if access, ok := tagMap["access"]; ok {
		if !(access == "yes" || access == "permissive" || access == "designated" || access == "delivery" || access == "destination") {
			return false
		}
	}
	if area, ok := tagMap["area"]; ok && area == "yes" {
		return false
	}
	return true
}

// ParseMaxSpeed tag maxspeed osm ("50", "30 mph", "60;50"). false kalau bukan angka (misal "none", "signals").
func ParseMaxSpeed(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, ';'); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	factor := 1.0
	if strings.HasSuffix(v, "mph") {
		factor = mphToKmh
		v = strings.TrimSpace(strings.TrimSuffix(v, "mph"))
	} else if strings.HasSuffix(v, "km/h") {
		v = strings.TrimSpace(strings.TrimSuffix(v, "km/h"))
	}
	speed, err := strconv.ParseFloat(v, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}

type wayInfo struct {
	roadClass  string
	streetName string
	maxSpeed   float64
}

func getWayInfo(tags osm.Tags) wayInfo {
	info := wayInfo{
		roadClass:  tags.Find("highway"),
		streetName: tags.Find("name"),
	}
	if speed, ok := ParseMaxSpeed(tags.Find("maxspeed")); ok {
		info.maxSpeed = speed
	} else {
		info.maxSpeed = RoadTypeMaxSpeed(info.roadClass)
	}
	return info
}

/*
WaysToSegments pecah way jadi raw segment di setiap node intersection (node yang dipakai >= 2 kali di seluruh way)
dan di ujung way. panjang segment = jumlah jarak haversine antar node osm di antaranya, jadi geometri lengkungan jalan
tetap dihitung walaupun graph cuma punya node intersection.

way yang node-nya tidak ada di coords di-skip.
*/
func WaysToSegments(ways []*osm.Way, coords map[osm.NodeID]datastructure.Coordinate) []datastructure.RawSegment {
	usedInRoad := make(map[osm.NodeID]int)
	for _, way := range ways {
		for _, n := range way.Nodes {
			usedInRoad[n.ID]++
		}
	}

	raws := []datastructure.RawSegment{}
	for _, way := range ways {
		if !isOsmWayUsedByCars(way.TagMap()) || len(way.Nodes) < 2 || !hasAllCoords(way, coords) {
			continue
		}
		info := getWayInfo(way.Tags)

		from := way.Nodes[0].ID
		length := 0.0
		part := 0
		for i := 1; i < len(way.Nodes); i++ {
			prev := coords[way.Nodes[i-1].ID]
			curr := coords[way.Nodes[i].ID]
			length += geo.DistanceMeters(prev.Lat, prev.Lon, curr.Lat, curr.Lon)

			to := way.Nodes[i].ID
			if usedInRoad[to] < 2 && i != len(way.Nodes)-1 {
				continue
			}
			if to != from {
				raws = append(raws, datastructure.RawSegment{
					From:          coords[from],
					To:            coords[to],
					LengthM:       length,
					DriveSpeedKmh: info.maxSpeed,
					WalkSpeedKmh:  defaultWalkSpeedKmh,
					ExternalID:    fmt.Sprintf("way/%d/%d", way.ID, part),
					StreetName:    info.streetName,
					RoadClass:     info.roadClass,
				})
				part++
			}
			from = to
			length = 0
		}
	}
	return raws
}

func hasAllCoords(way *osm.Way, coords map[osm.NodeID]datastructure.Coordinate) bool {
	for _, n := range way.Nodes {
		if _, ok := coords[n.ID]; !ok {
			return false
		}
	}
	return true
}
