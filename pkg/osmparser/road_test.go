package osmparser_test

import (
	"testing"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/geo"
	"lintang/neuracity/pkg/osmparser"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func way(id osm.WayID, nodes []osm.NodeID, tags ...osm.Tag) *osm.Way {
	w := &osm.Way{ID: id, Tags: tags}
	for _, n := range nodes {
		w.Nodes = append(w.Nodes, osm.WayNode{ID: n})
	}
	return w
}

func TestParseMaxSpeed(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"50", 50, true},
		{"30 mph", 30 * 1.609344, true},
		{"60;50", 60, true},
		{"40 km/h", 40, true},
		{"none", 0, false},
		{"", 0, false},
		{"-5", 0, false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, ok := osmparser.ParseMaxSpeed(c.in)
			assert.Equal(t, c.ok, ok)
			assert.InDelta(t, c.want, got, 1e-9)
		})
	}
}

func TestWaysToSegments(t *testing.T) {
	// Peachtree: 1-2-3-4, Edgewood: 5-3-6. node 3 intersection.
	coords := map[osm.NodeID]datastructure.Coordinate{
		1: datastructure.NewCoordinate(33.7480, -84.3880),
		2: datastructure.NewCoordinate(33.7485, -84.3881),
		3: datastructure.NewCoordinate(33.7490, -84.3880),
		4: datastructure.NewCoordinate(33.7500, -84.3880),
		5: datastructure.NewCoordinate(33.7490, -84.3890),
		6: datastructure.NewCoordinate(33.7490, -84.3870),
	}
	ways := []*osm.Way{
		way(10, []osm.NodeID{1, 2, 3, 4},
			osm.Tag{Key: "highway", Value: "primary"}, osm.Tag{Key: "name", Value: "Peachtree St"}, osm.Tag{Key: "maxspeed", Value: "35 mph"}),
		way(11, []osm.NodeID{5, 3, 6},
			osm.Tag{Key: "highway", Value: "residential"}, osm.Tag{Key: "name", Value: "Edgewood Ave"}),
		way(12, []osm.NodeID{1, 5}, osm.Tag{Key: "highway", Value: "footway"}),
		way(13, []osm.NodeID{4, 6},
			osm.Tag{Key: "highway", Value: "service"}, osm.Tag{Key: "access", Value: "private"}),
		way(14, []osm.NodeID{4, 99}, osm.Tag{Key: "highway", Value: "tertiary"}),
	}

	raws := osmparser.WaysToSegments(ways, coords)
	require.Len(t, raws, 4)

	first := raws[0]
	assert.Equal(t, coords[1], first.From)
	assert.Equal(t, coords[3], first.To)
	wantLen := geo.DistanceMeters(33.7480, -84.3880, 33.7485, -84.3881) + geo.DistanceMeters(33.7485, -84.3881, 33.7490, -84.3880)
	assert.InDelta(t, wantLen, first.LengthM, 1e-6)
	assert.InDelta(t, 35*1.609344, first.DriveSpeedKmh, 1e-9)
	assert.Equal(t, 5.0, first.WalkSpeedKmh)
	assert.Equal(t, "Peachtree St", first.StreetName)
	assert.Equal(t, "primary", first.RoadClass)
	assert.Equal(t, "way/10/0", first.ExternalID)

	assert.Equal(t, coords[3], raws[1].From)
	assert.Equal(t, coords[4], raws[1].To)

	edgewood := raws[2]
	assert.Equal(t, coords[5], edgewood.From)
	assert.Equal(t, coords[3], edgewood.To)
	assert.Equal(t, 30.0, edgewood.DriveSpeedKmh)
	assert.Equal(t, "way/11/0", edgewood.ExternalID)
	assert.Equal(t, "way/11/1", raws[3].ExternalID)

	for _, r := range raws {
		assert.NoError(t, r.Validate())
	}
}
