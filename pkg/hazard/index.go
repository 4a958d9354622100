package hazard

import (
	"math"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/geo"

	"github.com/uber/h3-go/v4"
	"golang.org/x/exp/slices"
)

// sampleIndex bucket hazard sample per h3 cell. query radius ambil GridDisk di sekitar cell query lalu filter haversine exact.
type sampleIndex struct {
	samples    []datastructure.HazardSample
	cells      map[h3.Cell][]int
	resolution int
}

func newSampleIndex(samples []datastructure.HazardSample, resolution int) *sampleIndex {
	idx := &sampleIndex{
		samples:    samples,
		cells:      make(map[h3.Cell][]int),
		resolution: resolution,
	}
	for i, s := range samples {
		cell := h3.LatLngToCell(h3.NewLatLng(s.Point.Lat, s.Point.Lon), resolution)
		idx.cells[cell] = append(idx.cells[cell], i)
	}
	return idx
}

func (idx *sampleIndex) len() int {
	return len(idx.samples)
}

// within panggil visit untuk setiap sample yang jaraknya <= radiusM dari (lat, lon), urut index sample.
func (idx *sampleIndex) within(lat, lon, radiusM float64, visit func(i int, distM float64)) {
	if len(idx.samples) == 0 {
		return
	}

	candidates := make([]int, 0, 8)
	for _, cell := range diskCoveringRadius(lat, lon, radiusM/1000.0, idx.resolution) {
		candidates = append(candidates, idx.cells[cell]...)
	}
	slices.Sort(candidates)

	for _, i := range candidates {
		s := idx.samples[i]
		d := geo.DistanceMeters(lat, lon, s.Point.Lat, s.Point.Lon)
		if d <= radiusM {
			visit(i, d)
		}
	}
}

/*
diskCoveringRadius cell h3 di sekitar (lat, lon) yang pasti menutupi lingkaran radius searchRadiusKm.
sample dalam radius punya center cell paling jauh searchRadius + 2*edge dari center origin,
dan ring ke-k menjangkau minimal 1.5*edge*k dari center origin. edge dihitung dari luas cell origin.
https://observablehq.com/@nrabinowitz/h3-radius-lookup?collection=@nrabinowitz/h3
*/
func diskCoveringRadius(lat, lon, searchRadiusKm float64, resolution int) []h3.Cell {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), resolution)
	originArea := h3.CellAreaKm2(origin)
	edgeKm := math.Sqrt(2 * originArea / (3 * math.Sqrt(3)))

	k := int(math.Ceil((searchRadiusKm+2*edgeKm)/(1.5*edgeKm))) + 1
	return h3.GridDisk(origin, k)
}
