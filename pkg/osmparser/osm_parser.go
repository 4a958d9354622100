package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"lintang/neuracity/pkg/datastructure"

	"github.com/k0kubun/go-ansi"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type OsmParser struct {
	log *zap.Logger
}

func NewOsmParser(log *zap.Logger) *OsmParser {
	return &OsmParser{log: log}
}

// ParseFile baca file .osm.pbf jadi raw segment road network.
func (p *OsmParser) ParseFile(ctx context.Context, path string) ([]datastructure.RawSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm file: %w", err)
	}
	defer f.Close()
	return p.Parse(ctx, f)
}

/*
Parse dua pass: pass pertama ambil way jalan (node di-skip), pass kedua ambil koordinat node yang dipakai way tadi
(way & relation di-skip). hasilnya dipecah di node intersection oleh WaysToSegments.
*/
func (p *OsmParser) Parse(ctx context.Context, r io.ReadSeeker) ([]datastructure.RawSegment, error) {
	scanner := osmpbf.New(ctx, r, runtime.GOMAXPROCS(-1))
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	bar := newProgressBar(-1, "[cyan][1/3][reset] memproses openstreetmap way...")
	ways := []*osm.Way{}
	wayNodes := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !isOsmWayUsedByCars(way.TagMap()) {
			continue
		}
		ways = append(ways, way)
		for _, n := range way.Nodes {
			wayNodes[n.ID] = struct{}{}
		}
		bar.Add(1)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan osm ways: %w", err)
	}
	scanner.Close()
	fmt.Println("")

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner = osmpbf.New(ctx, r, runtime.GOMAXPROCS(-1))
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	bar = newProgressBar(len(wayNodes), "[cyan][2/3][reset] memproses openstreetmap node...")
	coords := make(map[osm.NodeID]datastructure.Coordinate, len(wayNodes))
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, used := wayNodes[node.ID]; used {
			coords[node.ID] = datastructure.NewCoordinate(node.Lat, node.Lon)
			bar.Add(1)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm nodes: %w", err)
	}
	fmt.Println("")

	raws := WaysToSegments(ways, coords)
	p.log.Info("openstreetmap parsed",
		zap.Int("ways", len(ways)),
		zap.Int("nodes", len(coords)),
		zap.Int("segments", len(raws)))
	return raws, nil
}

func newProgressBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
