package kv

import (
	"errors"
	"fmt"
	"sort"

	"lintang/neuracity/pkg/concurrent"
	"lintang/neuracity/pkg/datastructure"

	"github.com/cockroachdb/pebble"
	"github.com/k0kubun/go-ansi"
	"github.com/kelindar/binary"
	"github.com/schollz/progressbar/v3"
	"github.com/uber/h3-go/v4"
)

const (
	segmentPrefix = "seg:"
	// segmentUpperBound ';' satu byte setelah ':'
	segmentUpperBound = "seg;"
	countKey          = "meta:segment_count"

	cellResolution = 9
)

var ErrNoSegments = errors.New("kv: no road segments stored")

type KVDB struct {
	db      *pebble.DB
	workers int
}

func NewKVDB(db *pebble.DB) *KVDB {
	return &KVDB{db: db, workers: 4}
}

// Open buka pebble db di dir. opts nil -> default options.
func Open(dir string, opts *pebble.Options) (*KVDB, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", dir, err)
	}
	return NewKVDB(db), nil
}

type saveSegmentsJob struct {
	key  string
	segs []storedSegment
}

// segmentKey key pebble = prefix + h3 cell (res 9) dari titik tengah segment.
func segmentKey(r datastructure.RawSegment) string {
	cell := h3.LatLngToCell(h3.NewLatLng((r.From.Lat+r.To.Lat)/2, (r.From.Lon+r.To.Lon)/2), cellResolution)
	return segmentPrefix + cell.String()
}

/*
SaveSegments simpan raw segment hasil preprocessing, dikelompokkan per h3 cell. isi lama di-overwrite.
value per key = []storedSegment di-encode kelindar/binary lalu di-compress zstd.
*/
func (k *KVDB) SaveSegments(raws []datastructure.RawSegment) error {
	if err := k.db.DeleteRange([]byte(segmentPrefix), []byte(segmentUpperBound), pebble.Sync); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}

	bar := newProgressBar(len(raws), "[cyan][1/2][reset] Membuat h3 index untuk road segment...")
	buckets := make(map[string][]storedSegment)
	keys := []string{}
	for i, r := range raws {
		key := segmentKey(r)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], toStored(i, r))
		bar.Add(1)
	}
	fmt.Println("")

	bar = newProgressBar(len(keys), "[cyan][2/2][reset] saving h3 indexed segment to pebble db...")
	workers := concurrent.NewWorkerPool[saveSegmentsJob, error](k.workers, len(keys))
	for _, key := range keys {
		workers.AddJob(saveSegmentsJob{key: key, segs: buckets[key]})
	}
	workers.Close()

	workers.Start(k.saveSegments)
	workers.Wait()

	var firstErr error
	for err := range workers.CollectResults() {
		bar.Add(1)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	fmt.Println("")
	if firstErr != nil {
		return firstErr
	}

	count, err := binary.Marshal(int64(len(raws)))
	if err != nil {
		return err
	}
	return k.db.Set([]byte(countKey), count, pebble.Sync)
}

func (k *KVDB) saveSegments(job saveSegmentsJob) error {
	val, err := encodeSegments(job.segs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", job.key, err)
	}
	if err := k.db.Set([]byte(job.key), val, pebble.Sync); err != nil {
		return fmt.Errorf("save %s: %w", job.key, err)
	}
	return nil
}

// LoadSegments semua segment yang disimpan SaveSegments, dengan urutan yang sama seperti saat disimpan.
func (k *KVDB) LoadSegments() ([]datastructure.RawSegment, error) {
	iter, err := k.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(segmentPrefix),
		UpperBound: []byte(segmentUpperBound),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	stored := []storedSegment{}
	for iter.First(); iter.Valid(); iter.Next() {
		segs, err := decodeSegments(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
		stored = append(stored, segs...)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, ErrNoSegments
	}

	if want, err := k.segmentCount(); err == nil && want != int64(len(stored)) {
		return nil, fmt.Errorf("kv: expected %d segments, found %d", want, len(stored))
	}

	sort.Slice(stored, func(i, j int) bool {
		return stored[i].Seq < stored[j].Seq
	})
	raws := make([]datastructure.RawSegment, len(stored))
	for i, s := range stored {
		raws[i] = s.toRaw()
	}
	return raws, nil
}

func (k *KVDB) segmentCount() (int64, error) {
	val, closer, err := k.db.Get([]byte(countKey))
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	var count int64
	if err := binary.Unmarshal(val, &count); err != nil {
		return 0, err
	}
	return count, nil
}

func (k *KVDB) Close() error {
	return k.db.Close()
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
