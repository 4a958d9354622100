package kv

import (
	"lintang/neuracity/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// storedSegment raw segment yang disimpan di pebble. Seq urutan asli, dipakai biar segment id hasil BuildGraph tetap sama.
type storedSegment struct {
	Seq           int64
	FromLat       float64
	FromLon       float64
	ToLat         float64
	ToLon         float64
	LengthM       float64
	DriveSpeedKmh float64
	WalkSpeedKmh  float64
	ExternalID    string
	StreetName    string
	RoadClass     string
}

func toStored(seq int, r datastructure.RawSegment) storedSegment {
	return storedSegment{
		Seq:           int64(seq),
		FromLat:       r.From.Lat,
		FromLon:       r.From.Lon,
		ToLat:         r.To.Lat,
		ToLon:         r.To.Lon,
		LengthM:       r.LengthM,
		DriveSpeedKmh: r.DriveSpeedKmh,
		WalkSpeedKmh:  r.WalkSpeedKmh,
		ExternalID:    r.ExternalID,
		StreetName:    r.StreetName,
		RoadClass:     r.RoadClass,
	}
}

func (s storedSegment) toRaw() datastructure.RawSegment {
	return datastructure.RawSegment{
		From:          datastructure.NewCoordinate(s.FromLat, s.FromLon),
		To:            datastructure.NewCoordinate(s.ToLat, s.ToLon),
		LengthM:       s.LengthM,
		DriveSpeedKmh: s.DriveSpeedKmh,
		WalkSpeedKmh:  s.WalkSpeedKmh,
		ExternalID:    s.ExternalID,
		StreetName:    s.StreetName,
		RoadClass:     s.RoadClass,
	}
}

func encodeSegments(segs []storedSegment) ([]byte, error) {
	encoded, err := binary.Marshal(segs)
	if err != nil {
		return nil, err
	}
	return Compress(encoded)
}

func decodeSegments(bb []byte) ([]storedSegment, error) {
	raw, err := Decompress(bb)
	if err != nil {
		return nil, err
	}
	var segs []storedSegment
	if err := binary.Unmarshal(raw, &segs); err != nil {
		return nil, err
	}
	return segs, nil
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
