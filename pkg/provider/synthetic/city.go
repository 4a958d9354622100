package synthetic

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"lintang/neuracity/pkg/datastructure"
	"lintang/neuracity/pkg/util"

	"github.com/jaswdr/faker"
)

// Area kawasan kota dengan level traffic & noise dasar.
type Area struct {
	Name        string
	Center      datastructure.Coordinate
	TrafficBase float64
	NoiseBase   float64
}

func AtlantaAreas() []Area {
	return []Area{
		{Name: "MIDTOWN", Center: datastructure.NewCoordinate(33.7850, -84.3850), TrafficBase: 0.65, NoiseBase: 78},
		{Name: "DOWNTOWN", Center: datastructure.NewCoordinate(33.7490, -84.3880), TrafficBase: 0.75, NoiseBase: 83},
		{Name: "CAMPUS", Center: datastructure.NewCoordinate(33.7750, -84.3960), TrafficBase: 0.30, NoiseBase: 56},
		{Name: "PARK_DISTRICT", Center: datastructure.NewCoordinate(33.7850, -84.3730), TrafficBase: 0.15, NoiseBase: 42},
		{Name: "RESIDENTIAL_ZONE", Center: datastructure.NewCoordinate(33.7600, -84.3800), TrafficBase: 0.40, NoiseBase: 58},
	}
}

type Config struct {
	Seed           int64   `mapstructure:"seed"`
	OriginLat      float64 `mapstructure:"origin_lat"`
	OriginLon      float64 `mapstructure:"origin_lon"`
	Rows           int     `mapstructure:"rows"`
	Cols           int     `mapstructure:"cols"`
	SpacingDeg     float64 `mapstructure:"spacing_deg"`
	ArterialEvery  int     `mapstructure:"arterial_every"`
	SensorsPerArea int     `mapstructure:"sensors_per_area"`
	Issues         int     `mapstructure:"issues"`
}

// DefaultConfig grid kira-kira 3 x 4.5 km yang mencakup kelima area.
func DefaultConfig() Config {
	return Config{
		Seed:           42,
		OriginLat:      33.7420,
		OriginLon:      -84.4020,
		Rows:           20,
		Cols:           14,
		SpacingDeg:     0.0025,
		ArterialEvery:  4,
		SensorsPerArea: 5,
		Issues:         20,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Rows < 2 {
		c.Rows = def.Rows
	}
	if c.Cols < 2 {
		c.Cols = def.Cols
	}
	if c.SpacingDeg <= 0 {
		c.SpacingDeg = def.SpacingDeg
	}
	if c.OriginLat == 0 && c.OriginLon == 0 {
		c.OriginLat, c.OriginLon = def.OriginLat, def.OriginLon
	}
	if c.ArterialEvery <= 0 {
		c.ArterialEvery = def.ArterialEvery
	}
	if c.SensorsPerArea <= 0 {
		c.SensorsPerArea = def.SensorsPerArea
	}
	if c.Issues < 0 {
		c.Issues = 0
	}
	return c
}

/*
City kota sintetis buat dev/demo tanpa database: road network grid dan sample traffic, noise, incident.
sample deterministik untuk seed dan jam yang sama, congestion ikut pola rush hour dan weekend.
*/
type City struct {
	cfg   Config
	areas []Area
	now   func() time.Time
}

func NewCity(cfg Config, areas []Area) *City {
	if len(areas) == 0 {
		areas = AtlantaAreas()
	}
	return &City{cfg: cfg.withDefaults(), areas: areas, now: time.Now}
}

func (c *City) WithClock(now func() time.Time) *City {
	c.now = now
	return c
}

func (c *City) Areas() []Area {
	return c.areas
}

// RoadNetwork grid Rows x Cols. tiap ArterialEvery baris/kolom jadi jalan primary, sisanya residential.
func (c *City) RoadNetwork() []datastructure.RawSegment {
	fake := faker.NewWithSeed(rand.NewSource(c.cfg.Seed))
	rowNames := make([]string, c.cfg.Rows)
	for i := range rowNames {
		rowNames[i] = fake.Address().StreetName()
	}
	colNames := make([]string, c.cfg.Cols)
	for j := range colNames {
		colNames[j] = fake.Address().StreetName()
	}

	point := func(i, j int) datastructure.Coordinate {
		return datastructure.NewCoordinate(c.cfg.OriginLat+float64(i)*c.cfg.SpacingDeg, c.cfg.OriginLon+float64(j)*c.cfg.SpacingDeg)
	}
	class := func(k int) (string, float64) {
		if k%c.cfg.ArterialEvery == 0 {
			return "primary", 60
		}
		return "residential", 30
	}

	raws := make([]datastructure.RawSegment, 0, c.cfg.Rows*(c.cfg.Cols-1)+c.cfg.Cols*(c.cfg.Rows-1))
	for i := 0; i < c.cfg.Rows; i++ {
		roadClass, speed := class(i)
		for j := 0; j+1 < c.cfg.Cols; j++ {
			raws = append(raws, datastructure.RawSegment{
				From: point(i, j), To: point(i, j+1),
				DriveSpeedKmh: speed, WalkSpeedKmh: 5,
				ExternalID: fmt.Sprintf("grid/r%d/c%d-c%d", i, j, j+1),
				StreetName: rowNames[i], RoadClass: roadClass,
			})
		}
	}
	for j := 0; j < c.cfg.Cols; j++ {
		roadClass, speed := class(j)
		for i := 0; i+1 < c.cfg.Rows; i++ {
			raws = append(raws, datastructure.RawSegment{
				From: point(i, j), To: point(i+1, j),
				DriveSpeedKmh: speed, WalkSpeedKmh: 5,
				ExternalID: fmt.Sprintf("grid/c%d/r%d-r%d", j, i, i+1),
				StreetName: colNames[j], RoadClass: roadClass,
			})
		}
	}
	return raws
}

// RushHourMultiplier 1.5 jam 7-9 dan 17-19, 0.5 malam (22-6), selain itu 1.
func RushHourMultiplier(hour int) float64 {
	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		return 1.5
	case hour >= 22 || hour <= 6:
		return 0.5
	default:
		return 1.0
	}
}

func WeekdayMultiplier(day time.Weekday) float64 {
	if day == time.Saturday || day == time.Sunday {
		return 0.7
	}
	return 1.0
}

// fakerAt faker dengan seed per jam, jadi sample stabil selama satu jam.
func (c *City) fakerAt(t time.Time, stream int64) faker.Faker {
	hourBucket := t.Unix() / 3600
	return faker.NewWithSeed(rand.NewSource(c.cfg.Seed*1_000_003 + hourBucket*31 + stream))
}

func (c *City) sensorPoint(a Area, i int) datastructure.Coordinate {
	offset := float64(i) * 0.001
	return datastructure.NewCoordinate(a.Center.Lat+offset, a.Center.Lon+offset)
}

type sensorReading struct {
	id         string
	point      datastructure.Coordinate
	congestion float64
	noiseDB    float64
}

// readings congestion = base * rush * weekday +- 0.15, noise = base + 10 * congestion +- 5.
func (c *City) readings(t time.Time) []sensorReading {
	fake := c.fakerAt(t, 1)
	rush := RushHourMultiplier(t.Hour())
	weekday := WeekdayMultiplier(t.Weekday())

	out := make([]sensorReading, 0, len(c.areas)*c.cfg.SensorsPerArea)
	for _, a := range c.areas {
		for i := 0; i < c.cfg.SensorsPerArea; i++ {
			congestion := util.ClampUnit(a.TrafficBase*rush*weekday + float64(fake.IntBetween(-150, 150))/1000)
			noise := util.Clamp(a.NoiseBase+congestion*10+float64(fake.IntBetween(-50, 50))/10, 30, 100)
			out = append(out, sensorReading{
				id:         fmt.Sprintf("%s_SEG_%d", a.Name, i+1),
				point:      c.sensorPoint(a, i),
				congestion: util.RoundFloat(congestion, 3),
				noiseDB:    util.RoundFloat(noise, 1),
			})
		}
	}
	return out
}

func (c *City) trafficSamples() []datastructure.HazardSample {
	t := c.now()
	readings := c.readings(t)
	samples := make([]datastructure.HazardSample, 0, len(readings))
	for _, r := range readings {
		samples = append(samples, datastructure.HazardSample{
			Kind: datastructure.HazardCongestion, SourceID: r.id, Point: r.point, Congestion: r.congestion, Timestamp: t,
		})
	}
	return samples
}

func (c *City) noiseSamples() []datastructure.HazardSample {
	t := c.now()
	readings := c.readings(t)
	samples := make([]datastructure.HazardSample, 0, len(readings))
	for _, r := range readings {
		samples = append(samples, datastructure.HazardSample{
			Kind: datastructure.HazardNoise, SourceID: r.id, Point: r.point, NoiseDB: r.noiseDB, Timestamp: t,
		})
	}
	return samples
}

// incidentSamples tipe accident lebih parah & lebih urgent dari pothole/traffic_light/other.
func (c *City) incidentSamples() []datastructure.HazardSample {
	t := c.now()
	fake := c.fakerAt(t, 2)
	issueTypes := []string{"accident", "pothole", "traffic_light", "other"}
	statuses := []string{datastructure.IssueStatusOpen, datastructure.IssueStatusOpen, datastructure.IssueStatusOpen,
		datastructure.IssueStatusInProgress}

	samples := make([]datastructure.HazardSample, 0, c.cfg.Issues)
	for i := 0; i < c.cfg.Issues; i++ {
		a := c.areas[fake.IntBetween(0, len(c.areas)-1)]
		lat := a.Center.Lat + float64(fake.IntBetween(-10000, 10000))/1e6
		lon := a.Center.Lon + float64(fake.IntBetween(-10000, 10000))/1e6

		issueType := fake.RandomStringElement(issueTypes)
		var severity, urgency float64
		if issueType == "accident" {
			severity = float64(fake.IntBetween(300, 1000)) / 1000
			urgency = float64(fake.IntBetween(500, 1000)) / 1000
		} else {
			severity = float64(fake.IntBetween(200, 800)) / 1000
			urgency = float64(fake.IntBetween(200, 700)) / 1000
		}
		samples = append(samples, datastructure.HazardSample{
			Kind:      datastructure.HazardIncident,
			SourceID:  fmt.Sprintf("%s-%d", issueType, i+1),
			Point:     datastructure.NewCoordinate(lat, lon),
			Severity:  severity,
			Urgency:   urgency,
			Status:    fake.RandomStringElement(statuses),
			Timestamp: t.Add(-time.Duration(fake.IntBetween(0, 7*24)) * time.Hour),
		})
	}
	return samples
}

type TrafficProvider struct{ city *City }

func (c *City) Traffic() *TrafficProvider { return &TrafficProvider{city: c} }

func (p *TrafficProvider) GetSegments(ctx context.Context) ([]datastructure.HazardSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.city.trafficSamples(), nil
}

type NoiseProvider struct{ city *City }

func (c *City) Noise() *NoiseProvider { return &NoiseProvider{city: c} }

func (p *NoiseProvider) GetSegments(ctx context.Context) ([]datastructure.HazardSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.city.noiseSamples(), nil
}

type IssueProvider struct{ city *City }

func (c *City) Issues() *IssueProvider { return &IssueProvider{city: c} }

func (p *IssueProvider) GetOpenIncidents(ctx context.Context) ([]datastructure.HazardSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.city.incidentSamples(), nil
}
