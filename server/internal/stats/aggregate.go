package stats

import (
	"github.com/coffeetrack/coffeetrack/server/internal/model"
)

// PlantStats is the summary reported for one plant.
// Aggregates are nil when no source value was present.
type PlantStats struct {
	MaxHeightCM        *float64 `json:"max_height_cm"`
	MinHeightCM        *float64 `json:"min_height_cm"`
	AvgHeightCM        *float64 `json:"avg_height_cm"`
	AvgTemperatureC    *float64 `json:"avg_temperature_c"`
	AvgSoilMoisturePct *float64 `json:"avg_soil_moisture_pct"`
	AvgHumidityPct     *float64 `json:"avg_humidity_pct"`

	// StagesCounts maps each non-empty stage to the number of logs naming it.
	// Never nil, so it encodes as {} rather than null.
	StagesCounts map[string]int `json:"stages_counts"`

	LogsCount     int `json:"logs_count"`
	ReadingsCount int `json:"readings_count"`
}

// Summarize reduces a plant's growth logs and sensor readings to PlantStats.
// Absent measurements are skipped, never treated as zero.
func Summarize(logs []model.GrowthLog, readings []model.SensorReading) PlantStats {
	out := PlantStats{
		StagesCounts:  make(map[string]int),
		LogsCount:     len(logs),
		ReadingsCount: len(readings),
	}

	var height series
	for _, l := range logs {
		height.add(l.HeightCM)
		if l.Stage != nil && *l.Stage != "" {
			out.StagesCounts[*l.Stage]++
		}
	}
	out.MaxHeightCM = height.max()
	out.MinHeightCM = height.min()
	out.AvgHeightCM = height.mean()

	var temp, soil, humidity series
	for _, r := range readings {
		temp.add(r.TemperatureC)
		soil.add(r.SoilMoisturePct)
		humidity.add(r.HumidityPct)
	}
	out.AvgTemperatureC = temp.mean()
	out.AvgSoilMoisturePct = soil.mean()
	out.AvgHumidityPct = humidity.mean()

	return out
}

// series accumulates the present values of an optional measurement.
type series struct {
	n      int
	sum    float64
	lo, hi float64
}

func (s *series) add(v *float64) {
	if v == nil {
		return
	}
	x := *v
	if s.n == 0 || x < s.lo {
		s.lo = x
	}
	if s.n == 0 || x > s.hi {
		s.hi = x
	}
	s.sum += x
	s.n++
}

func (s *series) mean() *float64 {
	if s.n == 0 {
		return nil
	}
	m := s.sum / float64(s.n)
	// Rounding can push the mean a hair outside [lo, hi] for equal values.
	if m < s.lo {
		m = s.lo
	} else if m > s.hi {
		m = s.hi
	}
	return &m
}

func (s *series) min() *float64 {
	if s.n == 0 {
		return nil
	}
	v := s.lo
	return &v
}

func (s *series) max() *float64 {
	if s.n == 0 {
		return nil
	}
	v := s.hi
	return &v
}
