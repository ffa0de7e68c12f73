package core

import (
	"sort"
	"time"
)

// TimePoint is a single timestamped measurement (°C).
type TimePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is a per-location temperature sequence. Times and Values are
// parallel slices; within one analysis call Times must be monotonically
// non-decreasing. Readers are responsible for merging and sorting raw
// sources before the series reaches the analysis core.
type Series struct {
	Name   string      `json:"name"`
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

// Len returns the number of points in the series.
func (s Series) Len() int {
	if len(s.Times) < len(s.Values) {
		return len(s.Times)
	}
	return len(s.Values)
}

// IsEmpty reports whether the series holds no points.
func (s Series) IsEmpty() bool {
	return s.Len() == 0
}

// Points materializes the series as TimePoint pairs.
func (s Series) Points() []TimePoint {
	n := s.Len()
	pts := make([]TimePoint, n)
	for i := 0; i < n; i++ {
		pts[i] = TimePoint{Time: s.Times[i], Value: s.Values[i]}
	}
	return pts
}

// MergeSeries combines points from several raw sources into a single series
// sorted by timestamp. Sources for one location may overlap in time; points
// are kept as-is (no deduplication), matching the exploratory nature of the
// data set.
func MergeSeries(name string, parts ...Series) Series {
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	pts := make([]TimePoint, 0, total)
	for _, p := range parts {
		pts = append(pts, p.Points()...)
	}
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Time.Before(pts[j].Time)
	})

	merged := Series{
		Name:   name,
		Times:  make([]time.Time, len(pts)),
		Values: make([]float64, len(pts)),
	}
	for i, pt := range pts {
		merged.Times[i] = pt.Time
		merged.Values[i] = pt.Value
	}
	return merged
}
