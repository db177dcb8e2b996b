package core

import (
	"encoding/json"
	"time"
)

// Series is a time-indexed float series. Index and Values have equal length.
type Series struct {
	Index  []time.Time
	Values []float64
}

// NewSeries creates a series filled with value over index
func NewSeries(index []time.Time, value float64) Series {
	s := Series{
		Index:  append([]time.Time(nil), index...),
		Values: make([]float64, len(index)),
	}
	for i := range s.Values {
		s.Values[i] = value
	}
	return s
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.Values)
}

// Last returns the last value and false if the series is empty
func (s Series) Last() (float64, bool) {
	if len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[len(s.Values)-1], true
}

// At returns the first value recorded at t
func (s Series) At(t time.Time) (float64, bool) {
	for i, ts := range s.Index {
		if ts.Equal(t) {
			return s.Values[i], true
		}
	}
	return 0, false
}

type seriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// MarshalJSON encodes the series as a list of {time, value} points
func (s Series) MarshalJSON() ([]byte, error) {
	points := make([]seriesPoint, len(s.Values))
	for i := range s.Values {
		points[i] = seriesPoint{Time: s.Index[i], Value: s.Values[i]}
	}
	return json.Marshal(points)
}

// UnmarshalJSON decodes the {time, value} point list
func (s *Series) UnmarshalJSON(data []byte) error {
	var points []seriesPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return err
	}
	s.Index = make([]time.Time, len(points))
	s.Values = make([]float64, len(points))
	for i, p := range points {
		s.Index[i] = p.Time
		s.Values[i] = p.Value
	}
	return nil
}
