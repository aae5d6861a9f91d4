// Package analytics provides the common types for yearly crime-count series
// and the structured errors shared by every forecasting stage.
package analytics

import (
	"gonum.org/v1/gonum/stat"
)

// Row is a raw (period, value) observation as read from the dataset.
type Row struct {
	Period int
	Value  float64
}

// Point is a single observation of a TimeSeries.
type Point struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// TimeSeries is an ordered yearly series with strictly increasing periods.
// It is immutable once built; accessors return copies.
type TimeSeries struct {
	points []Point
}

// Len returns the number of observations
func (ts *TimeSeries) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.points)
}

// Points returns a copy of the observations
func (ts *TimeSeries) Points() []Point {
	out := make([]Point, ts.Len())
	if ts != nil {
		copy(out, ts.points)
	}
	return out
}

// Values extracts just the values from the series
func (ts *TimeSeries) Values() []float64 {
	values := make([]float64, ts.Len())
	for i := range values {
		values[i] = ts.points[i].Value
	}
	return values
}

// Periods extracts just the periods from the series
func (ts *TimeSeries) Periods() []int {
	periods := make([]int, ts.Len())
	for i := range periods {
		periods[i] = ts.points[i].Period
	}
	return periods
}

// First returns the earliest observation. The series must not be empty.
func (ts *TimeSeries) First() Point {
	return ts.points[0]
}

// Last returns the latest observation. The series must not be empty.
func (ts *TimeSeries) Last() Point {
	return ts.points[len(ts.points)-1]
}

// Gaps returns the years missing between the first and last period.
// Gaps are tolerated; the series is still treated as annual.
func (ts *TimeSeries) Gaps() []int {
	var gaps []int
	for i := 1; i < ts.Len(); i++ {
		for y := ts.points[i-1].Period + 1; y < ts.points[i].Period; y++ {
			gaps = append(gaps, y)
		}
	}
	return gaps
}

// Mean calculates the mean of all values
func (ts *TimeSeries) Mean() float64 {
	if ts.Len() == 0 {
		return 0
	}
	return stat.Mean(ts.Values(), nil)
}

// StdDev calculates the sample standard deviation of all values
func (ts *TimeSeries) StdDev() float64 {
	if ts.Len() < 2 {
		return 0
	}
	return stat.StdDev(ts.Values(), nil)
}
