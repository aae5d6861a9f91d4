package analytics

import (
	"math"
	"sort"
)

// SeriesBuilder accumulates rows and produces a validated TimeSeries.
// A builder is single-use and not safe for concurrent use.
type SeriesBuilder struct {
	rows []Row
}

// NewSeriesBuilder creates a builder with room for capacity rows
func NewSeriesBuilder(capacity int) *SeriesBuilder {
	if capacity < 0 {
		capacity = 0
	}
	return &SeriesBuilder{rows: make([]Row, 0, capacity)}
}

// Add appends a row. Validation happens in Build.
func (b *SeriesBuilder) Add(period int, value float64) *SeriesBuilder {
	b.rows = append(b.rows, Row{Period: period, Value: value})
	return b
}

// AddRows appends rows in any order
func (b *SeriesBuilder) AddRows(rows ...Row) *SeriesBuilder {
	b.rows = append(b.rows, rows...)
	return b
}

// Build sorts the rows by period and validates them.
//
// It fails with EmptySeries when no rows were added, InvalidValue when a
// value is negative or not finite, and DuplicatePeriod when two rows share
// a period.
func (b *SeriesBuilder) Build() (*TimeSeries, error) {
	if len(b.rows) == 0 {
		return nil, NewError(KindEmptySeries, StageSeriesBuilder, "", "no rows for selection")
	}

	points := make([]Point, len(b.rows))
	for i, r := range b.rows {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return nil, NewError(KindInvalidValue, StageSeriesBuilder, "",
				"period %d has non-finite value", r.Period)
		}
		if r.Value < 0 {
			return nil, NewError(KindInvalidValue, StageSeriesBuilder, "",
				"period %d has negative value %g", r.Period, r.Value)
		}
		points[i] = Point{Period: r.Period, Value: r.Value}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Period < points[j].Period
	})

	for i := 1; i < len(points); i++ {
		if points[i].Period == points[i-1].Period {
			return nil, NewError(KindDuplicatePeriod, StageSeriesBuilder, "",
				"period %d appears more than once", points[i].Period)
		}
	}

	return &TimeSeries{points: points}, nil
}

// BuildSeries is a shorthand for NewSeriesBuilder(len(rows)).AddRows(rows...).Build()
func BuildSeries(rows []Row) (*TimeSeries, error) {
	return NewSeriesBuilder(len(rows)).AddRows(rows...).Build()
}
