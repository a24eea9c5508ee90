package application

import (
	"context"
	"errors"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/observability/metrics"
	results "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/domain"
)

// SeriesFactory builds a series package from the rows of one package. The
// attribute row is the last row of the package; the points are the
// accumulated observations in delivery order.
type SeriesFactory interface {
	// Kind names the series kind for observability.
	Kind() string
	// AggregateBy names the columns whose change starts a new package.
	AggregateBy() []string
	// CreateSeries builds the series for one completed package.
	CreateSeries(row Row, points []results.TimeSeriesPoint) (*results.Series, error)
}

// SeriesScanner is a single-pass scanner over a result-row source, emitting
// one series per package. A package ends when an aggregate-by column or the
// calculation id changes, or when the next row's time is not the previous
// row's time advanced by one resolution step.
//
// The scanner holds at most one package of points in memory. It is not safe
// for concurrent use and cannot be restarted.
type SeriesScanner struct {
	src     RowSource
	factory SeriesFactory

	prev    Row
	points  []results.TimeSeriesPoint
	current *results.Series
	err     error
	done    bool
}

// NewSeriesScanner constructs a scanner over src using the given factory.
func NewSeriesScanner(src RowSource, factory SeriesFactory) (*SeriesScanner, error) {
	if src == nil {
		return nil, errors.New("results: nil row source")
	}
	if factory == nil {
		return nil, errors.New("results: nil series factory")
	}
	return &SeriesScanner{src: src, factory: factory}, nil
}

// Next advances to the next series. It returns false when the source is
// exhausted or an error occurred; check Err afterwards.
func (s *SeriesScanner) Next(ctx context.Context) bool {
	if s.err != nil || s.done {
		return false
	}
	for {
		if err := ctx.Err(); err != nil {
			s.err = err
			return false
		}

		row, ok, err := s.src.Next(ctx)
		if err != nil {
			s.err = err
			return false
		}
		if !ok {
			s.done = true
			if s.prev == nil {
				return false
			}
			s.current, s.err = s.factory.CreateSeries(s.prev, s.points)
			s.prev, s.points = nil, nil
			if s.err == nil {
				metrics.IncSeriesEmitted(s.factory.Kind())
			}
			return s.err == nil
		}

		point, err := row.point()
		if err != nil {
			s.err = err
			return false
		}

		if s.prev != nil {
			boundary, err := s.newPackage(s.prev, row, point)
			if err != nil {
				s.err = err
				return false
			}
			if boundary {
				s.current, s.err = s.factory.CreateSeries(s.prev, s.points)
				s.prev = row
				s.points = []results.TimeSeriesPoint{point}
				if s.err == nil {
					metrics.IncSeriesEmitted(s.factory.Kind())
				}
				return s.err == nil
			}
		}

		s.prev = row
		s.points = append(s.points, point)
	}
}

// Series returns the series produced by the last successful Next call.
func (s *SeriesScanner) Series() *results.Series { return s.current }

// Err returns the first error encountered while scanning.
func (s *SeriesScanner) Err() error { return s.err }

// newPackage reports whether current starts a new series package relative to
// prev.
func (s *SeriesScanner) newPackage(prev, current Row, currentPoint results.TimeSeriesPoint) (bool, error) {
	for _, column := range s.factory.AggregateBy() {
		if prev.optional(column) != current.optional(column) {
			return true, nil
		}
	}
	if prev.optional(ColumnCalculationID) != current.optional(ColumnCalculationID) {
		return true, nil
	}

	// Contiguity: the current time must be the previous time advanced by the
	// previous row's resolution. Gaps and out-of-order rows both break here.
	resolution, err := prev.resolution()
	if err != nil {
		return false, err
	}
	prevTime, err := prev.timeValue(ColumnTime)
	if err != nil {
		return false, err
	}
	expected, err := resolution.Next(prevTime)
	if err != nil {
		return false, err
	}
	return !currentPoint.Time.Equal(expected), nil
}
