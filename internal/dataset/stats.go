package dataset

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Mean returns the arithmetic mean of a numeric variable, skipping missing cells.
func (d *Dataset) Mean(variable string) (float64, error) {
	vals, err := d.values(variable)
	if err != nil {
		return 0, err
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return 0, fmt.Errorf("mean %q: %w", variable, err)
	}
	return m, nil
}

// Median returns the middle value, averaging the two middle values for even counts.
func (d *Dataset) Median(variable string) (float64, error) {
	vals, err := d.values(variable)
	if err != nil {
		return 0, err
	}
	m, err := stats.Median(vals)
	if err != nil {
		return 0, fmt.Errorf("median %q: %w", variable, err)
	}
	return m, nil
}

// Std returns the sample standard deviation (n-1 denominator).
// A single value yields NaN.
func (d *Dataset) Std(variable string) (float64, error) {
	vals, err := d.values(variable)
	if err != nil {
		return 0, err
	}
	if len(vals) < 2 {
		return math.NaN(), nil
	}
	s, err := stats.StandardDeviationSample(vals)
	if err != nil {
		return 0, fmt.Errorf("std %q: %w", variable, err)
	}
	return s, nil
}

// Percentile returns the p-th percentile (p in [0,100]) using linear
// interpolation between the closest ranks.
func (d *Dataset) Percentile(variable string, p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, fmt.Errorf("%w: got %v", ErrPercentileRange, p)
	}
	sorted, err := d.Sorted(variable)
	if err != nil {
		return 0, err
	}
	if len(sorted) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoValues, variable)
	}
	return Quantile(sorted, p/100), nil
}

func (d *Dataset) values(variable string) ([]float64, error) {
	vals, err := d.Floats(variable)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoValues, variable)
	}
	return vals, nil
}

// Quantile interpolates the q-th quantile (q in [0,1]) of an ascending slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// NearestQuantile returns the element closest to rank q*(n-1) of an ascending
// slice, rounding half away from zero. Summary quartiles use it.
func NearestQuantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	q = math.Max(0, math.Min(1, q))
	return sorted[int(math.Round(q*float64(len(sorted)-1)))]
}
