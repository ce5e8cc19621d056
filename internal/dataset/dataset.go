package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Kind is the inferred type of a variable.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	// KindBoolean columns read as 1/0, so their mean is the share of true values.
	KindBoolean Kind = "boolean"
)

var (
	// ErrUnknownVariable indicates the requested variable is not a column of the dataset.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrNotNumeric indicates a numeric statistic was requested for a categorical variable.
	ErrNotNumeric = errors.New("variable is not numeric")
	// ErrPercentileRange indicates a percentile outside [0,100].
	ErrPercentileRange = errors.New("percentile must be within [0,100]")
	// ErrNoValues indicates a variable without any non-missing value.
	ErrNoValues = errors.New("variable has no values")
)

// Dataset is an immutable in-memory table loaded once from a source.
// Every accessor returns copies; nothing mutates the underlying frame.
type Dataset struct {
	name string
	df   dataframe.DataFrame
}

// New wraps an already loaded frame.
func New(name string, df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("load dataset: %w", df.Err)
	}
	return &Dataset{name: name, df: df}, nil
}

// Name returns the base name of the source the dataset was loaded from.
func (d *Dataset) Name() string { return d.name }

// Names returns the column names in source order.
func (d *Dataset) Names() []string { return d.df.Names() }

// Rows returns the number of data rows.
func (d *Dataset) Rows() int { return d.df.Nrow() }

// Has reports whether variable is a column name.
func (d *Dataset) Has(variable string) bool {
	for _, n := range d.df.Names() {
		if n == variable {
			return true
		}
	}
	return false
}

// Kind returns the inferred kind of a variable.
func (d *Dataset) Kind(variable string) (Kind, error) {
	s, err := d.column(variable)
	if err != nil {
		return "", err
	}
	return kindOf(s), nil
}

// Select returns a new Dataset restricted to the given variables, in order.
func (d *Dataset) Select(variables []string) (*Dataset, error) {
	for _, v := range variables {
		if !d.Has(v) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, v)
		}
	}
	sub := d.df.Select(variables)
	if sub.Err != nil {
		return nil, fmt.Errorf("select %v: %w", variables, sub.Err)
	}
	return &Dataset{name: d.name, df: sub}, nil
}

// Floats returns the non-missing values of a numeric or boolean variable in row order.
func (d *Dataset) Floats(variable string) ([]float64, error) {
	s, err := d.column(variable)
	if err != nil {
		return nil, err
	}
	if kindOf(s) == KindCategorical {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, variable)
	}
	vals := s.Float()
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// RawFloats returns one value per row with NaN for missing cells, so rows
// of two variables can be paired.
func (d *Dataset) RawFloats(variable string) ([]float64, error) {
	s, err := d.column(variable)
	if err != nil {
		return nil, err
	}
	if kindOf(s) == KindCategorical {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, variable)
	}
	return s.Float(), nil
}

// Strings returns the non-missing cells of any variable rendered as text.
func (d *Dataset) Strings(variable string) ([]string, error) {
	s, err := d.column(variable)
	if err != nil {
		return nil, err
	}
	recs := texts(s)
	missing := missingMask(s)
	out := make([]string, 0, len(recs))
	for i, r := range recs {
		if missing[i] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Missing returns the number of missing cells of a variable.
func (d *Dataset) Missing(variable string) (int, error) {
	s, err := d.column(variable)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range missingMask(s) {
		if m {
			n++
		}
	}
	return n, nil
}

// Records returns up to limit rows rendered as text; limit <= 0 returns all rows.
// Numbers use the shortest representation, missing cells read "NaN".
func (d *Dataset) Records(limit int) [][]string {
	n := d.df.Nrow()
	if limit > 0 && n > limit {
		n = limit
	}
	names := d.df.Names()
	cols := make([][]string, len(names))
	for j, name := range names {
		cols[j] = texts(d.df.Col(name))
	}
	recs := make([][]string, n)
	for i := range recs {
		row := make([]string, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		recs[i] = row
	}
	return recs
}

// Sorted returns the sorted non-missing values of a numeric variable.
func (d *Dataset) Sorted(variable string) ([]float64, error) {
	vals, err := d.Floats(variable)
	if err != nil {
		return nil, err
	}
	sort.Float64s(vals)
	return vals, nil
}

func (d *Dataset) column(variable string) (series.Series, error) {
	if !d.Has(variable) {
		return series.Series{}, fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}
	s := d.df.Col(variable)
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("column %q: %w", variable, s.Err)
	}
	return s, nil
}

// texts renders every element of s; numeric cells avoid gota's fixed six decimals.
func texts(s series.Series) []string {
	if kindOf(s) != KindNumeric {
		return s.Records()
	}
	vals := s.Float()
	out := make([]string, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			out[i] = "NaN"
			continue
		}
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}

// missingMask flags NaN elements and, for text columns, blank cells.
func missingMask(s series.Series) []bool {
	mask := s.IsNaN()
	if kindOf(s) == KindCategorical {
		for i, r := range s.Records() {
			if strings.TrimSpace(r) == "" {
				mask[i] = true
			}
		}
	}
	return mask
}

func kindOf(s series.Series) Kind {
	switch s.Type() {
	case series.Int, series.Float:
		return KindNumeric
	case series.Bool:
		return KindBoolean
	default:
		return KindCategorical
	}
}
