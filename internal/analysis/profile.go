package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
)

// ProfileOptions controls profiling behavior.
type ProfileOptions struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// Outlier detection via robust Z-score (MAD). Counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// Correlations computes Pearson correlations among numeric variables.
	Correlations bool
	// TopValues caps the listed values of categorical variables.
	TopValues int
}

// DefaultProfileOptions returns reasonable defaults for dataset profiling.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
		Correlations:     true,
		TopValues:        8,
	}
}

// Profile is the per-variable analysis behind the HTML profiling report.
type Profile struct {
	Name          string
	Rows          int
	MissingCells  int
	DuplicateRows int
	Variables     []ColumnSummary
	Corr          *CorrMatrix
	SampleHeader  []string
	Samples       [][]string
	Alerts        []string
}

// ColumnSummary captures inferred kind and statistics per variable.
type ColumnSummary struct {
	Name    string
	Kind    dataset.Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min      float64
	Max      float64
	Mean     float64
	Std      float64
	Q1       float64
	Median   float64
	Q3       float64
	Skew     float64
	Kurtosis float64
	Zeros    int
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

// MissingPct is the share of missing cells in percent.
func (c ColumnSummary) MissingPct() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) * 100 / float64(total)
}

// Numeric reports whether the variable carries numeric statistics.
func (c ColumnSummary) Numeric() bool { return c.Kind == dataset.KindNumeric && c.NonNull > 0 }

type CategoryCount struct {
	Value string
	Count int
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric variables.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// BuildProfile profiles the given variables, or every column when none are given.
func BuildProfile(ds *dataset.Dataset, variables []string, opt ProfileOptions) (*Profile, error) {
	if len(variables) == 0 {
		variables = ds.Names()
	}
	variables = unique(variables)
	sub, err := ds.Select(variables)
	if err != nil {
		return nil, err
	}
	if opt.SampleRows <= 0 {
		opt.SampleRows = 5
	}
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	p := &Profile{Name: ds.Name(), Rows: sub.Rows(), SampleHeader: variables}

	var numeric []string
	for _, v := range variables {
		cs, err := summarize(sub, v, opt)
		if err != nil {
			return nil, err
		}
		p.MissingCells += cs.Missing
		if cs.Numeric() {
			numeric = append(numeric, v)
		}
		p.Variables = append(p.Variables, cs)
	}

	all := sub.Records(0)
	seen := make(map[string]struct{}, len(all))
	for _, row := range all {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			p.DuplicateRows++
			continue
		}
		seen[key] = struct{}{}
	}
	p.Samples = sub.Records(opt.SampleRows)

	if opt.Correlations && len(numeric) >= 2 {
		cm, err := correlations(sub, numeric)
		if err != nil {
			return nil, err
		}
		p.Corr = cm
	}
	p.Alerts = alerts(p)
	return p, nil
}

func summarize(ds *dataset.Dataset, variable string, opt ProfileOptions) (ColumnSummary, error) {
	kind, err := ds.Kind(variable)
	if err != nil {
		return ColumnSummary{}, err
	}
	missing, err := ds.Missing(variable)
	if err != nil {
		return ColumnSummary{}, err
	}
	texts, err := ds.Strings(variable)
	if err != nil {
		return ColumnSummary{}, err
	}
	s := ColumnSummary{Name: variable, Kind: kind, NonNull: len(texts), Missing: missing}

	cats := make(map[string]int)
	for _, v := range texts {
		cats[v]++
	}
	s.Unique = len(cats)

	if kind != dataset.KindNumeric {
		tops := make([]CategoryCount, 0, len(cats))
		for k, v := range cats {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > opt.TopValues {
			tops = tops[:opt.TopValues]
		}
		s.TopValues = tops
		return s, nil
	}

	sorted, err := ds.Sorted(variable)
	if err != nil {
		return ColumnSummary{}, err
	}
	if len(sorted) == 0 {
		return s, nil
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q1 = dataset.Quantile(sorted, 0.25)
	s.Median = dataset.Quantile(sorted, 0.5)
	s.Q3 = dataset.Quantile(sorted, 0.75)
	if s.Mean, err = stats.Mean(sorted); err != nil {
		return ColumnSummary{}, fmt.Errorf("mean %q: %w", variable, err)
	}
	s.Std = math.NaN()
	s.Skew = math.NaN()
	s.Kurtosis = math.NaN()
	if len(sorted) > 1 {
		if s.Std, err = stats.StandardDeviationSample(sorted); err != nil {
			return ColumnSummary{}, fmt.Errorf("std %q: %w", variable, err)
		}
		if s.Std > 0 {
			s.Skew = stat.Skew(sorted, nil)
			s.Kurtosis = stat.ExKurtosis(sorted, nil)
		}
	}
	s.Zeros = floats.Count(func(v float64) bool { return v == 0 }, sorted)
	if opt.Outliers && len(sorted) >= 8 {
		median, mad := medianMAD(sorted)
		thr := opt.OutlierThreshold
		if thr <= 0 {
			thr = 3.5
		}
		var cnt int
		maxAbsZ := 0.0
		if mad > 0 {
			for _, v := range sorted {
				az := math.Abs(0.6745 * (v - median) / mad)
				if az > thr {
					cnt++
				}
				if az > maxAbsZ {
					maxAbsZ = az
				}
			}
		}
		s.OutliersCount = cnt
		s.OutliersMaxAbsZ = maxAbsZ
		s.OutlierThreshold = thr
	}
	return s, nil
}

// correlations computes pairwise Pearson r over rows where both values are present.
func correlations(ds *dataset.Dataset, numeric []string) (*CorrMatrix, error) {
	raw := make([][]float64, len(numeric))
	for i, v := range numeric {
		vals, err := ds.RawFloats(v)
		if err != nil {
			return nil, err
		}
		raw[i] = vals
	}
	n := len(numeric)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var xs, ys []float64
			for k := range raw[a] {
				if math.IsNaN(raw[a][k]) || math.IsNaN(raw[b][k]) {
					continue
				}
				xs = append(xs, raw[a][k])
				ys = append(ys, raw[b][k])
			}
			var r float64
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			r = math.Max(-1, math.Min(1, r))
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), numeric...), Values: mat}, nil
}

// TopPairs lists up to n variable pairs ordered by |r|.
func (c *CorrMatrix) TopPairs(n int) []PairCorr {
	if c == nil {
		return nil
	}
	var pairs []PairCorr
	for i := range c.Columns {
		for j := i + 1; j < len(c.Columns); j++ {
			pairs = append(pairs, PairCorr{A: c.Columns[i], B: c.Columns[j], R: c.Values[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

func alerts(p *Profile) []string {
	var out []string
	for _, c := range p.Variables {
		switch {
		case c.NonNull == 0:
			out = append(out, fmt.Sprintf("%s has only missing values", c.Name))
			continue
		case c.MissingPct() >= 50:
			out = append(out, fmt.Sprintf("%s has %.1f%% missing values", c.Name, c.MissingPct()))
		}
		if c.Unique == 1 {
			out = append(out, fmt.Sprintf("%s has constant value", c.Name))
		}
		if c.Kind == dataset.KindCategorical && c.Unique == p.Rows && p.Rows > 1 {
			out = append(out, fmt.Sprintf("%s has unique values", c.Name))
		}
		if c.OutliersCount > 0 {
			out = append(out, fmt.Sprintf("%s has %d outliers above |z|>%.1f", c.Name, c.OutliersCount, c.OutlierThreshold))
		}
	}
	for _, pc := range p.Corr.TopPairs(0) {
		if math.Abs(pc.R) >= 0.9 {
			out = append(out, fmt.Sprintf("%s is highly correlated with %s (r=%.3f)", pc.A, pc.B, pc.R))
		}
	}
	if p.DuplicateRows > 0 {
		out = append(out, fmt.Sprintf("dataset has %d duplicate rows", p.DuplicateRows))
	}
	return out
}

// unique drops repeated names, keeping first occurrences in order.
func unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// medianMAD computes median and MAD (median absolute deviation) of ascending values.
func medianMAD(sorted []float64) (median, mad float64) {
	if len(sorted) == 0 {
		return 0, 0
	}
	median = dataset.Quantile(sorted, 0.5)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = dataset.Quantile(dev, 0.5)
	return
}
