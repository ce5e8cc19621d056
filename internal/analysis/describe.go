package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
)

// StatisticNames lists the rows of a StatisticsTable, in order.
var StatisticNames = []string{"count", "null_count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Cell is one value of a StatisticsTable: a number, a text value, or null.
type Cell struct {
	Value float64
	Text  string
	Valid bool
}

func num(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{}
	}
	return Cell{Value: v, Valid: true}
}

func text(s string) Cell { return Cell{Text: s, Valid: true} }

// IsText reports whether the cell holds a text value.
func (c Cell) IsText() bool { return c.Valid && c.Text != "" }

// String renders numbers rounded to 4 decimals, always with a fractional
// part ("5.0"), and null as N/A.
func (c Cell) String() string {
	switch {
	case !c.Valid:
		return "N/A"
	case c.Text != "":
		return c.Text
	default:
		s := strconv.FormatFloat(Round4(c.Value), 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
}

// MarshalJSON encodes a number, a string, or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch {
	case !c.Valid:
		return []byte("null"), nil
	case c.Text != "":
		return json.Marshal(c.Text)
	default:
		return json.Marshal(Round4(c.Value))
	}
}

// Round4 rounds half away from zero to 4 decimals.
func Round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

// StatisticsTable holds one row per statistic and one column per variable.
type StatisticsTable struct {
	Statistics []string `json:"statistics"`
	Columns    []string `json:"columns"`
	// Values is row-major: Values[statistic][column].
	Values [][]Cell `json:"values"`
}

// Get returns the cell for a statistic/variable pair.
func (t *StatisticsTable) Get(statistic, column string) (Cell, bool) {
	si, ci := indexOf(t.Statistics, statistic), indexOf(t.Columns, column)
	if si < 0 || ci < 0 {
		return Cell{}, false
	}
	return t.Values[si][ci], true
}

// Describe computes the statistics table for the given variables, or for all
// columns when none are given. It is recomputed on every call. Quartile rows
// take the nearest-rank element rather than interpolating.
func Describe(ds *dataset.Dataset, variables ...string) (*StatisticsTable, error) {
	if len(variables) == 0 {
		variables = ds.Names()
	}
	t := &StatisticsTable{
		Statistics: append([]string(nil), StatisticNames...),
		Columns:    append([]string(nil), variables...),
		Values:     make([][]Cell, len(StatisticNames)),
	}
	for i := range t.Values {
		t.Values[i] = make([]Cell, len(variables))
	}
	for j, v := range variables {
		col, err := describeColumn(ds, v)
		if err != nil {
			return nil, err
		}
		for i := range col {
			t.Values[i][j] = col[i]
		}
	}
	return t, nil
}

func describeColumn(ds *dataset.Dataset, variable string) ([]Cell, error) {
	kind, err := ds.Kind(variable)
	if err != nil {
		return nil, err
	}
	missing, err := ds.Missing(variable)
	if err != nil {
		return nil, err
	}
	out := make([]Cell, len(StatisticNames))
	out[1] = num(float64(missing))

	if kind == dataset.KindCategorical {
		vals, err := ds.Strings(variable)
		if err != nil {
			return nil, err
		}
		out[0] = num(float64(len(vals)))
		if len(vals) > 0 {
			sort.Strings(vals)
			out[4] = text(vals[0])
			out[8] = text(vals[len(vals)-1])
		}
		return out, nil
	}

	sorted, err := ds.Sorted(variable)
	if err != nil {
		return nil, err
	}
	out[0] = num(float64(len(sorted)))
	if len(sorted) == 0 {
		return out, nil
	}
	mean, err := stats.Mean(sorted)
	if err != nil {
		return nil, fmt.Errorf("mean %q: %w", variable, err)
	}
	out[2] = num(mean)
	if kind == dataset.KindBoolean {
		out[4] = text(strconv.FormatBool(sorted[0] == 1))
		out[8] = text(strconv.FormatBool(sorted[len(sorted)-1] == 1))
		return out, nil
	}
	if len(sorted) > 1 {
		sd, err := stats.StandardDeviationSample(sorted)
		if err != nil {
			return nil, fmt.Errorf("std %q: %w", variable, err)
		}
		out[3] = num(sd)
	}
	out[4] = num(sorted[0])
	out[5] = num(dataset.NearestQuantile(sorted, 0.25))
	out[6] = num(dataset.NearestQuantile(sorted, 0.50))
	out[7] = num(dataset.NearestQuantile(sorted, 0.75))
	out[8] = num(sorted[len(sorted)-1])
	return out, nil
}

// Markdown renders the table for terminals and docs.
func (t *StatisticsTable) Markdown() string {
	var b strings.Builder
	b.WriteString("| statistic")
	for _, c := range t.Columns {
		b.WriteString(" | ")
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n|---")
	for range t.Columns {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for i, s := range t.Statistics {
		b.WriteString("| ")
		b.WriteString(s)
		for j := range t.Columns {
			b.WriteString(" | ")
			b.WriteString(safeVal(t.Values[i][j].String()))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
