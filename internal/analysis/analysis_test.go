package analysis

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
)

func loadCSV(t *testing.T, content string) *dataset.Dataset {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	ds, err := dataset.Load(context.Background(), p, dataset.Options{})
	require.NoError(t, err)
	return ds
}

const mixed = "x,city\n1,Lima\n2,Cusco\n3,Lima\n4,Arequipa\n5,Lima\n"

func TestDescribeAllColumns(t *testing.T) {
	ds := loadCSV(t, mixed)
	tbl, err := Describe(ds)
	require.NoError(t, err)
	assert.Equal(t, StatisticNames, tbl.Statistics)
	assert.Equal(t, []string{"x", "city"}, tbl.Columns)
	require.Len(t, tbl.Values, 9)
	for _, row := range tbl.Values {
		assert.Len(t, row, 2)
	}

	cell, ok := tbl.Get("mean", "x")
	require.True(t, ok)
	assert.Equal(t, "3.0", cell.String())
	cell, _ = tbl.Get("std", "x")
	assert.Equal(t, "1.5811", cell.String())
	cell, _ = tbl.Get("25%", "x")
	assert.Equal(t, 2.0, cell.Value)
	cell, _ = tbl.Get("null_count", "x")
	assert.Equal(t, 0.0, cell.Value)
}

func TestDescribeCategoricalColumn(t *testing.T) {
	ds := loadCSV(t, mixed)
	tbl, err := Describe(ds, "city")
	require.NoError(t, err)

	count, _ := tbl.Get("count", "city")
	assert.Equal(t, 5.0, count.Value)
	mean, _ := tbl.Get("mean", "city")
	assert.Equal(t, "N/A", mean.String())
	lo, _ := tbl.Get("min", "city")
	assert.Equal(t, "Arequipa", lo.String())
	hi, _ := tbl.Get("max", "city")
	assert.Equal(t, "Lima", hi.String())
}

func TestDescribeSubsetAndUnknown(t *testing.T) {
	ds := loadCSV(t, mixed)
	tbl, err := Describe(ds, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tbl.Columns)

	_, err = Describe(ds, "x", "nope")
	assert.ErrorIs(t, err, dataset.ErrUnknownVariable)
}

func TestDescribeSingleValueHasNullStd(t *testing.T) {
	ds := loadCSV(t, "v,w\n7,a\n,b\n")
	tbl, err := Describe(ds, "v")
	require.NoError(t, err)
	std, _ := tbl.Get("std", "v")
	assert.False(t, std.Valid)
	nulls, _ := tbl.Get("null_count", "v")
	assert.Equal(t, 1.0, nulls.Value)
	p50, _ := tbl.Get("50%", "v")
	assert.Equal(t, 7.0, p50.Value)
}

func TestStatisticsTableJSONAndMarkdown(t *testing.T) {
	ds := loadCSV(t, mixed)
	tbl, err := Describe(ds)
	require.NoError(t, err)

	b, err := json.Marshal(tbl)
	require.NoError(t, err)
	var decoded struct {
		Statistics []string        `json:"statistics"`
		Columns    []string        `json:"columns"`
		Values     [][]interface{} `json:"values"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, 3.0, decoded.Values[2][0])
	assert.Nil(t, decoded.Values[2][1])
	assert.Equal(t, "Lima", decoded.Values[8][1])

	md := tbl.Markdown()
	assert.True(t, strings.HasPrefix(md, "| statistic | x | city |"))
	assert.Contains(t, md, "| mean | 3.0 | N/A |")
	assert.Contains(t, md, "| count | 5.0 | 5.0 |")
	assert.Equal(t, 11, strings.Count(md, "\n"))
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 1.2346, Round4(1.23456))
	assert.Equal(t, -0.5, Round4(-0.49999))
	assert.Equal(t, "N/A", num(math.NaN()).String())
	assert.Equal(t, "N/A", num(math.Inf(1)).String())
}

func TestBuildProfileAlerts(t *testing.T) {
	ds := loadCSV(t, "a,b,c\n1,2,k\n2,4,k\n3,6,k\n1,2,k\n")
	p, err := BuildProfile(ds, nil, DefaultProfileOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, p.Rows)
	assert.Equal(t, 1, p.DuplicateRows)
	require.Len(t, p.Variables, 3)
	assert.Equal(t, dataset.KindCategorical, p.Variables[2].Kind)
	assert.Equal(t, []CategoryCount{{Value: "k", Count: 4}}, p.Variables[2].TopValues)

	require.NotNil(t, p.Corr)
	pairs := p.Corr.TopPairs(1)
	require.Len(t, pairs, 1)
	assert.InDelta(t, 1.0, pairs[0].R, 1e-9)

	joined := strings.Join(p.Alerts, "\n")
	assert.Contains(t, joined, "c has constant value")
	assert.Contains(t, joined, "a is highly correlated with b")
	assert.Contains(t, joined, "dataset has 1 duplicate rows")
}

func TestBuildProfileOutliersAndMissing(t *testing.T) {
	csv := "v,m\n10,1\n11,\n9,\n10,\n10,\n11,\n9,\n10,\n100,\n"
	ds := loadCSV(t, csv)
	p, err := BuildProfile(ds, []string{"v", "m"}, DefaultProfileOptions())
	require.NoError(t, err)

	v := p.Variables[0]
	assert.Equal(t, 1, v.OutliersCount)
	assert.Greater(t, v.OutliersMaxAbsZ, 3.5)
	assert.Equal(t, 10.0, v.Median)

	m := p.Variables[1]
	assert.Equal(t, 8, m.Missing)
	assert.InDelta(t, 88.9, m.MissingPct(), 0.1)
	require.NotNil(t, p.Corr)
	assert.Zero(t, p.Corr.TopPairs(1)[0].R)
	assert.Len(t, p.Samples, 5)
	assert.Contains(t, strings.Join(p.Alerts, "\n"), "m has 88.9% missing values")
}

func TestMedianMAD(t *testing.T) {
	median, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, median)
	assert.Equal(t, 1.0, mad)

	median, mad = medianMAD(nil)
	assert.Zero(t, median)
	assert.Zero(t, mad)
}

func TestDescribeQuartilesUseNearestRank(t *testing.T) {
	ds := loadCSV(t, "x\n4\n1\n3\n2\n")
	tbl, err := Describe(ds)
	require.NoError(t, err)
	for stat, want := range map[string]string{"25%": "2.0", "50%": "3.0", "75%": "3.0", "mean": "2.5"} {
		cell, ok := tbl.Get(stat, "x")
		require.True(t, ok, stat)
		assert.Equal(t, want, cell.String(), stat)
	}

	p25, err := ds.Percentile("x", 25)
	require.NoError(t, err)
	assert.Equal(t, 1.75, p25)
}

func TestDescribeBooleanColumn(t *testing.T) {
	ds := loadCSV(t, "b,x\ntrue,1\nfalse,2\ntrue,3\ntrue,4\n")
	tbl, err := Describe(ds, "b")
	require.NoError(t, err)

	mean, _ := tbl.Get("mean", "b")
	assert.Equal(t, "0.75", mean.String())
	lo, _ := tbl.Get("min", "b")
	assert.Equal(t, "false", lo.String())
	hi, _ := tbl.Get("max", "b")
	assert.Equal(t, "true", hi.String())
	q1, _ := tbl.Get("25%", "b")
	assert.False(t, q1.Valid)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "5.0", num(5).String())
	assert.Equal(t, "-2.0", num(-2).String())
	assert.Equal(t, "0.1235", num(0.12345).String())
	assert.Equal(t, "Lima", text("Lima").String())
	assert.Equal(t, "N/A", Cell{}.String())
}

func TestBuildProfileRepeatedVariables(t *testing.T) {
	ds := loadCSV(t, mixed)
	p, err := BuildProfile(ds, []string{"x", "city", "x"}, DefaultProfileOptions())
	require.NoError(t, err)
	require.Len(t, p.Variables, 2)
	assert.Equal(t, "x", p.Variables[0].Name)
	assert.Equal(t, "city", p.Variables[1].Name)
	assert.Equal(t, []string{"x", "city"}, p.SampleHeader)
}

func TestBuildProfileBooleanTopValues(t *testing.T) {
	ds := loadCSV(t, "b,x\ntrue,1\nfalse,2\ntrue,3\ntrue,4\n")
	p, err := BuildProfile(ds, []string{"b"}, DefaultProfileOptions())
	require.NoError(t, err)
	assert.Equal(t, dataset.KindBoolean, p.Variables[0].Kind)
	assert.Equal(t, []CategoryCount{{Value: "true", Count: 3}, {Value: "false", Count: 1}}, p.Variables[0].TopValues)
}
