package dataset_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
)

const fixture = "x,y,city\n1,10,Lima\n2,20,Cusco\n3,,Lima\n4,40,Arequipa\n5,50,Lima\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func load(t *testing.T, content string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(context.Background(), writeFile(t, "data.csv", content), dataset.Options{})
	require.NoError(t, err)
	return ds
}

func TestScalarStatsOnFixedColumn(t *testing.T) {
	ds := load(t, fixture)

	mean, err := ds.Mean("x")
	require.NoError(t, err)
	assert.Equal(t, 3.0, mean)

	median, err := ds.Median("x")
	require.NoError(t, err)
	assert.Equal(t, 3.0, median)

	p50, err := ds.Percentile("x", 50)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p50)

	std, err := ds.Std("x")
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2.5), std, 1e-12)
}

func TestPercentileInterpolation(t *testing.T) {
	ds := load(t, fixture)
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 2},
		{90, 4.6},
		{100, 5},
	}
	for _, c := range cases {
		got, err := ds.Percentile("x", c.p)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, 1e-9, "p=%v", c.p)
	}
}

func TestPercentileOutOfRange(t *testing.T) {
	ds := load(t, fixture)
	for _, p := range []float64{-1, 100.5, math.NaN()} {
		_, err := ds.Percentile("x", p)
		assert.ErrorIs(t, err, dataset.ErrPercentileRange)
	}
}

func TestUnknownVariableFails(t *testing.T) {
	ds := load(t, fixture)
	_, err := ds.Mean("nope")
	assert.ErrorIs(t, err, dataset.ErrUnknownVariable)
	_, err = ds.Median("nope")
	assert.ErrorIs(t, err, dataset.ErrUnknownVariable)
	_, err = ds.Std("nope")
	assert.ErrorIs(t, err, dataset.ErrUnknownVariable)
	_, err = ds.Percentile("nope", 50)
	assert.ErrorIs(t, err, dataset.ErrUnknownVariable)
	_, err = ds.Select([]string{"x", "nope"})
	assert.ErrorIs(t, err, dataset.ErrUnknownVariable)
}

func TestCategoricalIsNotNumeric(t *testing.T) {
	ds := load(t, fixture)
	kind, err := ds.Kind("city")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindCategorical, kind)

	_, err = ds.Mean("city")
	assert.ErrorIs(t, err, dataset.ErrNotNumeric)
}

func TestMissingValuesAreSkipped(t *testing.T) {
	ds := load(t, fixture)
	missing, err := ds.Missing("y")
	require.NoError(t, err)
	assert.Equal(t, 1, missing)

	mean, err := ds.Mean("y")
	require.NoError(t, err)
	assert.Equal(t, 30.0, mean)

	raw, err := ds.RawFloats("y")
	require.NoError(t, err)
	require.Len(t, raw, 5)
	assert.True(t, math.IsNaN(raw[2]))
}

func TestSelectLeavesOriginalUntouched(t *testing.T) {
	ds := load(t, fixture)
	sub, err := ds.Select([]string{"city", "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "x"}, sub.Names())
	assert.Equal(t, []string{"x", "y", "city"}, ds.Names())
	assert.Equal(t, 5, ds.Rows())
}

func TestLoadTSVAndDelimiterOverride(t *testing.T) {
	ds, err := dataset.Load(context.Background(), writeFile(t, "data.tsv", "a\tb\n1\t2\n3\t4\n"), dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Names())

	ds, err = dataset.Load(context.Background(), writeFile(t, "semi.csv", "a;b\n1;2\n3;4\n"), dataset.Options{Delimiter: ';'})
	require.NoError(t, err)
	mean, err := ds.Mean("b")
	require.NoError(t, err)
	assert.Equal(t, 3.0, mean)
}

func TestLoadFailures(t *testing.T) {
	_, err := dataset.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), dataset.Options{})
	assert.Error(t, err)

	_, err = dataset.Load(context.Background(), writeFile(t, "bad.csv", "a,b\n1,2,3\n"), dataset.Options{})
	assert.Error(t, err)
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/data.csv") {
			_, _ = w.Write([]byte(fixture))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ds, err := dataset.Load(context.Background(), srv.URL+"/files/data.csv", dataset.Options{})
	require.NoError(t, err)
	assert.Equal(t, "data.csv", ds.Name())
	assert.Equal(t, 5, ds.Rows())

	_, err = dataset.Load(context.Background(), srv.URL+"/files/other.csv", dataset.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	rows := [][]interface{}{{"x", "label"}, {1, "a"}, {2, "b"}, {6, "c"}}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Data", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	ds, err := dataset.Load(context.Background(), path, dataset.Options{Sheet: "data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "label"}, ds.Names())
	mean, err := ds.Mean("x")
	require.NoError(t, err)
	assert.Equal(t, 3.0, mean)

	_, err = dataset.Load(context.Background(), path, dataset.Options{Sheet: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets")
}

func TestQuantile(t *testing.T) {
	assert.True(t, math.IsNaN(dataset.Quantile(nil, 0.5)))
	assert.Equal(t, 2.5, dataset.Quantile([]float64{1, 2, 3, 4}, 0.5))
}

func TestNearestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 2.0, dataset.NearestQuantile(sorted, 0.25))
	assert.Equal(t, 3.0, dataset.NearestQuantile(sorted, 0.5))
	assert.Equal(t, 3.0, dataset.NearestQuantile(sorted, 0.75))
	assert.Equal(t, 4.0, dataset.NearestQuantile(sorted, 1))
	assert.True(t, math.IsNaN(dataset.NearestQuantile(nil, 0.5)))
}

func TestBooleanColumn(t *testing.T) {
	ds := load(t, "b,x\ntrue,1\nfalse,2\ntrue,3\ntrue,4\n")
	kind, err := ds.Kind("b")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindBoolean, kind)

	mean, err := ds.Mean("b")
	require.NoError(t, err)
	assert.Equal(t, 0.75, mean)
}

func TestRecordsFormatNumbers(t *testing.T) {
	ds := load(t, "v,w,n\n1.5,a,3\n2,b,\n")
	assert.Equal(t, [][]string{{"1.5", "a", "3"}, {"2", "b", "NaN"}}, ds.Records(0))
	assert.Equal(t, [][]string{{"1.5", "a", "3"}}, ds.Records(1))

	vals, err := ds.Strings("v")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.5", "2"}, vals)
}
