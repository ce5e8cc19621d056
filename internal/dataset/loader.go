package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/dfstats-cli/internal/utils"
)

// Options controls how a source is read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (',' or '\t').
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// HTTPTimeout bounds URL fetches; 0 means 60s.
	HTTPTimeout time.Duration
}

// Loader turns raw source bytes into a frame.
type Loader interface {
	CanLoad(name string) bool
	Load(r io.Reader, name string, opt Options) (dataframe.DataFrame, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

func init() {
	Register(xlsxLoader{})
	Register(csvLoader{})
}

// missingTokens are the cell values treated as missing.
var missingTokens = []string{"", "NA", "NaN", "<nil>", "null"}

// Load reads a CSV/TSV/XLSX file or http(s) URL into a Dataset.
func Load(ctx context.Context, source string, opt Options) (*Dataset, error) {
	logger := zerolog.Ctx(ctx)
	var (
		body []byte
		name string
		err  error
	)
	if utils.IsURL(source) {
		body, name, err = fetch(ctx, source, opt.HTTPTimeout)
	} else {
		body, err = os.ReadFile(source)
		name = filepath.Base(source)
		if err != nil {
			err = fmt.Errorf("read source: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	l := pick(name)
	logger.Debug().Str("source", source).Str("loader", fmt.Sprintf("%T", l)).Int("bytes", len(body)).Msg("loading dataset")
	df, err := l.Load(bytes.NewReader(body), name, opt)
	if err != nil {
		return nil, err
	}
	ds, err := New(name, df)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("rows", ds.Rows()).Int("columns", len(ds.Names())).Msg("dataset loaded")
	return ds, nil
}

func pick(name string) Loader {
	for _, l := range registry {
		if l.CanLoad(name) {
			return l
		}
	}
	return csvLoader{}
}

func fetch(ctx context.Context, source string, timeout time.Duration) ([]byte, string, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, "", fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	name := "dataset.csv"
	if u, err := url.Parse(source); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name = base
		}
	}
	return b, name, nil
}

type csvLoader struct{}

func (csvLoader) CanLoad(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".csv") || strings.HasSuffix(n, ".tsv")
}

func (csvLoader) Load(r io.Reader, name string, opt Options) (dataframe.DataFrame, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(delim),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return df, fmt.Errorf("parse csv: %w", df.Err)
	}
	return df, nil
}

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}

func (xlsxLoader) Load(r io.Reader, name string, opt Options) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %q has no sheets", name)
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return dataframe.DataFrame{}, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.Sheet, name, strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q is empty", sheet)
	}
	// GetRows trims trailing empty cells; pad to the header width.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			tmp := make([]string, width)
			copy(tmp, row)
			rows[i] = tmp
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}
	df := dataframe.LoadRecords(rows, dataframe.NaNValues(missingTokens))
	if df.Err != nil {
		return df, fmt.Errorf("load sheet %q: %w", sheet, df.Err)
	}
	return df, nil
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}
