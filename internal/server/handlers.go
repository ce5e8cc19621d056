package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dfstats-cli/internal/analysis"
	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
	"github.com/KaramelBytes/dfstats-cli/internal/plot"
	"github.com/KaramelBytes/dfstats-cli/internal/report"
	"github.com/KaramelBytes/dfstats-cli/internal/utils"
)

type handler struct {
	ds     *dataset.Dataset
	report report.Options
	bins   int
}

type variable struct {
	Name string       `json:"name"`
	Kind dataset.Kind `json:"kind"`
}

// statsResponse uses pointers so NaN results encode as null.
type statsResponse struct {
	Variable   string   `json:"variable"`
	Mean       *float64 `json:"mean"`
	Median     *float64 `json:"median"`
	Std        *float64 `json:"std"`
	P          float64  `json:"p"`
	Percentile *float64 `json:"percentile"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) listVariables(w http.ResponseWriter, r *http.Request) {
	out := make([]variable, 0, len(h.ds.Names()))
	for _, n := range h.ds.Names() {
		k, _ := h.ds.Kind(n)
		out = append(out, variable{Name: n, Kind: k})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	t, err := analysis.Describe(h.ds, utils.SplitList(r.URL.Query().Get("vars"))...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "variable")
	p := 50.0
	if raw := r.URL.Query().Get("p"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid p: " + raw})
			return
		}
		p = v
	}
	resp := statsResponse{Variable: name, P: p}
	mean, err := h.ds.Mean(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	median, err := h.ds.Median(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	std, err := h.ds.Std(name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pct, err := h.ds.Percentile(name, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.Mean, resp.Median, resp.Std, resp.Percentile = finite(mean), finite(median), finite(std), finite(pct)
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *handler) histogram(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := plot.RenderHistogram(&buf, h.ds, chi.URLParam(r, "variable"), "png", plot.Options{Bins: h.bins}); err != nil {
		writeError(w, r, err)
		return
	}
	writeImage(w, r, buf.Bytes())
}

func (h *handler) scatter(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := plot.RenderScatter(&buf, h.ds, chi.URLParam(r, "x"), chi.URLParam(r, "y"), "png", plot.Options{}); err != nil {
		writeError(w, r, err)
		return
	}
	writeImage(w, r, buf.Bytes())
}

func (h *handler) htmlReport(w http.ResponseWriter, r *http.Request) {
	vars := utils.SplitList(r.URL.Query().Get("vars"))
	if len(vars) == 0 {
		vars = h.ds.Names()
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		title = h.ds.Name()
	}
	var buf bytes.Buffer
	if err := report.RenderHTML(r.Context(), &buf, h.ds, title, vars, h.report); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write report")
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writeImage(w http.ResponseWriter, r *http.Request, b []byte) {
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(b); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write image")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dataset.ErrUnknownVariable):
		status = http.StatusNotFound
	case errors.Is(err, dataset.ErrNotNumeric),
		errors.Is(err, dataset.ErrPercentileRange),
		errors.Is(err, dataset.ErrNoValues):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}
