package launchdash

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tfkr-ae/launchdash/core"
	"github.com/tfkr-ae/launchdash/domain"
)

// maxUpdateBody limits the size of a callback request body.
const maxUpdateBody = 1 << 16

// UpdateRequest is the body of POST /_dash-update-component. Output names the charts to
// redraw; when it is empty the charts are derived from ChangedPropIDs ("id.value").
type UpdateRequest struct {
	Output         string   `json:"output"`
	ChangedPropIDs []string `json:"changedPropIds"`
	Inputs         []Input  `json:"inputs"`
}

// ChartUpdate is the new state of one chart.
type ChartUpdate struct {
	Figure *domain.Figure `json:"figure"`
	SVG    string         `json:"svg"`
}

// UpdateResponse maps chart IDs to their new state.
type UpdateResponse struct {
	Response map[string]ChartUpdate `json:"response"`
}

// Handler returns the dashboard routes wrapped in the request ID, access log and encoding
// middleware.
func (dash *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", dash.handleIndex)
	mux.HandleFunc("GET /_dash-layout", dash.handleLayout)
	mux.HandleFunc("GET /_dash-dependencies", dash.handleDependencies)
	mux.HandleFunc("POST /_dash-update-component", dash.handleUpdate)
	mux.HandleFunc("GET /charts/{id}", dash.handleChart)
	mux.HandleFunc("GET /health", dash.handleHealth)

	return dash.withRequestID(dash.withAccessLog(dash.withEncoding(mux)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps callback errors to a response status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownOutput):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// logSelection records a served selection. Unknown sites are served like any other but
// flagged so they stand out in the logs.
func (dash *Dashboard) logSelection(r *http.Request, message string) {
	selection, ok := SelectionFromContext(r.Context())
	if !ok {
		return
	}
	level := "DEBUG"
	if !dash.Layout.IsValidSite(selection.Site) {
		level = "WARN"
		message = fmt.Sprintf("%s for unknown site %q", message, selection.Site)
	}
	options := []func(*domain.Log) error{core.LogWithSelection(selection)}
	if id, ok := RequestIDFromContext(r.Context()); ok {
		options = append(options, core.LogWithRequestID(id))
	}
	if err := dash.WriteLog(level, message, options...); err != nil {
		dash.Logger.Error("writing log", "error", err)
	}
}

func (dash *Dashboard) logError(r *http.Request, message string, err error) {
	options := []func(*domain.Log) error{core.LogWithContext(map[string]any{"error": err.Error(), "path": r.URL.Path})}
	if id, ok := RequestIDFromContext(r.Context()); ok {
		options = append(options, core.LogWithRequestID(id))
	}
	if werr := dash.WriteLog("ERROR", message, options...); werr != nil {
		dash.Logger.Error("writing log", "error", werr)
	}
}

func (dash *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	selection, err := dash.Layout.SelectionFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	r = r.WithContext(ContextWithSelection(r.Context(), selection))
	dash.logSelection(r, "rendering page")

	page, err := dash.renderPage(selection)
	if err != nil {
		dash.logError(r, "rendering page", err)
		http.Error(w, "rendering page failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (dash *Dashboard) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dash.Layout)
}

func (dash *Dashboard) handleDependencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dash.Callbacks.Dependencies())
}

func (dash *Dashboard) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxUpdateBody))
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("%v: decoding request body: %v", ErrInvalidInput, err))
		return
	}

	outputs := parseOutputs(req.Output)
	if len(outputs) == 0 {
		outputs = dash.Callbacks.parseChangedProps(req.ChangedPropIDs)
	}
	if len(outputs) == 0 {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("%v: no output requested", ErrInvalidInput))
		return
	}

	for _, output := range outputs {
		if _, ok := dash.Callbacks.Lookup(output); !ok {
			err := fmt.Errorf("%w: %q", ErrUnknownOutput, output)
			writeJSONError(w, errorStatus(err), err.Error())
			return
		}
	}

	selection, err := dash.Layout.SelectionFromInputs(req.Inputs)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	r = r.WithContext(ContextWithSelection(r.Context(), selection))
	dash.logSelection(r, "updating charts")

	resp := UpdateResponse{Response: make(map[string]ChartUpdate, len(outputs))}
	for _, output := range outputs {
		fig, svg, err := dash.Chart(output, selection)
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				dash.logError(r, "updating chart", err)
			}
			writeJSONError(w, status, err.Error())
			return
		}
		resp.Response[output] = ChartUpdate{Figure: fig, SVG: string(svg)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (dash *Dashboard) handleChart(w http.ResponseWriter, r *http.Request) {
	selection, err := dash.Layout.SelectionFromQuery(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	r = r.WithContext(ContextWithSelection(r.Context(), selection))

	id := r.PathValue("id")
	_, svg, err := dash.Chart(id, selection)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			dash.logError(r, "rendering chart", err)
		}
		writeJSONError(w, status, err.Error())
		return
	}
	dash.logSelection(r, "rendering chart "+id)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (dash *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if dash.Stats != nil {
		launches, err := dash.Stats.CountLaunches()
		if err != nil {
			dash.logError(r, "counting launches", err)
			writeJSONError(w, http.StatusServiceUnavailable, "counting launches failed")
			return
		}
		sites, err := dash.Stats.CountSites()
		if err != nil {
			dash.logError(r, "counting sites", err)
			writeJSONError(w, http.StatusServiceUnavailable, "counting sites failed")
			return
		}
		successes, err := dash.Stats.CountSuccesses()
		if err != nil {
			dash.logError(r, "counting successes", err)
			writeJSONError(w, http.StatusServiceUnavailable, "counting successes failed")
			return
		}
		health["launches"] = launches
		health["sites"] = sites
		health["successes"] = successes
	}
	if dash.LogRepo != nil {
		logs, err := dash.LogRepo.GetLogs()
		if err != nil {
			dash.Logger.Error("reading logs", "error", err)
			writeJSONError(w, http.StatusServiceUnavailable, "reading logs failed")
			return
		}
		health["logs"] = len(logs)
	}
	writeJSON(w, http.StatusOK, health)
}
