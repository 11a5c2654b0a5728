// Package launchdash serves an interactive dashboard over a table of SpaceX launch records.
// A site dropdown and a payload range slider drive two charts: a pie of launch successes
// and a payload versus outcome scatter. Both are recomputed from the dataset loaded at
// startup whenever a widget changes.
//
// The package owns the page layout, the callback bindings between widgets and charts, and
// the HTTP surface. Queries are answered by a domain.LaunchRepository, either the in-memory
// dataset.Store or the sqlite backed db.Repository.
package launchdash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/launchdash/dataset"
	"github.com/tfkr-ae/launchdash/domain"
	"github.com/tfkr-ae/launchdash/render"
)

// shutdownTimeout bounds how long in-flight requests may take once serving is cancelled.
const shutdownTimeout = 5 * time.Second

// Dashboard ties the dataset, the widgets and the chart callbacks to an HTTP handler.
type Dashboard struct {
	ConfigDir string                  // The configuration directory, empty when running without a config file
	Config    *Config                 // Dashboard settings
	Repo      domain.LaunchRepository // Answers the chart queries
	Stats     domain.StatsRepository  // Dataset counters for /health, nil when Repo has none
	LogRepo   domain.LogRepository    // Where WriteLog persists entries, nil to only emit them
	Layout    *Layout                 // Widgets, built from Repo once the options are applied
	Callbacks *Registry               // Chart callbacks
	Logger    *slog.Logger            // Structured logger for access logs and WriteLog
	OnLog     func(log domain.Log) error

	closers []io.Closer // Stores opened by options and released by Close
}

// New creates a dashboard with the default configuration and applies the options.
// Without a dataset option the dashboard serves an empty dataset.
func New(options ...func(*Dashboard) error) (*Dashboard, error) {
	dash := &Dashboard{
		Config:    DefaultConfig(),
		Callbacks: NewRegistry(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	err := dash.WithOptions(options...)
	if err != nil {
		dash.Close()
		return nil, err
	}
	if dash.Repo == nil {
		if err := WithRepo(dataset.NewStore(nil))(dash); err != nil {
			return nil, err
		}
	}
	dash.Layout, err = NewLayout(dash.Repo)
	if err != nil {
		dash.Close()
		return nil, fmt.Errorf("building layout : %w", err)
	}
	return dash, nil
}

// Close releases the stores opened by the options.
func (dash *Dashboard) Close() error {
	return dash.closeStores()
}

func (dash *Dashboard) closeStores() error {
	var errs []error
	for _, c := range dash.closers {
		if repo, ok := c.(domain.LogRepository); ok && repo == dash.LogRepo {
			dash.LogRepo = nil
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	dash.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing stores : %w", err)
	}
	return nil
}

// Figure computes the figure drawn in output for the selection.
func (dash *Dashboard) Figure(output string, selection domain.SelectionState) (*domain.Figure, error) {
	return dash.Callbacks.Dispatch(dash.Repo, output, selection)
}

// Chart computes and renders the figure drawn in output.
func (dash *Dashboard) Chart(output string, selection domain.SelectionState) (*domain.Figure, []byte, error) {
	fig, err := dash.Figure(output, selection)
	if err != nil {
		return nil, nil, err
	}
	svg, err := render.SVG(fig, render.Options{
		ID:     output,
		Width:  dash.Config.ChartWidth,
		Height: dash.Config.ChartHeight,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rendering %s : %w", output, err)
	}
	return fig, svg, nil
}

// WriteLog records a dashboard event. The entry is persisted through LogRepo when one is
// configured, emitted on Logger and handed to OnLog.
func (dash *Dashboard) WriteLog(level string, message string, options ...func(log *domain.Log) error) error {
	var slogLevel slog.Level
	switch level {
	case "DEBUG":
		slogLevel = slog.LevelDebug
	case "INFO":
		slogLevel = slog.LevelInfo
	case "WARN":
		slogLevel = slog.LevelWarn
	case "ERROR":
		slogLevel = slog.LevelError
	case "FATAL":
		slogLevel = slog.LevelError + 4
	default:
		return fmt.Errorf("level should be either: debug, info, warn, error, fatal")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	log := domain.Log{
		ID:        id,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
	for _, option := range options {
		err := option(&log)
		if err != nil {
			return fmt.Errorf("applying log option : %w", err)
		}
	}

	attrs := []any{"log_id", log.ID.String()}
	if log.RequestID != nil {
		attrs = append(attrs, "request_id", log.RequestID.String())
	}
	for k, v := range log.Context {
		attrs = append(attrs, k, v)
	}
	dash.Logger.Log(context.Background(), slogLevel, log.Message, attrs...)

	if dash.LogRepo != nil {
		if err := dash.LogRepo.InsertLog(&log); err != nil {
			return fmt.Errorf("inserting log : %w", err)
		}
	}
	if dash.OnLog != nil {
		if err := dash.OnLog(log); err != nil {
			return fmt.Errorf("running log handler : %w", err)
		}
	}
	return nil
}

// ListenAndServe serves the dashboard on the configured address until ctx is cancelled,
// then shuts the server down and waits for in-flight requests.
func (dash *Dashboard) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", dash.Config.ListenAddr())
	if err != nil {
		return fmt.Errorf("listening on %s : %w", dash.Config.ListenAddr(), err)
	}
	return dash.Serve(ctx, listener)
}

// Serve is ListenAndServe on an existing listener. The listener is closed on return.
func (dash *Dashboard) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           dash.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		dash.Logger.Info("serving dashboard", "address", listener.Addr().String())
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving dashboard : %w", err)
	case <-ctx.Done():
	}

	dash.Logger.Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		dash.Logger.Warn("graceful shutdown failed", "error", err)
		if err := server.Close(); err != nil {
			return fmt.Errorf("closing server : %w", err)
		}
	}
	return nil
}
