package launchdash

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/launchdash/core"
	"github.com/tfkr-ae/launchdash/domain"
)

// exampleDataset is the three record dataset used across the dashboard documentation.
func exampleDataset() domain.Dataset {
	return domain.Dataset{
		{Site: "CCAFS", PayloadMassKg: 500, Class: 1, BoosterVersionCategory: "v1.0"},
		{Site: "CCAFS", PayloadMassKg: 9000, Class: 0, BoosterVersionCategory: "v1.1"},
		{Site: "KSC", PayloadMassKg: 3000, Class: 1, BoosterVersionCategory: "v1.0"},
	}
}

func setupDashboard(t *testing.T, options ...func(*Dashboard) error) *Dashboard {
	t.Helper()
	options = append([]func(*Dashboard) error{WithDataset(exampleDataset())}, options...)
	d, err := New(options...)
	if err != nil {
		t.Fatalf("creating dashboard: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

type memoryLogRepo struct {
	logs []*domain.Log
	err  error
}

func (m *memoryLogRepo) InsertLog(log *domain.Log) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryLogRepo) GetLogs() ([]*domain.Log, error) { return m.logs, m.err }

func TestNewDashboard(t *testing.T) {
	t.Run("should serve an empty dataset without a dataset option", func(t *testing.T) {
		d, err := New()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(d.Layout.SiteDropdown.Options) != 1 {
			t.Fatalf("\nwanted:\nonly the All Sites option\ngot:\n%v", d.Layout.SiteDropdown.Options)
		}
		fig, err := d.Figure(PieChartID, d.Layout.DefaultSelection())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !fig.Empty() {
			t.Fatalf("\nwanted:\nempty figure\ngot:\n%+v", fig)
		}
	})

	t.Run("should build the layout from the dataset", func(t *testing.T) {
		d := setupDashboard(t)
		want := domain.SelectionState{Site: domain.SiteAll, Payload: domain.PayloadRange{Low: 500, High: 9000}}
		if got := d.Layout.DefaultSelection(); got != want {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})
}

func TestChart(t *testing.T) {
	t.Run("should render the figure with the configured size", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ChartWidth, cfg.ChartHeight = 400, 300
		d := setupDashboard(t, WithConfig(cfg))

		fig, svg, err := d.Chart(PieChartID, d.Layout.DefaultSelection())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(fig.Slices) != 2 {
			t.Fatalf("\nwanted:\n2 slices\ngot:\n%v", fig.Slices)
		}
		if !bytes.Contains(svg, []byte(`width="400"`)) || !bytes.Contains(svg, []byte(`id="success-pie-chart"`)) {
			t.Fatalf("\nwanted:\n400 wide svg with the chart id\ngot:\n%s", svg)
		}
	})

	t.Run("should report unknown outputs", func(t *testing.T) {
		d := setupDashboard(t)
		_, _, err := d.Chart("launch-table", d.Layout.DefaultSelection())
		if !errors.Is(err, ErrUnknownOutput) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrUnknownOutput, err)
		}
	})
}

func TestWriteLog(t *testing.T) {
	t.Run("should reject an unknown level", func(t *testing.T) {
		d := setupDashboard(t)
		if err := d.WriteLog("TRACE", "x"); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should store, emit and forward the entry", func(t *testing.T) {
		var buf bytes.Buffer
		repo := &memoryLogRepo{}
		var forwarded []domain.Log
		d := setupDashboard(t,
			WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
			WithLogRepo(repo),
			WithLogHandler(func(log domain.Log) error {
				forwarded = append(forwarded, log)
				return nil
			}),
		)

		requestID := uuid.New()
		selection := domain.SelectionState{Site: "KSC", Payload: domain.PayloadRange{Low: 0, High: 5000}}
		err := d.WriteLog("WARN", "slow chart", core.LogWithRequestID(requestID), core.LogWithSelection(selection))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if len(repo.logs) != 1 {
			t.Fatalf("\nwanted:\n1 stored log\ngot:\n%d", len(repo.logs))
		}
		stored := repo.logs[0]
		if stored.ID.Version() != 7 {
			t.Fatalf("\nwanted:\nuuid v7\ngot:\nv%d", stored.ID.Version())
		}
		if stored.RequestID == nil || *stored.RequestID != requestID {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", requestID, stored.RequestID)
		}
		if stored.Context["site"] != "KSC" {
			t.Fatalf("\nwanted:\nKSC\ngot:\n%v", stored.Context["site"])
		}
		if len(forwarded) != 1 || forwarded[0].ID != stored.ID {
			t.Fatalf("\nwanted:\nthe stored entry forwarded\ngot:\n%v", forwarded)
		}
		if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "slow chart") {
			t.Fatalf("\nwanted:\nWARN line with the message\ngot:\n%q", buf.String())
		}
	})

	t.Run("should return repository errors", func(t *testing.T) {
		d := setupDashboard(t, WithLogRepo(&memoryLogRepo{err: errors.New("disk full")}))
		if err := d.WriteLog("INFO", "x"); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestServe(t *testing.T) {
	t.Run("should serve until the context is cancelled", func(t *testing.T) {
		d := setupDashboard(t)
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listening: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- d.Serve(ctx, listener) }()

		res, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("\nwanted:\n200\ngot:\n%d", res.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("\nwanted:\nserver stopped\ngot:\nstill running")
		}
	})
}
