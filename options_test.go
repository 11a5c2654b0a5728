package launchdash

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/tfkr-ae/launchdash/dataset"
	"github.com/tfkr-ae/launchdash/domain"
)

func TestWithLogger(t *testing.T) {
	t.Run("sets custom logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		d, err := New(
			WithLogger(logger),
		)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if d.Logger != logger {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", logger, d.Logger)
		}

		d.Logger.Info("test log message")
		if !strings.Contains(buf.String(), "test log message") {
			t.Fatalf("\nwanted:\nlog output containing 'test log message'\ngot:\n%q", buf.String())
		}
	})

	t.Run("handles nil logger safely", func(t *testing.T) {
		d, err := New(
			WithLogger(nil),
		)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if d.Logger == nil {
			t.Fatalf("\nwanted:\nnon-nil logger\ngot:\nnil")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("\nwanted:\nno panic\ngot:\n%v", r)
			}
		}()

		d.Logger.Info("safe check")
	})
}

func TestWithConfigDir(t *testing.T) {
	t.Run("should create the directory and write the defaults on first run", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "launchdash")

		d, err := New(WithConfigDir(dir))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
			t.Fatalf("\nwanted:\nconfig.yaml written\ngot:\n%v", err)
		}
		if d.ConfigDir != dir {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", dir, d.ConfigDir)
		}

		want := DefaultConfig()
		got := d.Config
		if got.DataFile != want.DataFile || got.ListenAddr() != "127.0.0.1:8050" || got.Backend != BackendMemory ||
			got.StorePath != want.StorePath || got.PrettyOutput || !got.Compression ||
			got.ChartWidth != 900 || got.ChartHeight != 450 {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should read an existing config file", func(t *testing.T) {
		dir := t.TempDir()
		content := "port: 9000\nbackend: sqlite\npretty_output: true\nchart_width: 640\n"
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		d, err := New(WithConfigDir(dir))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if d.Config.Port != "9000" {
			t.Fatalf("\nwanted:\n9000\ngot:\n%s", d.Config.Port)
		}
		if d.Config.Backend != BackendSQLite {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", BackendSQLite, d.Config.Backend)
		}
		if !d.Config.PrettyOutput {
			t.Fatalf("\nwanted:\npretty_output true\ngot:\nfalse")
		}
		if d.Config.ChartWidth != 640 || d.Config.ChartHeight != 450 {
			t.Fatalf("\nwanted:\n640x450\ngot:\n%dx%d", d.Config.ChartWidth, d.Config.ChartHeight)
		}
	})

	t.Run("should reject an unknown backend", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: postgres\n"), 0600); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		_, err := New(WithConfigDir(dir))
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should persist a new data file", func(t *testing.T) {
		dir := t.TempDir()
		d, err := New(WithConfigDir(dir))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if err := d.Config.SetDataFile("/data/launches.csv"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		v := viper.New()
		v.SetConfigFile(filepath.Join(dir, "config.yaml"))
		if err := v.ReadInConfig(); err != nil {
			t.Fatalf("reading config back: %v", err)
		}
		if got := v.GetString("data_file"); got != "/data/launches.csv" {
			t.Fatalf("\nwanted:\n/data/launches.csv\ngot:\n%s", got)
		}
	})
}

func TestSetDataFileWithoutConfigFile(t *testing.T) {
	t.Run("should refuse to save a config that has no file", func(t *testing.T) {
		cfg := DefaultConfig()
		if err := cfg.SetDataFile("x.csv"); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestWithConfig(t *testing.T) {
	t.Run("should reject a nil config", func(t *testing.T) {
		if _, err := New(WithConfig(nil)); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})

	t.Run("should reject a non positive chart size", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ChartHeight = 0
		if _, err := New(WithConfig(cfg)); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestWithDataset(t *testing.T) {
	t.Run("should answer queries from memory by default", func(t *testing.T) {
		d, err := New(WithDataset(exampleDataset()))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer d.Close()

		if _, ok := d.Repo.(*dataset.Store); !ok {
			t.Fatalf("\nwanted:\n*dataset.Store\ngot:\n%T", d.Repo)
		}
		if d.LogRepo != nil {
			t.Fatalf("\nwanted:\nno log repository\ngot:\n%T", d.LogRepo)
		}
		if d.Stats == nil {
			t.Fatalf("\nwanted:\nstats repository\ngot:\nnil")
		}
	})

	t.Run("should load the sqlite backend and keep logs in it", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backend = BackendSQLite
		d, err := New(WithConfig(cfg), WithDataset(exampleDataset()))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer d.Close()

		sites, err := d.Repo.Sites()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if strings.Join(sites, ",") != "CCAFS,KSC" {
			t.Fatalf("\nwanted:\nCCAFS,KSC\ngot:\n%v", sites)
		}

		if err := d.WriteLog("INFO", "stored"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		logs, err := d.LogRepo.GetLogs()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(logs) != 1 || logs[0].Message != "stored" {
			t.Fatalf("\nwanted:\none log \"stored\"\ngot:\n%v", logs)
		}
	})

	t.Run("should release the sqlite store when the repository is replaced", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backend = BackendSQLite
		d, err := New(WithConfig(cfg), WithDataset(exampleDataset()), WithRepo(dataset.NewStore(nil)))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer d.Close()

		if d.LogRepo != nil {
			t.Fatalf("\nwanted:\nno log repository\ngot:\n%T", d.LogRepo)
		}
		if len(d.closers) != 0 {
			t.Fatalf("\nwanted:\n0 open stores\ngot:\n%d", len(d.closers))
		}
	})
}

func TestWithDataFile(t *testing.T) {
	t.Run("should load the fixture", func(t *testing.T) {
		d, err := New(WithDataFile(filepath.Join("dataset", "testdata", "launches.csv")))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer d.Close()

		n, err := d.Stats.CountLaunches()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if n != 15 {
			t.Fatalf("\nwanted:\n15\ngot:\n%d", n)
		}
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := New(WithDataFile(filepath.Join(t.TempDir(), "missing.csv")))
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestWithLogHandler(t *testing.T) {
	t.Run("should refuse a second handler", func(t *testing.T) {
		handler := func(domain.Log) error { return nil }
		if _, err := New(WithLogHandler(handler), WithLogHandler(handler)); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}
