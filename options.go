package launchdash

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"github.com/tfkr-ae/launchdash/dataset"
	"github.com/tfkr-ae/launchdash/db"
	"github.com/tfkr-ae/launchdash/domain"
)

// WithOptions applies a series of configuration functions to the dashboard.
// The first failing option stops the chain and its error is returned.
func (dash *Dashboard) WithOptions(options ...func(*Dashboard) error) error {
	for _, option := range options {
		err := option(dash)
		if err != nil {
			return fmt.Errorf("applying option on launchdash : %w", err)
		}
	}
	return nil
}

// WithConfigDir configures the dashboard to use the specified configuration directory.
// It creates the directory if it doesn't exist and initializes config.yaml with the
// defaults on first run.
func WithConfigDir(appConfigDir string) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				dash.Logger.Info("creating config dir", "path", appConfigDir)
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}
		dash.ConfigDir = appConfigDir

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(appConfigDir)
		setDefaults(v)
		err = v.ReadInConfig()
		if err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				err = v.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}

		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			return fmt.Errorf("unmarshalling config to struct : %w", err)
		}
		cfg.viper = v
		cfg.ConfigDir = appConfigDir
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config %s : %w", v.ConfigFileUsed(), err)
		}
		dash.Config = cfg
		return nil
	}
}

// WithConfig replaces the dashboard configuration without touching any config file.
func WithConfig(cfg *Config) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config : %w", err)
		}
		dash.Config = cfg
		return nil
	}
}

// WithLogger sets the structured logger used for access logs and WriteLog output.
// A nil logger discards everything.
func WithLogger(logger *slog.Logger) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		dash.Logger = logger
		return nil
	}
}

// WithRepo sets the repository answering the chart queries. Any repository opened by an
// earlier option is closed first.
func WithRepo(repo domain.LaunchRepository) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		if repo == nil {
			return errors.New("launch repository is nil")
		}
		if err := dash.closeStores(); err != nil {
			return err
		}
		dash.Repo = repo
		if stats, ok := repo.(domain.StatsRepository); ok {
			dash.Stats = stats
		}
		return nil
	}
}

// WithLogRepo sets where WriteLog persists entries.
func WithLogRepo(repo domain.LogRepository) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		dash.LogRepo = repo
		return nil
	}
}

// WithDataset loads ds into the backend named by the configuration. The memory backend
// wraps ds in a dataset.Store; the sqlite backend opens the configured store and inserts
// every record, and also keeps the dashboard logs.
func WithDataset(ds domain.Dataset) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		switch dash.Config.Backend {
		case BackendSQLite:
			conn, err := db.New(dash.Config.StorePath)
			if err != nil {
				return fmt.Errorf("opening launch store %s : %w", dash.Config.StorePath, err)
			}
			repo := db.NewLaunchRepo(conn)
			if err := repo.InsertLaunches(ds); err != nil {
				repo.Close()
				return fmt.Errorf("loading launches into %s : %w", dash.Config.StorePath, err)
			}
			if err := WithRepo(repo)(dash); err != nil {
				repo.Close()
				return err
			}
			dash.LogRepo = repo
			dash.closers = append(dash.closers, repo)
		default:
			if err := WithRepo(dataset.NewStore(ds))(dash); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithDataFile reads the launch records CSV at path and loads it with WithDataset.
// An empty path uses the data_file setting.
func WithDataFile(path string) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		if path == "" {
			path = dash.Config.DataFile
		}
		ds, err := dataset.Load(path)
		if err != nil {
			return err
		}
		dash.Logger.Info("dataset loaded", "path", path, "records", len(ds))
		return WithDataset(ds)(dash)
	}
}

// WithLogHandler takes a handler function that will be executed on each Log
func WithLogHandler(handler func(log domain.Log) error) func(*Dashboard) error {
	return func(dash *Dashboard) error {
		if dash.OnLog != nil {
			return errors.New("dashboard already has a log handler defined")
		}
		dash.OnLog = handler
		return nil
	}
}
