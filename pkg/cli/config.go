package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/medscan/pkg/client"
	"github.com/m-mizutani/medscan/pkg/repository"
	"github.com/m-mizutani/medscan/pkg/usecase/history"
	"github.com/m-mizutani/medscan/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const defaultEndpoint = "http://localhost:8080/api/v1/identify"

// fileConfig holds persistent defaults from ~/.medscan/config.yaml. Flags
// and environment variables take precedence over the file.
type fileConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	HistoryDB string `yaml:"history_db"`
}

// config holds configuration values
type config struct {
	configPath string
	logLevel   string

	endpoint  string
	historyDB string
	model     string

	file fileConfig
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to config file",
			Sources:     cli.EnvVars("MEDSCAN_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("MEDSCAN_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "history-db",
			Usage:       "Path to the local history database",
			Sources:     cli.EnvVars("MEDSCAN_HISTORY_DB"),
			Destination: &cfg.historyDB,
		},
	}
}

// clientFlags returns flags for commands that talk to the proxy
func clientFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "endpoint",
			Aliases:     []string{"e"},
			Usage:       "Identification proxy endpoint URL",
			Sources:     cli.EnvVars("MEDSCAN_ENDPOINT"),
			Destination: &cfg.endpoint,
		},
	}
}

// setup loads the optional config file and installs the logger into the
// context. Call it first in every command action.
func (cfg *config) setup(ctx context.Context) (context.Context, error) {
	if err := cfg.loadFile(); err != nil {
		return ctx, err
	}

	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger), nil
}

func (cfg *config) loadFile() error {
	path := cfg.configPath
	if path == "" {
		path = filepath.Join(configDir(), "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	if err := yaml.Unmarshal(data, &cfg.file); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return nil
}

func (cfg *config) endpointURL() string {
	if cfg.endpoint != "" {
		return cfg.endpoint
	}
	if cfg.file.Endpoint != "" {
		return cfg.file.Endpoint
	}
	return defaultEndpoint
}

func (cfg *config) modelName() string {
	if cfg.model != "" {
		return cfg.model
	}
	return cfg.file.Model
}

func (cfg *config) historyDBPath() string {
	if cfg.historyDB != "" {
		return cfg.historyDB
	}
	if cfg.file.HistoryDB != "" {
		return cfg.file.HistoryDB
	}
	return filepath.Join(configDir(), "medscan.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".medscan")
}

// newHistory creates the history usecase backed by the local store. The
// caller owns closing the returned repository.
func (cfg *config) newHistory() (*history.UseCase, repository.Repository, error) {
	repo, err := repository.NewSQLite(cfg.historyDBPath())
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open history store")
	}
	return history.New(repo), repo, nil
}

// newClient creates a proxy client
func (cfg *config) newClient() *client.Client {
	return client.New(cfg.endpointURL())
}
