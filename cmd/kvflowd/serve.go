package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"kvflow/internal/config"
	"kvflow/internal/logger"
	"kvflow/internal/rdb"
	"kvflow/internal/server"
	"kvflow/internal/store"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("kvflowd: %w", err)
	}
	applyFlagOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("kvflowd: %w", err)
	}

	if err := logger.Init(cfg.Logging.Dir, logger.ParseLevel(cfg.Logging.Level), "kvflowd"); err != nil {
		return fmt.Errorf("kvflowd: %w", err)
	}
	defer logger.Close()

	s := store.New(cfg.Metrics.ShardCount)
	metrics := server.NewMetrics(prometheus.DefaultRegisterer, func() float64 { return float64(s.Len()) })
	if err := loadSnapshot(cfg, s, metrics); err != nil {
		return fmt.Errorf("kvflowd: %w", err)
	}

	acceptor := server.New(server.Config{
		Address:         cfg.Addr(),
		Dir:             cfg.Dir,
		DBFile:          cfg.DBFile,
		RateLimitPerSec: cfg.RateLimit.CommandsPerSecond,
		MetricsAddress:  cfg.Metrics.Address,
	}, s, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("kvflowd starting, pid=%d", os.Getpid())
	return acceptor.Run(ctx)
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func applyFlagOverrides(cfg *config.Config) {
	if flagAddress != "" {
		cfg.Server.Address = flagAddress
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagDir != "" {
		cfg.Dir = flagDir
	}
	if flagDBFile != "" {
		cfg.DBFile = flagDBFile
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogDir != "" {
		cfg.Logging.Dir = flagLogDir
	}
	if flagMetricsAddr != "" {
		cfg.Metrics.Address = flagMetricsAddr
	}
	if flagRateLimit >= 0 {
		cfg.RateLimit.CommandsPerSecond = flagRateLimit
	}
	if flagShardCount > 0 {
		cfg.Metrics.ShardCount = flagShardCount
	}
}

// loadSnapshot seeds the store from the configured snapshot file. Per
// the wire contract, a missing snapshot is not an error — the server
// simply starts with an empty store — but any other failure to parse
// an existing file is fatal.
func loadSnapshot(cfg *config.Config, s *store.Store, metrics *server.Metrics) error {
	path := cfg.SnapshotPath()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("kvflowd: no snapshot at %s, starting empty", path)
			return nil
		}
		metrics.SnapshotLoadErrors.Inc()
		return fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()

	count := 0
	err = rdb.Load(f, func(e rdb.Entry) error {
		s.LoadRaw(e.Key, e.Value, e.ExpireAt)
		metrics.SnapshotKeysLoaded.Inc()
		count++
		return nil
	})
	if err != nil && err != io.EOF {
		metrics.SnapshotLoadErrors.Inc()
		return fmt.Errorf("load snapshot %s: %w", path, err)
	}
	logger.Info("kvflowd: loaded %d keys from %s", count, path)
	return nil
}
