package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pior/mpd"
	"github.com/spf13/cobra"
)

// commandContext carries the global flags and lazily loads the config.
type commandContext struct {
	configFlag *string
	hostFlag   *string
	portFlag   *int
	timeout    *time.Duration
	logLevel   *string

	configOnce sync.Once
	config     *config
	configErr  error
}

func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config, error) {
	c.configOnce.Do(func() {
		cfg, err := loadConfig(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}

		flags := cmd.Flags()
		if flags.Changed("host") {
			cfg.Host = *c.hostFlag
		}
		if flags.Changed("port") {
			cfg.Port = *c.portFlag
		}
		if flags.Changed("timeout") {
			cfg.Timeout = c.timeout.String()
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = *c.logLevel
		}

		if err := cfg.normalize(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withClient runs fn with a client and a context bounded by the timeout.
func (c *commandContext) withClient(cmd *cobra.Command, fn func(ctx context.Context, client *mpd.Client) error) error {
	cfg, err := c.ensureConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.logLevel)

	client, err := mpd.NewClient(cfg.address(), mpd.Config{
		MaxSize: cfg.PoolSize,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	start := time.Now()
	err = fn(ctx, client)
	logger.Debug("command done", "command", cmd.Name(), "took", time.Since(start), "stats", client.Stats())

	if err != nil {
		return wrapDialError(err, cfg.address())
	}
	return nil
}

func wrapDialError(err error, addr string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to mpd: socket %s not found", addr)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to mpd: %s refused the connection; verify the daemon is running", addr)
	default:
		return err
	}
}

func logLevelNames() string {
	return strings.Join([]string{
		slog.LevelDebug.String(), slog.LevelInfo.String(), slog.LevelWarn.String(), slog.LevelError.String(),
	}, ", ")
}
