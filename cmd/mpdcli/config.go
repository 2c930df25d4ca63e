package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// config is the mpdcli configuration file.
//
//	host = "localhost"        # or the path of a unix socket
//	port = 6600
//	timeout = "5s"
//	pool_size = 2
//	log_level = "warn"
type config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Timeout  string `toml:"timeout"`
	PoolSize int32  `toml:"pool_size"`
	LogLevel string `toml:"log_level"`

	timeout  time.Duration
	logLevel slog.Level
}

func defaultConfig() config {
	return config{
		Host:     "localhost",
		Port:     6600,
		Timeout:  "5s",
		PoolSize: 2,
		LogLevel: "warn",
	}
}

// loadConfig reads path over the defaults, then applies MPD_HOST and
// MPD_PORT. A missing file is not an error; an empty path means
// ~/.config/mpdcli/config.toml.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if host := os.Getenv("MPD_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("MPD_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid MPD_PORT %q", port)
		}
		cfg.Port = n
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, nil
		}
		path = filepath.Join(home, ".config", "mpdcli", "config.toml")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return path, true, nil
}

// normalize validates the raw values and derives the typed ones.
func (c *config) normalize() error {
	c.Host = strings.TrimSpace(c.Host)
	if c.Host == "" {
		return errors.New("config: host is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}

	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("config: invalid timeout %q: %w", c.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	c.timeout = timeout

	if c.PoolSize <= 0 {
		return fmt.Errorf("config: invalid pool_size %d", c.PoolSize)
	}

	if err := c.logLevel.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}

	return nil
}

// address is the dial address: a unix socket path as is, host:port otherwise.
func (c *config) address() string {
	if strings.HasPrefix(c.Host, "/") || strings.HasPrefix(c.Host, "@") {
		return c.Host
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
