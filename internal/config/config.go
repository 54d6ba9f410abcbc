// Package config loads deck.yaml from a deck directory and builds the
// program logger. Every field has a working default so a bare directory of
// markdown files is a valid deck.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const fileName = "deck.yaml"

type Config struct {
	Title string `yaml:"title,omitempty"`
	Theme string `yaml:"theme,omitempty"` // dark, light or auto

	Export ExportConfig `yaml:"export,omitempty"`
	Serve  ServeConfig  `yaml:"serve,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

type ExportConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"` // html or text
}

type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty"` // none, normal or debug
	File  string `yaml:"file,omitempty"`
}

func defaults() Config {
	return Config{
		Theme: "auto",
		Export: ExportConfig{
			Format: "html",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:4321",
		},
		Log: LogConfig{
			Level: "normal",
		},
	}
}

// Load reads deck.yaml from dir. A missing file is not an error; the
// defaults apply.
func Load(dir string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(filepath.Join(dir, fileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", fileName, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", fileName, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("%s: unknown theme %q", fileName, c.Theme)
	}
	switch c.Export.Format {
	case "", "html", "text":
	default:
		return fmt.Errorf("%s: unknown export format %q", fileName, c.Export.Format)
	}
	switch c.Log.Level {
	case "", "none", "normal", "debug":
	default:
		return fmt.Errorf("%s: unknown log level %q", fileName, c.Log.Level)
	}
	return nil
}

// BuildLogger returns a file-backed logger. The terminal belongs to the
// viewer, so nothing ever logs to stdout or stderr; level "none" yields a
// nop logger.
func (c Config) BuildLogger(deckDir string) (*zap.Logger, func(), error) {
	if c.Log.Level == "none" {
		return zap.NewNop(), func() {}, nil
	}

	path := c.Log.File
	if path == "" {
		path = filepath.Join(deckDir, ".deckview", "deckview.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level := zapcore.InfoLevel
	if c.Log.Level == "debug" {
		level = zapcore.DebugLevel
	}
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(f), level)
	log := zap.New(core)

	cleanup := func() {
		_ = log.Sync()
		_ = f.Close()
	}
	return log, cleanup, nil
}
