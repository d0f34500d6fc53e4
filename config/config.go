// Package config loads vitae settings from an optional JSON file and the
// VITAE_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ByLCY/vitae/renderer/backend"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VITAE_"

// Config 汇总 CLI 与 HTTP 服务共用的设置。命令行参数优先于环境变量，环境变量优先于配置文件。
type Config struct {
	Addr        string `json:"addr"`
	Renderer    string `json:"renderer"`
	Theme       string `json:"theme"`
	OutputDir   string `json:"output_dir"`
	LogLevel    string `json:"log_level"`
	Concurrency int    `json:"concurrency"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:        ":8080",
		Renderer:    backend.Default,
		OutputDir:   ".",
		LogLevel:    "info",
		Concurrency: 4,
	}
}

// Load reads path (when non-empty) over Default and then applies environment
// overrides. A missing file is an error only when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":       &c.Addr,
		"RENDERER":   &c.Renderer,
		"THEME":      &c.Theme,
		"OUTPUT_DIR": &c.OutputDir,
		"LOG_LEVEL":  &c.LogLevel,
	}
	for key, target := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*target = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(EnvPrefix + "CONCURRENCY"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sCONCURRENCY 不是整数: %q", EnvPrefix, v)
		}
		c.Concurrency = n
	}
	return nil
}

// Validate checks enums and ranges.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr 不能为空"))
	}
	if err := backend.Check(c.Renderer); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency 必须至少为 1，实际 %d", c.Concurrency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("配置无效: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps debug/info/warn/error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("未知的日志级别 %q", s)
	}
	return level, nil
}

// Logger builds the text logger on stderr used by every command.
func (c Config) Logger() *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
