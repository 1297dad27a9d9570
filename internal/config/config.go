package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTokens   = 1024
	DefaultBaseURL     = "https://api.aiproxy.cloud/v1"
	DefaultTimeoutSec  = 30
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultSandboxRoot = "/data"
	DefaultExecTimeout = 60
)

type Config struct {
	Sandbox    SandboxConfig    `json:"sandbox"`
	Completion CompletionConfig `json:"completion"`
	Gateway    GatewayConfig    `json:"gateway"`
	Tools      ToolsConfig      `json:"tools"`
}

type SandboxConfig struct {
	Root string `json:"root"`
}

type CompletionConfig struct {
	Token      string `json:"token"`
	BaseURL    string `json:"baseUrl,omitempty"`
	Model      string `json:"model,omitempty"`
	MaxTokens  int    `json:"maxTokens,omitempty"`
	TimeoutSec int    `json:"timeoutSec,omitempty"`
}

type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type ToolsConfig struct {
	ExecTimeout int `json:"execTimeout"` // seconds, bounds git subprocesses
}

func DefaultConfig() *Config {
	return &Config{
		Sandbox: SandboxConfig{
			Root: DefaultSandboxRoot,
		},
		Completion: CompletionConfig{
			BaseURL:    DefaultBaseURL,
			Model:      DefaultModel,
			MaxTokens:  DefaultMaxTokens,
			TimeoutSec: DefaultTimeoutSec,
		},
		Gateway: GatewayConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Tools: ToolsConfig{
			ExecTimeout: DefaultExecTimeout,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".taskd")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if token := os.Getenv("TASKD_AIPROXY_TOKEN"); token != "" {
		cfg.Completion.Token = token
	}
	if token := os.Getenv("AIPROXY_TOKEN"); token != "" && cfg.Completion.Token == "" {
		cfg.Completion.Token = token
	}
	if url := os.Getenv("TASKD_BASE_URL"); url != "" {
		cfg.Completion.BaseURL = url
	}
	if model := os.Getenv("TASKD_MODEL"); model != "" {
		cfg.Completion.Model = model
	}
	if root := os.Getenv("TASKD_SANDBOX_ROOT"); root != "" {
		cfg.Sandbox.Root = root
	}
	if host := os.Getenv("TASKD_HOST"); host != "" {
		cfg.Gateway.Host = host
	}
	if port := os.Getenv("TASKD_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			cfg.Gateway.Port = parsed
		}
	}
	if timeout := os.Getenv("TASKD_EXEC_TIMEOUT"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil {
			cfg.Tools.ExecTimeout = parsed
		}
	}

	if cfg.Sandbox.Root == "" {
		cfg.Sandbox.Root = DefaultSandboxRoot
	}
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = DefaultBaseURL
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = DefaultModel
	}
	if cfg.Completion.MaxTokens <= 0 {
		cfg.Completion.MaxTokens = DefaultMaxTokens
	}
	if cfg.Completion.TimeoutSec <= 0 {
		cfg.Completion.TimeoutSec = DefaultTimeoutSec
	}
	if cfg.Tools.ExecTimeout <= 0 {
		cfg.Tools.ExecTimeout = DefaultExecTimeout
	}

	return cfg, nil
}

// Validate checks the startup-fatal conditions for serving. A missing
// completion token fails the process, never an individual request.
func (c *Config) Validate() error {
	if c.Completion.Token == "" {
		return fmt.Errorf("completion token not set. Run 'taskd onboard' or set AIPROXY_TOKEN")
	}
	if c.Sandbox.Root == "" {
		return fmt.Errorf("sandbox root not set")
	}
	if !filepath.IsAbs(c.Sandbox.Root) {
		return fmt.Errorf("sandbox root %q must be an absolute path", c.Sandbox.Root)
	}
	return nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
