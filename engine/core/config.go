package core

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LogConfig struct {
	Level        string `toml:"level"`
	ReportCaller bool   `toml:"report_caller"`
}

type GPUConfig struct {
	// Capacity of the per-device ring of completed command buffers kept
	// around for reuse. Buffers beyond this are freed back to the backend.
	RecycledCommandBuffers int `toml:"recycled_command_buffers"`
}

type Config struct {
	Log LogConfig `toml:"log"`
	GPU GPUConfig `toml:"gpu"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:        "info",
			ReportCaller: true,
		},
		GPU: GPUConfig{
			RecycledCommandBuffers: 64,
		},
	}
}

// LoadConfig reads a TOML configuration file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
