package main

import (
	"fmt"
	"os"

	"github.com/sebastienrousseau/langweave/detect"
	"github.com/sebastienrousseau/langweave/metrics"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel      string               `yaml:"log_level"`
	Stream        StreamConfig         `yaml:"stream"`
	DetectService detect.ServiceConfig `yaml:"detect_service"`
	Metric        metrics.MetricConfig `yaml:"metric"`
}

type StreamConfig struct {
	WorkerPoolSize int `yaml:"worker_pool_size"`
}

func newConfig() *Config {
	return &Config{
		LogLevel: "info",
		Stream: StreamConfig{
			WorkerPoolSize: 4,
		},
		DetectService: detect.NewServiceConfig(),
	}
}

// loadConfig reads configFile over the defaults. An empty path gives the
// defaults.
func loadConfig(configFile string) (cfg *Config, err error) {
	cfg = newConfig()
	if configFile == "" {
		return
	}

	yamlFile, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("config file '%s' not found", configFile)
			return nil, err
		}
		return nil, fmt.Errorf("read config file '%s' failed: %w", configFile, err)
	}

	err = yaml.Unmarshal(yamlFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse '%s' failed: %w", configFile, err)
	}
	return
}
