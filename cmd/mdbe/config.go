package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/monetdbe/monetdbe-go"
)

// cliConfig is the YAML configuration file. Flags override it.
//
//	db: /var/lib/demo
//	engine:
//	  nr_threads: 4
//	  library: /opt/monetdb/lib/libmonetdbe.so
//	log:
//	  level: debug
//	metrics_addr: localhost:9464
type cliConfig struct {
	DB          string             `yaml:"db"`
	Engine      monetdbe.Config    `yaml:"engine"`
	Log         monetdbe.LogConfig `yaml:"log"`
	MetricsAddr string             `yaml:"metrics_addr"`
}

func loadConfig(g globals) (cliConfig, error) {
	var cfg cliConfig
	if g.configPath != "" {
		data, err := os.ReadFile(g.configPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", g.configPath, err)
		}
	}

	if g.db != "" {
		cfg.DB = g.db
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if g.metricsAddr != "" {
		cfg.MetricsAddr = g.metricsAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	return cfg, nil
}
