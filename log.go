package monetdbe

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// LogConfig contains the configuration for the global logger.
type LogConfig struct {
	Format string `yaml:"format"` // text or json
	Level  string `yaml:"level"`  // trace, debug, info, warn or error
	File   string `yaml:"file"`   // blank or "-" logs to stderr
}

// Configure the global logger.
func (cfg *LogConfig) Configure() error {
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		log.SetOutput(f)
	}
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		log.SetLevel(level)
	}
	switch cfg.Format {
	case "", "text":
		// default, do nothing
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("log format must be either text or json, got %q", cfg.Format)
	}
	return nil
}
