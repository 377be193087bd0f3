// Package main implements mdbe, a command line client for embedded MonetDB
// databases.
//
// Usage:
//
//	mdbe [global options] query <sql>                  Run a statement and print its result
//	mdbe [global options] columns [--schema S] <table> List the columns of a table
//	mdbe [global options] load [--schema S] <table> <file.csv>
//	                                                   Bulk load a CSV file into a table
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/monetdbe/monetdbe-go"
)

var version = "dev"

type globals struct {
	db          string
	configPath  string
	logLevel    string
	logFormat   string
	jsonOutput  bool
	noColor     bool
	metricsAddr string
}

func main() {
	var g globals
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.StringVar(&g.db, "db", "", "Database directory or DSN (default: in-memory)")
	flag.StringVar(&g.configPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&g.logLevel, "log-level", "", "Log level: trace, debug, info, warn or error")
	flag.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	flag.BoolVar(&g.jsonOutput, "json", false, "Print results as JSON")
	flag.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	flag.StringVar(&g.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flag.CommandLine.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `mdbe - embedded MonetDB client

Usage:
  mdbe [global options] <command> [options]

Commands:
  query     Run a SQL statement and print its result
  columns   List the columns of a table
  load      Bulk load a CSV file into a table

Global Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mdbe --db /tmp/demo query "CREATE TABLE t (i INT, f REAL)"
  mdbe --db /tmp/demo load t data.csv
  mdbe --db /tmp/demo --json query "SELECT * FROM t"

Environment Variables:
  MONETDBE_LIBRARY   Path of libmonetdbe (default: platform library name)
  NO_COLOR           Disable colored output
`)
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("mdbe version %s\n", version)
		os.Exit(0)
	}
	if g.noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(g)
	if err != nil {
		fatal(err)
	}
	if err := cfg.Log.Configure(); err != nil {
		fatal(err)
	}
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	command, cmdArgs := args[0], args[1:]
	switch command {
	case "query":
		err = runQuery(cmdArgs, cfg, g.jsonOutput)
	case "columns":
		err = runColumns(cmdArgs, cfg, g.jsonOutput)
	case "load":
		err = runLoad(cmdArgs, cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.WithField("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}

func openSession(cfg cliConfig) (*monetdbe.Session, error) {
	dbdir, dsnCfg, err := monetdbe.ParseDSN(cfg.DB)
	if err != nil {
		return nil, err
	}
	// Options given in the DSN win over the configuration file.
	merged := cfg.Engine
	if dsnCfg.MemoryLimit != 0 {
		merged.MemoryLimit = dsnCfg.MemoryLimit
	}
	if dsnCfg.QueryTimeout != 0 {
		merged.QueryTimeout = dsnCfg.QueryTimeout
	}
	if dsnCfg.SessionTimeout != 0 {
		merged.SessionTimeout = dsnCfg.SessionTimeout
	}
	if dsnCfg.NrThreads != 0 {
		merged.NrThreads = dsnCfg.NrThreads
	}
	if dsnCfg.Library != "" {
		merged.Library = dsnCfg.Library
	}
	return monetdbe.OpenConfig(dbdir, merged)
}

// fatal exits with 2 for invalid input and 1 for everything else.
func fatal(err error) {
	errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
	var perr *monetdbe.ProgrammingError
	if errors.As(err, &perr) {
		os.Exit(2)
	}
	os.Exit(1)
}

var (
	errorColor  = color.New(color.FgRed)
	headerColor = color.New(color.Bold)
	nullColor   = color.New(color.Faint)
	okColor     = color.New(color.FgGreen)
)
