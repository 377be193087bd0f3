package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	flag "github.com/spf13/pflag"
)

// runColumns executes the 'columns' command, listing a table's columns with
// their engine types.
func runColumns(args []string, cfg cliConfig, jsonOutput bool) error {
	fs := flag.NewFlagSet("columns", flag.ExitOnError)
	schema := fs.String("schema", "", "Schema of the table (default: sys)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mdbe columns [options] <table>\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	cols, err := s.Columns(*schema, fs.Arg(0))
	if err != nil {
		return err
	}

	if jsonOutput {
		type column struct {
			Name string `json:"name"`
			Type string `json:"type"`
		}
		out := make([]column, len(cols))
		for i, c := range cols {
			out[i] = column{Name: c.Name, Type: c.Type.String()}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	headerColor.Fprint(tw, "name\ttype")
	fmt.Fprintln(tw)
	for _, c := range cols {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Type)
	}
	return tw.Flush()
}
