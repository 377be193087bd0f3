package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/monetdbe/monetdbe-go"
)

// runQuery executes the 'query' command: one SQL statement, printing its
// result as a table (default) or JSON.
//
// Flags:
//   - --limit: print at most this many rows (default: 0, all)
func runQuery(args []string, cfg cliConfig, jsonOutput bool) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Print at most this many rows (0 = all)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mdbe query [options] <sql>\n\nOptions:\n")
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

	return s.WithResult(fs.Arg(0), func(r *monetdbe.Result) error {
		if r == nil {
			okColor.Fprintln(os.Stderr, "OK")
			return nil
		}
		table, err := readTable(r, *limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return table.writeJSON(os.Stdout)
		}
		return table.writeText(os.Stdout)
	})
}

type queryTable struct {
	Columns []string `json:"columns"`
	Types   []string `json:"types"`
	Rows    [][]any  `json:"rows"`
	Total   int      `json:"total"`
}

func readTable(r *monetdbe.Result, limit int) (queryTable, error) {
	t := queryTable{Total: r.Rows()}
	names, err := r.ColumnNames()
	if err != nil {
		return t, err
	}
	types, err := r.ColumnTypes()
	if err != nil {
		return t, err
	}
	t.Columns = names
	for _, typ := range types {
		t.Types = append(t.Types, typ.String())
	}

	n := r.Rows()
	if limit > 0 && limit < n {
		n = limit
	}
	t.Rows = make([][]any, n)
	for i := range t.Rows {
		if t.Rows[i], err = r.Row(i, nil); err != nil {
			return t, err
		}
	}
	return t, nil
}

func (t queryTable) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func (t queryTable) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, name := range t.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		headerColor.Fprint(tw, name)
	}
	fmt.Fprintln(tw)

	for _, row := range t.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				nullColor.Fprint(tw, "NULL")
				continue
			}
			fmt.Fprint(tw, formatValue(v))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(t.Rows) < t.Total {
		fmt.Fprintf(w, "(%d of %d rows)\n", len(t.Rows), t.Total)
	} else {
		fmt.Fprintf(w, "(%d rows)\n", t.Total)
	}
	return nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case time.Time:
		if v.Year() == 1 && v.Month() == time.January && v.Day() == 1 {
			return v.Format(time.TimeOnly)
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format("2006-01-02 15:04:05.000")
	case []byte:
		return fmt.Sprintf("%X", v)
	case *big.Int:
		return v.String()
	}
	return fmt.Sprint(v)
}
