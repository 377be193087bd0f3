package main

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/monetdbe/monetdbe-go"
)

// runLoad executes the 'load' command. The CSV file must start with a header
// row naming every column of the table. Empty fields load as NULL.
func runLoad(args []string, cfg cliConfig) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	schema := fs.String("schema", "", "Schema of the table (default: sys)")
	delimiter := fs.String("delimiter", ",", "Field delimiter")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mdbe load [options] <table> <file.csv>\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 || len(*delimiter) != 1 {
		fs.Usage()
		os.Exit(1)
	}
	table, path := fs.Arg(0), fs.Arg(1)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := s.Columns(*schema, table)
	if err != nil {
		return err
	}
	columns, rows, err := readCSV(f, rune((*delimiter)[0]), target)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Append(*schema, table, columns); err != nil {
		return err
	}

	log.WithFields(log.Fields{"table": table, "rows": rows}).Info("loaded")
	okColor.Fprintf(os.Stderr, "Loaded %d rows into %s\n", rows, table)
	return nil
}

// readCSV parses r into one append column per header field. Fields whose
// header names a table column are parsed as that column's type; others are
// kept as strings and left to Append to reject.
func readCSV(r io.Reader, delimiter rune, target []monetdbe.ColumnInfo) (map[string]monetdbe.BulkColumn, int, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter

	records, err := cr.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("missing header row")
	}
	header, records := records[0], records[1:]

	types := make(map[string]monetdbe.TypeTag, len(target))
	for _, c := range target {
		types[c.Name] = c.Type
	}

	columns := make(map[string]monetdbe.BulkColumn, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		fields := make([]string, len(records))
		for i, rec := range records {
			fields[i] = rec[j]
		}
		typ, ok := types[name]
		if !ok {
			typ = monetdbe.TYPE_STR
		}
		col, err := parseColumn(fields, typ)
		if err != nil {
			return nil, 0, fmt.Errorf("column %s: %w", name, err)
		}
		columns[name] = col
	}
	return columns, len(records), nil
}

func parseColumn(fields []string, typ monetdbe.TypeTag) (monetdbe.BulkColumn, error) {
	valid := make([]bool, len(fields))
	nulls := false
	for i, f := range fields {
		valid[i] = f != ""
		nulls = nulls || f == ""
	}

	var (
		data any
		err  error
	)
	switch typ {
	case monetdbe.TYPE_BOOL:
		data, err = parseFields(fields, valid, strconv.ParseBool)
	case monetdbe.TYPE_INT8, monetdbe.TYPE_INT16, monetdbe.TYPE_INT32, monetdbe.TYPE_INT64:
		data, err = parseFields(fields, valid, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
	case monetdbe.TYPE_SIZE_T:
		data, err = parseFields(fields, valid, func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) })
	case monetdbe.TYPE_INT128:
		data, err = parseFields(fields, valid, func(s string) (*big.Int, error) {
			i, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", s)
			}
			return i, nil
		})
	case monetdbe.TYPE_FLOAT, monetdbe.TYPE_DOUBLE:
		data, err = parseFields(fields, valid, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	case monetdbe.TYPE_BLOB:
		data, err = parseFields(fields, valid, hex.DecodeString)
	case monetdbe.TYPE_DATE:
		data, err = parseFields(fields, valid, func(s string) (time.Time, error) { return time.Parse(time.DateOnly, s) })
	case monetdbe.TYPE_TIME:
		data, err = parseFields(fields, valid, func(s string) (time.Time, error) { return time.Parse(time.TimeOnly, s) })
	case monetdbe.TYPE_TIMESTAMP:
		data, err = parseFields(fields, valid, parseTimestamp)
	default:
		data = fields
	}
	if err != nil {
		return monetdbe.BulkColumn{}, err
	}
	if !nulls {
		valid = nil
	}
	return monetdbe.BulkColumn{Data: data, Valid: valid}, nil
}

func parseFields[T any](fields []string, valid []bool, parse func(string) (T, error)) ([]T, error) {
	vals := make([]T, len(fields))
	for i, f := range fields {
		if !valid[i] {
			continue
		}
		v, err := parse(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
