package monetdbe

import (
	"slices"

	log "github.com/sirupsen/logrus"
)

// BulkColumn is one host column handed to Append. Data is a typed slice,
// e.g. []int64, []string or []time.Time. Valid, if not nil, has one entry per
// element; false marks a null.
type BulkColumn struct {
	Data  any
	Valid []bool
}

// Append loads columns into schema.table with a single engine append call.
// An empty schema selects "sys". The columns must name every table column
// exactly once and have equal lengths. Numeric data is converted to the
// column's type; values that do not fit it are rejected. Nothing reaches the
// engine unless every column validates.
func (s *Session) Append(schema string, table string, columns map[string]BulkColumn) error {
	if schema == "" {
		schema = defaultSchema
	}
	target, err := s.Columns(schema, table)
	if err != nil {
		return err
	}

	packed, err := packColumns(target, columns)
	if err != nil {
		recordAppendRejected()
		log.WithFields(log.Fields{"schema": schema, "table": table}).Debug(err.Error())
		return err
	}

	db, _, err := s.m.use(s)
	if err != nil {
		return err
	}
	if err := s.m.engine.Append(db, schema, table, packed); err != nil {
		return engineError(errAppend, err.Error())
	}

	rows := 0
	if len(packed) > 0 {
		rows = packed[0].Count
	}
	recordAppend(rows)
	log.WithFields(log.Fields{"schema": schema, "table": table, "rows": rows}).Debug("appended")
	return nil
}

// packColumns validates columns against the table layout and packs them in
// table order.
func packColumns(target []ColumnInfo, columns map[string]BulkColumn) ([]PackedColumn, error) {
	if len(columns) > len(target) {
		return nil, programmingError(errTooManyColumns, "got %d, table has %d", len(columns), len(target))
	}
	if len(columns) < len(target) {
		return nil, programmingError(errTooFewColumns, "got %d, table has %d", len(columns), len(target))
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !slices.ContainsFunc(target, func(c ColumnInfo) bool { return c.Name == name }) {
			return nil, programmingError(errUnknownColumn, "%s", name)
		}
	}

	packed := make([]PackedColumn, len(target))
	for i, info := range target {
		desc, err := Describe(info.Type)
		if err != nil {
			return nil, err
		}
		col := columns[info.Name]
		h, err := toHostVector(col.Data)
		if err != nil {
			return nil, castColumnError(err, info.Name)
		}
		if packed[i], err = packColumn(info.Name, desc, h, col.Valid); err != nil {
			return nil, err
		}
	}

	if len(packed) == 0 {
		return packed, nil
	}
	for _, col := range packed[1:] {
		if col.Count != packed[0].Count {
			return nil, programmingError(errLengthMismatch, "%s has %d rows, %s has %d",
				packed[0].Name, packed[0].Count, col.Name, col.Count)
		}
	}
	return packed, nil
}
