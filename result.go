package monetdbe

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// Result guards an engine-owned query result. It must be released with Close
// exactly once; further Close calls are no-ops. Columns fetched from a result
// are borrowed and become invalid once it is released.
//
// A result also becomes dead when its session's connection is closed, e.g.
// because another session was switched to. The engine frees the memory with
// the connection, so a dead result is never cleaned up again.
type Result struct {
	s        *Session
	h        ResultHandle
	gen      uint64
	affected int64
	released bool
	columns  []ResultColumn
}

// Rows is the number of rows in the result.
func (r *Result) Rows() int {
	return r.h.Rows
}

// Columns is the number of columns in the result.
func (r *Result) Columns() int {
	return r.h.Cols
}

// RowsAffected is the count the engine reported for the query.
func (r *Result) RowsAffected() int64 {
	return r.affected
}

// Released reports whether the result has been closed.
func (r *Result) Released() bool {
	return r.released
}

func (r *Result) live() (DB, error) {
	if r.released {
		return 0, programmingError(errReleasedResult, "")
	}
	db, ok := r.s.m.alive(r.gen)
	if !ok {
		return 0, programmingError(errReleasedResult, "connection was closed")
	}
	return db, nil
}

// Column fetches column i. The returned view is valid until the result is released.
func (r *Result) Column(i int) (ResultColumn, error) {
	db, err := r.live()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= r.h.Cols {
		return nil, programmingError(errColumnIndex, "%d of %d", i, r.h.Cols)
	}
	if r.columns == nil {
		r.columns = make([]ResultColumn, r.h.Cols)
	}
	if r.columns[i] != nil {
		return r.columns[i], nil
	}

	col, err := r.s.m.engine.FetchColumn(db, r.h, i)
	if err != nil {
		var unknown *UnknownTypeError
		if errors.As(err, &unknown) {
			return nil, err
		}
		return nil, engineError(errFetch, err.Error())
	}
	r.columns[i] = col
	return col, nil
}

// ColumnNames returns the column names in result order.
func (r *Result) ColumnNames() ([]string, error) {
	names := make([]string, r.h.Cols)
	for i := range names {
		col, err := r.Column(i)
		if err != nil {
			return nil, err
		}
		names[i] = col.Name()
	}
	return names, nil
}

// ColumnTypes returns the column type tags in result order.
func (r *Result) ColumnTypes() ([]TypeTag, error) {
	types := make([]TypeTag, r.h.Cols)
	for i := range types {
		col, err := r.Column(i)
		if err != nil {
			return nil, err
		}
		types[i] = col.Type()
	}
	return types, nil
}

// Row extracts every column of row i. Nulls are returned as nil. text, if
// not nil, wraps string values.
func (r *Result) Row(i int, text TextFactory) ([]any, error) {
	if i < 0 || i >= r.h.Rows {
		return nil, programmingError(errColumnIndex, "row %d of %d", i, r.h.Rows)
	}
	row := make([]any, r.h.Cols)
	for j := range row {
		col, err := r.Column(j)
		if err != nil {
			return nil, err
		}
		if row[j], err = Extract(col, i, text); err != nil {
			return nil, err
		}
	}
	return row, nil
}

// Close releases the result. Closing a released result does nothing.
func (r *Result) Close() error {
	if r == nil || r.released {
		return nil
	}
	r.released = true
	r.columns = nil
	recordResultReleased()

	db, ok := r.s.m.alive(r.gen)
	if !ok {
		log.WithField("session", r.s.id).Debug("result outlived its connection")
		return nil
	}
	if err := r.s.m.engine.CleanupResult(db, r.h); err != nil {
		return engineError(errCleanup, err.Error())
	}
	return nil
}
