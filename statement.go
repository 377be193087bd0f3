package monetdbe

import (
	"math/big"
	"time"

	log "github.com/sirupsen/logrus"
)

// Statement is a prepared statement. Like a Result, it dies with the
// connection it was prepared on and must be closed.
type Statement struct {
	s      *Session
	h      StmtHandle
	gen    uint64
	closed bool
}

// Prepare compiles sql, which may contain ? placeholders.
func (s *Session) Prepare(sql string) (*Statement, error) {
	db, gen, err := s.m.use(s)
	if err != nil {
		return nil, err
	}
	h, err := s.m.engine.Prepare(db, sql)
	if err != nil {
		return nil, engineError(errPrepare, err.Error())
	}
	return &Statement{s: s, h: h, gen: gen}, nil
}

// NumInput is the number of placeholders.
func (stmt *Statement) NumInput() int {
	return len(stmt.h.Params)
}

// ParamTypes are the engine types of the placeholders.
func (stmt *Statement) ParamTypes() []TypeTag {
	return stmt.h.Params
}

func (stmt *Statement) live() error {
	if stmt.closed {
		return programmingError(errClosedStatement, "")
	}
	if _, ok := stmt.s.m.alive(stmt.gen); !ok {
		return programmingError(errClosedStatement, "connection was closed")
	}
	return nil
}

// Bind binds v to the placeholder at index i, counting from zero. A nil v
// binds NULL. v is converted to the parameter's type by the rules Append uses.
func (stmt *Statement) Bind(i int, v any) error {
	if err := stmt.live(); err != nil {
		return err
	}
	if i < 0 || i >= len(stmt.h.Params) {
		return programmingError(errParameterIndex, "%d of %d", i, len(stmt.h.Params))
	}
	desc, err := Describe(stmt.h.Params[i])
	if err != nil {
		return err
	}

	var cell []byte
	if v != nil {
		h, err := toHostVector(singleton(v))
		if err != nil {
			return err
		}
		col, err := packColumn(desc.Tag.String(), desc, h, nil)
		if err != nil {
			return err
		}
		if desc.Fixed() {
			cell = col.Data
		} else {
			cell = col.Var[0]
		}
	}

	if err := stmt.s.m.engine.Bind(stmt.h, i, desc.Tag, cell); err != nil {
		return engineError(errBind, err.Error())
	}
	return nil
}

// singleton wraps a scalar into a one-element slice of its type.
func singleton(v any) any {
	switch v := v.(type) {
	case bool:
		return []bool{v}
	case int8:
		return []int8{v}
	case int16:
		return []int16{v}
	case int32:
		return []int32{v}
	case int64:
		return []int64{v}
	case int:
		return []int{v}
	case uint8:
		return []uint8{v}
	case uint16:
		return []uint16{v}
	case uint32:
		return []uint32{v}
	case uint64:
		return []uint64{v}
	case uint:
		return []uint{v}
	case float32:
		return []float32{v}
	case float64:
		return []float64{v}
	case string:
		return []string{v}
	case []byte:
		if v == nil {
			v = []byte{}
		}
		return [][]byte{v}
	case time.Time:
		return []time.Time{v}
	case *big.Int:
		return []*big.Int{v}
	}
	// Rejected by toHostVector.
	return []any{v}
}

// Execute runs the statement with the bound parameters.
func (stmt *Statement) Execute(wantResult bool) (*Result, int64, error) {
	if err := stmt.live(); err != nil {
		return nil, 0, err
	}
	recordQuery()
	h, affected, err := stmt.s.m.engine.Execute(stmt.h, wantResult)
	if err != nil {
		return nil, 0, engineError(errExecute, err.Error())
	}
	if !wantResult || h.IsNil() {
		return nil, affected, nil
	}
	recordResultOpened()
	return &Result{s: stmt.s, h: h, gen: stmt.gen, affected: affected}, affected, nil
}

// Close releases the statement. Closing twice does nothing.
func (stmt *Statement) Close() error {
	if stmt == nil || stmt.closed {
		return nil
	}
	stmt.closed = true

	db, ok := stmt.s.m.alive(stmt.gen)
	if !ok {
		log.WithField("session", stmt.s.id).Debug("statement outlived its connection")
		if r, ok := stmt.s.m.engine.(StatementReleaser); ok {
			r.ReleaseStatement(stmt.h)
		}
		return nil
	}
	if err := stmt.s.m.engine.CleanupStatement(db, stmt.h); err != nil {
		return engineError(errCleanup, err.Error())
	}
	return nil
}
