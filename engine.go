package monetdbe

// DB is the engine's opaque database handle. Zero means disconnected.
type DB uintptr

// ResultHandle references an engine-owned query result.
type ResultHandle struct {
	ptr  uintptr
	Rows int
	Cols int
}

// IsNil reports whether the handle references no result.
func (h ResultHandle) IsNil() bool {
	return h.ptr == 0
}

// StmtHandle references an engine-owned prepared statement.
type StmtHandle struct {
	ptr    uintptr
	Params []TypeTag
}

// ColumnInfo is one column of a table as reported by the engine.
type ColumnInfo struct {
	Name string
	Type TypeTag
}

// PackedColumn is a column laid out the way the engine's append call expects it.
type PackedColumn struct {
	Name  string
	Type  TypeTag
	Count int
	// Data holds Count fixed-width elements. Unused for STR and BLOB.
	Data []byte
	// Var holds the STR and BLOB payloads. A nil entry is a null.
	Var [][]byte
}

// ResultColumn is a borrowed view over one column of a result. It must not
// be used after the result it was fetched from is released.
type ResultColumn interface {
	Name() string
	Type() TypeTag
	// Len is the row count of the parent result.
	Len() int
	IsNull(row int) bool
	// Data is the column's element buffer, Len()*Size bytes. Nil for STR and BLOB.
	Data() []byte
	// Cell returns the raw bytes of one element; for STR and BLOB the payload.
	Cell(row int) []byte
}

// StatementReleaser is implemented by engines that keep Go-side state for
// prepared statements. ReleaseStatement drops that state for a statement
// the engine already freed with its connection.
type StatementReleaser interface {
	ReleaseStatement(stmt StmtHandle)
}

// Engine is the fixed C ABI of the embedded database. Errors returned by an
// Engine carry the engine's message verbatim; the session converts them into
// DatabaseErrors.
type Engine interface {
	Open(dbdir string, opts Options) (DB, error)
	Close(db DB) error
	Query(db DB, sql string, wantResult bool) (ResultHandle, int64, error)
	FetchColumn(db DB, res ResultHandle, index int) (ResultColumn, error)
	CleanupResult(db DB, res ResultHandle) error
	Append(db DB, schema string, table string, columns []PackedColumn) error
	GetColumns(db DB, schema string, table string) ([]ColumnInfo, error)
	SetAutocommit(db DB, on bool) error
	GetAutocommit(db DB) (bool, error)
	InTransaction(db DB) bool
	IsInitialized() bool
	Prepare(db DB, sql string) (StmtHandle, error)
	// Bind binds one parameter. A nil cell binds NULL.
	Bind(stmt StmtHandle, index int, tag TypeTag, cell []byte) error
	Execute(stmt StmtHandle, wantResult bool) (ResultHandle, int64, error)
	CleanupStatement(db DB, stmt StmtHandle) error
}
