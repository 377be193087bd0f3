package monetdbe

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// C structs of monetdbe.h. Fields hold low-level types only.

type cOptions struct {
	memorylimit    int32
	querytimeout   int32
	sessiontimeout int32
	nrThreads      int32
	remote         uintptr
	mapiServer     uintptr
	traceFile      uintptr
}

type cResult struct {
	nrows  uintptr
	ncols  uintptr
	name   uintptr
	lastID int64
}

type cColumn struct {
	typ   int32
	_     [4]byte
	data  uintptr
	count uintptr
	name  uintptr
}

type cStatement struct {
	nparam uintptr
	types  uintptr
}

type cBlob struct {
	size uintptr
	data uintptr
}

// Offset of null_value in the typed column structs (monetdbe_column_<type>).
const cColumnNullValueOffset = unsafe.Sizeof(cColumn{})

// NativeEngine calls libmonetdbe through its C ABI. The library is loaded
// at runtime, so cgo is not required.
type NativeEngine struct {
	lib  uintptr
	path string

	open             func(db *uintptr, url *byte, opts *cOptions) int32
	close            func(db uintptr) int32
	errorMsg         func(db uintptr) string
	getAutocommit    func(db uintptr, result *int32) string
	setAutocommit    func(db uintptr, value int32) string
	inTransaction    func(db uintptr) int32
	isInitialized    func() int32
	query            func(db uintptr, query *byte, result *uintptr, affected *int64) string
	resultFetch      func(result uintptr, column *uintptr, index uintptr) string
	cleanupResult    func(db uintptr, result uintptr) string
	prepare          func(db uintptr, query *byte, stmt *uintptr, result *uintptr) string
	bind             func(stmt uintptr, data unsafe.Pointer, index uintptr) string
	execute          func(stmt uintptr, result *uintptr, affected *int64) string
	cleanupStatement func(db uintptr, stmt uintptr) string
	appendColumns    func(db uintptr, schema *byte, table *byte, input unsafe.Pointer, count uintptr) string
	getColumns       func(db uintptr, schema *byte, table *byte, count *uintptr, columns *uintptr) string

	// Pinned parameter buffers, released with the statement.
	bound map[uintptr]*runtime.Pinner
}

var (
	nativeOnce   sync.Once
	nativeEngine *NativeEngine
	nativeErr    error
)

// defaultNativeEngine loads the library named by $MONETDBE_LIBRARY or the
// platform default, once per process.
func defaultNativeEngine() (*NativeEngine, error) {
	nativeOnce.Do(func() {
		nativeEngine, nativeErr = NewNativeEngine(os.Getenv("MONETDBE_LIBRARY"))
	})
	return nativeEngine, nativeErr
}

// NewNativeEngine loads libmonetdbe from path. An empty path selects the
// platform default library name.
func NewNativeEngine(path string) (*NativeEngine, error) {
	if path == "" {
		path = defaultLibraryName
	}

	lib, err := loadLibrary(path)
	if err != nil {
		return nil, engineError(errLibrary, err.Error())
	}

	e := &NativeEngine{lib: lib, path: path, bound: map[uintptr]*runtime.Pinner{}}
	required := []struct {
		fptr any
		name string
	}{
		{&e.open, "monetdbe_open"},
		{&e.close, "monetdbe_close"},
		{&e.errorMsg, "monetdbe_error"},
		{&e.getAutocommit, "monetdbe_get_autocommit"},
		{&e.setAutocommit, "monetdbe_set_autocommit"},
		{&e.inTransaction, "monetdbe_in_transaction"},
		{&e.query, "monetdbe_query"},
		{&e.resultFetch, "monetdbe_result_fetch"},
		{&e.cleanupResult, "monetdbe_cleanup_result"},
		{&e.prepare, "monetdbe_prepare"},
		{&e.bind, "monetdbe_bind"},
		{&e.execute, "monetdbe_execute"},
		{&e.cleanupStatement, "monetdbe_cleanup_statement"},
		{&e.appendColumns, "monetdbe_append"},
		{&e.getColumns, "monetdbe_get_columns"},
	}
	for _, fn := range required {
		sym, err := loadSymbol(lib, fn.name)
		if err != nil {
			closeLibrary(lib)
			return nil, engineError(errLibrary, fmt.Sprintf("%s: %s", fn.name, err.Error()))
		}
		purego.RegisterFunc(fn.fptr, sym)
	}

	// Older engines export monetdbe_is_initialized; newer ones initialize on open.
	if sym, err := loadSymbol(lib, "monetdbe_is_initialized"); err == nil {
		purego.RegisterFunc(&e.isInitialized, sym)
	}
	return e, nil
}

// Path is the file the library was loaded from.
func (e *NativeEngine) Path() string {
	return e.path
}

func cString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// goBytes returns a view of the NUL-terminated C string at p.
func goBytes(p uintptr) []byte {
	if p == 0 {
		return nil
	}
	n := 0
	for *(*byte)(unsafe.Pointer(p + uintptr(n))) != 0 {
		n++
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

func (e *NativeEngine) Open(dbdir string, opts Options) (DB, error) {
	var url *byte
	if dbdir != "" && dbdir != InMemory {
		url = cString(dbdir)
	}

	var copts *cOptions
	if !opts.isZero() {
		copts = &cOptions{
			memorylimit:    int32(opts.MemoryLimit),
			querytimeout:   int32(opts.QueryTimeout),
			sessiontimeout: int32(opts.SessionTimeout),
			nrThreads:      int32(opts.NrThreads),
		}
	}

	var db uintptr
	switch code := e.open(&db, url, copts); code {
	case 0:
		return DB(db), nil
	case -1:
		return 0, errors.New("allocation failed")
	default:
		msg := e.errorMsg(db)
		if db != 0 {
			e.close(db)
		}
		if msg == "" {
			msg = fmt.Sprintf("monetdbe_open returned %d", code)
		}
		return 0, errors.New(msg)
	}
}

func (e *NativeEngine) Close(db DB) error {
	if code := e.close(uintptr(db)); code != 0 {
		return fmt.Errorf("failed to close database (code %d)", code)
	}
	return nil
}

func (e *NativeEngine) Query(db DB, sql string, wantResult bool) (ResultHandle, int64, error) {
	var (
		res      uintptr
		resPtr   *uintptr
		affected int64
	)
	if wantResult {
		resPtr = &res
	}
	if msg := e.query(uintptr(db), cString(sql), resPtr, &affected); msg != "" {
		return ResultHandle{}, 0, errors.New(msg)
	}
	return readResult(res), affected, nil
}

func readResult(res uintptr) ResultHandle {
	if res == 0 {
		return ResultHandle{}
	}
	r := (*cResult)(unsafe.Pointer(res))
	return ResultHandle{ptr: res, Rows: int(r.nrows), Cols: int(r.ncols)}
}

func (e *NativeEngine) FetchColumn(_ DB, res ResultHandle, index int) (ResultColumn, error) {
	var col uintptr
	if msg := e.resultFetch(res.ptr, &col, uintptr(index)); msg != "" {
		return nil, errors.New(msg)
	}
	return newNativeColumn(col, res.Rows)
}

func (e *NativeEngine) CleanupResult(db DB, res ResultHandle) error {
	if msg := e.cleanupResult(uintptr(db), res.ptr); msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (e *NativeEngine) SetAutocommit(db DB, on bool) error {
	var value int32
	if on {
		value = 1
	}
	if msg := e.setAutocommit(uintptr(db), value); msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (e *NativeEngine) GetAutocommit(db DB) (bool, error) {
	var value int32
	if msg := e.getAutocommit(uintptr(db), &value); msg != "" {
		return false, errors.New(msg)
	}
	return value != 0, nil
}

func (e *NativeEngine) InTransaction(db DB) bool {
	return e.inTransaction(uintptr(db)) != 0
}

func (e *NativeEngine) IsInitialized() bool {
	if e.isInitialized == nil {
		return true
	}
	return e.isInitialized() != 0
}

func (e *NativeEngine) GetColumns(db DB, schema string, table string) ([]ColumnInfo, error) {
	var (
		count   uintptr
		columns uintptr
	)
	if msg := e.getColumns(uintptr(db), cString(schema), cString(table), &count, &columns); msg != "" {
		return nil, errors.New(msg)
	}

	infos := make([]ColumnInfo, 0, int(count))
	if count == 0 {
		return infos, nil
	}
	for _, c := range unsafe.Slice((*cColumn)(unsafe.Pointer(columns)), int(count)) {
		tag, err := tagFromNative(c.typ)
		if err != nil {
			return nil, err
		}
		infos = append(infos, ColumnInfo{Name: string(goBytes(c.name)), Type: tag})
	}
	return infos, nil
}

func (e *NativeEngine) Append(db DB, schema string, table string, columns []PackedColumn) error {
	var pinner runtime.Pinner
	defer pinner.Unpin()

	ptrs := make([]*cColumn, len(columns))
	for i, col := range columns {
		name := cString(col.Name)
		pinner.Pin(name)
		c := &cColumn{typ: tagToNative(col.Type), count: uintptr(col.Count), name: uintptr(unsafe.Pointer(name))}

		switch col.Type {
		case TYPE_STR:
			c.data = pinStrings(&pinner, col.Var)
		case TYPE_BLOB:
			c.data = pinBlobs(&pinner, col.Var)
		default:
			c.data = pinBytes(&pinner, col.Data)
		}
		pinner.Pin(c)
		ptrs[i] = c
	}

	var input unsafe.Pointer
	if len(ptrs) > 0 {
		input = unsafe.Pointer(&ptrs[0])
	}
	if msg := e.appendColumns(uintptr(db), cString(schema), cString(table), input, uintptr(len(ptrs))); msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (e *NativeEngine) Prepare(db DB, sql string) (StmtHandle, error) {
	var stmt uintptr
	if msg := e.prepare(uintptr(db), cString(sql), &stmt, nil); msg != "" {
		return StmtHandle{}, errors.New(msg)
	}

	s := (*cStatement)(unsafe.Pointer(stmt))
	params := make([]TypeTag, int(s.nparam))
	if s.nparam > 0 {
		for i, raw := range unsafe.Slice((*int32)(unsafe.Pointer(s.types)), int(s.nparam)) {
			tag, err := tagFromNative(raw)
			if err != nil {
				// The statement is usable; binding that parameter will fail.
				tag = TYPE_UNKNOWN
			}
			params[i] = tag
		}
	}
	return StmtHandle{ptr: stmt, Params: params}, nil
}

func (e *NativeEngine) Bind(stmt StmtHandle, index int, tag TypeTag, cell []byte) error {
	var data unsafe.Pointer
	if cell != nil {
		pinner, ok := e.bound[stmt.ptr]
		if !ok {
			pinner = &runtime.Pinner{}
			e.bound[stmt.ptr] = pinner
		}

		switch tag {
		case TYPE_STR:
			s := cString(string(cell))
			pinner.Pin(s)
			data = unsafe.Pointer(s)
		case TYPE_BLOB:
			b := new(cBlob)
			*b = pinBlob(pinner, cell)
			pinner.Pin(b)
			data = unsafe.Pointer(b)
		default:
			pinner.Pin(&cell[0])
			data = unsafe.Pointer(&cell[0])
		}
	}
	if msg := e.bind(stmt.ptr, data, uintptr(index)); msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (e *NativeEngine) Execute(stmt StmtHandle, wantResult bool) (ResultHandle, int64, error) {
	var (
		res      uintptr
		resPtr   *uintptr
		affected int64
	)
	if wantResult {
		resPtr = &res
	}
	if msg := e.execute(stmt.ptr, resPtr, &affected); msg != "" {
		return ResultHandle{}, 0, errors.New(msg)
	}
	return readResult(res), affected, nil
}

// ReleaseStatement unpins the parameter buffers bound to stmt.
func (e *NativeEngine) ReleaseStatement(stmt StmtHandle) {
	if pinner, ok := e.bound[stmt.ptr]; ok {
		pinner.Unpin()
		delete(e.bound, stmt.ptr)
	}
}

func (e *NativeEngine) CleanupStatement(db DB, stmt StmtHandle) error {
	defer e.ReleaseStatement(stmt)
	if msg := e.cleanupStatement(uintptr(db), stmt.ptr); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// tagFromNative maps a raw monetdbe_types value onto a TypeTag. Engines
// built without 128-bit integers number every type after int64 one lower.
func tagFromNative(raw int32) (TypeTag, error) {
	tag := TypeTag(raw)
	if !hasInt128 && tag >= TYPE_INT128 {
		tag++
	}
	if _, ok := registry[tag]; !ok {
		return TYPE_UNKNOWN, unknownTypeError(tag)
	}
	return tag, nil
}

func tagToNative(tag TypeTag) int32 {
	if !hasInt128 && tag > TYPE_INT128 {
		return int32(tag - 1)
	}
	return int32(tag)
}
