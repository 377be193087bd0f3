package monetdbe

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Manager owns the single live engine connection of a process and the slot
// naming the session it currently serves. Switching to another session
// closes the current connection before opening the next one, so two
// sessions are never backed by live engine state at the same time.
//
// SwitchTo and Disconnect are the only mutators of that state and are
// serialized by the manager. Everything else (queries, results, statements,
// appends) must be used from one goroutine at a time; concurrent use is
// undefined.
type Manager struct {
	mu     sync.Mutex
	engine Engine

	db     DB
	dbdir  string
	active *Session
	// gen changes with every connect; results and statements from an older
	// connection are dead.
	gen      uint64
	connects int
}

// NewManager returns a Manager driving engine. Programs normally use Open,
// which shares one manager backed by libmonetdbe per process.
func NewManager(engine Engine) *Manager {
	return &Manager{engine: engine}
}

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

func processManager(library string) (*Manager, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultManager != nil {
		if library != "" {
			if native, ok := defaultManager.engine.(*NativeEngine); ok && native.Path() != library {
				return nil, programmingError(errLibrary, "%s is already loaded", native.Path())
			}
		}
		return defaultManager, nil
	}

	var (
		engine *NativeEngine
		err    error
	)
	if library != "" {
		engine, err = NewNativeEngine(library)
	} else {
		engine, err = defaultNativeEngine()
	}
	if err != nil {
		return nil, err
	}
	defaultManager = NewManager(engine)
	return defaultManager, nil
}

// Open opens a session described by dsn, "<dbdir>[?option=value&...]", on
// the process-wide manager. An empty dbdir or ":memory:" opens an in-memory
// database. Opening a session makes it the active one.
func Open(dsn string) (*Session, error) {
	dbdir, cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return OpenConfig(dbdir, cfg)
}

// OpenConfig is Open with an already decoded Config.
func OpenConfig(dbdir string, cfg Config) (*Session, error) {
	m, err := processManager(cfg.Library)
	if err != nil {
		return nil, err
	}
	return m.NewSession(dbdir, cfg.Options)
}

// NewSession registers a logical connection on dbdir and switches to it.
func (m *Manager) NewSession(dbdir string, opts Options) (*Session, error) {
	if dbdir == InMemory {
		dbdir = ""
	}
	s := &Session{
		id:         uuid.New(),
		m:          m,
		dbdir:      dbdir,
		opts:       opts,
		autocommit: true,
	}
	if err := m.SwitchTo(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Engine returns the engine the manager drives.
func (m *Manager) Engine() Engine {
	return m.engine
}

// Active returns the session currently backed by the engine connection.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Connected reports whether an engine connection is open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db != 0
}

// ConnectCount is the number of engine connections opened so far.
func (m *Manager) ConnectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

// SwitchTo makes s the active session. It is a no-op if s already is;
// otherwise the current connection is closed and one on s's database opened.
func (m *Manager) SwitchTo(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.switchTo(s)
}

func (m *Manager) switchTo(s *Session) error {
	if s.closed {
		return programmingError(errClosedSession, "%s", s.id)
	}
	if m.active == s && m.db != 0 {
		return nil
	}

	if m.db != 0 {
		if err := m.disconnect(); err != nil {
			return err
		}
	}
	if err := m.connect(s.dbdir, s.opts); err != nil {
		return err
	}
	m.active = s
	recordSwitch()
	log.WithFields(log.Fields{"session": s.id, "dbdir": s.dbdir}).Debug("switched session")

	// Autocommit is connection state; restore what the session asked for.
	if !s.autocommit {
		if err := m.engine.SetAutocommit(m.db, false); err != nil {
			return engineError(errAutocommit, err.Error())
		}
	}
	return nil
}

func (m *Manager) connect(dbdir string, opts Options) error {
	db, err := m.engine.Open(dbdir, opts)
	if err != nil {
		return engineError(errOpen, err.Error())
	}
	m.db = db
	m.dbdir = dbdir
	m.gen++
	m.connects++
	recordConnect()
	log.WithField("dbdir", dbdir).Info("connected")
	return nil
}

// Disconnect closes the engine connection, if any. The active session is
// reconnected on its next use.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnect()
}

func (m *Manager) disconnect() error {
	if m.db == 0 {
		return nil
	}
	log.WithField("dbdir", m.dbdir).Info("disconnect called")

	db := m.db
	m.db = 0
	m.active = nil
	recordDisconnect()
	if err := m.engine.Close(db); err != nil {
		return engineError(errClose, err.Error())
	}
	return nil
}

// use switches to s and returns the live connection together with its generation.
func (m *Manager) use(s *Session) (DB, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchTo(s); err != nil {
		return 0, 0, err
	}
	return m.db, m.gen, nil
}

// alive reports whether the connection of generation gen is still open.
func (m *Manager) alive(gen uint64) (DB, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db, m.db != 0 && m.gen == gen
}

// Session is a logical connection to one database directory. Any number of
// sessions may exist; the manager backs at most one of them with an engine
// connection and switches transparently when another one is used.
type Session struct {
	id         uuid.UUID
	m          *Manager
	dbdir      string
	opts       Options
	autocommit bool
	closed     bool
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id.String()
}

// DBDir is the database directory, empty for in-memory databases.
func (s *Session) DBDir() string {
	return s.dbdir
}

// Manager returns the manager the session belongs to.
func (s *Session) Manager() *Manager {
	return s.m
}

// Close releases the session. If it is the active one, the engine connection
// is closed; a failure to close is returned.
func (s *Session) Close() error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.m.active != s {
		return nil
	}
	return s.m.disconnect()
}

// Query sends sql to the engine. With wantResult the returned Result must be
// closed; otherwise it is nil. The second return value is the number of rows
// affected or produced.
func (s *Session) Query(sql string, wantResult bool) (*Result, int64, error) {
	db, gen, err := s.m.use(s)
	if err != nil {
		return nil, 0, err
	}

	recordQuery()
	h, affected, err := s.m.engine.Query(db, sql, wantResult)
	if err != nil {
		return nil, 0, engineError(errQuery, err.Error())
	}
	if !wantResult || h.IsNil() {
		return nil, affected, nil
	}
	recordResultOpened()
	return &Result{s: s, h: h, gen: gen, affected: affected}, affected, nil
}

// Exec runs sql without a result and returns the affected row count.
func (s *Session) Exec(sql string) (int64, error) {
	_, affected, err := s.Query(sql, false)
	return affected, err
}

// WithResult runs sql and hands the result to fn. The result is released on
// every return path.
func (s *Session) WithResult(sql string, fn func(r *Result) error) (err error) {
	r, _, err := s.Query(sql, true)
	if err != nil {
		return err
	}
	if r == nil {
		return fn(nil)
	}
	defer func() {
		if cerr := r.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(r)
}

// CleanupResult releases r. Releasing a nil or already released result is a no-op.
func (s *Session) CleanupResult(r *Result) error {
	if r == nil {
		return nil
	}
	return r.Close()
}

// SetAutocommit toggles the engine's autocommit mode.
func (s *Session) SetAutocommit(on bool) error {
	db, _, err := s.m.use(s)
	if err != nil {
		return err
	}
	if err := s.m.engine.SetAutocommit(db, on); err != nil {
		return engineError(errAutocommit, err.Error())
	}
	s.autocommit = on
	return nil
}

// Autocommit reads the engine's autocommit mode.
func (s *Session) Autocommit() (bool, error) {
	db, _, err := s.m.use(s)
	if err != nil {
		return false, err
	}
	on, err := s.m.engine.GetAutocommit(db)
	if err != nil {
		return false, engineError(errAutocommit, err.Error())
	}
	return on, nil
}

// InTransaction reports whether a transaction is open on the connection.
func (s *Session) InTransaction() (bool, error) {
	db, _, err := s.m.use(s)
	if err != nil {
		return false, err
	}
	return s.m.engine.InTransaction(db), nil
}

// IsInitialized reports whether the engine has been started.
func (s *Session) IsInitialized() bool {
	return s.m.engine.IsInitialized()
}

// Columns lists the columns of schema.table in table order. An empty schema
// selects "sys".
func (s *Session) Columns(schema string, table string) ([]ColumnInfo, error) {
	if table == "" {
		return nil, programmingError(errMissingTableName, "")
	}
	if schema == "" {
		schema = defaultSchema
	}
	db, _, err := s.m.use(s)
	if err != nil {
		return nil, err
	}
	cols, err := s.m.engine.GetColumns(db, schema, table)
	if err != nil {
		var unknown *UnknownTypeError
		if errors.As(err, &unknown) {
			return nil, err
		}
		return nil, engineError(errColumns, err.Error())
	}
	return cols, nil
}

const defaultSchema = "sys"
