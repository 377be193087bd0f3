package monetdbe

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// DatabaseError is a failure reported by the engine itself. Msg holds the
// engine's message verbatim.
type DatabaseError struct {
	Op  error
	Msg string
}

func (e *DatabaseError) Error() string {
	if e.Op == nil {
		return fmt.Sprintf("%s: %s", databaseErrMsg, e.Msg)
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", databaseErrMsg, e.Op.Error())
	}
	return fmt.Sprintf("%s: %s: %s", databaseErrMsg, e.Op.Error(), e.Msg)
}

func (e *DatabaseError) Unwrap() error {
	return e.Op
}

// ProgrammingError reports structurally invalid input or API misuse.
type ProgrammingError struct {
	Op  error
	Msg string
}

func (e *ProgrammingError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", programmingErrMsg, e.Op.Error())
	}
	return fmt.Sprintf("%s: %s: %s", programmingErrMsg, e.Op.Error(), e.Msg)
}

func (e *ProgrammingError) Unwrap() error {
	return e.Op
}

// UnknownTypeError is returned for engine type tags the driver has no
// descriptor for, which means the driver and engine versions disagree.
type UnknownTypeError struct {
	Tag TypeTag
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: %d", unknownTypeErrMsg, int32(e.Tag))
}

// engineError logs an engine-reported failure and converts it into a DatabaseError.
func engineError(op error, msg string) error {
	err := &DatabaseError{Op: op, Msg: msg}
	log.Error(err.Error())
	if op != nil {
		recordEngineError(op)
	}
	return err
}

func programmingError(op error, format string, args ...any) error {
	return &ProgrammingError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

func unknownTypeError(tag TypeTag) error {
	return &UnknownTypeError{Tag: tag}
}

func castError(actual string, expected string) error {
	return fmt.Errorf("%s: cannot cast %s to %s", castErrMsg, actual, expected)
}

func columnError(err error, name string) error {
	return fmt.Errorf("%w: %s: %s", err, columnErrMsg, name)
}

const (
	databaseErrMsg    = "monetdbe: database error"
	programmingErrMsg = "monetdbe: programming error"
	unknownTypeErrMsg = "monetdbe: unknown column type"
	castErrMsg        = "cast error"
	columnErrMsg      = "column"
)

var (
	errLibrary    = errors.New("could not load libmonetdbe")
	errOpen       = errors.New("could not open database")
	errClose      = errors.New("could not close database")
	errQuery      = errors.New("could not execute query")
	errFetch      = errors.New("could not fetch result column")
	errCleanup    = errors.New("could not clean up result")
	errAppend     = errors.New("could not append to table")
	errColumns    = errors.New("could not get table columns")
	errAutocommit = errors.New("could not change autocommit mode")
	errPrepare    = errors.New("could not prepare statement")
	errBind       = errors.New("could not bind parameter")
	errExecute    = errors.New("could not execute prepared statement")

	errTooManyColumns   = errors.New("too many columns")
	errTooFewColumns    = errors.New("too few columns")
	errUnknownColumn    = errors.New("unknown column")
	errUnsupportedType  = errors.New("unsupported data type")
	errLengthMismatch   = errors.New("columns have different lengths")
	errMaskLength       = errors.New("validity mask length does not match column length")
	errValueRange       = errors.New("value out of range for column type")
	errClosedSession    = errors.New("session is closed")
	errReleasedResult   = errors.New("result is already released")
	errClosedStatement  = errors.New("statement is closed")
	errColumnIndex      = errors.New("column index out of range")
	errParameterIndex   = errors.New("parameter index out of range")
	errParseDSN         = errors.New("could not parse DSN")
	errInvalidOption    = errors.New("invalid option")
	errMissingTableName = errors.New("table name is empty")
)
