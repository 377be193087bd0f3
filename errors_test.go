package monetdbe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	err := &DatabaseError{Op: errQuery, Msg: "syntax error"}
	require.Equal(t, "monetdbe: database error: could not execute query: syntax error", err.Error())
	require.ErrorIs(t, err, errQuery)

	err = &DatabaseError{Msg: "out of memory"}
	require.Equal(t, "monetdbe: database error: out of memory", err.Error())

	err = &DatabaseError{Op: errClose}
	require.Equal(t, "monetdbe: database error: could not close database", err.Error())

	progErr := programmingError(errUnknownColumn, "%s", "x")
	require.Equal(t, "monetdbe: programming error: unknown column: x", progErr.Error())
	require.ErrorIs(t, progErr, errUnknownColumn)

	progErr = programmingError(errMissingTableName, "")
	require.Equal(t, "monetdbe: programming error: table name is empty", progErr.Error())

	require.Equal(t, "monetdbe: unknown column type: 77", unknownTypeError(TypeTag(77)).Error())
}

func TestErrorKinds(t *testing.T) {
	var (
		dbErr   *DatabaseError
		progErr *ProgrammingError
		unknown *UnknownTypeError
	)

	err := columnError(engineError(errFetch, "bad column"), "c")
	require.True(t, errors.As(err, &dbErr))
	require.False(t, errors.As(err, &progErr))
	require.ErrorIs(t, err, errFetch)
	require.Contains(t, err.Error(), "column: c")

	err = columnError(programmingError(errValueRange, "300 does not fit int8_t"), "c")
	require.True(t, errors.As(err, &progErr))
	require.False(t, errors.As(err, &dbErr))

	err = columnError(unknownTypeError(TypeTag(50)), "c")
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, TypeTag(50), unknown.Tag)
}

func TestCastColumnError(t *testing.T) {
	err := castColumnError(castError("[]string", "int32_t"), "i")
	requireProgrammingError(t, err, errUnsupportedType)
	require.Contains(t, err.Error(), "column i: cast error: cannot cast []string to int32_t")

	err = castColumnError(programmingError(errValueRange, "128 does not fit int8_t"), "i row 3")
	requireProgrammingError(t, err, errValueRange)
	require.Equal(t, "monetdbe: programming error: value out of range for column type: column i row 3: 128 does not fit int8_t", err.Error())
}
