package monetdbe

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	metrics.init()
	connects := testutil.ToFloat64(metrics.connects)
	switches := testutil.ToFloat64(metrics.switches)
	openResults := testutil.ToFloat64(metrics.openResults)
	rows := testutil.ToFloat64(metrics.appendedRows)
	rejected := testutil.ToFloat64(metrics.appendReject)
	queryErrors := testutil.ToFloat64(metrics.engineErrors.WithLabelValues(errQuery.Error()))

	m, _ := newTestManager(t)
	a, err := m.NewSession("/data/a", Options{})
	require.NoError(t, err)
	_, err = m.NewSession("/data/b", Options{})
	require.NoError(t, err)
	require.Equal(t, connects+2, testutil.ToFloat64(metrics.connects))
	require.Equal(t, switches+2, testutil.ToFloat64(metrics.switches))

	createTable(t, a, `CREATE TABLE t (i int)`)
	require.NoError(t, a.Append("", "t", map[string]BulkColumn{"i": {Data: []int{1, 2, 3}}}))
	require.Error(t, a.Append("", "t", map[string]BulkColumn{"i": {Data: []string{"x"}}}))
	require.Equal(t, rows+3, testutil.ToFloat64(metrics.appendedRows))
	require.Equal(t, rejected+1, testutil.ToFloat64(metrics.appendReject))

	r, _, err := a.Query(`SELECT * FROM t`, true)
	require.NoError(t, err)
	require.Equal(t, openResults+1, testutil.ToFloat64(metrics.openResults))
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.Equal(t, openResults, testutil.ToFloat64(metrics.openResults))

	_, err = a.Exec(`SELEC`)
	require.Error(t, err)
	require.Equal(t, queryErrors+1, testutil.ToFloat64(metrics.engineErrors.WithLabelValues(errQuery.Error())))
}
