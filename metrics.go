package monetdbe

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// driverMetrics holds Prometheus metrics for the engine session layer.
type driverMetrics struct {
	once sync.Once

	connects     prometheus.Counter
	disconnects  prometheus.Counter
	switches     prometheus.Counter
	queries      prometheus.Counter
	engineErrors *prometheus.CounterVec
	openResults  prometheus.Gauge
	appends      prometheus.Counter
	appendedRows prometheus.Counter
	appendReject prometheus.Counter
}

var metrics driverMetrics

func (m *driverMetrics) init() {
	m.once.Do(func() {
		m.connects = prometheus.NewCounter(prometheus.CounterOpts{Name: "monetdbe_connects_total", Help: "Engine connections opened"})
		m.disconnects = prometheus.NewCounter(prometheus.CounterOpts{Name: "monetdbe_disconnects_total", Help: "Engine connections closed"})
		m.switches = prometheus.NewCounter(prometheus.CounterOpts{Name: "monetdbe_session_switches_total", Help: "Active session changes"})
		m.queries = prometheus.NewCounter(prometheus.CounterOpts{Name: "monetdbe_queries_total", Help: "Queries sent to the engine"})
		m.engineErrors = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "monetdbe_engine_errors_total", Help: "Errors reported by the engine"}, []string{"op"})
		m.openResults = prometheus.NewGauge(prometheus.GaugeOpts{Name: "monetdbe_open_results", Help: "Result handles not yet released"})
		m.appends = prometheus.NewCounter(prometheus.CounterOpts{Name: "monetdbe_appends_total", Help: "Bulk appends submitted to the engine"})
		m.appendedRows = prometheus.NewCounter(prometheus.CounterOpts{Name: "monetdbe_appended_rows_total", Help: "Rows submitted through bulk append"})
		m.appendReject = prometheus.NewCounter(prometheus.CounterOpts{Name: "monetdbe_append_rejected_total", Help: "Bulk appends rejected by validation"})

		prometheus.MustRegister(
			m.connects, m.disconnects, m.switches, m.queries, m.engineErrors,
			m.openResults, m.appends, m.appendedRows, m.appendReject,
		)
	})
}

// record helpers
func recordConnect()             { metrics.init(); metrics.connects.Inc() }
func recordDisconnect()          { metrics.init(); metrics.disconnects.Inc() }
func recordSwitch()              { metrics.init(); metrics.switches.Inc() }
func recordQuery()               { metrics.init(); metrics.queries.Inc() }
func recordEngineError(op error) { metrics.init(); metrics.engineErrors.WithLabelValues(op.Error()).Inc() }
func recordResultOpened()        { metrics.init(); metrics.openResults.Inc() }
func recordResultReleased()      { metrics.init(); metrics.openResults.Dec() }
func recordAppendRejected()      { metrics.init(); metrics.appendReject.Inc() }

func recordAppend(rows int) {
	metrics.init()
	metrics.appends.Inc()
	metrics.appendedRows.Add(float64(rows))
}
