package mbtcp

import (
	"sync/atomic"
)

// ClientMetrics contains atomic metrics for a client session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type ClientMetrics struct {
	// ConnAttemptCount indicates the number of dial attempts.
	ConnAttemptCount atomic.Uint64
	// ConnRetryCount indicates the number of dial retries after a
	// would-block condition.
	ConnRetryCount atomic.Uint64

	// OpRetryCount indicates the number of data operations retried after a
	// data-layer error.
	OpRetryCount atomic.Uint64
	// OpErrCount indicates the number of data operations that failed
	// terminally.
	OpErrCount atomic.Uint64

	// DrainedByteCount indicates the total number of stale bytes discarded
	// while resynchronizing the socket.
	DrainedByteCount atomic.Uint64
}

func (m *ClientMetrics) incConnAttemptCount() {
	m.ConnAttemptCount.Add(1)
}

func (m *ClientMetrics) incConnRetryCount() {
	m.ConnRetryCount.Add(1)
}

func (m *ClientMetrics) incOpRetryCount() {
	m.OpRetryCount.Add(1)
}

func (m *ClientMetrics) incOpErrCount() {
	m.OpErrCount.Add(1)
}

func (m *ClientMetrics) addDrainedBytes(n int) {
	m.DrainedByteCount.Add(uint64(n))
}
