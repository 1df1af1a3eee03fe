package engine

import "sync/atomic"

// Metrics are plain accepted/rejected counters. No third-party metrics
// exporter appears anywhere in the reference pack, so these are counted
// with sync/atomic rather than reaching for an unrelated dependency.
type Metrics struct {
	OpsAccepted  uint64
	OpsEchoed    uint64
	OpsReordered uint64
	OpsRejected  uint64
	PatchesBuilt uint64
}

func (m *Metrics) accepted()  { atomic.AddUint64(&m.OpsAccepted, 1) }
func (m *Metrics) echoed()    { atomic.AddUint64(&m.OpsEchoed, 1) }
func (m *Metrics) reordered() { atomic.AddUint64(&m.OpsReordered, 1) }
func (m *Metrics) rejected()  { atomic.AddUint64(&m.OpsRejected, 1) }
func (m *Metrics) patched()   { atomic.AddUint64(&m.PatchesBuilt, 1) }

func (m *Metrics) Snapshot() Metrics {
	return Metrics{
		OpsAccepted:  atomic.LoadUint64(&m.OpsAccepted),
		OpsEchoed:    atomic.LoadUint64(&m.OpsEchoed),
		OpsReordered: atomic.LoadUint64(&m.OpsReordered),
		OpsRejected:  atomic.LoadUint64(&m.OpsRejected),
		PatchesBuilt: atomic.LoadUint64(&m.PatchesBuilt),
	}
}
