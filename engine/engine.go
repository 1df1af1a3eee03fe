// Package engine implements the causal operation-log storage engine: it
// persists one append-only op log per object, compacts it into state
// snapshots, and answers subscription requests with minimal patches
// that bring a remote replica up to date.
package engine

import "github.com/dcnet/causalstore/kv"

// Engine is the top-level object wiring a KV backend to a Host. Ops
// arrive through Submit and are processed one-at-a-time per object,
// with independent objects running concurrently.
type Engine struct {
	store     kv.Store
	host      Host
	opts      Options
	replicaID string
	metrics   Metrics
	queue     *Queue
}

// New constructs an Engine. replicaID is this instance's own source id,
// used to suppress a reciprocal subscription that would loop back to
// itself.
func New(store kv.Store, host Host, opts Options, replicaID string) *Engine {
	e := &Engine{store: store, host: host, opts: opts, replicaID: replicaID}
	e.queue = newQueue(e)
	return e
}

// Submit hands one incoming op to the engine. It returns immediately;
// processing happens asynchronously on the op's object queue.
func (e *Engine) Submit(op Op) {
	e.queue.Submit(op)
}

// ProcessSync runs op to completion on the calling goroutine, bypassing
// the per-object queue. Useful for a caller that already serializes its
// own calls (or a test) and does not need Submit's concurrency.
func (e *Engine) ProcessSync(op Op) {
	e.process(op)
}

// Metrics returns a point-in-time snapshot of accepted/rejected counts.
func (e *Engine) Metrics() Metrics {
	return e.metrics.Snapshot()
}

// Close releases the backing store exactly once.
func (e *Engine) Close() error {
	return e.store.Close()
}

// process runs one op through parsing, dispatch, and commit/delivery.
// It never returns an error to its caller: failures are turned into a
// ".error" op delivered to the Host, per the engine's own error policy.
func (e *Engine) process(op Op) {
	parsed, err := parseOp(op)
	if err != nil {
		e.deliverError(objectPrefix(op.Spec), op.Source, newErrorf(KindParse, "malformed spec"))
		return
	}

	r := newRequest(e.store, e.opts, e.replicaID, parsed)
	if engineErr := dispatch(r); engineErr != nil {
		e.metrics.rejected()
		e.deliverError(parsed.prefix, op.Source, engineErr)
		return
	}

	if err := e.store.Batch(r.writes); err != nil {
		e.metrics.rejected()
		e.deliverError(parsed.prefix, op.Source, wrapBackend(err))
		return
	}

	e.applyMetric(r.metricKind)
	for _, resp := range r.responses {
		if err := e.host.Deliver(resp); err != nil {
			log.WithField("spec", resp.Spec).WithError(err).Error("host rejected delivery")
		}
	}
}

func (e *Engine) applyMetric(kind string) {
	switch kind {
	case "accepted":
		e.metrics.accepted()
	case "echoed":
		e.metrics.echoed()
	case "reordered":
		e.metrics.reordered()
	case "patched":
		e.metrics.patched()
	}
}

func (e *Engine) deliverError(prefix, source string, engineErr *EngineError) {
	spec := prefix + ".error"
	if err := e.host.Deliver(Op{Spec: spec, Value: engineErr.WireMessage(), Source: source}); err != nil {
		log.WithField("prefix", prefix).WithError(err).Error("failed to deliver error op")
	}
}
