package engine

import "github.com/dcnet/causalstore/kv"

// handlerFunc is a pure synchronous function of a Request's currently
// loaded state. It returns true when finished; otherwise it must have
// called r.demand with a strictly older offset than the current mark,
// and run will re-scan and call it again.
type handlerFunc func(r *Request) bool

// run drives the reentrant load/handle loop: scan the half-open range
// [prefix+need_mark, prefix+mark), fold the results into the Request,
// advance mark to need_mark, and invoke the handler. It repeats until
// the handler signals done or a scan/handler failure occurs.
func run(r *Request, h handlerFunc) *EngineError {
	for {
		gte, lt := kv.ScanRange(r.prefix, r.needMark, r.mark)
		var batch []kvPair
		scanErr := r.store.Scan(gte, lt, func(k, v string) error {
			batch = append(batch, kvPair{key: k, value: v})
			return nil
		})
		if scanErr != nil {
			return wrapBackend(scanErr)
		}
		r.ingest(batch)

		prevNeedMark := r.needMark
		r.mark = r.needMark
		r.needMark = ""
		r.needSet = false

		done := h(r)
		if r.err != nil {
			return r.err
		}
		if done {
			return nil
		}
		if !r.needSet || r.needMark >= prevNeedMark {
			return newErrorf(KindBackend, "handler failed to advance its scan cursor")
		}
	}
}

// dispatch selects a handler by op kind and drives it to completion.
func dispatch(r *Request) *EngineError {
	switch r.op.kind {
	case KindOn:
		return run(r, handleOn)
	case KindOff:
		return run(r, handleOff)
	case KindState:
		return run(r, handleState)
	case KindError:
		return run(r, handleErrorOp)
	case KindDiff:
		// Bulk patches are unbundled by the Queue; a diff that reaches
		// the dispatcher (for instance through ProcessSync, which
		// bypasses the Queue) is rejected here.
		return newErrorf(KindBackend, "diff op reached dispatcher unbundled")
	default:
		return run(r, handleAnyOp)
	}
}

// handleOff acknowledges an unsubscribe. The engine keeps no
// per-subscriber session state, so there is nothing to do.
func handleOff(r *Request) bool {
	return true
}

// handleErrorOp logs a diagnostic op from a peer and drops it.
func handleErrorOp(r *Request) bool {
	log.WithField("prefix", r.prefix).WithField("value", r.op.Value).
		WithField("source", r.op.Source).Warn("peer reported error")
	return true
}
