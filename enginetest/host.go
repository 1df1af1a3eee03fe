// Package enginetest provides test doubles for exercising an
// engine.Engine without a real routing layer.
package enginetest

import (
	"sync"

	"github.com/dcnet/causalstore/engine"
)

// RecordingHost is an engine.Host that records every delivered op in
// arrival order, for assertions in engine tests.
type RecordingHost struct {
	mu  sync.Mutex
	ops []engine.Op
}

func (h *RecordingHost) Deliver(op engine.Op) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op)
	return nil
}

// Ops returns a snapshot of every op delivered so far, in order.
func (h *RecordingHost) Ops() []engine.Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]engine.Op, len(h.ops))
	copy(out, h.ops)
	return out
}

func (h *RecordingHost) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = nil
}
