package engine_test

import (
	"testing"

	"github.com/dcnet/causalstore/engine"
	"github.com/dcnet/causalstore/enginetest"
	"github.com/dcnet/causalstore/kv"
	"github.com/stretchr/testify/require"
)

func newTestEngine(replicaID string) (*engine.Engine, *enginetest.RecordingHost, kv.Store) {
	store := kv.NewMemStore()
	host := &enginetest.RecordingHost{}
	e := engine.New(store, host, engine.DefaultOptions(), replicaID)
	return e, host, store
}

// A fresh object with one snapshot then one op, subscribed to with an
// empty base, replies with a full-history diff and a reciprocal on.
func TestScenarioFreshObjectSubscription(t *testing.T) {
	e, host, _ := newTestEngine("X")

	e.ProcessSync(engine.Op{Spec: "/T#A!10+X!10+X.state", Value: "s0"})
	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v"})
	e.ProcessSync(engine.Op{Spec: "/T#A.on", Value: "", Source: "peer"})

	ops := host.Ops()
	require.Len(t, ops, 3) // op2's echo response, the diff, and the reciprocal on

	var diff, on *engine.Op
	for i := range ops {
		switch {
		case ops[i].Spec == "/T#A.diff":
			diff = &ops[i]
		case ops[i].Spec == "/T#A.on":
			on = &ops[i]
		}
	}
	require.NotNil(t, diff)
	require.NotNil(t, on)
	require.Equal(t, "\t!10+X!10+X.state\ts0\n\t!11+X.set\tv\n", diff.Value)
	require.Equal(t, "!11+X", on.Value)
}

// An echo of the latest accepted op, relayed by a different source than
// its author, updates that relay's echo bookmark and produces no
// response.
func TestScenarioEchoOfLatest(t *testing.T) {
	e, host, store := newTestEngine("X")
	e.ProcessSync(engine.Op{Spec: "/T#A!10+X!10+X.state", Value: "s0"})
	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v"})
	host.Reset()

	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v", Source: "Y"})

	require.Empty(t, host.Ops())
	v, ok, err := store.Get("/T#A.ebm&Y")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "!11+X", v)
}

// An in-order new op from a second source advances .tip and is echoed
// back to the Host.
func TestScenarioInOrderNewOpFromSecondSource(t *testing.T) {
	e, host, store := newTestEngine("X")
	e.ProcessSync(engine.Op{Spec: "/T#A!10+X!10+X.state", Value: "s0"})
	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v"})
	host.Reset()

	e.ProcessSync(engine.Op{Spec: "/T#A!12+Z.set", Value: "w", Source: "Z"})

	tip, ok, err := store.Get("/T#A.tip")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "!12+Z", tip)

	val, ok, err := store.Get("/T#A!12+Z.set")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "w", val)

	ops := host.Ops()
	require.Len(t, ops, 1)
	require.Equal(t, "/T#A!12+Z.set", ops[0].Spec)
}

// A reorder from a third source is written and recorded as a
// backreference at the tip in effect when it arrived.
func TestScenarioReorderThenBackreference(t *testing.T) {
	e, host, store := newTestEngine("X")
	e.ProcessSync(engine.Op{Spec: "/T#A!10+X!10+X.state", Value: "s0"})
	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v"})
	e.ProcessSync(engine.Op{Spec: "/T#A!12+Z.set", Value: "w", Source: "Z"})
	host.Reset()

	e.ProcessSync(engine.Op{Spec: "/T#A!09+W.set", Value: "u", Source: "W"})

	val, ok, err := store.Get("/T#A!09+W.set")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "u", val)

	br, ok, err := store.Get("/T#A!12+Z.~br")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "!09+W", br)

	ops := host.Ops()
	require.Len(t, ops, 1)
	require.Equal(t, "/T#A!09+W.set", ops[0].Spec)
}

// A subscription with a vector base recovers the reordered op via the
// backreference, and excludes the state snapshot.
func TestScenarioVectorBaseSubscription(t *testing.T) {
	e, host, _ := newTestEngine("X")
	e.ProcessSync(engine.Op{Spec: "/T#A!10+X!10+X.state", Value: "s0"})
	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v"})
	e.ProcessSync(engine.Op{Spec: "/T#A!12+Z.set", Value: "w", Source: "Z"})
	e.ProcessSync(engine.Op{Spec: "/T#A!09+W.set", Value: "u", Source: "W"})
	host.Reset()

	e.ProcessSync(engine.Op{Spec: "/T#A.on", Value: "!11+X", Source: "peer"})

	var diff *engine.Op
	for i, op := range host.Ops() {
		if op.Spec == "/T#A.diff" {
			diff = &host.Ops()[i]
		}
	}
	require.NotNil(t, diff)
	require.Contains(t, diff.Value, "!12+Z.set\tw")
	require.Contains(t, diff.Value, "!09+W.set\tu")
	require.NotContains(t, diff.Value, ".state")
}

// A causal violation, where the sender differs from the violating op's
// author, is surfaced as an error op and writes nothing.
func TestScenarioCausalViolation(t *testing.T) {
	e, host, store := newTestEngine("X")
	e.ProcessSync(engine.Op{Spec: "/T#A!10+X!10+X.state", Value: "s0"})
	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v"})
	host.Reset()

	e.ProcessSync(engine.Op{Spec: "/T#A!09+X.set", Value: "bad", Source: "P"})

	ops := host.Ops()
	require.Len(t, ops, 1)
	require.Equal(t, "/T#A.error", ops[0].Spec)
	require.Equal(t, "op is out of order", ops[0].Value)

	_, ok, err := store.Get("/T#A!09+X.set")
	require.NoError(t, err)
	require.False(t, ok)
}

// Boundary: a regular op with no prior state is rejected.
func TestNoSuchObject(t *testing.T) {
	e, host, _ := newTestEngine("X")
	e.ProcessSync(engine.Op{Spec: "/T#B!01+X.set", Value: "x", Source: "X"})

	ops := host.Ops()
	require.Len(t, ops, 1)
	require.Equal(t, "/T#B.error", ops[0].Spec)
	require.Equal(t, "no such object", ops[0].Value)
}

// Idempotence: replaying an already-logged reorder produces no write
// and no response the second time.
func TestReplayIsIdempotent(t *testing.T) {
	e, host, store := newTestEngine("X")
	e.ProcessSync(engine.Op{Spec: "/T#A!10+X!10+X.state", Value: "s0"})
	e.ProcessSync(engine.Op{Spec: "/T#A!11+X.set", Value: "v"})
	e.ProcessSync(engine.Op{Spec: "/T#A!12+Z.set", Value: "w", Source: "Z"})
	e.ProcessSync(engine.Op{Spec: "/T#A!09+W.set", Value: "u", Source: "W"})
	host.Reset()

	e.ProcessSync(engine.Op{Spec: "/T#A!09+W.set", Value: "u", Source: "W"})

	require.Empty(t, host.Ops())
	br, ok, err := store.Get("/T#A!12+Z.~br")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "!09+W", br)
}
