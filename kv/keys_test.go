package kv_test

import (
	"testing"

	"github.com/dcnet/causalstore/kv"
	"github.com/dcnet/causalstore/specx"
	"github.com/stretchr/testify/require"
)

func TestMetaScanRangeHoldsManifestKeysOnly(t *testing.T) {
	prefix := kv.Prefix("T", "A")
	v := specx.Version{Timestamp: "11", Source: "X"}

	meta := []string{
		kv.BaseStateKey(prefix),
		kv.RecentStateKey(prefix),
		kv.TipKey(prefix),
		kv.BookmarkKey(prefix, "peer"),
		kv.EchoBookmarkKey(prefix, "peer"),
	}
	op := kv.OpKey(prefix, v, "set")

	// Within one object's keyspace, every manifest key is scanned by the
	// mandatory first pass (need_mark=".", mark="/"), which the op key
	// (starting with "!") must fall outside of.
	gte, lt := kv.ScanRange(prefix, kv.OffsetMeta, kv.OffsetTop)
	require.True(t, op < gte, "op key must sort below the meta scan's lower bound")
	for _, k := range meta {
		require.True(t, k >= gte && k < lt, "manifest key %q must fall inside the meta scan range", k)
	}
}

func TestStateKeyEncodesAuthorAndVector(t *testing.T) {
	prefix := kv.Prefix("T", "A")
	author := specx.Version{Timestamp: "10", Source: "X"}
	vv := specx.NewVersionMap()
	vv.Add(author)

	key := kv.StateKey(prefix, author, vv)
	require.Equal(t, "/T#A!10+X!10+X.state", key)
}

func TestBackrefAndOpKeys(t *testing.T) {
	prefix := kv.Prefix("T", "A")
	tip := specx.Version{Timestamp: "12", Source: "Z"}
	require.Equal(t, "/T#A!12+Z.~br", kv.BackrefKey(prefix, tip))
	require.Equal(t, "/T#A!12+Z.set", kv.OpKey(prefix, tip, "set"))
}
