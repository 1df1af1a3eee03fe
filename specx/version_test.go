package specx_test

import (
	"testing"

	"github.com/dcnet/causalstore/specx"
	"github.com/stretchr/testify/require"
)

func TestVersionOrdering(t *testing.T) {
	older := specx.Version{Timestamp: "09", Source: "W"}
	newer := specx.Version{Timestamp: "12", Source: "Z"}
	require.True(t, older.Less(newer))
	require.False(t, newer.Less(older))
}

func TestVersionTieBreakOnSource(t *testing.T) {
	a := specx.Version{Timestamp: "10", Source: "A"}
	b := specx.Version{Timestamp: "10", Source: "B"}
	require.True(t, a.Less(b))
}

func TestParseSingleVersion(t *testing.T) {
	v, err := specx.ParseSingleVersion("!11+X")
	require.NoError(t, err)
	require.Equal(t, "11", v.Timestamp)
	require.Equal(t, "X", v.Source)
	require.Equal(t, "!11+X", v.String())
}

func TestParseSingleVersionRejectsMissingSource(t *testing.T) {
	_, err := specx.ParseSingleVersion("!11")
	require.Error(t, err)
}

func TestParseVersionChain(t *testing.T) {
	chain, err := specx.ParseVersionChain("!10+X!10+X")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, chain[0], chain[1])
}
