package specx_test

import (
	"testing"

	"github.com/dcnet/causalstore/specx"
	"github.com/stretchr/testify/require"
)

func TestVersionMapAddIsMonotonic(t *testing.T) {
	vm := specx.NewVersionMap()
	vm.Add(specx.Version{Timestamp: "05", Source: "X"})
	vm.Add(specx.Version{Timestamp: "10", Source: "X"})
	vm.Add(specx.Version{Timestamp: "03", Source: "X"}) // must not lower it
	require.Equal(t, "10", vm["X"])
}

func TestVersionMapCovers(t *testing.T) {
	vm := specx.NewVersionMap()
	vm.Add(specx.Version{Timestamp: "10", Source: "X"})
	require.True(t, vm.Covers(specx.Version{Timestamp: "05", Source: "X"}))
	require.True(t, vm.Covers(specx.Version{Timestamp: "10", Source: "X"}))
	require.False(t, vm.Covers(specx.Version{Timestamp: "11", Source: "X"}))
	require.False(t, vm.Covers(specx.Version{Timestamp: "01", Source: "Y"}))
}

func TestVersionMapCoversAll(t *testing.T) {
	a := specx.NewVersionMap()
	a.Add(specx.Version{Timestamp: "10", Source: "X"})
	a.Add(specx.Version{Timestamp: "05", Source: "Y"})

	covered := specx.NewVersionMap()
	covered.Add(specx.Version{Timestamp: "09", Source: "X"})
	require.True(t, a.CoversAll(covered))

	notCovered := specx.NewVersionMap()
	notCovered.Add(specx.Version{Timestamp: "11", Source: "X"})
	require.False(t, a.CoversAll(notCovered))
}

func TestVersionMapRenderIsSortedBySource(t *testing.T) {
	vm := specx.NewVersionMap()
	vm.Add(specx.Version{Timestamp: "09", Source: "W"})
	vm.Add(specx.Version{Timestamp: "12", Source: "Z"})
	vm.Add(specx.Version{Timestamp: "11", Source: "X"})
	require.Equal(t, "!09+W!11+X!12+Z", vm.Render())
}

func TestParseVersionMapRoundTrip(t *testing.T) {
	raw := "!09+W!11+X!12+Z"
	vm, err := specx.ParseVersionMap(raw)
	require.NoError(t, err)
	require.Equal(t, raw, vm.Render())
}

func TestVersionMapUnion(t *testing.T) {
	a := specx.NewVersionMap()
	a.Add(specx.Version{Timestamp: "10", Source: "X"})
	b := specx.NewVersionMap()
	b.Add(specx.Version{Timestamp: "05", Source: "X"})
	b.Add(specx.Version{Timestamp: "20", Source: "Y"})

	u := a.Union(b)
	require.Equal(t, "10", u["X"])
	require.Equal(t, "20", u["Y"])
	// a itself must be untouched (value semantics via Clone).
	_, hasY := a["Y"]
	require.False(t, hasY)
}

func TestVersionMapLowerUnionSkipsOneSided(t *testing.T) {
	a := specx.NewVersionMap()
	a.Add(specx.Version{Timestamp: "10", Source: "X"})
	a.Add(specx.Version{Timestamp: "07", Source: "Y"})
	b := specx.NewVersionMap()
	b.Add(specx.Version{Timestamp: "04", Source: "X"})

	lu := a.LowerUnion(b)
	require.Equal(t, "04", lu["X"])
	_, hasY := lu["Y"]
	require.False(t, hasY)
}

func TestVersionMapMaxMinTs(t *testing.T) {
	vm := specx.NewVersionMap()
	vm.Add(specx.Version{Timestamp: "09", Source: "W"})
	vm.Add(specx.Version{Timestamp: "12", Source: "Z"})
	require.Equal(t, "12", vm.MaxTs())
	require.Equal(t, "09", vm.MinTs())
}
