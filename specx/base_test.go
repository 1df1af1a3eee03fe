package specx_test

import (
	"testing"

	"github.com/dcnet/causalstore/specx"
	"github.com/stretchr/testify/require"
)

func TestClassifyBaseShapes(t *testing.T) {
	require.Equal(t, specx.BaseEmpty, specx.ClassifyBase("").Kind)
	require.Equal(t, specx.BaseSuppressed, specx.ClassifyBase("~").Kind)
	require.Equal(t, specx.BaseRefuseOps, specx.ClassifyBase("!~").Kind)
	require.Equal(t, specx.BaseEchoBookmark, specx.ClassifyBase("-").Kind)

	zero := specx.ClassifyBase("!0")
	require.Equal(t, specx.BaseVector, zero.Kind)
	require.Empty(t, zero.Vector)

	bm := specx.ClassifyBase("!11+X")
	require.Equal(t, specx.BaseBookmark, bm.Kind)
	require.Equal(t, "X", bm.Version.Source)

	vec := specx.ClassifyBase("!11+X!09+W")
	require.Equal(t, specx.BaseVector, vec.Kind)
	require.Equal(t, "11", vec.Vector["X"])

	require.Equal(t, specx.BaseUnparseable, specx.ClassifyBase("garbage").Kind)
	require.Equal(t, specx.BaseUnparseable, specx.ClassifyBase("!11").Kind)
}
