package specx_test

import (
	"testing"

	"github.com/dcnet/causalstore/specx"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"/Type#Id",
		"/Type#Id!10+X.set",
		"/Type#Id.on",
		"!10+X",
		"!10+X!09+W",
		".base_state",
	}
	for _, raw := range cases {
		s, err := specx.Parse(raw)
		require.NoError(t, err, raw)
		require.Equal(t, raw, s.String())
	}
}

func TestParseEmpty(t *testing.T) {
	s, err := specx.Parse("")
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestParseRejectsMissingSigil(t *testing.T) {
	_, err := specx.Parse("Type#Id")
	require.Error(t, err)
}

func TestAccessors(t *testing.T) {
	s := specx.MustParse("/T#A!11+X.set")
	typ, ok := s.Type()
	require.True(t, ok)
	require.Equal(t, "T", typ)

	id, ok := s.Id()
	require.True(t, ok)
	require.Equal(t, "A", id)

	op, ok := s.Op()
	require.True(t, ok)
	require.Equal(t, "set", op)

	v, ok, err := s.Version()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, specx.Version{Timestamp: "11", Source: "X"}, v)

	source, ok := s.Source()
	require.True(t, ok)
	require.Equal(t, "X", source)

	require.Equal(t, "/T#A", s.Prefix().String())
}

func TestVersionMultipleTokensIsError(t *testing.T) {
	s := specx.MustParse("!11+X!09+W.set")
	_, _, err := s.Version()
	require.Error(t, err)
}

func TestVersionVectorFromSpec(t *testing.T) {
	s := specx.MustParse("!11+X!09+W")
	vv := s.VersionVector()
	require.Equal(t, "11", vv["X"])
	require.Equal(t, "09", vv["W"])
}

func TestCompareLexicographic(t *testing.T) {
	a := specx.MustParse("/T#A!09+X.set")
	b := specx.MustParse("/T#A!11+X.set")
	require.True(t, specx.Compare(a, b) < 0)
}
