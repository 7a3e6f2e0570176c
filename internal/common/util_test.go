package common

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomToken_PrefixAndLength(t *testing.T) {
	tok, err := RandomToken(SpaceIDPrefix, 16)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(tok, "spc_"))

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(tok, "spc_"))
	require.NoError(t, err)
	require.Len(t, raw, 16)
}

func TestRandomToken_Distinct(t *testing.T) {
	a, err := RandomToken(SpaceSecretPrefix, 24)
	require.NoError(t, err)
	b, err := RandomToken(SpaceSecretPrefix, 24)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestRandomToken_ZeroSize(t *testing.T) {
	tok, err := RandomToken("x", 0)
	require.NoError(t, err)
	require.Equal(t, "x", tok)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	require.Equal(t, []byte{0, 0, 0, 0, 0}, buf)

	WipeByteArray(nil)
}
