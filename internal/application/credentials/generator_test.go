package credentials

import (
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alnumRe = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

func TestGenerateTemporaryPassword_Shape(t *testing.T) {
	for i := 0; i < 200; i++ {
		pw, err := GenerateTemporaryPassword()
		require.NoError(t, err)
		assert.Regexp(t, alnumRe, pw)
	}
}

func TestGenerateTemporaryPassword_CoversAlphabet(t *testing.T) {
	seen := map[rune]bool{}
	for i := 0; i < 2000; i++ {
		pw, err := GenerateTemporaryPassword()
		require.NoError(t, err)
		for _, r := range pw {
			seen[r] = true
		}
	}
	// 12000 draws over 62 symbols; missing one is vanishingly unlikely.
	assert.Len(t, seen, len(alphanumeric))
}

func TestGenerateOpaqueToken_Entropy(t *testing.T) {
	tok, err := GenerateOpaqueToken()
	require.NoError(t, err)
	assert.Len(t, tok, 43)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestGenerateOpaqueToken_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		tok, err := GenerateOpaqueToken()
		require.NoError(t, err)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}
