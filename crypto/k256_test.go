package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestK256SignVerify(t *testing.T) {
	assert := assert.New(t)

	priv, err := GeneratePrivateKeyK256()
	require.NoError(t, err)

	pub, err := priv.PublicKey()
	require.NoError(t, err)

	msg := []byte("hello world")
	sig, err := priv.HashAndSign(msg)
	require.NoError(t, err)
	assert.Equal(64, len(sig))

	assert.NoError(pub.HashAndVerify(msg, sig))
	assert.NoError(pub.HashAndVerifyLenient(msg, sig))

	// mutated message fails
	assert.ErrorIs(pub.HashAndVerify([]byte("hello worlD"), sig), ErrInvalidSignature)

	// mutated signature fails
	badSig := append([]byte{}, sig...)
	badSig[3] ^= 0xFF
	assert.ErrorIs(pub.HashAndVerify(msg, badSig), ErrInvalidSignature)
}

func TestK256KeyEncoding(t *testing.T) {
	assert := assert.New(t)

	priv, err := GeneratePrivateKeyK256()
	require.NoError(t, err)

	// private key bytes round-trip
	priv2, err := ParsePrivateBytesK256(priv.Bytes())
	require.NoError(t, err)
	assert.True(priv.Equal(priv2))

	pub, err := priv.PublicKey()
	require.NoError(t, err)

	// compressed bytes round-trip
	pubComp, err := ParsePublicBytesK256(pub.Bytes())
	require.NoError(t, err)
	assert.True(pub.Equal(pubComp))

	// uncompressed bytes round-trip
	pubUncomp, err := ParsePublicUncompressedBytesK256(pub.UncompressedBytes())
	require.NoError(t, err)
	assert.True(pub.Equal(pubUncomp))

	assert.True(strings.HasPrefix(pub.DIDKey(), "did:key:zQ3sh"))
	assert.True(strings.HasPrefix(priv.Multibase(), "z"))
}

func TestLoadOrCreateKeyFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	kfile := filepath.Join(dir, "signing.key")

	_, err := os.Stat(kfile)
	assert.True(os.IsNotExist(err))

	k1, err := LoadOrCreateKeyFile(kfile)
	require.NoError(t, err)

	// loading again returns the same key
	k2, err := LoadOrCreateKeyFile(kfile)
	require.NoError(t, err)
	assert.True(k1.Equal(k2))
}
