package bullet

import (
	"crypto/ed25519"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedOne = "0000000000000000000000000000000000000000000000000000000000000001"

func TestGenerateAndSign(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	msg := []byte("test message")
	sig := kp.Sign(msg)
	assert.Len(t, sig, 64)
	pub := kp.PublicKey()
	assert.True(t, ed25519.Verify(pub[:], msg, sig))
}

func TestKeypairFromHex(t *testing.T) {
	plain, err := KeypairFromHex(seedOne)
	require.NoError(t, err)
	prefixed, err := KeypairFromHex("0x" + seedOne)
	require.NoError(t, err)
	assert.Equal(t, plain.PublicKey(), prefixed.PublicKey())

	var seed [32]byte
	seed[31] = 1
	assert.Equal(t, KeypairFromBytes(seed).PublicKey(), plain.PublicKey())
	assert.Len(t, plain.PublicKeyHex(), 66)
}

func TestKeypairFromHexInvalid(t *testing.T) {
	for _, in := range []string{"", "0x", "zz", seedOne[:62], seedOne + "00"} {
		_, err := KeypairFromHex(in)
		var ke *KeyError
		assert.ErrorAs(t, err, &ke, in)
	}
}

func TestKeypairRedacted(t *testing.T) {
	kp, err := KeypairFromHex(seedOne)
	require.NoError(t, err)
	for _, s := range []string{kp.String(), fmt.Sprintf("%v", kp), fmt.Sprintf("%#v", kp)} {
		assert.Contains(t, s, kp.PublicKeyHex())
		assert.False(t, strings.Contains(s, seedOne), s)
	}
}
