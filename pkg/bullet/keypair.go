package bullet

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// Keypair is an Ed25519 signing key. Its String and GoString forms show only
// the public key.
type Keypair struct {
	priv ed25519.PrivateKey
}

// GenerateKeypair creates a key from the OS random source.
func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate ed25519 key")
	}
	return &Keypair{priv: priv}, nil
}

// KeypairFromBytes derives a key from a 32 byte secret seed.
func KeypairFromBytes(seed [32]byte) *Keypair {
	return &Keypair{priv: ed25519.NewKeyFromSeed(seed[:])}
}

// KeypairFromHex parses a hex secret seed, with or without 0x.
func KeypairFromHex(s string) (*Keypair, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, &KeyError{Reason: "not hex", Err: err}
	}
	if len(b) != ed25519.SeedSize {
		return nil, &KeyError{Reason: "expected 32 bytes"}
	}
	var seed [32]byte
	copy(seed[:], b)
	return KeypairFromBytes(seed), nil
}

// Sign returns the 64 byte signature of msg.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

func (k *Keypair) PublicKey() [32]byte {
	var out [32]byte
	copy(out[:], k.priv.Public().(ed25519.PublicKey))
	return out
}

// PublicKeyHex returns the public key with a 0x prefix.
func (k *Keypair) PublicKeyHex() string {
	pub := k.PublicKey()
	return hexutil.Encode(pub[:])
}

func (k *Keypair) String() string { return "Keypair{public: " + k.PublicKeyHex() + "}" }

func (k *Keypair) GoString() string { return k.String() }
