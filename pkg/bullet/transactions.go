package bullet

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"

	"github.com/pkg/errors"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/api"
)

// txVersion0 tags the only supported signed envelope layout.
const txVersion0 byte = 0

// SignedTransaction is a serialized unsigned transaction with its signer and
// signature.
type SignedTransaction struct {
	Unsigned  []byte
	PubKey    [32]byte
	Signature [64]byte
}

// Bytes returns the V0 envelope: version || unsigned || pubkey || signature.
func (s *SignedTransaction) Bytes() []byte {
	out := make([]byte, 0, 1+len(s.Unsigned)+len(s.PubKey)+len(s.Signature))
	out = append(out, txVersion0)
	out = append(out, s.Unsigned...)
	out = append(out, s.PubKey[:]...)
	out = append(out, s.Signature[:]...)
	return out
}

// Base64 is the encoding accepted by /tx/submit and order.place.
func (s *SignedTransaction) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Bytes())
}

// Verify checks the signature for the given chain.
func (s *SignedTransaction) Verify(chainHash [32]byte) bool {
	return ed25519.Verify(s.PubKey[:], signingPayload(s.Unsigned, chainHash), s.Signature[:])
}

func signingPayload(unsigned []byte, chainHash [32]byte) []byte {
	msg := make([]byte, 0, len(unsigned)+len(chainHash))
	msg = append(msg, unsigned...)
	return append(msg, chainHash[:]...)
}

// SignTransaction signs unsigned with the chain hash appended as domain
// separator. unsigned is the serialized transaction as produced by the
// exchange's encoder; it is not interpreted here.
func (t *TradingAPI) SignTransaction(ctx context.Context, unsigned []byte, kp *Keypair) (*SignedTransaction, error) {
	if len(unsigned) == 0 {
		return nil, errors.New("empty transaction")
	}
	chain, err := t.ChainInfo(ctx)
	if err != nil {
		return nil, err
	}
	return SignWithChainHash(unsigned, chain.Hash, kp), nil
}

// SignWithChainHash signs offline when the chain hash is already known.
func SignWithChainHash(unsigned []byte, chainHash [32]byte, kp *Keypair) *SignedTransaction {
	signed := &SignedTransaction{
		Unsigned: append([]byte(nil), unsigned...),
		PubKey:   kp.PublicKey(),
	}
	copy(signed.Signature[:], kp.Sign(signingPayload(unsigned, chainHash)))
	return signed
}

// SubmitTransaction posts a signed transaction to the sequencer.
func (t *TradingAPI) SubmitTransaction(ctx context.Context, signed *SignedTransaction) (*api.SubmitTxResponse, error) {
	resp, err := t.SubmitTx(ctx, api.SubmitTxRequest{Body: signed.Base64()})
	if err != nil {
		return nil, errors.Wrap(err, "submit transaction")
	}
	t.log.WithField("tx_hash", resp.TxHash).Debug("transaction submitted")
	return resp, nil
}

func (t *TradingAPI) SignAndSubmit(ctx context.Context, unsigned []byte, kp *Keypair) (*api.SubmitTxResponse, error) {
	signed, err := t.SignTransaction(ctx, unsigned, kp)
	if err != nil {
		return nil, err
	}
	return t.SubmitTransaction(ctx, signed)
}
