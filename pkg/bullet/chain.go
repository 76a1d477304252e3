package bullet

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const chainHashField = "chain_hash"

// ChainInfo identifies the chain transactions are signed for.
type ChainInfo struct {
	ID   uint64
	Hash [32]byte
}

// HashHex returns the chain hash with a 0x prefix.
func (c ChainInfo) HashHex() string { return hexutil.Encode(c.Hash[:]) }

// ChainInfo fetches the chain id from /constants and the chain hash from
// /schema. The first successful result is kept for the client's lifetime.
// Concurrent callers share one fetch, and each returns early if its own ctx
// is done.
func (t *TradingAPI) ChainInfo(ctx context.Context) (ChainInfo, error) {
	t.mu.Lock()
	cached := t.chain
	t.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	// the shared fetch outlives any single caller; the HTTP timeout bounds it
	ch := t.chainFetch.DoChan("chain", func() (any, error) {
		return t.fetchChainInfo(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return ChainInfo{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ChainInfo{}, res.Err
		}
		return res.Val.(ChainInfo), nil
	}
}

func (t *TradingAPI) fetchChainInfo(ctx context.Context) (ChainInfo, error) {
	t.mu.Lock()
	cached := t.chain
	t.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	consts, err := t.Constants(ctx)
	if err != nil {
		return ChainInfo{}, errors.Wrap(err, "fetch constants")
	}
	if consts.ChainID < 0 {
		return ChainInfo{}, errors.Wrapf(ErrNegativeChainID, "got %d", consts.ChainID)
	}

	schema, err := t.Schema(ctx)
	if err != nil {
		return ChainInfo{}, errors.Wrap(err, "fetch schema")
	}
	raw, ok := schema[chainHashField].(string)
	if !ok {
		return ChainInfo{}, &SchemaError{Field: chainHashField}
	}
	hash, err := ParseChainHash(raw)
	if err != nil {
		return ChainInfo{}, err
	}

	info := ChainInfo{ID: uint64(consts.ChainID), Hash: hash}
	t.mu.Lock()
	t.chain = &info
	t.mu.Unlock()
	t.log.WithField("chain_id", info.ID).Debug("chain info loaded")
	return info, nil
}

// ParseChainHash decodes a 32 byte hex hash, with or without 0x.
func ParseChainHash(s string) ([32]byte, error) {
	var out [32]byte
	b, err := decodeHex(s)
	if err != nil {
		return out, &ChainHashError{Value: s, Err: err}
	}
	if len(b) != len(out) {
		return out, &ChainHashError{Value: s, Err: errors.Errorf("expected 32 bytes, got %d", len(b))}
	}
	copy(out[:], b)
	return out, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
