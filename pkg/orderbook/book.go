// Package orderbook maintains a local price-level book from depth stream
// messages.
package orderbook

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/websocket"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/sigchan"
)

// snapshotMessageType marks a depth message that replaces the whole book.
const snapshotMessageType = "s"

// ErrSequenceGap means an incremental update does not follow the last
// applied one; the book must be rebuilt from a snapshot.
var ErrSequenceGap = errors.New("orderbook: depth update sequence gap")

// Book is a price-level book for one symbol. It is safe for concurrent use.
type Book struct {
	Symbol string

	mu           sync.RWMutex
	bids         map[string]websocket.PriceLevel
	asks         map[string]websocket.PriceLevel
	lastUpdateID uint64
	eventTime    uint64

	// C is signalled after every applied update.
	C *sigchan.Chan
}

func New(symbol string) *Book {
	return &Book{
		Symbol: symbol,
		bids:   make(map[string]websocket.PriceLevel),
		asks:   make(map[string]websocket.PriceLevel),
		C:      sigchan.New(1),
	}
}

// Apply merges a depth message. Snapshots replace the book; incremental
// updates must chain on PrevFinalUpdateID, otherwise ErrSequenceGap is
// returned and the book is left unchanged. Zero quantities remove a level.
func (b *Book) Apply(u *websocket.DepthUpdate) error {
	if u == nil {
		return nil
	}
	if u.Symbol != "" && u.Symbol != b.Symbol {
		return errors.Errorf("orderbook: update for %s applied to %s", u.Symbol, b.Symbol)
	}

	b.mu.Lock()
	if u.MessageType == snapshotMessageType {
		b.bids = make(map[string]websocket.PriceLevel, len(u.Bids))
		b.asks = make(map[string]websocket.PriceLevel, len(u.Asks))
	} else if b.lastUpdateID != 0 && u.PrevFinalUpdateID != b.lastUpdateID {
		last := b.lastUpdateID
		b.mu.Unlock()
		return errors.Wrapf(ErrSequenceGap, "have %d, update follows %d", last, u.PrevFinalUpdateID)
	}
	merge(b.bids, u.Bids)
	merge(b.asks, u.Asks)
	b.lastUpdateID = u.FinalUpdateID
	b.eventTime = u.EventTime
	b.mu.Unlock()

	b.C.Emit()
	return nil
}

func merge(side map[string]websocket.PriceLevel, levels []websocket.PriceLevel) {
	for _, l := range levels {
		key := l.Price().String()
		if l.Quantity().IsZero() {
			delete(side, key)
			continue
		}
		side[key] = l
	}
}

// Top returns up to n levels per side, best first. n <= 0 returns all levels.
func (b *Book) Top(n int) (bids, asks []websocket.PriceLevel) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bids = sorted(b.bids, func(x, y decimal.Decimal) bool { return x.GreaterThan(y) }, n)
	asks = sorted(b.asks, func(x, y decimal.Decimal) bool { return x.LessThan(y) }, n)
	return bids, asks
}

func sorted(side map[string]websocket.PriceLevel, better func(x, y decimal.Decimal) bool, n int) []websocket.PriceLevel {
	out := make([]websocket.PriceLevel, 0, len(side))
	for _, l := range side {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return better(out[i].Price(), out[j].Price()) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Best returns the best bid and ask; ok is false unless both sides are non-empty.
func (b *Book) Best() (bid, ask websocket.PriceLevel, ok bool) {
	bids, asks := b.Top(1)
	if len(bids) == 0 || len(asks) == 0 {
		return bid, ask, false
	}
	return bids[0], asks[0], true
}

// Mid is the midpoint of the best bid and ask.
func (b *Book) Mid() (decimal.Decimal, bool) {
	bid, ask, ok := b.Best()
	if !ok {
		return decimal.Zero, false
	}
	return bid.Price().Add(ask.Price()).Div(decimal.NewFromInt(2)), true
}

func (b *Book) Spread() (decimal.Decimal, bool) {
	bid, ask, ok := b.Best()
	if !ok {
		return decimal.Zero, false
	}
	return ask.Price().Sub(bid.Price()), true
}

func (b *Book) LastUpdateID() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdateID
}

// WaitUpdate blocks until the book has changed since the last wake-up or ctx
// is done.
func (b *Book) WaitUpdate(ctx context.Context) error {
	return b.C.Wait(ctx)
}

// Reset empties the book so the next message must be a snapshot or a fresh
// sequence.
func (b *Book) Reset() {
	b.mu.Lock()
	b.bids = make(map[string]websocket.PriceLevel)
	b.asks = make(map[string]websocket.PriceLevel)
	b.lastUpdateID = 0
	b.eventTime = 0
	b.mu.Unlock()
	b.C.Emit()
}

// EventTime is the exchange timestamp (ms) of the last applied update.
func (b *Book) EventTime() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.eventTime
}
