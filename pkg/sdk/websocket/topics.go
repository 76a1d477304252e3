package websocket

import "strconv"

// Topic is a subscription stream name such as "BTC-USD@depth10".
type Topic string

func (t Topic) String() string { return string(t) }

// OrderbookDepth is the number of levels of a depth stream.
type OrderbookDepth int

const (
	Depth5  OrderbookDepth = 5
	Depth10 OrderbookDepth = 10
	Depth20 OrderbookDepth = 20
)

// KlineInterval is a candlestick period.
type KlineInterval string

const (
	Kline1m  KlineInterval = "1m"
	Kline5m  KlineInterval = "5m"
	Kline15m KlineInterval = "15m"
	Kline30m KlineInterval = "30m"
	Kline1h  KlineInterval = "1h"
	Kline4h  KlineInterval = "4h"
	Kline1d  KlineInterval = "1d"
)

func AggTrade(symbol string) Topic { return Topic(symbol + "@aggTrade") }

// Depth streams partial book snapshots; an unsupported depth falls back to 10 levels.
func Depth(symbol string, depth OrderbookDepth) Topic {
	switch depth {
	case Depth5, Depth10, Depth20:
	default:
		depth = Depth10
	}
	return Topic(symbol + "@depth" + strconv.Itoa(int(depth)))
}

func BookTicker(symbol string) Topic { return Topic(symbol + "@bookTicker") }

func MarkPrice(symbol string) Topic { return Topic(symbol + "@markPrice") }

func Kline(symbol string, interval KlineInterval) Topic {
	return Topic(symbol + "@kline_" + string(interval))
}

func ForceOrder(symbol string) Topic { return Topic(symbol + "@forceOrder") }

// Market-wide streams.
func AllTickers() Topic     { return "!ticker@arr" }
func AllMarkPrices() Topic  { return "!markPrice@arr" }
func AllBookTickers() Topic { return "!bookTicker@arr" }
func AllForceOrders() Topic { return "!forceOrder@arr" }

func topicStrings(topics []Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}
