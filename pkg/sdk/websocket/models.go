package websocket

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// RequestID correlates a client request with the server's reply.
type RequestID uint64

// ID returns a pointer to a request id, for the optional id arguments.
func ID(n uint64) *RequestID {
	id := RequestID(n)
	return &id
}

// Kind identifies which payload of a ServerMessage is set.
type Kind string

const (
	KindStatus            Kind = "status"
	KindPong              Kind = "pong"
	KindError             Kind = "error"
	KindSubscribe         Kind = "subscribe"
	KindUnsubscribe       Kind = "unsubscribe"
	KindListSubscriptions Kind = "list_subscriptions"
	KindDepthUpdate       Kind = "depthUpdate"
	KindAggTrade          Kind = "aggTrade"
	KindBookTicker        Kind = "bookTicker"
	KindMarkPrice         Kind = "markPriceUpdate"
	KindForceOrder        Kind = "liquidation"
	KindOrderUpdate       Kind = "orderTradeUpdate"
	// KindUntaggedError is an error reply without an "e" field, as sent for
	// rejected orders.
	KindUntaggedError Kind = "untagged_error"
	// KindUnknown is a frame that could not be decoded; ParseError and Raw are set.
	KindUnknown Kind = "unknown"
)

type StatusMessage struct {
	EventTime uint64 `json:"E"`
	Status    string `json:"status"`
	ClientID  string `json:"clientId"`
}

type PongMessage struct {
	ID        *RequestID `json:"id,omitempty"`
	EventTime uint64     `json:"E"`
}

type ErrorBody struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

type ErrorMessage struct {
	ID        *RequestID `json:"id,omitempty"`
	EventTime uint64     `json:"E"`
	Error     ErrorBody  `json:"error"`
}

// MethodResult acknowledges subscribe and unsubscribe.
type MethodResult struct {
	ID        *RequestID `json:"id,omitempty"`
	EventTime uint64     `json:"E"`
	Result    string     `json:"result"`
}

type ListSubscriptionsResult struct {
	ID        *RequestID `json:"id,omitempty"`
	EventTime uint64     `json:"E"`
	Result    []string   `json:"result"`
}

// PriceLevel is a [price, quantity] pair.
type PriceLevel [2]decimal.Decimal

func (l PriceLevel) Price() decimal.Decimal    { return l[0] }
func (l PriceLevel) Quantity() decimal.Decimal { return l[1] }

type DepthUpdate struct {
	EventTime         uint64       `json:"E"`
	TransactionTime   uint64       `json:"T"`
	Symbol            string       `json:"s"`
	FirstUpdateID     uint64       `json:"U"`
	FinalUpdateID     uint64       `json:"u"`
	PrevFinalUpdateID uint64       `json:"pu"`
	Bids              []PriceLevel `json:"b"`
	Asks              []PriceLevel `json:"a"`
	MessageType       string       `json:"mt,omitempty"`
}

type AggTradeMessage struct {
	EventTime    uint64           `json:"E"`
	Symbol       string           `json:"s"`
	AggTradeID   uint64           `json:"a"`
	Price        decimal.Decimal  `json:"p"`
	Quantity     decimal.Decimal  `json:"q"`
	FirstTradeID uint64           `json:"f"`
	LastTradeID  uint64           `json:"l"`
	TradeTime    uint64           `json:"T"`
	IsBuyerMaker bool             `json:"m"`
	TxHash       string           `json:"th,omitempty"`
	UserAddress  string           `json:"ua,omitempty"`
	OrderID      uint64           `json:"oi,omitempty"`
	IsMaker      *bool            `json:"mk,omitempty"`
	FullFill     *bool            `json:"ff,omitempty"`
	Liquidation  *bool            `json:"lq,omitempty"`
	Fee          *decimal.Decimal `json:"fe,omitempty"`
	NetFee       *decimal.Decimal `json:"nf,omitempty"`
	FeeAsset     string           `json:"fa,omitempty"`
	Side         string           `json:"sd,omitempty"`
}

type BookTickerMessage struct {
	UpdateID        uint64          `json:"u"`
	EventTime       uint64          `json:"E"`
	TransactionTime uint64          `json:"T"`
	Symbol          string          `json:"s"`
	BestBidPrice    decimal.Decimal `json:"b"`
	BestBidQty      decimal.Decimal `json:"B"`
	BestAskPrice    decimal.Decimal `json:"a"`
	BestAskQty      decimal.Decimal `json:"A"`
	MessageType     string          `json:"mt,omitempty"`
}

type MarkPriceMessage struct {
	EventTime   uint64          `json:"E"`
	Symbol      string          `json:"s"`
	MarkPrice   decimal.Decimal `json:"p"`
	IndexPrice  decimal.Decimal `json:"i"`
	FundingRate decimal.Decimal `json:"r"`
}

type ForceOrderDetail struct {
	Symbol        string          `json:"s"`
	Side          string          `json:"S"`
	OrderType     string          `json:"o"`
	TimeInForce   string          `json:"f"`
	Price         decimal.Decimal `json:"p"`
	AveragePrice  decimal.Decimal `json:"ap"`
	Status        string          `json:"X"`
	LastFilledQty decimal.Decimal `json:"l"`
	TradeTime     uint64          `json:"T"`
	TxHash        string          `json:"th,omitempty"`
	UserAddress   string          `json:"ua,omitempty"`
	OrderID       uint64          `json:"oi,omitempty"`
	TradeID       uint64          `json:"ti,omitempty"`
}

type ForceOrderMessage struct {
	EventTime uint64           `json:"E"`
	Order     ForceOrderDetail `json:"o"`
}

type OrderUpdateDetail struct {
	Symbol        string          `json:"s"`
	OrderID       uint64          `json:"i"`
	Status        string          `json:"X"`
	ExecutionType string          `json:"x"`
	TradeTime     uint64          `json:"T"`
	TxHash        string          `json:"th,omitempty"`
	UserAddress   string          `json:"ua,omitempty"`
	Side          string          `json:"S"`
	OrderType     string          `json:"o"`
	TimeInForce   string          `json:"f"`
	Price         decimal.Decimal `json:"p"`
	Quantity      decimal.Decimal `json:"q"`
}

type OrderUpdateMessage struct {
	EventTime uint64            `json:"E"`
	Order     OrderUpdateDetail `json:"o"`
}

// ServerMessage is one decoded frame. Kind says which payload field is set;
// the others are nil.
type ServerMessage struct {
	Kind Kind

	Status        *StatusMessage
	Pong          *PongMessage
	Error         *ErrorMessage
	Result        *MethodResult
	Subscriptions *ListSubscriptionsResult
	DepthUpdate   *DepthUpdate
	AggTrade      *AggTradeMessage
	BookTicker    *BookTickerMessage
	MarkPrice     *MarkPriceMessage
	ForceOrder    *ForceOrderMessage
	OrderUpdate   *OrderUpdateMessage

	ParseError string
	Raw        string
}

// IsError reports whether the message is a tagged or untagged error.
func (m ServerMessage) IsError() bool {
	return m.Kind == KindError || m.Kind == KindUntaggedError
}

// RequestID returns the id echoed by a reply, if any.
func (m ServerMessage) RequestID() (RequestID, bool) {
	var id *RequestID
	switch m.Kind {
	case KindPong:
		id = m.Pong.ID
	case KindError, KindUntaggedError:
		id = m.Error.ID
	case KindSubscribe, KindUnsubscribe:
		id = m.Result.ID
	case KindListSubscriptions:
		id = m.Subscriptions.ID
	}
	if id == nil {
		return 0, false
	}
	return *id, true
}

type envelope struct {
	Event string              `json:"e"`
	Error jsoniter.RawMessage `json:"error"`
}

// DecodeServerMessage decodes a frame. It never fails: undecodable frames
// come back as KindUnknown.
func DecodeServerMessage(data []byte) ServerMessage {
	var env envelope
	if err := wsJSON.Unmarshal(data, &env); err != nil {
		return unknown(err, data)
	}

	msg := ServerMessage{Kind: Kind(env.Event)}
	var err error
	switch msg.Kind {
	case KindStatus:
		msg.Status, err = decodeAs[StatusMessage](data)
	case KindPong:
		msg.Pong, err = decodeAs[PongMessage](data)
	case KindError:
		msg.Error, err = decodeAs[ErrorMessage](data)
	case KindSubscribe, KindUnsubscribe:
		msg.Result, err = decodeAs[MethodResult](data)
	case KindListSubscriptions:
		msg.Subscriptions, err = decodeAs[ListSubscriptionsResult](data)
	case KindDepthUpdate:
		msg.DepthUpdate, err = decodeAs[DepthUpdate](data)
	case KindAggTrade:
		msg.AggTrade, err = decodeAs[AggTradeMessage](data)
	case KindBookTicker:
		msg.BookTicker, err = decodeAs[BookTickerMessage](data)
	case KindMarkPrice:
		msg.MarkPrice, err = decodeAs[MarkPriceMessage](data)
	case KindForceOrder:
		msg.ForceOrder, err = decodeAs[ForceOrderMessage](data)
	case KindOrderUpdate:
		msg.OrderUpdate, err = decodeAs[OrderUpdateMessage](data)
	case "":
		if len(env.Error) == 0 {
			return unknown(fmt.Errorf("message has neither an event type nor an error"), data)
		}
		msg.Kind = KindUntaggedError
		msg.Error, err = decodeAs[ErrorMessage](data)
	default:
		return unknown(fmt.Errorf("unknown event type %q", env.Event), data)
	}
	if err != nil {
		return unknown(err, data)
	}
	return msg
}

func decodeAs[T any](data []byte) (*T, error) {
	v := new(T)
	if err := wsJSON.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

func unknown(err error, data []byte) ServerMessage {
	return ServerMessage{Kind: KindUnknown, ParseError: err.Error(), Raw: string(data)}
}
