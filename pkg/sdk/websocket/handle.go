package websocket

import (
	"context"
	"io"
	"iter"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
)

// Client request methods.
const (
	MethodSubscribe         = "subscribe"
	MethodUnsubscribe       = "unsubscribe"
	MethodListSubscriptions = "list_subscriptions"
	MethodPing              = "ping"
	MethodOrderPlace        = "order.place"
	MethodOrderCancel       = "order.cancel"
)

// ClientMessage is a request frame.
type ClientMessage struct {
	Method string     `json:"method"`
	ID     *RequestID `json:"id,omitempty"`
	Params any        `json:"params,omitempty"`
}

// OrderParams carries a base64 encoded signed transaction.
type OrderParams struct {
	Tx string `json:"tx"`
}

// Handle is an established connection. Recv and Stream must be driven from a
// single goroutine; sends are safe from any goroutine.
type Handle struct {
	conn *websocket.Conn
	url  string
	cfg  Config
	log  *logrus.Entry

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to rawURL and waits for the server's connected status.
func Dial(ctx context.Context, rawURL string, cfg *Config) (*Handle, error) {
	c := cfg.withDefaults()
	log := c.Logger
	if log == nil {
		log = logger.Component("websocket")
	}

	dialer := websocket.Dialer{
		ReadBufferSize:   c.ReadBufferSize,
		WriteBufferSize:  c.WriteBufferSize,
		HandshakeTimeout: c.HandshakeTimeout,
		Proxy:            http.ProxyFromEnvironment,
	}
	if c.ProxyURL != "" {
		proxyURL, err := url.Parse(c.ProxyURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid proxy url")
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	headers := make(http.Header)
	headers.Set("User-Agent", c.UserAgent)

	conn, resp, err := dialer.DialContext(ctx, rawURL, headers)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial %s (status %d)", rawURL, resp.StatusCode)
		}
		return nil, errors.Wrapf(err, "dial %s", rawURL)
	}

	h := &Handle{conn: conn, url: rawURL, cfg: c, log: log.WithField("url", rawURL)}
	if err := h.waitForConnected(ctx); err != nil {
		_ = conn.Close()
		h.closed.Store(true)
		return nil, err
	}
	h.log.Debug("websocket connected")
	return h, nil
}

func (h *Handle) waitForConnected(ctx context.Context) error {
	if err := h.conn.SetReadDeadline(time.Now().Add(h.cfg.ConnectionTimeout)); err != nil {
		return errors.Wrap(err, "set read deadline")
	}
	stop := context.AfterFunc(ctx, func() {
		_ = h.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	msg, err := h.Recv()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return ErrConnectionTimeout
		}
		return err
	}
	if msg.Kind == KindStatus && msg.Status.Status == "connected" {
		return errors.Wrap(h.conn.SetReadDeadline(time.Time{}), "clear read deadline")
	}
	return &HandshakeError{Message: msg}
}

// URL returns the address the handle is connected to.
func (h *Handle) URL() string { return h.url }

// Send writes one request frame.
func (h *Handle) Send(msg ClientMessage) error {
	if h.closed.Load() {
		return ErrNotConnected
	}
	data, err := wsJSON.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode client message")
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if h.cfg.WriteTimeout > 0 {
		_ = h.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	}
	if err := h.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, "websocket write")
	}
	return nil
}

func (h *Handle) Subscribe(topics []Topic, id *RequestID) error {
	return h.Send(ClientMessage{Method: MethodSubscribe, ID: id, Params: topicStrings(topics)})
}

// Unsubscribe is idempotent on the server side.
func (h *Handle) Unsubscribe(topics []Topic, id *RequestID) error {
	return h.Send(ClientMessage{Method: MethodUnsubscribe, ID: id, Params: topicStrings(topics)})
}

func (h *Handle) ListSubscriptions(id *RequestID) error {
	return h.Send(ClientMessage{Method: MethodListSubscriptions, ID: id})
}

// Ping sends an application level ping. Keepalive itself runs on protocol
// ping/pong frames and needs no calls.
func (h *Handle) Ping(id *RequestID) error {
	return h.Send(ClientMessage{Method: MethodPing, ID: id})
}

// OrderPlace submits a base64 encoded signed transaction.
func (h *Handle) OrderPlace(tx string, id *RequestID) error {
	return h.Send(ClientMessage{Method: MethodOrderPlace, ID: id, Params: OrderParams{Tx: tx}})
}

func (h *Handle) OrderCancel(tx string, id *RequestID) error {
	return h.Send(ClientMessage{Method: MethodOrderCancel, ID: id, Params: OrderParams{Tx: tx}})
}

// Recv blocks for the next data frame. Undecodable frames are returned as
// KindUnknown messages, not errors. A server close frame yields *ClosedError
// and a connection lost without one yields ErrStreamEnded.
func (h *Handle) Recv() (ServerMessage, error) {
	_, data, err := h.conn.ReadMessage()
	if err != nil {
		return ServerMessage{}, h.readError(err)
	}
	msg := DecodeServerMessage(data)
	if msg.Kind == KindUnknown {
		h.log.WithField("error", msg.ParseError).Warn("failed to parse server message")
	}
	return msg, nil
}

func (h *Handle) readError(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Code == websocket.CloseAbnormalClosure {
			return ErrStreamEnded
		}
		return &ClosedError{Code: ce.Code, Reason: ce.Text}
	}
	if h.closed.Load() {
		return ErrNotConnected
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrStreamEnded
	}
	return errors.Wrap(err, "websocket read")
}

// Stream yields messages until an error, which is yielded last, or until ctx
// is cancelled, which closes the connection. A finished stream cannot be
// resumed; dial again.
func (h *Handle) Stream(ctx context.Context) iter.Seq2[ServerMessage, error] {
	return func(yield func(ServerMessage, error) bool) {
		stop := context.AfterFunc(ctx, func() { _ = h.Close() })
		defer stop()
		for {
			msg, err := h.Recv()
			if err != nil {
				if ctx.Err() == nil {
					yield(ServerMessage{}, err)
				}
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}

// Close sends a normal closure frame and releases the connection. It is safe
// to call more than once.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.writeMu.Lock()
		_ = h.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = h.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		h.writeMu.Unlock()
		h.closeErr = h.conn.Close()
	})
	return h.closeErr
}
