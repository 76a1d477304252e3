package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bullet-xyz/bullet-go-sdk/internal/mockapi"
)

const connectedStatus = `{"e":"status","E":1,"status":"connected","clientId":"test"}`

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

// scriptedServer runs script on every upgraded connection.
func scriptedServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ConnectionTimeout = 2 * time.Second
	return cfg
}

func recvKind(t *testing.T, h *Handle, kind Kind) ServerMessage {
	t.Helper()
	msg, err := h.Recv()
	require.NoError(t, err)
	require.Equal(t, kind, msg.Kind, msg.Raw)
	return msg
}

func TestDialAgainstMock(t *testing.T) {
	m, err := mockapi.New()
	require.NoError(t, err)
	srv := httptest.NewServer(m.Router())
	t.Cleanup(srv.Close)

	h, err := Dial(context.Background(), wsURL(srv, "/ws"), testConfig())
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Subscribe([]Topic{AggTrade("BTC-USD")}, ID(1)))
	ack := recvKind(t, h, KindSubscribe)
	id, _ := ack.RequestID()
	assert.Equal(t, RequestID(1), id)
	trade := recvKind(t, h, KindAggTrade)
	assert.Equal(t, "BTC-USD", trade.AggTrade.Symbol)

	require.NoError(t, h.ListSubscriptions(ID(2)))
	list := recvKind(t, h, KindListSubscriptions)
	assert.Equal(t, []string{"BTC-USD@aggTrade"}, list.Subscriptions.Result)

	require.NoError(t, h.Unsubscribe([]Topic{AggTrade("BTC-USD")}, nil))
	recvKind(t, h, KindUnsubscribe)

	require.NoError(t, h.Ping(ID(3)))
	pong := recvKind(t, h, KindPong)
	id, _ = pong.RequestID()
	assert.Equal(t, RequestID(3), id)

	require.NoError(t, h.OrderPlace("not base64!", ID(4)))
	rejected := recvKind(t, h, KindUntaggedError)
	assert.Equal(t, int64(mockapi.CodeTxRejected), rejected.Error.Error.Code)

	require.NoError(t, h.OrderCancel("AAEC", ID(5)))
	update := recvKind(t, h, KindOrderUpdate)
	assert.Equal(t, "CANCELED", update.OrderUpdate.Order.Status)
}

func TestDialHandshakeRejected(t *testing.T) {
	srv := scriptedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"error","E":1,"error":{"code":-1,"msg":"busy"}}`))
		time.Sleep(100 * time.Millisecond)
	})

	_, err := Dial(context.Background(), wsURL(srv, "/"), testConfig())
	var he *HandshakeError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, KindError, he.Message.Kind)
	assert.Contains(t, he.Error(), "unexpected error message")
}

func TestDialConnectionTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := scriptedServer(t, func(conn *websocket.Conn) { <-release })
	defer close(release)

	cfg := testConfig()
	cfg.ConnectionTimeout = 100 * time.Millisecond
	_, err := Dial(context.Background(), wsURL(srv, "/"), cfg)
	assert.ErrorIs(t, err, ErrConnectionTimeout)
}

func TestDialContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := scriptedServer(t, func(conn *websocket.Conn) { <-release })
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	_, err := Dial(ctx, wsURL(srv, "/"), testConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDialRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := wsURL(srv, "/ws")
	srv.Close()

	_, err := Dial(context.Background(), addr, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
}

func TestRecvCloseFrame(t *testing.T) {
	srv := scriptedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(connectedStatus))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "maintenance"))
		time.Sleep(100 * time.Millisecond)
	})

	h, err := Dial(context.Background(), wsURL(srv, "/"), testConfig())
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Recv()
	var ce *ClosedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.CloseGoingAway, ce.Code)
	assert.Equal(t, "maintenance", ce.Reason)
}

func TestRecvAbruptEnd(t *testing.T) {
	srv := scriptedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(connectedStatus))
		_ = conn.UnderlyingConn().Close()
	})

	h, err := Dial(context.Background(), wsURL(srv, "/"), testConfig())
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Recv()
	assert.ErrorIs(t, err, ErrStreamEnded)
}

func TestRecvUnknownFrame(t *testing.T) {
	srv := scriptedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(connectedStatus))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"brandNew"}`))
		time.Sleep(100 * time.Millisecond)
	})

	h, err := Dial(context.Background(), wsURL(srv, "/"), testConfig())
	require.NoError(t, err)
	defer h.Close()

	msg := recvKind(t, h, KindUnknown)
	assert.Equal(t, `{"e":"brandNew"}`, msg.Raw)
}

func TestStreamYieldsErrorLast(t *testing.T) {
	srv := scriptedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(connectedStatus))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"pong","id":1,"E":1}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"pong","id":2,"E":1}`))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(100 * time.Millisecond)
	})

	h, err := Dial(context.Background(), wsURL(srv, "/"), testConfig())
	require.NoError(t, err)
	defer h.Close()

	var kinds []Kind
	var last error
	for msg, err := range h.Stream(context.Background()) {
		if err != nil {
			last = err
			continue
		}
		kinds = append(kinds, msg.Kind)
	}
	assert.Equal(t, []Kind{KindPong, KindPong}, kinds)
	var ce *ClosedError
	require.ErrorAs(t, last, &ce)
	assert.Equal(t, websocket.CloseNormalClosure, ce.Code)
}

func TestStreamStopsOnCancel(t *testing.T) {
	release := make(chan struct{})
	srv := scriptedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(connectedStatus))
		<-release
	})
	defer close(release)

	h, err := Dial(context.Background(), wsURL(srv, "/"), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan int)
	go func() {
		n := 0
		for range h.Stream(ctx) {
			n++
		}
		done <- n
	}()

	select {
	case n := <-done:
		assert.Zero(t, n)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
	assert.ErrorIs(t, h.Send(ClientMessage{Method: MethodPing}), ErrNotConnected)
}

func TestCloseIsIdempotent(t *testing.T) {
	closed := make(chan int, 1)
	srv := scriptedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(connectedStatus))
		_, _, err := conn.ReadMessage()
		if ce, ok := err.(*websocket.CloseError); ok {
			closed <- ce.Code
		}
	})

	h, err := Dial(context.Background(), wsURL(srv, "/"), testConfig())
	require.NoError(t, err)
	assert.Equal(t, wsURL(srv, "/"), h.URL())

	_ = h.Close()
	_ = h.Close()
	select {
	case code := <-closed:
		assert.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw a close frame")
	}
	assert.ErrorIs(t, h.Ping(nil), ErrNotConnected)
}

func TestConfigDefaults(t *testing.T) {
	var nilCfg *Config
	c := nilCfg.withDefaults()
	assert.Equal(t, DefaultConnectionTimeout, c.ConnectionTimeout)
	assert.Equal(t, defaultUserAgent, c.UserAgent)

	c = (&Config{ConnectionTimeout: time.Second, UserAgent: "x"}).withDefaults()
	assert.Equal(t, time.Second, c.ConnectionTimeout)
	assert.Equal(t, "x", c.UserAgent)
	assert.Equal(t, defaultBufferSize, c.ReadBufferSize)
	assert.Zero(t, c.WriteTimeout)
}
