package mockapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/openapi"
	sdkhttp "github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/http"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/specfetch"
)

var fixedNow = time.UnixMilli(1760700000000)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return s, srv
}

func TestFixturesCoverEveryOperation(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	for _, id := range s.doc.OperationIDs() {
		b, err := Fixture(id)
		require.NoError(t, err, id)
		assert.True(t, json.Valid(b), id)
	}
	_, err = Fixture("nope")
	assert.Error(t, err)
}

func TestServesSpecDocument(t *testing.T) {
	_, srv := newTestServer(t)
	raw, err := sdkhttp.NewClient(srv.URL).Raw(context.Background(), sdkhttp.Request{Path: specfetch.DocPath})
	require.NoError(t, err)
	doc, err := openapi.Parse(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Operations())
}

func TestRESTValidation(t *testing.T) {
	_, srv := newTestServer(t)
	c := sdkhttp.NewClient(srv.URL)
	ctx := context.Background()

	cases := []struct {
		name   string
		req    sdkhttp.Request
		status int
		code   int64
	}{
		{"missing symbol", sdkhttp.Request{Path: "/fapi/v1/depth"}, http.StatusBadRequest, CodeMandatoryParam},
		{"unknown symbol", sdkhttp.Request{Path: "/fapi/v1/ticker/24hr", Query: url.Values{"symbol": {"DOGE-USD"}}}, http.StatusBadRequest, CodeInvalidSymbol},
		{"bad limit", sdkhttp.Request{Path: "/fapi/v1/trades", Query: url.Values{"symbol": {"BTC-USD"}, "limit": {"x"}}}, http.StatusBadRequest, CodeMandatoryParam},
		{"missing address", sdkhttp.Request{Path: "/fapi/v3/account"}, http.StatusBadRequest, CodeMandatoryParam},
		{"empty tx", sdkhttp.Request{Method: http.MethodPost, Path: "/tx/submit", Body: map[string]string{}}, http.StatusBadRequest, CodeInvalidTx},
		{"tx not base64", sdkhttp.Request{Method: http.MethodPost, Path: "/tx/submit", Body: map[string]string{"body": "%%%"}}, http.StatusBadRequest, CodeInvalidTx},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Raw(ctx, tc.req)
			var se *sdkhttp.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.status, se.StatusCode)
			assert.Equal(t, tc.code, se.Code)
		})
	}
}

func TestRESTFilters(t *testing.T) {
	s, srv := newTestServer(t)
	c := sdkhttp.NewClient(srv.URL)
	ctx := context.Background()

	var book struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	}
	require.NoError(t, c.Do(ctx, sdkhttp.Request{Path: "/fapi/v1/depth", Query: url.Values{"symbol": {"BTC-USD"}, "limit": {"2"}}}, &book))
	assert.Len(t, book.Bids, 2)
	assert.Len(t, book.Asks, 2)

	var prices []map[string]any
	require.NoError(t, c.Do(ctx, sdkhttp.Request{Path: "/fapi/v1/ticker/price", Query: url.Values{"symbol": {"ETH-USD"}}}, &prices))
	require.Len(t, prices, 1)
	assert.Equal(t, "ETH-USD", prices[0]["symbol"])

	require.NoError(t, c.Do(ctx, sdkhttp.Request{Path: "/fapi/v1/ticker/price"}, &prices))
	assert.Len(t, prices, len(s.symbols))

	var account map[string]any
	require.NoError(t, c.Do(ctx, sdkhttp.Request{Path: "/fapi/v3/account", Query: url.Values{"address": {"0xabc"}}}, &account))
	assert.Equal(t, "0xabc", account["address"])

	require.NoError(t, c.Do(ctx, sdkhttp.Request{Method: http.MethodPost, Path: "/tx/submit", Body: map[string]string{"body": "AAEC"}}, nil))
	assert.Equal(t, []string{"AAEC"}, s.Submitted())
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestWebSocketProtocol(t *testing.T) {
	s, srv := newTestServer(t)
	conn := dialWS(t, srv)

	status := readJSON(t, conn)
	assert.Equal(t, "status", status["e"])
	assert.Equal(t, "connected", status["status"])
	assert.NotEmpty(t, status["clientId"])
	assert.Eventually(t, func() bool { return s.Sessions() == 1 }, time.Second, 10*time.Millisecond)

	send := func(v string) { require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(v))) }

	send(`{"method":"subscribe","id":1,"params":["BTC-USD@aggTrade"]}`)
	ack := readJSON(t, conn)
	assert.Equal(t, "subscribe", ack["e"])
	assert.Equal(t, float64(1), ack["id"])
	assert.Equal(t, "success", ack["result"])
	trade := readJSON(t, conn)
	assert.Equal(t, "aggTrade", trade["e"])
	assert.Equal(t, "67250.5", trade["p"])
	assert.Equal(t, float64(fixedNow.UnixMilli()), trade["E"])

	send(`{"method":"subscribe","id":2,"params":["ETH-USD@kline_1m"]}`)
	assert.Equal(t, "subscribe", readJSON(t, conn)["e"])

	send(`{"method":"list_subscriptions","id":3}`)
	list := readJSON(t, conn)
	assert.Equal(t, []any{"BTC-USD@aggTrade", "ETH-USD@kline_1m"}, list["result"])

	send(`{"method":"unsubscribe","id":4,"params":["BTC-USD@aggTrade"]}`)
	assert.Equal(t, "unsubscribe", readJSON(t, conn)["e"])

	send(`{"method":"ping","id":5}`)
	pong := readJSON(t, conn)
	assert.Equal(t, "pong", pong["e"])
	assert.Equal(t, float64(5), pong["id"])

	send(`{"method":"subscribe","id":6,"params":["garbage"]}`)
	bad := readJSON(t, conn)
	assert.Equal(t, "error", bad["e"])

	send(`{"method":"order.place","id":7,"params":{"tx":"***"}}`)
	rejected := readJSON(t, conn)
	assert.Nil(t, rejected["e"])
	assert.Equal(t, float64(7), rejected["id"])
	assert.NotNil(t, rejected["error"])

	send(`{"method":"order.cancel","id":8,"params":{"tx":"AAEC"}}`)
	update := readJSON(t, conn)
	assert.Equal(t, "orderTradeUpdate", update["e"])
	assert.Equal(t, "CANCELED", update["o"].(map[string]any)["X"])
}
