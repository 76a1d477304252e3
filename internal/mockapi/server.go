// Package mockapi is an in-process stand-in for the Bullet trading API. It
// serves canned fixtures for every REST operation in the cached OpenAPI
// document and a small WebSocket endpoint speaking the streaming protocol.
package mockapi

import (
	"context"
	"embed"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/openapi"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/api"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/specfetch"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed fixtures/*.json
var fixtures embed.FS

// API error codes used by the mock, following the exchange's numbering.
const (
	CodeMandatoryParam = -1102
	CodeInvalidSymbol  = -1121
	CodeInvalidTx      = -1130
	CodeInvalidTopic   = -1004
	CodeTxRejected     = -2010
)

// Fixture returns the canned response body of an operation.
func Fixture(operationID string) ([]byte, error) {
	b, err := fixtures.ReadFile("fixtures/" + operationID + ".json")
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", operationID)
	}
	return b, nil
}

// Server holds the mock's state: submitted transactions and live WS sessions.
type Server struct {
	doc     *openapi.Document
	spec    []byte
	log     *logrus.Entry
	now     func() time.Time
	symbols map[string]string // symbol -> last price

	mu        sync.Mutex
	submitted []string
	sessions  int

	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithClock fixes the event time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *Server) { s.log = l }
}

// New builds a mock from the embedded OpenAPI document and fixtures.
func New(opts ...Option) (*Server, error) {
	doc, err := api.Spec()
	if err != nil {
		return nil, errors.Wrap(err, "parse embedded spec")
	}
	s := &Server{
		doc:  doc,
		spec: api.SpecJSON,
		log:  logger.Component("mockapi"),
		now:  time.Now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := Fixture("ticker_price")
	if err != nil {
		return nil, err
	}
	var prices []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(raw, &prices); err != nil {
		return nil, errors.Wrap(err, "decode ticker_price fixture")
	}
	s.symbols = make(map[string]string, len(prices))
	for _, p := range prices {
		s.symbols[p.Symbol] = p.Price
	}
	return s, nil
}

// Router returns the HTTP handler serving REST, the OpenAPI document and /ws.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(specfetch.DocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", s.spec)
	})
	r.GET("/ws", s.serveWS)

	handlers := map[string]gin.HandlerFunc{
		"order_book":      s.handleOrderBook,
		"ticker_price":    s.handleTickerPrice,
		"ticker_24hr":     s.handleTicker24hr,
		"recent_trades":   s.handleRecentTrades,
		"account_info":    s.handleAccountInfo,
		"account_balance": s.handleFixture("account_balance"),
		"submit_tx":       s.handleSubmitTx,
	}
	for _, op := range s.doc.Operations() {
		h, ok := handlers[op.ID]
		if !ok {
			h = s.handleFixture(op.ID)
		}
		r.Handle(op.Method, ginPath(op.Path), s.requireParams(op), h)
	}
	return r
}

// ListenAndServe serves the mock on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("mock trading api listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Submitted returns the base64 transaction bodies accepted so far.
func (s *Server) Submitted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.submitted...)
}

func ginPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			parts[i] = ":" + p[1:len(p)-1]
		}
	}
	return strings.Join(parts, "/")
}

func apiError(c *gin.Context, status int, code int64, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "msg": msg})
}

func (s *Server) requireParams(op openapi.OperationRef) gin.HandlerFunc {
	var required []string
	for _, p := range op.Params {
		if p.In == "query" && p.Required {
			required = append(required, p.Name)
		}
	}
	return func(c *gin.Context) {
		for _, name := range required {
			if strings.TrimSpace(c.Query(name)) == "" {
				apiError(c, http.StatusBadRequest, CodeMandatoryParam,
					"Mandatory parameter '"+name+"' was not sent, was empty/null, or malformed.")
				return
			}
		}
		c.Next()
	}
}

func (s *Server) handleFixture(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := Fixture(id)
		if err != nil {
			apiError(c, http.StatusInternalServerError, -1000, err.Error())
			return
		}
		c.Data(http.StatusOK, "application/json", b)
	}
}

func (s *Server) knownSymbol(c *gin.Context) (string, bool) {
	sym := c.Query("symbol")
	if _, ok := s.symbols[sym]; !ok {
		apiError(c, http.StatusBadRequest, CodeInvalidSymbol, "Invalid symbol.")
		return "", false
	}
	return sym, true
}

func (s *Server) limit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		apiError(c, http.StatusBadRequest, CodeMandatoryParam, "Illegal characters found in parameter 'limit'.")
		return 0, false
	}
	return n, true
}

func (s *Server) decodeFixture(c *gin.Context, id string, out any) bool {
	b, err := Fixture(id)
	if err == nil {
		err = json.Unmarshal(b, out)
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, -1000, err.Error())
		return false
	}
	return true
}

func (s *Server) writeJSON(c *gin.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		apiError(c, http.StatusInternalServerError, -1000, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}

func (s *Server) handleOrderBook(c *gin.Context) {
	if _, ok := s.knownSymbol(c); !ok {
		return
	}
	n, ok := s.limit(c, 0)
	if !ok {
		return
	}
	var book map[string]any
	if !s.decodeFixture(c, "order_book", &book) {
		return
	}
	if n > 0 {
		for _, side := range []string{"bids", "asks"} {
			if levels, ok := book[side].([]any); ok && len(levels) > n {
				book[side] = levels[:n]
			}
		}
	}
	s.writeJSON(c, book)
}

func (s *Server) handleTickerPrice(c *gin.Context) {
	var prices []map[string]any
	if !s.decodeFixture(c, "ticker_price", &prices) {
		return
	}
	sym := c.Query("symbol")
	if sym == "" {
		s.writeJSON(c, prices)
		return
	}
	for _, p := range prices {
		if p["symbol"] == sym {
			s.writeJSON(c, []map[string]any{p})
			return
		}
	}
	apiError(c, http.StatusBadRequest, CodeInvalidSymbol, "Invalid symbol.")
}

func (s *Server) handleTicker24hr(c *gin.Context) {
	sym, ok := s.knownSymbol(c)
	if !ok {
		return
	}
	var tickers []map[string]any
	if !s.decodeFixture(c, "ticker_24hr", &tickers) {
		return
	}
	for _, t := range tickers {
		if t["symbol"] == sym {
			s.writeJSON(c, t)
			return
		}
	}
	apiError(c, http.StatusBadRequest, CodeInvalidSymbol, "Invalid symbol.")
}

func (s *Server) handleRecentTrades(c *gin.Context) {
	if _, ok := s.knownSymbol(c); !ok {
		return
	}
	n, ok := s.limit(c, 0)
	if !ok {
		return
	}
	var trades []map[string]any
	if !s.decodeFixture(c, "recent_trades", &trades) {
		return
	}
	if n > 0 && len(trades) > n {
		trades = trades[len(trades)-n:]
	}
	s.writeJSON(c, trades)
}

func (s *Server) handleAccountInfo(c *gin.Context) {
	var account map[string]any
	if !s.decodeFixture(c, "account_info", &account) {
		return
	}
	account["address"] = c.Query("address")
	s.writeJSON(c, account)
}

func (s *Server) handleSubmitTx(c *gin.Context) {
	var req struct {
		Body string `json:"body"`
	}
	raw, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(raw, &req)
	}
	if err != nil || req.Body == "" {
		apiError(c, http.StatusBadRequest, CodeInvalidTx, "Invalid transaction body.")
		return
	}
	if _, err := base64.StdEncoding.DecodeString(req.Body); err != nil {
		apiError(c, http.StatusBadRequest, CodeInvalidTx, "Transaction body is not valid base64.")
		return
	}

	s.mu.Lock()
	s.submitted = append(s.submitted, req.Body)
	s.mu.Unlock()
	s.log.WithField("bytes", len(req.Body)).Debug("transaction accepted")

	s.handleFixture("submit_tx")(c)
}
