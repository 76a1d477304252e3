package mockapi

import (
	"encoding/base64"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

type clientMessage struct {
	Method string              `json:"method"`
	ID     *uint64             `json:"id,omitempty"`
	Params jsoniter.RawMessage `json:"params,omitempty"`
}

type orderParams struct {
	Tx string `json:"tx"`
}

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
	subs map[string]struct{}
}

func (ss *session) write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.conn.WriteMessage(websocket.TextMessage, b)
}

// Sessions reports the number of open WebSocket sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("upgrade ws failed")
		return
	}
	ss := &session{conn: conn, subs: map[string]struct{}{}}

	s.mu.Lock()
	s.sessions++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sessions--
		s.mu.Unlock()
		_ = conn.Close()
	}()

	conn.SetReadLimit(1 << 20)
	if err := ss.write(map[string]any{
		"e":        "status",
		"E":        s.eventTime(),
		"status":   "connected",
		"clientId": uuid.NewString(),
	}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = ss.write(s.taggedError(nil, CodeInvalidTopic, "Invalid JSON"))
			continue
		}
		if err := s.dispatch(ss, msg); err != nil {
			s.log.WithError(err).Debug("ws write failed")
			return
		}
	}
}

func (s *Server) eventTime() int64 {
	return s.now().UnixMilli()
}

func (s *Server) taggedError(id *uint64, code int64, msg string) map[string]any {
	out := map[string]any{"e": "error", "E": s.eventTime(), "error": map[string]any{"code": code, "msg": msg}}
	if id != nil {
		out["id"] = *id
	}
	return out
}

func (s *Server) result(event string, id *uint64, result any) map[string]any {
	out := map[string]any{"e": event, "E": s.eventTime(), "result": result}
	if id != nil {
		out["id"] = *id
	}
	return out
}

func (s *Server) dispatch(ss *session, msg clientMessage) error {
	switch msg.Method {
	case "subscribe", "unsubscribe":
		var topics []string
		if err := json.Unmarshal(msg.Params, &topics); err != nil || len(topics) == 0 {
			return ss.write(s.taggedError(msg.ID, CodeInvalidTopic, "Invalid subscription format"))
		}
		for _, t := range topics {
			if !strings.Contains(t, "@") {
				return ss.write(s.taggedError(msg.ID, CodeInvalidTopic, "Invalid subscription format"))
			}
		}
		ss.mu.Lock()
		for _, t := range topics {
			if msg.Method == "subscribe" {
				ss.subs[t] = struct{}{}
			} else {
				delete(ss.subs, t)
			}
		}
		ss.mu.Unlock()
		if err := ss.write(s.result(msg.Method, msg.ID, "success")); err != nil {
			return err
		}
		if msg.Method == "subscribe" {
			for _, t := range topics {
				if ev := s.sampleEvent(t); ev != nil {
					if err := ss.write(ev); err != nil {
						return err
					}
				}
			}
		}
		return nil

	case "list_subscriptions":
		ss.mu.Lock()
		topics := make([]string, 0, len(ss.subs))
		for t := range ss.subs {
			topics = append(topics, t)
		}
		ss.mu.Unlock()
		sort.Strings(topics)
		return ss.write(s.result("list_subscriptions", msg.ID, topics))

	case "ping":
		out := map[string]any{"e": "pong", "E": s.eventTime()}
		if msg.ID != nil {
			out["id"] = *msg.ID
		}
		return ss.write(out)

	case "order.place", "order.cancel":
		var p orderParams
		_ = json.Unmarshal(msg.Params, &p)
		if _, err := base64.StdEncoding.DecodeString(p.Tx); err != nil || p.Tx == "" {
			out := map[string]any{"E": s.eventTime(), "error": map[string]any{
				"code": CodeTxRejected, "msg": "Transaction execution unsuccessful",
			}}
			if msg.ID != nil {
				out["id"] = *msg.ID
			}
			return ss.write(out)
		}
		status := "NEW"
		if msg.Method == "order.cancel" {
			status = "CANCELED"
		}
		s.mu.Lock()
		s.submitted = append(s.submitted, p.Tx)
		s.mu.Unlock()
		now := s.eventTime()
		return ss.write(map[string]any{
			"e": "orderTradeUpdate",
			"E": now,
			"o": map[string]any{
				"s": "BTC-USD", "i": now, "X": status, "x": status, "T": now,
				"S": "BUY", "o": "LIMIT", "f": "GTC", "p": s.symbols["BTC-USD"], "q": "0.01",
			},
		})
	}
	return ss.write(s.taggedError(msg.ID, CodeInvalidTopic, "Unknown method"))
}

// sampleEvent returns one market data event for a topic, or nil when the mock
// has nothing to stream for it.
func (s *Server) sampleEvent(topic string) map[string]any {
	sym, stream, _ := strings.Cut(topic, "@")
	price, ok := s.symbols[sym]
	if !ok {
		return nil
	}
	now := s.eventTime()
	switch {
	case stream == "aggTrade":
		return map[string]any{
			"e": "aggTrade", "E": now, "s": sym, "a": 1, "p": price, "q": "0.5",
			"f": 1, "l": 1, "T": now, "m": false,
		}
	case strings.HasPrefix(stream, "depth"):
		return map[string]any{
			"e": "depthUpdate", "E": now, "T": now, "s": sym, "U": 1, "u": 2, "pu": 0,
			"b": [][]string{{price, "1"}}, "a": [][]string{{price, "2"}}, "mt": "s",
		}
	case stream == "bookTicker":
		return map[string]any{
			"e": "bookTicker", "u": 1, "E": now, "T": now, "s": sym,
			"b": price, "B": "1", "a": price, "A": "2", "mt": "u",
		}
	case stream == "markPrice":
		return map[string]any{
			"e": "markPriceUpdate", "E": now, "s": sym, "p": price, "i": price, "r": "0.0001",
		}
	}
	return nil
}
