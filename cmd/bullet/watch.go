package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/orderbook"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/websocket"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	bidStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	askStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

func (a *app) watchCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "watch <symbol>...",
		Short: "Live best bid/ask, last trade and book depth",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), args, websocket.OrderbookDepth(depth))
		},
	}
	cmd.Flags().IntVar(&depth, "depth", int(websocket.Depth5), "book levels per side (5, 10 or 20)")
	return cmd
}

func watchTopics(symbols []string, depth websocket.OrderbookDepth) []websocket.Topic {
	topics := make([]websocket.Topic, 0, 3*len(symbols))
	for _, s := range symbols {
		topics = append(topics, websocket.BookTicker(s), websocket.AggTrade(s), websocket.Depth(s, depth))
	}
	return topics
}

func (a *app) runWatch(ctx context.Context, symbols []string, depth websocket.OrderbookDepth) error {
	c, err := a.api()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h, err := c.ConnectWSWithConfig(ctx, a.cfg.WSConfig())
	if err != nil {
		return errors.Wrap(err, "connect websocket")
	}
	defer h.Close()
	if err := h.Subscribe(watchTopics(symbols, depth), websocket.ID(1)); err != nil {
		return err
	}

	// the TUI owns the terminal
	if a.cfg.LogFile == "" {
		logger.SetOutput(io.Discard)
	}

	p := tea.NewProgram(newWatchModel(symbols, int(depth), c.WSURL()), tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		for msg, err := range h.Stream(ctx) {
			if err != nil {
				p.Send(streamErrMsg{err: err})
				return
			}
			p.Send(streamMsg(msg))
		}
	}()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type streamMsg websocket.ServerMessage

type streamErrMsg struct{ err error }

type tickMsg time.Time

type quote struct {
	bid, bidQty decimal.Decimal
	ask, askQty decimal.Decimal
	last        decimal.Decimal
	lastQty     decimal.Decimal
	buyerMaker  bool
	updated     time.Time
}

type watchModel struct {
	url     string
	symbols []string
	depth   int
	quotes  map[string]*quote
	books   map[string]*orderbook.Book

	subscribed bool
	status     string
	err        error
	now        func() time.Time
}

func newWatchModel(symbols []string, depth int, url string) watchModel {
	m := watchModel{
		url:     url,
		symbols: symbols,
		depth:   depth,
		quotes:  make(map[string]*quote, len(symbols)),
		books:   make(map[string]*orderbook.Book, len(symbols)),
		status:  "subscribing...",
		now:     time.Now,
	}
	for _, s := range symbols {
		m.quotes[s] = &quote{}
		m.books[s] = orderbook.New(s)
	}
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tick()
	case streamErrMsg:
		m.err = msg.err
	case streamMsg:
		m.apply(websocket.ServerMessage(msg))
	}
	return m, nil
}

func (m *watchModel) apply(msg websocket.ServerMessage) {
	switch msg.Kind {
	case websocket.KindSubscribe:
		m.subscribed = true
		m.status = "live"
	case websocket.KindBookTicker:
		if q, ok := m.quotes[msg.BookTicker.Symbol]; ok {
			bt := msg.BookTicker
			q.bid, q.bidQty, q.ask, q.askQty = bt.BestBidPrice, bt.BestBidQty, bt.BestAskPrice, bt.BestAskQty
			q.updated = m.now()
		}
	case websocket.KindAggTrade:
		if q, ok := m.quotes[msg.AggTrade.Symbol]; ok {
			q.last, q.lastQty, q.buyerMaker = msg.AggTrade.Price, msg.AggTrade.Quantity, msg.AggTrade.IsBuyerMaker
			q.updated = m.now()
		}
	case websocket.KindDepthUpdate:
		if b, ok := m.books[msg.DepthUpdate.Symbol]; ok {
			if err := b.Apply(msg.DepthUpdate); errors.Is(err, orderbook.ErrSequenceGap) {
				b.Reset()
				m.status = "book gap on " + b.Symbol + ", waiting for snapshot"
			}
		}
	case websocket.KindError, websocket.KindUntaggedError:
		m.status = fmt.Sprintf("server error %d: %s", msg.Error.Error.Code, msg.Error.Error.Msg)
	}
}

func fmtDec(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

func (m watchModel) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("bullet watch") + " " + dimStyle.Render(m.url) + "\n\n")

	for _, s := range m.symbols {
		q := m.quotes[s]
		var body strings.Builder
		body.WriteString(titleStyle.Render(s) + "\n")
		body.WriteString(fmt.Sprintf("bid %s  %s   ask %s  %s\n",
			bidStyle.Render(fmtDec(q.bid)), dimStyle.Render(fmtDec(q.bidQty)),
			askStyle.Render(fmtDec(q.ask)), dimStyle.Render(fmtDec(q.askQty))))
		lastStyle := bidStyle
		if q.buyerMaker {
			lastStyle = askStyle
		}
		body.WriteString(fmt.Sprintf("last %s  %s\n", lastStyle.Render(fmtDec(q.last)), dimStyle.Render(fmtDec(q.lastQty))))

		bids, asks := m.books[s].Top(m.depth)
		for i := len(asks) - 1; i >= 0; i-- {
			body.WriteString(askStyle.Render(fmt.Sprintf("  %14s %12s", asks[i].Price(), asks[i].Quantity())) + "\n")
		}
		for _, l := range bids {
			body.WriteString(bidStyle.Render(fmt.Sprintf("  %14s %12s", l.Price(), l.Quantity())) + "\n")
		}
		if !q.updated.IsZero() {
			body.WriteString(dimStyle.Render(fmt.Sprintf("updated %s ago", m.now().Sub(q.updated).Round(time.Second))))
		}
		sb.WriteString(borderStyle.Render(body.String()) + "\n")
	}

	if m.err != nil {
		sb.WriteString(askStyle.Render("stream ended: "+m.err.Error()) + "\n")
	} else {
		sb.WriteString(dimStyle.Render(m.status) + "\n")
	}
	sb.WriteString(dimStyle.Render("q to quit"))
	return sb.String()
}
