package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bullet-xyz/bullet-go-sdk/internal/mockapi"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/sdk/api"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/specfetch"
)

type infoOutput struct {
	RestURL    string `json:"restUrl"`
	WSURL      string `json:"wsUrl"`
	Health     string `json:"health"`
	ServerTime int64  `json:"serverTime"`
	ChainID    uint64 `json:"chainId"`
	ChainHash  string `json:"chainHash"`
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show health, server time and chain identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			health, err := c.Health(ctx)
			if err != nil {
				return err
			}
			st, err := c.Time(ctx)
			if err != nil {
				return err
			}
			chain, err := c.ChainInfo(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), infoOutput{
				RestURL:    c.URL(),
				WSURL:      c.WSURL(),
				Health:     health.Status,
				ServerTime: st.ServerTime,
				ChainID:    chain.ID,
				ChainHash:  chain.HashHex(),
			})
		},
	}
}

func (a *app) exchangeInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange-info",
		Short: "List assets and symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			info, err := c.ExchangeInfo(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}

func (a *app) tickerCmd() *cobra.Command {
	var day bool
	cmd := &cobra.Command{
		Use:   "ticker [symbol]",
		Short: "Show last prices, or 24h statistics with --24h",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if day {
				if len(args) == 0 {
					return errors.New("--24h needs a symbol")
				}
				t, err := c.Ticker24hr(cmd.Context(), api.Ticker24hrParams{Symbol: args[0]})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), t)
			}
			params := &api.TickerPriceParams{}
			if len(args) == 1 {
				params.Symbol = &args[0]
			}
			prices, err := c.TickerPrice(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), prices)
		},
	}
	cmd.Flags().BoolVar(&day, "24h", false, "rolling 24 hour statistics")
	return cmd
}

func limitPtr(cmd *cobra.Command, limit int32) *int32 {
	if !cmd.Flags().Changed("limit") {
		return nil
	}
	return &limit
}

func (a *app) bookCmd() *cobra.Command {
	var limit int32
	cmd := &cobra.Command{
		Use:   "book <symbol>",
		Short: "Show the order book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			book, err := c.OrderBook(cmd.Context(), api.OrderBookParams{Symbol: args[0], Limit: limitPtr(cmd, limit)})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), book)
		},
	}
	cmd.Flags().Int32Var(&limit, "limit", 10, "levels per side")
	return cmd
}

func (a *app) tradesCmd() *cobra.Command {
	var limit int32
	cmd := &cobra.Command{
		Use:   "trades <symbol>",
		Short: "Show recent trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			trades, err := c.RecentTrades(cmd.Context(), api.RecentTradesParams{Symbol: args[0], Limit: limitPtr(cmd, limit)})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), trades)
		},
	}
	cmd.Flags().Int32Var(&limit, "limit", 50, "maximum number of trades")
	return cmd
}

func (a *app) accountCmd() *cobra.Command {
	var balances bool
	cmd := &cobra.Command{
		Use:   "account <address>",
		Short: "Show an account's positions, or its balances with --balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if balances {
				b, err := c.AccountBalance(cmd.Context(), api.AccountBalanceParams{Address: args[0]})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), b)
			}
			info, err := c.AccountInfo(cmd.Context(), api.AccountInfoParams{Address: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&balances, "balances", false, "show balances instead of positions")
	return cmd
}

func (a *app) specCmd() *cobra.Command {
	spec := &cobra.Command{
		Use:   "spec",
		Short: "OpenAPI document maintenance",
	}

	var (
		cachePath string
		offline   bool
	)
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the live OpenAPI document, falling back to the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			endpoint, err := a.cfg.ResolvedEndpoint()
			if err != nil {
				return err
			}
			res, err := specfetch.Acquire(cmd.Context(), specfetch.Options{
				Endpoint:  endpoint,
				CachePath: cachePath,
				Offline:   offline,
				Logger:    logger.Component("spec"),
			})
			if err != nil {
				return err
			}
			if res.FetchErr != nil {
				logger.Component("spec").WithError(res.FetchErr).Warn("using cached document")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "source=%s version=%s operations=%d url=%s\n",
				res.Source, res.Document.Version(), len(res.Document.Operations()), res.URL)
			return err
		},
	}
	fetch.Flags().StringVar(&cachePath, "cache", "pkg/sdk/api/openapi.json", "cached document, refreshed on success")
	fetch.Flags().BoolVar(&offline, "offline", specfetch.OfflineFromEnv(), "skip the live fetch")

	spec.AddCommand(fetch)
	return spec
}

func (a *app) mockCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the mock trading API (REST and WebSocket) locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.Component("mock")
			srv, err := mockapi.New(mockapi.WithLogger(log))
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"rest": "http://" + addr, "ws": "ws://" + addr + "/ws"}).Info("starting mock api")
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}
