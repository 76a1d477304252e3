// Command bullet is a command line client for the Bullet trading API: market
// data queries, account lookups, a live market watcher, spec maintenance and
// a local mock server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bullet-xyz/bullet-go-sdk/pkg/bullet"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/config"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "bullet:", err)
		stop()
		os.Exit(1)
	}
}

// app holds the state shared by subcommands.
type app struct {
	configPath string
	network    string
	endpoint   string
	logLevel   string

	cfg    *config.Config
	client *bullet.TradingAPI
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bullet",
		Short:         "Bullet trading API client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (.yaml, .yml or .json)")
	pf.StringVar(&a.network, "network", "", "network: mainnet, staging or testnet")
	pf.StringVar(&a.endpoint, "endpoint", "", "API base URL, overrides --network")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.infoCmd(),
		a.exchangeInfoCmd(),
		a.tickerCmd(),
		a.bookCmd(),
		a.tradesCmd(),
		a.accountCmd(),
		a.watchCmd(),
		a.specCmd(),
		a.mockCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("network") {
		cfg.Network = bullet.Network(a.network)
		cfg.Endpoint = ""
	}
	if a.endpoint != "" {
		cfg.Endpoint = a.endpoint
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return errors.Wrap(err, "init logger")
	}
	a.cfg = cfg
	return nil
}

func (a *app) api() (*bullet.TradingAPI, error) {
	if a.client != nil {
		return a.client, nil
	}
	c, err := a.cfg.NewClient(bullet.WithLogger(logger.Component("cli")))
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
