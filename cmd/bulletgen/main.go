// Command bulletgen regenerates the typed trading API client. It fetches the
// live OpenAPI document, falls back to the cached copy, and fails only when
// neither is available.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bullet-xyz/bullet-go-sdk/internal/generator"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/logger"
	"github.com/bullet-xyz/bullet-go-sdk/pkg/specfetch"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bulletgen:", err)
		if errors.Is(err, specfetch.ErrSpecUnavailable) {
			fmt.Fprintln(os.Stderr, "bulletgen: set BULLET_API_ENDPOINT to a reachable API or restore the cached openapi.json")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bulletgen", flag.ContinueOnError)
	var (
		endpoint = fs.String("endpoint", specfetch.EndpointFromEnv(), "trading API base URL")
		cache    = fs.String("cache", "openapi.json", "cached OpenAPI document, refreshed on a successful fetch")
		outDir   = fs.String("out", ".", "output directory for the generated files")
		pkg      = fs.String("package", "api", "package name of the generated files")
		offline  = fs.Bool("offline", specfetch.OfflineFromEnv(), "skip the live fetch and use the cache")
		timeout  = fs.Duration("timeout", specfetch.DefaultTimeout, "live fetch timeout")
		level    = fs.String("log-level", "info", "log level")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{Level: *level}); err != nil {
		return errors.Wrap(err, "init logger")
	}
	log := logger.Component("bulletgen")

	ctx, cancel := context.WithTimeout(ctx, *timeout+5*time.Second)
	defer cancel()

	res, err := specfetch.Acquire(ctx, specfetch.Options{
		Endpoint:  *endpoint,
		CachePath: *cache,
		Offline:   *offline,
		Timeout:   *timeout,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	out, err := generator.Generate(res.Document, generator.Config{
		Package: *pkg,
		Source:  filepath.Base(*cache),
	})
	if err != nil {
		return errors.Wrap(err, "generate client")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	files := map[string][]byte{
		"types.gen.go":  out.Types,
		"client.gen.go": out.Client,
	}
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(*outDir, name), src, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}

	log.WithFields(logrus.Fields{
		"source":     res.Source,
		"version":    res.Document.Version(),
		"operations": len(out.OperationIDs),
		"out":        *outDir,
	}).Info("client generated")
	return nil
}
