package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
	"github.com/Sathishruw/mcp-filesystem-client/internal/cli"
	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
	"github.com/Sathishruw/mcp-filesystem-client/tracing"
)

// serverOptions resolves the target server from --server or --server-name
// plus the definitions file. With neither flag set it falls back to the
// bundled mcp-fileserver, confined to the current directory.
func serverOptions(ctx context.Context) ([]mcpclient.Option, error) {
	if cmdline := viper.GetString("server"); cmdline != "" {
		fields := strings.Fields(cmdline)
		if len(fields) == 0 {
			return nil, fmt.Errorf("--server is empty")
		}

		return []mcpclient.Option{
			mcpclient.WithCommand(fields[0], fields[1:]...),
		}, nil
	}

	if name := viper.GetString("server-name"); name != "" {
		path := viper.GetString("config")
		if path == "" {
			var err error
			if path, err = config.DefaultServersPath(); err != nil {
				return nil, err
			}
		}

		defs, err := config.LoadServers(path)
		if err != nil {
			return nil, err
		}

		def, ok := config.FindServer(defs, name)
		if !ok {
			return nil, fmt.Errorf("server %q not found in %s", name, path)
		}

		opts := []mcpclient.Option{
			mcpclient.WithCommand(def.Command, def.Args...),
		}
		if len(def.Env) > 0 {
			opts = append(opts, mcpclient.WithEnv(def.Env))
		}

		return opts, nil
	}

	discoverer := cli.NewDiscoverer(&cli.Config{
		WantVersion: mcpclient.Version,
		Logger:      newLogger(viper.GetString("log-level")),
	})

	path, err := discoverer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("no server specified (use --server or --server-name): %w", err)
	}

	return []mcpclient.Option{
		mcpclient.WithCommand(path, "--base-dir", "."),
	}, nil
}

// commonOptions assembles the logging, timeout, and tracing options every
// command shares. The returned cleanup flushes the trace provider and must
// run after the session is closed.
func commonOptions() ([]mcpclient.Option, func(), error) {
	opts := []mcpclient.Option{
		mcpclient.WithLogger(newLogger(viper.GetString("log-level"))),
	}
	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		opts = append(opts, mcpclient.WithCallTimeout(timeout))
	}

	cleanup := func() {}

	if mode := viper.GetString("trace"); mode != "" && mode != "off" {
		cfg := tracing.DefaultConfig()
		cfg.Enabled = true
		cfg.Exporter = mode
		cfg.FilePath = viper.GetString("trace-file")

		provider, err := tracing.NewProvider(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("configure tracing: %w", err)
		}

		opts = append(opts, mcpclient.WithTracer(provider.Tracer()))
		cleanup = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = provider.Shutdown(ctx)
		}
	}

	return opts, cleanup, nil
}

// connect starts an initialized session against the configured server. The
// returned closer shuts the session down and flushes traces.
func connect(ctx context.Context) (mcpclient.Client, func(), error) {
	serverOpts, err := serverOptions(ctx)
	if err != nil {
		return nil, nil, err
	}

	common, cleanup, err := commonOptions()
	if err != nil {
		return nil, nil, err
	}

	client := mcpclient.NewClient()

	if err := client.Start(ctx, append(common, serverOpts...)...); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("start server: %w", err)
	}

	if err := client.Initialize(ctx); err != nil {
		_ = client.Close()
		cleanup()
		return nil, nil, fmt.Errorf("initialize session: %w", err)
	}

	closer := func() {
		_ = client.Close()
		cleanup()
	}

	return client, closer, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level

	switch level {
	case "off":
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
