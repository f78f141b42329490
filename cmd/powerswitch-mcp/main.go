// Command powerswitch-mcp exposes a Digital Loggers Power Switch Pro device
// to MCP clients. By default it serves the stdio transport for its process
// lifetime; with -http it serves the streamable-HTTP transport instead.
//
// Device credentials come from the environment (POWER_SWITCH_HOST,
// POWER_SWITCH_USERNAME, POWER_SWITCH_PASSWORD, POWER_SWITCH_USE_HTTPS),
// optionally via a .env file. Missing credentials abort before serving.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pdu-tools/powerswitch-mcp/pkg/tools/mcpserver"
	"github.com/pdu-tools/powerswitch-mcp/pkg/tools/powertools"
	"github.com/rs/zerolog"
)

const (
	serverName    = "power-switch-pro"
	serverVersion = "1.0.0"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: powerswitch-mcp [flags]\n\nServe Power Switch Pro MCP tools over stdio (default) or HTTP.\n\nFlags:\n")
		flag.PrintDefaults()
	}

	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	configPath := flag.String("config", "", "path to optional YAML configuration file")
	useHTTP := flag.Bool("http", false, "serve the streamable-HTTP transport instead of stdio")
	addr := flag.String("addr", "", "HTTP bind address (default from PORT env or :5000)")
	noAutoPing := flag.Bool("no-autoping", false, "exclude the AutoPing watchdog tools from the catalog")
	flag.Parse()

	if err := run(*envFile, *configPath, *useHTTP, *addr, *noAutoPing); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile, configPath string, useHTTP bool, addrFlag string, noAutoPing bool) error {
	if err := loadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// stdout carries the stdio transport, so all logging goes to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", serverName).Logger()

	client, host, err := cfg.deviceClient()
	if err != nil {
		return err
	}
	logger.Info().Str("host", host).Msg("device client ready")

	opts := powertools.DefaultOptions
	if noAutoPing || !cfg.autoPingEnabled() {
		opts.AutoPing = false
		logger.Info().Msg("autoping tools excluded from catalog")
	}

	srv := mcpserver.New(serverName, serverVersion)
	srv.Register(powertools.All(powertools.NewDevice(client), opts).Tools()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useHTTP {
		bind := cfg.httpAddr(addrFlag)
		logger.Info().Str("addr", bind).Msg("serving MCP over HTTP")
		err = srv.ListenAndServe(ctx, bind)
	} else {
		logger.Info().Msg("serving MCP over stdio")
		err = srv.Serve(ctx, os.Stdin, os.Stdout)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
