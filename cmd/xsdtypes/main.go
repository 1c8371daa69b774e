// Command xsdtypes loads XML schemas into a type registry and answers
// questions about the types they declare.
//
// Usage:
//
//	xsdtypes load [--elements] schema.xsd ...
//	xsdtypes query --type num:price [--numeric] [--atomic] [--derives xs:decimal] schema.xsd ...
//	xsdtypes snapshot --out registry.json schema.xsd ...
//	xsdtypes watch schema.xsd ...
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/CognitoIQ/xsdtypes/internal/config"
)

type CLI struct {
	Config   string `help:"Configuration file." type:"path" env:"XSDTYPES_CONFIG"`
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error). Overrides the configuration."`

	Load     loadCmd     `cmd:"" help:"Ingest schemas and report what they declare."`
	Query    queryCmd    `cmd:"" help:"Answer derivation questions about a type."`
	Snapshot snapshotCmd `cmd:"" help:"Write the registry built from schemas as JSON."`
	Watch    watchCmd    `cmd:"" help:"Rebuild the cached snapshot whenever a schema changes."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "xsdtypes:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("xsdtypes"),
		kong.Description("Load XML schemas and query the types they declare."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	log, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	return kctx.Run(&app{ctx: ctx, cfg: cfg, log: log, out: stdout})
}

func newLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
