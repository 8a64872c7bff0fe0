// Command kafka-broker runs the broker: it loads cluster metadata
// once at startup, then serves ApiVersions, DescribeTopicPartitions,
// and Fetch over a plain TCP listener until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/codecrafters-io/kafka-broker-go/internal/broker"
	"github.com/codecrafters-io/kafka-broker-go/internal/brokerlog"
	"github.com/codecrafters-io/kafka-broker-go/internal/config"
	"github.com/codecrafters-io/kafka-broker-go/internal/metadata"
)

func main() {
	app := &cli.App{
		Name:  "kafka-broker",
		Usage: "serve a read-only subset of the Kafka wire protocol",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a TOML config file"},
			&cli.StringFlag{Name: "listen-addr", Usage: "override the listen address"},
			&cli.StringFlag{Name: "metadata-log", Usage: "override the cluster metadata log path"},
			&cli.StringFlag{Name: "log-level", Usage: "override the log level (debug, info, warn, error)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadFile(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("listen-addr"); v != "" {
		cfg.ListenAddr = v
	}
	if v := c.String("metadata-log"); v != "" {
		cfg.MetadataLog = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	log, err := brokerlog.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	snap, err := metadata.LoadWithRetry(cfg.MetadataLog, log)
	if err != nil {
		log.Error("failed to load cluster metadata", zap.Error(err))
		return cli.Exit(err.Error(), 1)
	}
	log.Info("cluster metadata loaded",
		zap.Int("topics", len(snap.Topics())),
		zap.Int("partitions", len(snap.Partitions())),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := broker.New(cfg, snap, log)
	if err := b.Serve(ctx); err != nil {
		log.Error("server exited with error", zap.Error(err))
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
