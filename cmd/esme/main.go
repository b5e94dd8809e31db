// Command esme runs a single long-lived SMPP v3.4 ESME session against
// one configured SMSC: it loads configuration from the environment,
// wires the broker, correlator persistence and session client, and
// serves a small status/metrics HTTP surface until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sagostin/go-esme/internal/broker"
	"github.com/sagostin/go-esme/internal/codec"
	"github.com/sagostin/go-esme/internal/config"
	"github.com/sagostin/go-esme/internal/correlator"
	"github.com/sagostin/go-esme/internal/correlator/store"
	"github.com/sagostin/go-esme/internal/logging"
	"github.com/sagostin/go-esme/internal/metrics"
	"github.com/sagostin/go-esme/internal/session"
	"github.com/sagostin/go-esme/internal/statusapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Errorf("main", err, "loading configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deliveries, assembly, err := buildStores(ctx, cfg)
	if err != nil {
		logging.Errorf("main", err, "opening correlation stores")
		os.Exit(1)
	}

	hk := metrics.HookCounter{Next: correlator.NoOpHook{}}
	corr := correlator.New(correlator.Config{
		RequestTTL:  cfg.MaxTTLResponse,
		DeliveryTTL: cfg.MaxTTLDelivery,
	}, deliveries, assembly, hk)

	b, closeBroker := buildBroker(cfg)
	if closeBroker != nil {
		defer closeBroker()
	}

	registry := codec.NewRegistry(nil)

	sessionCfg := cfg.SessionConfig()
	sessionCfg.OnPDUSent = metrics.OnPDUSent
	sessionCfg.OnPDUReceived = metrics.OnPDUReceived

	clientCfg := cfg.ClientConfig()
	clientCfg.Session = sessionCfg
	clientCfg.OnThrottled = metrics.OnThrottled

	client := session.NewClient(clientCfg, corr, hk, b, registry)
	prometheus.MustRegister(metrics.NewCollector(client, corr))

	app := statusapi.New(clientCfg.ClientID, client, corr)
	go func() {
		if err := app.Listen(cfg.StatusAddr); err != nil {
			logging.Errorf("main", err, "status API stopped")
		}
	}()

	logging.Infof("main", "esme %s dialing %s:%d as %s", clientCfg.ClientID, cfg.SMSCHost, cfg.SMSCPort, cfg.BindMode)
	if err := client.Run(ctx); err != nil {
		logging.Errorf("main", err, "client run exited")
		os.Exit(1)
	}
}

// buildStores opens the configured backends for the correlator's durable
// tables, falling back to the file-per-table layout unless both a
// Postgres DSN and a Mongo URI are configured.
func buildStores(ctx context.Context, cfg config.Config) (store.DeliveryStore, store.SegmentStore, error) {
	if cfg.PostgresDSN != "" && cfg.MongoURI != "" {
		deliveries, err := store.NewPostgresDeliveryStore(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		assembly, err := store.NewMongoSegmentStore(ctx, cfg.MongoURI, "esme")
		if err != nil {
			return nil, nil, err
		}
		return deliveries, assembly, nil
	}

	fs, err := store.NewFileStore(".")
	if err != nil {
		return nil, nil, err
	}
	return fs, fs.Segments(), nil
}

// buildBroker selects the AMQP-backed broker when configured, otherwise
// an in-memory queue suitable for single-process embedding and tests.
func buildBroker(cfg config.Config) (session.Broker, func()) {
	if cfg.AMQPAddr != "" {
		b := broker.NewAMQP(cfg.AMQPAddr, cfg.AMQPQueueName)
		return b, func() { _ = b.Close() }
	}
	return broker.NewSimple(256), nil
}
