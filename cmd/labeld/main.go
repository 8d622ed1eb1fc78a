package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	_ "go.uber.org/automaxprocs"
	_ "net/http/pprof"

	"github.com/bluesky-social/labeld/auth"
	"github.com/bluesky-social/labeld/crypto"
	"github.com/bluesky-social/labeld/service"
	"github.com/bluesky-social/labeld/store"
	"github.com/bluesky-social/labeld/stream/eventmgr"
	"github.com/bluesky-social/labeld/util/cliutil"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
	"gorm.io/plugin/opentelemetry/tracing"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting process", "err", err.Error())
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "labeld",
		Usage:   "atproto moderation label service daemon",
		Version: versioninfo.Short(),
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"LABELD_LOG_LEVEL", "GO_LOG_LEVEL", "LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "log format (text or json)",
			Value:   "json",
			EnvVars: []string{"LABELD_LOG_FORMAT"},
		},
	}
	app.Commands = []*cli.Command{
		&cli.Command{
			Name:   "serve",
			Usage:  "run the labeld daemon",
			Action: runServe,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "db-url",
					Usage:   "database connection string for the label log",
					Value:   "sqlite://data/labeld/labeld.sqlite",
					EnvVars: []string{"DATABASE_URL"},
				},
				&cli.IntFlag{
					Name:    "max-db-conn",
					Usage:   "limit on size of database connection pool",
					EnvVars: []string{"MAX_DB_CONNECTIONS"},
					Value:   40,
				},
				&cli.StringFlag{
					Name:    "bind",
					Usage:   "IP or address, and port, to listen on for HTTP APIs (including the label stream)",
					Value:   ":2210",
					EnvVars: []string{"LABELD_API_BIND"},
				},
				&cli.StringFlag{
					Name:    "metrics-listen",
					Usage:   "IP or address, and port, to listen on for prometheus metrics",
					Value:   ":2211",
					EnvVars: []string{"LABELD_METRICS_LISTEN"},
				},
				&cli.StringFlag{
					Name:     "issuer-did",
					Usage:    "DID this service issues and signs labels as",
					Required: true,
					EnvVars:  []string{"LABELD_ISSUER_DID"},
				},
				&cli.StringFlag{
					Name:    "signing-key-path",
					Usage:   "path to hex-encoded K-256 signing key; created if missing",
					Value:   "data/labeld/signing.key",
					EnvVars: []string{"LABELD_SIGNING_KEY_PATH"},
				},
				&cli.StringFlag{
					Name:    "admin-password",
					Usage:   "secret password for accessing admin endpoints (random is used if not set)",
					EnvVars: []string{"LABELD_ADMIN_PASSWORD"},
				},
				&cli.Int64Flag{
					Name:    "write-per-second-limit",
					Usage:   "max emitEvent requests per issuer per second",
					Value:   50,
					EnvVars: []string{"LABELD_WRITE_PER_SECOND_LIMIT"},
				},
				&cli.Int64Flag{
					Name:    "write-per-hour-limit",
					Usage:   "max emitEvent requests per issuer per hour",
					Value:   5000,
					EnvVars: []string{"LABELD_WRITE_PER_HOUR_LIMIT"},
				},
				&cli.Int64Flag{
					Name:    "write-per-day-limit",
					Usage:   "max emitEvent requests per issuer per day",
					Value:   50000,
					EnvVars: []string{"LABELD_WRITE_PER_DAY_LIMIT"},
				},
				&cli.StringFlag{
					Name:    "env",
					Value:   "dev",
					EnvVars: []string{"ENVIRONMENT"},
					Usage:   "declared hosting environment (prod, qa, etc); used in metrics",
				},
				&cli.BoolFlag{
					Name: "enable-db-tracing",
				},
				&cli.BoolFlag{
					Name: "enable-otel-tracing",
				},
				&cli.StringFlag{
					Name:    "otel-exporter-otlp-endpoint",
					Value:   "http://localhost:4318",
					EnvVars: []string{"OTEL_EXPORTER_OTLP_ENDPOINT"},
				},
			},
		},
	}
	return app.Run(args)
}

func runServe(cctx *cli.Context) error {
	logger, err := cliutil.SetupSlog(cliutil.LogOptions{
		LogLevel:  cctx.String("log-level"),
		LogFormat: cctx.String("log-format"),
	})
	if err != nil {
		return err
	}

	// Trap SIGINT to trigger a shutdown.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	issuerDID := cctx.String("issuer-did")
	if !strings.HasPrefix(issuerDID, "did:") {
		return fmt.Errorf("issuer-did must be a DID")
	}

	// start observability/tracing (OTEL)
	shutdownOTEL, err := setupOTEL(cctx)
	if err != nil {
		return err
	}
	defer shutdownOTEL()

	dburl := cctx.String("db-url")
	maxConn := cctx.Int("max-db-conn")
	logger.Info("configuring database", "url", dburl, "maxConn", maxConn)
	db, err := cliutil.SetupDatabase(dburl, maxConn)
	if err != nil {
		return err
	}
	if cctx.Bool("enable-db-tracing") {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return err
		}
	}

	keyPath := cctx.String("signing-key-path")
	key, err := crypto.LoadOrCreateKeyFile(keyPath)
	if err != nil {
		return fmt.Errorf("loading signing key: %w", err)
	}
	pub, err := key.PublicKey()
	if err != nil {
		return err
	}
	logger.Info("loaded signing key", "path", keyPath, "didKey", pub.DIDKey())

	st, err := store.NewStore(db, key, logger)
	if err != nil {
		return err
	}

	evtman := eventmgr.NewEventManager(st, logger)
	validator := auth.NewServiceAuthValidator(issuerDID, auth.StaticResolver{issuerDID: pub})

	svcConfig := service.DefaultConfig()
	svcConfig.IssuerDID = issuerDID
	svcConfig.PerSecondLimit = cctx.Int64("write-per-second-limit")
	svcConfig.PerHourLimit = cctx.Int64("write-per-hour-limit")
	svcConfig.PerDayLimit = cctx.Int64("write-per-day-limit")
	if cctx.IsSet("admin-password") {
		svcConfig.AdminPassword = cctx.String("admin-password")
	} else {
		var rblob [10]byte
		_, _ = rand.Read(rblob[:])
		svcConfig.AdminPassword = base64.URLEncoding.EncodeToString(rblob[:])
		logger.Info("generated random admin password", "username", "admin", "password", svcConfig.AdminPassword)
	}

	svc := service.NewService(db, st, evtman, validator, svcConfig, logger)

	// start metrics endpoint
	go func() {
		if err := svc.StartMetrics(cctx.String("metrics-listen")); err != nil {
			logger.Error("failed to start metrics endpoint", "err", err)
			os.Exit(1)
		}
	}()

	svcErr := make(chan error, 1)
	go func() {
		svcErr <- svc.Start(cctx.String("bind"))
	}()

	logger.Info("startup complete", "issuer", issuerDID, "bind", cctx.String("bind"))
	select {
	case <-signals:
		logger.Info("received shutdown signal")
	case err := <-svcErr:
		if err != nil {
			logger.Error("error during startup", "err", err)
		}
		logger.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(ctx); err != nil {
		logger.Error("error during shutdown", "err", err)
	}

	logger.Info("shutdown complete")
	return nil
}
