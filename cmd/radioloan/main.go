// Radio Loan Core - radio device loan service
//
// This is the main entry point. It wires the device catalogue and the loan
// transition engine behind the HTTP API, with optional MQTT loan events and
// InfluxDB transition metrics and OTLP trace export.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/nerrad567/radioloan-core/migrations"

	"github.com/nerrad567/radioloan-core/internal/api"
	"github.com/nerrad567/radioloan-core/internal/device"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/config"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/database"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/logging"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/tracing"
	"github.com/nerrad567/radioloan-core/internal/loan"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Radio Loan Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := loadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded",
		"path", configPath,
		"organisation_id", cfg.Organisation.ID,
		"organisation", cfg.Organisation.Name,
	)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	traceProvider, err := tracing.Setup(ctx, cfg.Tracing, cfg.Organisation, version)
	switch {
	case errors.Is(err, tracing.ErrDisabled):
		log.Info("tracing disabled")
	case err != nil:
		return fmt.Errorf("setting up tracing: %w", err)
	default:
		defer func() {
			log.Info("flushing traces")
			if shutdownErr := traceProvider.Shutdown(context.Background()); shutdownErr != nil {
				log.Error("error shutting down tracing", "error", shutdownErr)
			}
		}()
		log.Info("tracing enabled",
			"endpoint", cfg.Tracing.Endpoint,
			"sample_ratio", cfg.Tracing.SampleRatio,
		)
	}

	db, err := database.Open(database.Config{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		DSN:          cfg.Database.DSN,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "driver", db.Driver())

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	devices := device.NewSQLRepository(db)
	optional := make(map[string]api.HealthChecker)

	var events loan.EventPublisher
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		events = loan.NewMQTTPublisher(mqttClient, byte(cfg.MQTT.QoS))
		optional["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled, loan events will not be published")
	}

	var metrics loan.MetricsRecorder
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		metrics = loan.NewInfluxRecorder(influxClient, cfg.Organisation.ID)
		optional["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	loanLog := log.Component("loan")
	store := loan.NewStore(db, devices, loan.StoreConfig{
		TransactionTimeout: cfg.GetTransactionTimeout(),
		DefaultPageSize:    cfg.Loans.DefaultPageSize,
		MaxPageSize:        cfg.Loans.MaxPageSize,
	}, loanLog)
	loans := loan.NewService(store, events, metrics, traceProvider.Tracer(loan.TracerName), loanLog)
	log.Info("loan engine initialised",
		"transaction_timeout", cfg.GetTransactionTimeout().String(),
		"max_page_size", cfg.Loans.MaxPageSize,
	)

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log.Component("api"),
		Devices:  devices,
		Loans:    loans,
		Database: db,
		Optional: optional,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, optional); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Radio Loan Core stopped")
	return nil
}

// getConfigPath returns the configuration file path from the environment
// or the default location.
func getConfigPath() string {
	if path := os.Getenv("RADIOLOAN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadDotEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment take precedence.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// healthCheck verifies every connected component once at startup.
func healthCheck(ctx context.Context, db *database.DB, optional map[string]api.HealthChecker) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	for name, checker := range optional {
		if err := checker.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}
