// MDM Core - Mobile Device Management service
//
// This is the main entry point for the MDM Core application. It hosts the
// device registry REST API, the WebSocket change notification feed, and the
// optional MQTT and InfluxDB event sinks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mdmlite/mdm-core/migrations"

	"github.com/mdmlite/mdm-core/internal/api"
	"github.com/mdmlite/mdm-core/internal/device"
	"github.com/mdmlite/mdm-core/internal/infrastructure/config"
	"github.com/mdmlite/mdm-core/internal/infrastructure/database"
	"github.com/mdmlite/mdm-core/internal/infrastructure/influxdb"
	"github.com/mdmlite/mdm-core/internal/infrastructure/logging"
	"github.com/mdmlite/mdm-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting MDM Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
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
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise device manager
	deviceRepo := device.NewSQLiteRepository(db.DB)
	manager := device.NewManager(deviceRepo)
	manager.SetLogger(log)
	manager.SetRebootDelay(cfg.GetRebootDelay())
	log.Info("device manager initialised", "reboot_delay", cfg.GetRebootDelay())

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
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
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
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
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create the API server
	server, err := api.New(api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log,
		Manager: manager,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Fan out change notifications: WebSocket clients always, MQTT and
	// InfluxDB when configured. The hub must be wired before Start() so no
	// notification races the listener coming up.
	notifiers := device.Notifiers{server.Hub()}
	if mqttClient != nil {
		notifiers = append(notifiers, &mqttEventPublisher{client: mqttClient, log: log})
	}
	if influxClient != nil {
		notifiers = append(notifiers, &influxEventRecorder{client: influxClient})
	}
	manager.SetNotifier(notifiers)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("MDM Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MDM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MDM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// The MQTT and InfluxDB clients may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// mqttEventPublisher relays device change notifications onto the shared
// device events topic so external systems can react without polling.
type mqttEventPublisher struct {
	client *mqtt.Client
	log    *logging.Logger
}

// DeviceChanged implements device.Notifier. Publish failures are logged and
// swallowed: event relay is best-effort and must never fail a mutation.
func (p *mqttEventPublisher) DeviceChanged(deviceID int64, change device.ChangeType) {
	topic := mqtt.Topics{}.DeviceEvents()
	err := p.client.PublishJSON(topic, device.ChangeNotification{
		DeviceID:   deviceID,
		ChangeType: change,
	})
	if err != nil {
		p.log.Warn("failed to publish device event", "topic", topic, "device_id", deviceID, "error", err)
	}
}

// influxEventRecorder writes device change events to the time-series store
// for fleet activity dashboards. Writes are batched and asynchronous.
type influxEventRecorder struct {
	client *influxdb.Client
}

// DeviceChanged implements device.Notifier.
func (r *influxEventRecorder) DeviceChanged(deviceID int64, change device.ChangeType) {
	r.client.WriteDeviceEvent(deviceID, string(change))
}
