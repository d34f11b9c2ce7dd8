// Lumen Core - Home Lighting Hub
//
// This is the main entry point for the Lumen Core application. Lumen is
// a self-hosted lighting hub designed for:
//   - One registry across every bulb vendor (Tuya, Sengled, local strips)
//   - Voice assistant fulfilment (SYNC/QUERY/EXECUTE)
//   - Offline-first control of LAN devices
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumen-home/lumen-core/internal/api"
	"github.com/lumen-home/lumen-core/internal/backends/broadlink"
	"github.com/lumen-home/lumen-core/internal/backends/esp"
	"github.com/lumen-home/lumen-core/internal/backends/sengled"
	"github.com/lumen-home/lumen-core/internal/backends/tuya"
	"github.com/lumen-home/lumen-core/internal/bridges/mqttlight"
	"github.com/lumen-home/lumen-core/internal/homegraph"
	"github.com/lumen-home/lumen-core/internal/infrastructure/config"
	"github.com/lumen-home/lumen-core/internal/infrastructure/database"
	"github.com/lumen-home/lumen-core/internal/infrastructure/influxdb"
	"github.com/lumen-home/lumen-core/internal/infrastructure/logging"
	"github.com/lumen-home/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumen-home/lumen-core/internal/intent"
	"github.com/lumen-home/lumen-core/internal/light"
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
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Lumen Core",
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

	// Open database (Tuya session persistence)
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

	// Initialise light registry
	registry := light.NewRegistry()
	registry.SetLogger(log)
	registry.SetCallTimeout(cfg.GetCallTimeout())

	// Hook up Home Graph report-sync notifications (optional)
	if cfg.HomeGraph.Enabled {
		notifier := homegraph.New(cfg.HomeGraph.URL, cfg.HomeGraph.APIKey, cfg.HomeGraph.AgentUserID)
		registry.SetNotifier(notifier)
		log.Info("Home Graph notifier enabled", "agent_user_id", cfg.HomeGraph.AgentUserID)
	}

	// Discover and register backend lights. A failed vendor is logged and
	// skipped so one dead cloud doesn't take the hub down.
	registerBackends(ctx, cfg, db, registry, log)
	log.Info("light registry initialised", "lights", registry.Count())

	// Connect to MQTT broker and start the light bridge (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
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

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		bridge, bridgeErr := mqttlight.NewBridge(mqttlight.BridgeOptions{
			MQTTClient: mqttClient,
			Lights:     registry,
			QoS:        byte(cfg.MQTT.QoS),
			Logger:     log,
		})
		if bridgeErr != nil {
			return fmt.Errorf("creating MQTT light bridge: %w", bridgeErr)
		}

		// Listener must be in place before Start publishes the initial
		// retained snapshots.
		registry.AddStateListener(bridge.OnStateChange)
		if startErr := bridge.Start(ctx); startErr != nil {
			return fmt.Errorf("starting MQTT light bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping MQTT light bridge")
			if stopErr := bridge.Stop(); stopErr != nil {
				log.Error("error stopping MQTT light bridge", "error", stopErr)
			}
		}()
		log.Info("MQTT light bridge started")
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB and record state history (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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
		registry.AddStateListener(func(id, name string, st light.State) {
			influxClient.WriteLightState(id, name, st)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the intent translator and start the API server
	translator := intent.New(registry, cfg.HomeGraph.AgentUserID)
	translator.SetLogger(log)

	server, err := api.New(api.Deps{
		Config:     cfg.API,
		Auth:       cfg.Auth,
		WS:         cfg.WebSocket,
		Logger:     log,
		Lights:     registry,
		Translator: translator,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT bridge, then MQTT client (if enabled)
	// 4. Database

	log.Info("Lumen Core stopped")
	return nil
}

// registerBackends discovers lights from every enabled vendor backend and
// registers them. Vendor failures are logged and skipped; individual device
// failures within a vendor are likewise non-fatal.
func registerBackends(ctx context.Context, cfg *config.Config, db *database.DB, registry *light.Registry, log *logging.Logger) {
	register := func(vendor string, cap light.Capability) {
		id, err := registry.Register(ctx, cap)
		if err != nil {
			log.Warn("failed to register light", "vendor", vendor, "error", err)
			return
		}
		log.Info("light registered", "vendor", vendor, "id", id)
	}

	if cfg.Backends.Tuya.Enabled {
		store := tuya.NewStore(db.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Error("tuya session schema failed", "error", err)
		} else {
			client := tuya.NewClient(cfg.Backends.Tuya.BaseURL, cfg.Backends.Tuya.Region)
			lights, err := tuya.Discover(ctx, client, store,
				cfg.Backends.Tuya.Username, cfg.Backends.Tuya.Password)
			if err != nil {
				log.Error("tuya discovery failed", "error", err)
			} else {
				for _, l := range lights {
					register("tuya", l)
				}
			}
		}
	}

	if cfg.Backends.Sengled.Enabled {
		client := sengled.NewClient(cfg.Backends.Sengled.BaseURL)
		lights, err := sengled.Discover(ctx, client,
			cfg.Backends.Sengled.Username, cfg.Backends.Sengled.Password)
		if err != nil {
			log.Error("sengled discovery failed", "error", err)
		} else {
			for _, l := range lights {
				register("sengled", l)
			}
		}
	}

	if cfg.Backends.ESP.Enabled {
		for _, addr := range cfg.Backends.ESP.Addresses {
			conn, err := esp.Dial(ctx, addr)
			if err != nil {
				log.Warn("esp strip unreachable", "address", addr, "error", err)
				continue
			}
			register("esp", esp.NewLight(conn))
		}
	}

	if cfg.Backends.Broadlink.Enabled {
		for _, dev := range cfg.Backends.Broadlink.Devices {
			conn, err := broadlink.Dial(ctx, dev.Address, dev.MAC)
			if err != nil {
				log.Warn("broadlink device unreachable",
					"address", dev.Address, "mac", dev.MAC, "error", err)
				continue
			}
			register("broadlink", broadlink.NewLight(conn))
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses LUMEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LUMEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
