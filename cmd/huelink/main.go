// Huelink Core - Hue Bridge Mirror
//
// This is the main entry point for the Huelink Core application.
// Huelink mirrors a Hue bridge's CLIP v2 resource graph into an
// in-process model and republishes it over MQTT, WebSocket, and REST,
// with command dispatch back to the bridge.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/huelink-core/migrations"

	"github.com/nerrad567/huelink-core/internal/api"
	"github.com/nerrad567/huelink-core/internal/bootstrap"
	"github.com/nerrad567/huelink-core/internal/clip"
	"github.com/nerrad567/huelink-core/internal/infrastructure/config"
	"github.com/nerrad567/huelink-core/internal/infrastructure/database"
	"github.com/nerrad567/huelink-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
	"github.com/nerrad567/huelink-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/huelink-core/internal/relay"
	"github.com/nerrad567/huelink-core/internal/resource"
	"github.com/nerrad567/huelink-core/internal/stream"
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

// historyPruneInterval is how often expired history rows are swept.
const historyPruneInterval = time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Huelink Core",
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

	// History repository (optional)
	var history resource.HistoryRepository
	if cfg.History.Enabled {
		history = resource.NewSQLiteHistoryRepository(db.DB)
		log.Info("state history enabled", "retention_days", cfg.History.RetentionDays)
	} else {
		log.Info("state history disabled")
	}

	// Bridge HTTP client
	bridge := clip.NewClient(cfg.Bridge, log)
	log.Info("bridge client created", "address", cfg.Bridge.Address)

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

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Bootstrap machine. Declared ahead of the registry factory so the
	// command issuer and relay can resolve the active registry through it.
	var machine *bootstrap.Machine
	var rel *relay.Relay
	var server *api.Server

	newRegistry := func() *resource.Registry {
		reg := resource.NewRegistry(bridge, log)
		reg.SetChangeSink(func(ev resource.ChangeEvent) {
			if rel != nil {
				rel.PublishChange(ev)
			}
			if hub := server.Hub(); hub != nil {
				hub.BroadcastChange(ev)
			}
			if history != nil {
				if recErr := history.RecordChange(context.Background(), ev); recErr != nil {
					log.Error("recording state change", "id", ev.ID, "error", recErr)
				}
			}
			if influxClient != nil {
				switch v := ev.Value.(type) {
				case bool:
					influxClient.WriteResourceState(ev.ID, string(ev.Kind), ev.Key, v)
				case float64:
					influxClient.WriteResourceMetric(ev.ID, string(ev.Kind), ev.Key, v)
				}
			}
		})
		reg.SetHooks(resource.Hooks{
			OnAdded: func(n *resource.Node) {
				if hub := server.Hub(); hub != nil {
					hub.Broadcast("resource.added", lifecyclePayload(n))
				}
			},
			OnDeleted: func(n *resource.Node) {
				if hub := server.Hub(); hub != nil {
					hub.Broadcast("resource.removed", lifecyclePayload(n))
				}
			},
		})
		return reg
	}

	newStreamer := func(reg *resource.Registry) bootstrap.Streamer {
		return stream.New(bridge, reg, cfg.GetStreamRetryDelay(), log)
	}

	machine = bootstrap.New(
		bridge,
		newRegistry,
		newStreamer,
		cfg.Bridge.MinSWVersion,
		cfg.GetResyncRetryDelay(),
		log,
	)

	// MQTT command relay (only with a broker connection)
	if mqttClient != nil {
		rel = relay.New(mqttClient, &registryIssuer{machine: machine}, byte(cfg.MQTT.QoS), log)
		if startErr := rel.Start(); startErr != nil {
			return fmt.Errorf("starting MQTT relay: %w", startErr)
		}
		log.Info("MQTT relay started")
	}

	// HTTP API server
	server, err = api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Engine:   machine,
		History:  history,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	machine.SetReadyCallback(func(reg *resource.Registry) {
		log.Info("initial sync complete", "resources", reg.Len())
		if rel != nil {
			rel.AnnounceReady(reg.Len())
		}
	})

	// Periodic history pruning
	if history != nil && cfg.History.RetentionDays > 0 {
		go pruneHistoryLoop(ctx, history, cfg.GetHistoryRetention(), log)
	}

	log.Info("initialisation complete, connecting to bridge")

	// Run the mirror on this goroutine. It blocks until the context is
	// cancelled or the bridge fails the version check.
	if runErr := machine.Run(ctx); runErr != nil {
		if errors.Is(runErr, bootstrap.ErrVersionBelowMinimum) {
			return runErr
		}
		if !errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("mirror stopped: %w", runErr)
		}
	}

	log.Info("shutdown signal received, cleaning up")
	log.Info("Huelink Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HUELINK_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HUELINK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pruneHistoryLoop periodically deletes history rows older than the
// configured retention period.
func pruneHistoryLoop(ctx context.Context, history resource.HistoryRepository, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(historyPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := history.PruneHistory(ctx, retention)
			if err != nil {
				log.Error("pruning state history", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("pruned state history", "rows", removed)
			}
		}
	}
}

// lifecyclePayload is the WebSocket payload for added/removed events.
func lifecyclePayload(n *resource.Node) map[string]any {
	return map[string]any{
		"id":   n.ID(),
		"kind": n.Kind(),
		"name": n.Name(),
	}
}

// registryIssuer routes commands to whichever registry the bootstrap
// machine currently owns. The registry is replaced on reconnect, so
// command sources must not hold a direct reference.
type registryIssuer struct {
	machine *bootstrap.Machine
}

// IssueCommand implements relay.CommandIssuer.
func (i *registryIssuer) IssueCommand(ctx context.Context, id string, cmd resource.Command) error {
	reg := i.machine.Registry()
	if reg == nil {
		return fmt.Errorf("mirror not ready: %w", resource.ErrNotFound)
	}
	return reg.IssueCommand(ctx, id, cmd)
}
