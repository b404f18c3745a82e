package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/huelink-core/internal/clip"
	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
	"github.com/nerrad567/huelink-core/internal/resource"
)

// State is a phase of the startup protocol.
type State string

// Protocol states. Terminal is reached only from a failed version
// check; every other failure path retries.
const (
	StateStartup          State = "startup"
	StateVersionCheck     State = "version_check"
	StateRefreshResources State = "refresh_resources"
	StateRefreshed        State = "refreshed"
	StateStreaming        State = "streaming"
	StateTerminal         State = "terminal"
)

// ErrVersionBelowMinimum indicates the bridge firmware predates the
// v2 API. The machine halts permanently; streaming never starts.
var ErrVersionBelowMinimum = errors.New("bridge software version below minimum")

// BridgeAPI is the request/response surface the protocol drives.
type BridgeAPI interface {
	GetConfig(ctx context.Context) (*clip.BridgeInfo, error)
	ListResources(ctx context.Context) ([]map[string]any, error)
}

// Streamer runs the event feed after the first successful resync.
type Streamer interface {
	Run(ctx context.Context)
}

// Machine drives the startup protocol:
//
//	Startup → VersionCheck → RefreshResources → Refreshed → Streaming
//
// A version below the minimum build is Terminal. A failed fetch in
// RefreshResources retries after a fixed delay. The ready callback
// fires exactly once, after the first successful resync; full resyncs
// happen only here, never from incremental stream events.
//
// Thread Safety:
//   - Run owns all registry mutation; it is the single-writer goroutine.
//   - CurrentState and Registry are safe to call from other goroutines.
type Machine struct {
	api         BridgeAPI
	newRegistry func() *resource.Registry
	newStreamer func(*resource.Registry) Streamer
	minBuild    int64
	retryDelay  time.Duration
	log         *logging.Logger

	onReady   func(*resource.Registry)
	readyOnce sync.Once

	mu       sync.RWMutex
	state    State
	registry *resource.Registry
}

// New creates a bootstrap machine.
//
// Parameters:
//   - api: Bridge transport for the probe and the full fetch
//   - newRegistry: Factory for a fresh registry; called after each
//     successful version check so stale state from a prior connection
//     is discarded, never patched
//   - newStreamer: Factory binding the event consumer to the registry
//   - minBuild: Lowest acceptable bridge build number
//   - retryDelay: Fixed delay between fetch retries
//   - log: Logger
func New(
	api BridgeAPI,
	newRegistry func() *resource.Registry,
	newStreamer func(*resource.Registry) Streamer,
	minBuild int64,
	retryDelay time.Duration,
	log *logging.Logger,
) *Machine {
	return &Machine{
		api:         api,
		newRegistry: newRegistry,
		newStreamer: newStreamer,
		minBuild:    minBuild,
		retryDelay:  retryDelay,
		log:         log.WithComponent("bootstrap"),
		state:       StateStartup,
	}
}

// SetReadyCallback installs the one-shot callback fired after the
// first successful resync. Must be called before Run.
func (m *Machine) SetReadyCallback(fn func(*resource.Registry)) {
	m.onReady = fn
}

// CurrentState returns the machine's phase.
func (m *Machine) CurrentState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Registry returns the active registry, nil before the version check
// passes.
func (m *Machine) Registry() *resource.Registry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry
}

// Run executes the protocol until the context is cancelled or the
// version check fails terminally. On success it blocks inside the
// stream consumer; registry mutation stays on this goroutine for the
// whole process lifetime.
//
// Returns:
//   - error: ErrVersionBelowMinimum on terminal halt, ctx.Err() on
//     cancellation, nil after a clean streaming shutdown
func (m *Machine) Run(ctx context.Context) error {
	info, err := m.probeVersion(ctx)
	if err != nil {
		return err
	}

	build, err := info.BuildNumber()
	if err != nil {
		// An unparseable version token cannot satisfy the minimum.
		m.setState(StateTerminal)
		m.log.Error("bridge version unreadable, halting", "swversion", info.SWVersion, "error", err)
		return fmt.Errorf("%w: %v", ErrVersionBelowMinimum, err)
	}
	if build < m.minBuild {
		m.setState(StateTerminal)
		m.log.Warn("bridge software too old, halting",
			"swversion", build, "minimum", m.minBuild)
		return fmt.Errorf("%w: have %d, need %d", ErrVersionBelowMinimum, build, m.minBuild)
	}

	m.log.Info("bridge version accepted",
		"name", info.Name, "swversion", build, "apiversion", info.APIVersion)

	// Any prior registry is discarded wholesale; the fresh fetch is
	// the only source of truth for this connection.
	reg := m.newRegistry()
	m.mu.Lock()
	m.registry = reg
	m.mu.Unlock()

	if err := m.refreshUntilSynced(ctx, reg); err != nil {
		return err
	}

	m.readyOnce.Do(func() {
		if m.onReady != nil {
			m.onReady(reg)
		}
	})

	m.setState(StateStreaming)
	m.newStreamer(reg).Run(ctx)
	return ctx.Err()
}

// probeVersion requests the bridge configuration, retrying transport
// failures with the fixed delay. Only cancellation escapes the loop
// without an answer.
func (m *Machine) probeVersion(ctx context.Context) (*clip.BridgeInfo, error) {
	m.setState(StateStartup)
	for {
		m.setState(StateVersionCheck)
		info, err := m.api.GetConfig(ctx)
		if err == nil {
			return info, nil
		}
		m.log.Warn("bridge config probe failed, retrying",
			"error", err, "retry_in", m.retryDelay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
}

// refreshUntilSynced fetches the full listing and resyncs the
// registry, retrying failed fetches with the fixed delay.
func (m *Machine) refreshUntilSynced(ctx context.Context, reg *resource.Registry) error {
	for {
		m.setState(StateRefreshResources)
		list, err := m.api.ListResources(ctx)
		if err == nil {
			m.setState(StateRefreshed)
			reg.Resync(list)
			return nil
		}
		m.log.Warn("resource fetch failed, retrying",
			"error", err, "retry_in", m.retryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
