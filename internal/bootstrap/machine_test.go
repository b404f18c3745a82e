package bootstrap

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/huelink-core/internal/clip"
	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
	"github.com/nerrad567/huelink-core/internal/resource"
)

const testMinBuild = int64(1948086000)

// fakeBridge scripts the probe and fetch responses.
type fakeBridge struct {
	swversion string

	configFailures int32 // failures before GetConfig succeeds
	listFailures   int32 // failures before ListResources succeeds

	configCalls int32
	listCalls   int32

	listing []map[string]any
}

func (f *fakeBridge) GetConfig(context.Context) (*clip.BridgeInfo, error) {
	atomic.AddInt32(&f.configCalls, 1)
	if atomic.AddInt32(&f.configFailures, -1) >= 0 {
		return nil, errors.New("connection refused")
	}
	return &clip.BridgeInfo{Name: "Test Bridge", SWVersion: f.swversion}, nil
}

func (f *fakeBridge) ListResources(context.Context) ([]map[string]any, error) {
	atomic.AddInt32(&f.listCalls, 1)
	if atomic.AddInt32(&f.listFailures, -1) >= 0 {
		return nil, errors.New("connection reset")
	}
	return f.listing, nil
}

// blockingStreamer parks until the context ends.
type blockingStreamer struct {
	started chan struct{}
}

func (s *blockingStreamer) Run(ctx context.Context) {
	if s.started != nil {
		close(s.started)
	}
	<-ctx.Done()
}

func newTestMachine(api BridgeAPI, streamer Streamer) (*Machine, *int32) {
	var registriesBuilt int32
	newRegistry := func() *resource.Registry {
		atomic.AddInt32(&registriesBuilt, 1)
		return resource.NewRegistry(nil, logging.Default())
	}
	newStreamer := func(*resource.Registry) Streamer { return streamer }
	m := New(api, newRegistry, newStreamer, testMinBuild, time.Millisecond, logging.Default())
	return m, &registriesBuilt
}

func TestMachine_HappyPath(t *testing.T) {
	bridge := &fakeBridge{
		swversion: "1967054020",
		listing: []map[string]any{
			{"id": "l1", "type": "light"},
		},
	}
	streamer := &blockingStreamer{started: make(chan struct{})}
	m, built := newTestMachine(bridge, streamer)

	var readyCount int32
	var readyResources int
	m.SetReadyCallback(func(reg *resource.Registry) {
		atomic.AddInt32(&readyCount, 1)
		readyResources = reg.Len()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case <-streamer.started:
	case <-time.After(time.Second):
		t.Fatal("streamer never started")
	}

	if got := m.CurrentState(); got != StateStreaming {
		t.Errorf("CurrentState() = %q, want streaming", got)
	}
	if m.Registry() == nil {
		t.Error("Registry() = nil while streaming")
	}
	if atomic.LoadInt32(built) != 1 {
		t.Errorf("registries built = %d, want 1", atomic.LoadInt32(built))
	}
	if atomic.LoadInt32(&readyCount) != 1 {
		t.Errorf("ready callback fired %d times, want 1", atomic.LoadInt32(&readyCount))
	}
	if readyResources != 1 {
		t.Errorf("resources at ready = %d, want 1", readyResources)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestMachine_VersionBelowMinimum_Halts(t *testing.T) {
	bridge := &fakeBridge{swversion: "1946000000"}
	m, built := newTestMachine(bridge, &blockingStreamer{})

	readyFired := false
	m.SetReadyCallback(func(*resource.Registry) { readyFired = true })

	err := m.Run(context.Background())
	if !errors.Is(err, ErrVersionBelowMinimum) {
		t.Fatalf("Run() = %v, want ErrVersionBelowMinimum", err)
	}
	if got := m.CurrentState(); got != StateTerminal {
		t.Errorf("CurrentState() = %q, want terminal", got)
	}

	// The halt is before any fetch: no listing, no registry, no ready.
	if calls := atomic.LoadInt32(&bridge.listCalls); calls != 0 {
		t.Errorf("ListResources called %d times, want 0", calls)
	}
	if atomic.LoadInt32(built) != 0 {
		t.Errorf("registries built = %d, want 0", atomic.LoadInt32(built))
	}
	if readyFired {
		t.Error("ready callback fired despite terminal halt")
	}
	if m.Registry() != nil {
		t.Error("Registry() != nil after terminal halt")
	}
}

func TestMachine_UnparseableVersion_Halts(t *testing.T) {
	bridge := &fakeBridge{swversion: "garbage"}
	m, _ := newTestMachine(bridge, &blockingStreamer{})

	err := m.Run(context.Background())
	if !errors.Is(err, ErrVersionBelowMinimum) {
		t.Fatalf("Run() = %v, want ErrVersionBelowMinimum", err)
	}
	if got := m.CurrentState(); got != StateTerminal {
		t.Errorf("CurrentState() = %q, want terminal", got)
	}
}

func TestMachine_ProbeRetries(t *testing.T) {
	bridge := &fakeBridge{
		swversion:      "1967054020",
		configFailures: 2,
	}
	streamer := &blockingStreamer{started: make(chan struct{})}
	m, _ := newTestMachine(bridge, streamer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	select {
	case <-streamer.started:
	case <-time.After(time.Second):
		t.Fatal("machine never reached streaming")
	}

	if calls := atomic.LoadInt32(&bridge.configCalls); calls != 3 {
		t.Errorf("GetConfig called %d times, want 3 (two failures then success)", calls)
	}
}

func TestMachine_FetchRetries_ReadyDeferredUntilSuccess(t *testing.T) {
	bridge := &fakeBridge{
		swversion:    "1967054020",
		listFailures: 2,
		listing: []map[string]any{
			{"id": "l1", "type": "light"},
		},
	}
	streamer := &blockingStreamer{started: make(chan struct{})}
	m, _ := newTestMachine(bridge, streamer)

	var readyCount int32
	m.SetReadyCallback(func(*resource.Registry) {
		atomic.AddInt32(&readyCount, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	select {
	case <-streamer.started:
	case <-time.After(time.Second):
		t.Fatal("machine never reached streaming")
	}

	if calls := atomic.LoadInt32(&bridge.listCalls); calls != 3 {
		t.Errorf("ListResources called %d times, want 3 (two failures then success)", calls)
	}
	if atomic.LoadInt32(&readyCount) != 1 {
		t.Errorf("ready callback fired %d times, want exactly 1", atomic.LoadInt32(&readyCount))
	}
	if m.Registry().Len() != 1 {
		t.Errorf("registry resources = %d, want 1", m.Registry().Len())
	}
}

func TestMachine_CancelDuringProbe(t *testing.T) {
	bridge := &fakeBridge{
		swversion:      "1967054020",
		configFailures: 1000,
	}
	m, _ := newTestMachine(bridge, &blockingStreamer{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want context.DeadlineExceeded", err)
	}
}
