package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
)

// Commander dispatches command payloads to the bridge.
//
// Dispatch is fire-and-forget: implementations log failures and never
// report success back, matching the bridge's command semantics.
type Commander interface {
	Put(ctx context.Context, path string, body map[string]any)
}

// Registry owns every mirrored resource node and indexes them by id and
// kind. It is the single authority over resource state: external layers
// hold ids and route all mutation through the event path.
//
// Thread Safety:
//   - Lookup methods are safe for concurrent use.
//   - Add, Modify, Delete, and Resync must be called from a single
//     goroutine (the bootstrap/stream dispatcher). The internal lock
//     protects the indexes for concurrent readers, not for concurrent
//     writers racing each other.
//   - SetHooks and SetChangeSink must be called before streaming starts.
type Registry struct {
	log       *logging.Logger
	commander Commander

	mu     sync.RWMutex
	nodes  map[string]*Node
	byKind map[Kind]map[string]*Node

	hooks Hooks
	sink  func(ChangeEvent)
}

// NewRegistry creates an empty registry.
//
// Parameters:
//   - commander: Transport for outgoing commands; may be nil when
//     commands are not issued (tests, read-only mirrors)
//   - log: Logger for skipped resources and contract violations
func NewRegistry(commander Commander, log *logging.Logger) *Registry {
	return &Registry{
		log:       log,
		commander: commander,
		nodes:     make(map[string]*Node),
		byKind:    make(map[Kind]map[string]*Node),
	}
}

// SetHooks installs lifecycle callbacks. Hooks run on the mutating
// goroutine, outside the index lock.
func (r *Registry) SetHooks(hooks Hooks) {
	r.hooks = hooks
}

// SetChangeSink installs the fan-out target for property changes. The
// sink receives every published change after per-node listeners.
func (r *Registry) SetChangeSink(sink func(ChangeEvent)) {
	r.sink = sink
}

// Add inserts a resource from a full payload. An already-known id
// routes to Modify instead, so replayed adds are harmless. Payloads of
// unknown kinds are logged and skipped; the caller's batch continues.
func (r *Registry) Add(payload map[string]any) error {
	id, _ := payload["id"].(string)
	if id == "" {
		return ErrMissingID
	}

	if existing := r.lookup(id); existing != nil {
		return r.Modify(id, payload)
	}

	kindStr, _ := payload["type"].(string)
	kind := Kind(kindStr)
	if !kind.Known() {
		r.log.Warn("skipping resource of unknown kind", "kind", kindStr, "id", id)
		return fmt.Errorf("%w: %s", ErrUnknownKind, kindStr)
	}

	n := newNode(r, id, kind, payload)

	r.mu.Lock()
	r.nodes[id] = n
	if r.byKind[kind] == nil {
		r.byKind[kind] = make(map[string]*Node)
	}
	r.byKind[kind][id] = n
	r.mu.Unlock()

	if r.hooks.OnAdded != nil {
		r.hooks.OnAdded(n)
	}
	return nil
}

// Modify folds a delta into an existing resource. The node's identity
// and subscriptions persist across modifies.
//
// A delta for an id the registry does not hold is a protocol-contract
// violation by the bridge; it degrades to a logged no-op so a single
// stray event cannot halt the mirror.
func (r *Registry) Modify(id string, delta map[string]any) error {
	n := r.lookup(id)
	if n == nil {
		r.log.Warn("modify for unknown resource id", "id", id)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	n.applyDelta(delta)
	if r.hooks.OnModified != nil {
		r.hooks.OnModified(n)
	}
	return nil
}

// Delete removes a resource from both indexes and fires the deleted
// hook. Deleting an unknown id degrades to a logged no-op, same as
// Modify.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	n, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		r.log.Warn("delete for unknown resource id", "id", id)
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.nodes, id)
	if kindIndex := r.byKind[n.kind]; kindIndex != nil {
		delete(kindIndex, id)
		if len(kindIndex) == 0 {
			delete(r.byKind, n.kind)
		}
	}
	r.mu.Unlock()

	if r.hooks.OnDeleted != nil {
		r.hooks.OnDeleted(n)
	}
	return nil
}

// Resync reconciles the registry against a complete resource listing
// using mark and sweep: every current id is marked dirty, each listed
// payload clears its mark and is added or modified, and whatever is
// still dirty afterwards is deleted.
//
// The result depends only on the listing, not on prior stream history,
// which makes resync the self-healing step for missed or reordered
// incremental events. Running it twice with the same listing changes
// nothing and fires no added or deleted hooks the second time.
func (r *Registry) Resync(list []map[string]any) {
	r.mu.RLock()
	dirty := make(map[string]bool, len(r.nodes))
	for id := range r.nodes {
		dirty[id] = true
	}
	r.mu.RUnlock()

	for _, payload := range list {
		id, _ := payload["id"].(string)
		if id == "" {
			r.log.Warn("resync entry missing id, skipped")
			continue
		}
		delete(dirty, id)
		// Unknown kinds are already logged inside Add; the sweep must
		// still run for the rest of the listing.
		_ = r.Add(payload)
	}

	for id := range dirty {
		_ = r.Delete(id)
	}

	r.log.Info("resync complete", "resources", r.Len(), "removed", len(dirty))
}

// Get returns the node for an id.
func (r *Registry) Get(id string) (*Node, bool) {
	n := r.lookup(id)
	return n, n != nil
}

// Resolve follows a weak reference. A dangling reference yields an
// inert stand-in rather than nil, so relationship traversal never
// faults on stale links.
func (r *Registry) Resolve(ref Ref) *Node {
	if n := r.lookup(ref.RID); n != nil {
		return n
	}
	return newInertNode(r, ref)
}

// ByKind returns all nodes of one kind. Order is unspecified.
func (r *Registry) ByKind(kind Kind) []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Node, 0, len(r.byKind[kind]))
	for _, n := range r.byKind[kind] {
		out = append(out, n)
	}
	return out
}

// All returns every node in the registry. Order is unspecified.
func (r *Registry) All() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	return out
}

// Len returns the number of mirrored resources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// IssueCommand encodes and dispatches a command to a resource. The
// command is resolved against the resource's capability chain: the
// resource itself first, then its services in declaration order, and
// the PUT targets whichever node actually implements it.
//
// Dispatch is fire-and-forget; a nil return means the command was
// handed to the transport, not that the bridge applied it.
func (r *Registry) IssueCommand(ctx context.Context, id string, cmd Command) error {
	n := r.lookup(id)
	if n == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	target := n.resolveCommand(cmd.Name)
	if target == nil {
		return fmt.Errorf("%w: %s on %s", ErrUnknownCommand, cmd.Name, n.kind)
	}
	if r.commander == nil {
		return fmt.Errorf("no command transport configured")
	}
	r.commander.Put(ctx, target.CommandPath(), cmd.Body)
	return nil
}

// lookup returns the node for id, or nil.
func (r *Registry) lookup(id string) *Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodes[id]
}

// notifyChange forwards a published change to the sink, if installed.
func (r *Registry) notifyChange(ev ChangeEvent) {
	if r.sink != nil {
		r.sink(ev)
	}
}
