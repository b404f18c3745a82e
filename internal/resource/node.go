package resource

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WildcardHandle unsubscribes every listener registered on a key.
const WildcardHandle = "*"

// Node is one live resource instance mirrored from the bridge.
//
// A node owns its property values and subscriptions; the registry owns
// the node. Relationships to other resources are held as weak Refs and
// resolved through the registry at use time.
//
// Thread Safety:
//   - All exported methods are safe for concurrent use.
//   - Mutation (applyDelta, mergeFraming) happens only on the single
//     bootstrap/stream goroutine; internal locks exist so readers on
//     other goroutines (API, relay) always see consistent values.
type Node struct {
	id   string
	kind Kind

	registry *Registry
	table    *CapabilityTable
	inert    bool

	commandPath string

	frameMu  sync.RWMutex
	owner    *Ref
	children []Ref
	services []Ref
	metadata Metadata
	product  ProductData
	raw      map[string]any

	valMu  sync.RWMutex
	values map[string]any

	subMu sync.RWMutex
	subs  map[string]map[string]Listener
}

// newNode constructs a node for a known kind from a full resource payload.
// Initial property values are primed without publishing.
func newNode(r *Registry, id string, kind Kind, payload map[string]any) *Node {
	n := &Node{
		id:          id,
		kind:        kind,
		registry:    r,
		table:       capabilityTables[kind],
		commandPath: fmt.Sprintf("/clip/v2/resource/%s/%s", kind, id),
		values:      make(map[string]any),
	}
	n.mergeFraming(payload)
	for _, p := range n.table.Properties {
		if v, ok := p.Extract(payload); ok {
			n.values[p.Key] = v
		}
	}
	return n
}

// newInertNode constructs the stand-in returned for dangling references.
// It declares no properties or commands, so every operation against it
// fails softly.
func newInertNode(r *Registry, ref Ref) *Node {
	return &Node{
		id:       ref.RID,
		kind:     ref.RType,
		registry: r,
		table:    emptyTable,
		inert:    true,
		values:   make(map[string]any),
	}
}

// ID returns the resource's opaque unique id.
func (n *Node) ID() string { return n.id }

// Kind returns the resource kind.
func (n *Node) Kind() Kind { return n.kind }

// Inert reports whether this node is a dangling-reference stand-in
// rather than a mirrored resource.
func (n *Node) Inert() bool { return n.inert }

// CommandPath returns the bridge path commands for this resource are
// PUT to.
func (n *Node) CommandPath() string { return n.commandPath }

// Name returns the display name: metadata name first, then product
// name, then the id.
func (n *Node) Name() string {
	n.frameMu.RLock()
	defer n.frameMu.RUnlock()
	if n.metadata.Name != "" {
		return n.metadata.Name
	}
	if n.product.ProductName != "" {
		return n.product.ProductName
	}
	return n.id
}

// Owner returns a copy of the owner reference, or nil.
func (n *Node) Owner() *Ref {
	n.frameMu.RLock()
	defer n.frameMu.RUnlock()
	if n.owner == nil {
		return nil
	}
	ref := *n.owner
	return &ref
}

// Services returns a copy of the service references in declaration order.
func (n *Node) Services() []Ref {
	n.frameMu.RLock()
	defer n.frameMu.RUnlock()
	out := make([]Ref, len(n.services))
	copy(out, n.services)
	return out
}

// Children returns a copy of the child references in declaration order.
func (n *Node) Children() []Ref {
	n.frameMu.RLock()
	defer n.frameMu.RUnlock()
	out := make([]Ref, len(n.children))
	copy(out, n.children)
	return out
}

// Metadata returns the resource's display metadata.
func (n *Node) Metadata() Metadata {
	n.frameMu.RLock()
	defer n.frameMu.RUnlock()
	return n.metadata
}

// ProductData returns the resource's product information.
func (n *Node) ProductData() ProductData {
	n.frameMu.RLock()
	defer n.frameMu.RUnlock()
	return n.product
}

// Raw returns a shallow copy of the last merged resource payload.
func (n *Node) Raw() map[string]any {
	n.frameMu.RLock()
	defer n.frameMu.RUnlock()
	out := make(map[string]any, len(n.raw))
	for k, v := range n.raw {
		out[k] = v
	}
	return out
}

// Value returns the stored value for a property key.
func (n *Node) Value(key string) (any, bool) {
	n.valMu.RLock()
	defer n.valMu.RUnlock()
	v, ok := n.values[key]
	return v, ok
}

// Values returns a copy of all stored property values.
func (n *Node) Values() map[string]any {
	n.valMu.RLock()
	defer n.valMu.RUnlock()
	out := make(map[string]any, len(n.values))
	for k, v := range n.values {
		out[k] = v
	}
	return out
}

// Capabilities returns the property keys this resource exposes: its own
// declarations first, then each service's in declaration order. The
// first declaration of a key wins; a later service never overrides an
// already-resolved capability.
func (n *Node) Capabilities() []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(table *CapabilityTable) {
		for _, p := range table.Properties {
			if !seen[p.Key] {
				seen[p.Key] = true
				keys = append(keys, p.Key)
			}
		}
	}
	add(n.table)
	for _, ref := range n.Services() {
		if svc := n.registry.lookup(ref.RID); svc != nil {
			for _, key := range svc.Capabilities() {
				if !seen[key] {
					seen[key] = true
					keys = append(keys, key)
				}
			}
		}
	}
	return keys
}

// Commands returns the command names this resource accepts, merged
// across its services with the same first-writer-wins order as
// Capabilities.
func (n *Node) Commands() []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range n.table.Commands {
		if !seen[c] {
			seen[c] = true
			names = append(names, c)
		}
	}
	for _, ref := range n.Services() {
		if svc := n.registry.lookup(ref.RID); svc != nil {
			for _, c := range svc.Commands() {
				if !seen[c] {
					seen[c] = true
					names = append(names, c)
				}
			}
		}
	}
	return names
}

// resolveCommand returns the node that actually implements the named
// command: the resource itself first, then its services in order.
func (n *Node) resolveCommand(name string) *Node {
	if n.table.hasCommand(name) {
		return n
	}
	for _, ref := range n.Services() {
		svc := n.registry.lookup(ref.RID)
		if svc == nil {
			continue
		}
		if target := svc.resolveCommand(name); target != nil {
			return target
		}
	}
	return nil
}

// Subscribe registers a listener for a property key and returns a
// handle for unsubscribing. A composite resource forwards the
// registration to whichever of its services declares the key, so
// subscribing on a device transparently reaches the service that owns
// the property.
//
// Returns ErrUnknownProperty when neither the resource nor any service
// declares the key.
func (n *Node) Subscribe(key string, fn Listener) (string, error) {
	handle := uuid.NewString()
	if err := n.subscribeAs(key, handle, fn); err != nil {
		return "", err
	}
	return handle, nil
}

func (n *Node) subscribeAs(key, handle string, fn Listener) error {
	if _, ok := n.table.property(key); ok {
		n.subMu.Lock()
		if n.subs == nil {
			n.subs = make(map[string]map[string]Listener)
		}
		listeners := n.subs[key]
		if listeners == nil {
			listeners = make(map[string]Listener)
			n.subs[key] = listeners
		}
		listeners[handle] = fn
		n.subMu.Unlock()
		return nil
	}
	registered := false
	for _, ref := range n.Services() {
		svc := n.registry.lookup(ref.RID)
		if svc == nil {
			continue
		}
		if err := svc.subscribeAs(key, handle, fn); err == nil {
			registered = true
		}
	}
	if !registered {
		return ErrUnknownProperty
	}
	return nil
}

// Unsubscribe removes the listener registered under handle for key,
// forwarding through services the same way Subscribe does. Passing
// WildcardHandle clears every listener for the key. Unknown handles are
// ignored.
func (n *Node) Unsubscribe(key, handle string) {
	if _, ok := n.table.property(key); ok {
		n.subMu.Lock()
		if handle == WildcardHandle {
			delete(n.subs, key)
		} else if listeners := n.subs[key]; listeners != nil {
			delete(listeners, handle)
			if len(listeners) == 0 {
				delete(n.subs, key)
			}
		}
		n.subMu.Unlock()
		return
	}
	for _, ref := range n.Services() {
		if svc := n.registry.lookup(ref.RID); svc != nil {
			svc.Unsubscribe(key, handle)
		}
	}
}

// listenerCount reports registered listeners for a key.
func (n *Node) listenerCount(key string) int {
	n.subMu.RLock()
	defer n.subMu.RUnlock()
	return len(n.subs[key])
}

// applyDelta folds a partial update into the node. For each declared
// property present in the delta, the value is extracted and compared;
// a real change stores the value and publishes it. Kinds with an
// override handler skip the walk entirely. Afterwards, the owning
// resource (if any) is notified that a child changed.
func (n *Node) applyDelta(delta map[string]any) {
	if n.table.Override != nil {
		n.table.Override(n, delta)
	} else {
		n.mergeFraming(delta)
		for _, p := range n.table.Properties {
			if _, present := delta[p.Key]; !present {
				continue
			}
			value, ok := p.Extract(delta)
			if !ok {
				continue
			}
			n.valMu.Lock()
			old := n.values[p.Key]
			if !p.changed(old, value) {
				n.valMu.Unlock()
				continue
			}
			n.values[p.Key] = value
			n.valMu.Unlock()
			n.publish(p.Key, value)
		}
	}

	if owner := n.Owner(); owner != nil {
		if parent := n.registry.lookup(owner.RID); parent != nil {
			parent.childChanged(n)
		}
	}
}

// childChanged fires the composite aggregation signal, if declared.
func (n *Node) childChanged(child *Node) {
	if _, ok := n.table.property("child_changed"); ok {
		n.publish("child_changed", child.ID())
	}
}

// publish fans a property change out to all listeners on (id, key),
// then to the registry's change sink. Invocation order across listeners
// is unspecified.
func (n *Node) publish(key string, value any) {
	n.subMu.RLock()
	listeners := make([]Listener, 0, len(n.subs[key]))
	for _, fn := range n.subs[key] {
		listeners = append(listeners, fn)
	}
	n.subMu.RUnlock()

	for _, fn := range listeners {
		fn(value)
	}

	n.registry.notifyChange(ChangeEvent{
		ID:        n.id,
		Kind:      n.kind,
		Name:      n.Name(),
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UTC(),
	})
}

// mergeFraming folds the relationship and display fields of a payload
// into the node. Fields absent from the payload are left untouched, so
// partial deltas never erase framing set by the initial fetch.
func (n *Node) mergeFraming(payload map[string]any) {
	n.frameMu.Lock()
	defer n.frameMu.Unlock()

	if n.raw == nil {
		n.raw = make(map[string]any)
	}
	for k, v := range payload {
		n.raw[k] = v
	}

	if v, ok := payload["owner"]; ok {
		if ref, ok := refFrom(v); ok {
			n.owner = &ref
		}
	}
	if v, ok := payload["services"]; ok {
		n.services = refsFrom(v)
	}
	if v, ok := payload["children"]; ok {
		n.children = refsFrom(v)
	}
	if v, ok := payload["metadata"]; ok {
		if m, ok := v.(map[string]any); ok {
			if name, ok := m["name"].(string); ok {
				n.metadata.Name = name
			}
			if arch, ok := m["archetype"].(string); ok {
				n.metadata.Archetype = arch
			}
		}
	}
	if v, ok := payload["product_data"]; ok {
		if m, ok := v.(map[string]any); ok {
			if s, ok := m["model_id"].(string); ok {
				n.product.ModelID = s
			}
			if s, ok := m["manufacturer_name"].(string); ok {
				n.product.ManufacturerName = s
			}
			if s, ok := m["product_name"].(string); ok {
				n.product.ProductName = s
			}
			if s, ok := m["product_archetype"].(string); ok {
				n.product.ProductArchetype = s
			}
			if s, ok := m["software_version"].(string); ok {
				n.product.SoftwareVersion = s
			}
			if b, ok := m["certified"].(bool); ok {
				n.product.Certified = b
			}
		}
	}
}

// refFrom parses a single weak reference from a decoded JSON value.
func refFrom(v any) (Ref, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Ref{}, false
	}
	rid, _ := m["rid"].(string)
	if rid == "" {
		return Ref{}, false
	}
	rtype, _ := m["rtype"].(string)
	return Ref{RID: rid, RType: Kind(rtype)}, true
}

// refsFrom parses an ordered reference list from a decoded JSON value.
// Order is preserved; it is the capability-merge contract.
func refsFrom(v any) []Ref {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	refs := make([]Ref, 0, len(list))
	for _, item := range list {
		if ref, ok := refFrom(item); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}
