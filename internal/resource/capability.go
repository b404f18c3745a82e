package resource

// PropertyDef declares one observable property of a resource kind.
//
// Key is the top-level field in the resource payload that carries the
// property. Extract pulls the typed value out of a full payload or a
// delta; it returns false when the field is absent or malformed.
// Changed decides whether a freshly extracted value should replace the
// stored one and trigger a publish. A nil Changed means value inequality.
type PropertyDef struct {
	Key     string
	Extract func(raw map[string]any) (any, bool)
	Changed func(old, new any) bool
}

// changed applies the property's change predicate.
func (p PropertyDef) changed(old, new any) bool {
	if p.Changed != nil {
		return p.Changed(old, new)
	}
	return old != new
}

// CapabilityTable declares what a resource kind can report and accept.
//
// Properties are ordered; the order is the conflict-resolution contract
// for capability merging across services (first writer wins). Commands
// lists the command names the kind accepts. Override, when set, replaces
// the generic per-property delta walk entirely; composite kinds use it
// to maintain framing fields instead of leaf values.
type CapabilityTable struct {
	Properties []PropertyDef
	Commands   []string
	Override   func(n *Node, delta map[string]any)
}

// property returns the definition for key, if declared.
func (t *CapabilityTable) property(key string) (PropertyDef, bool) {
	for _, p := range t.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return PropertyDef{}, false
}

// hasCommand reports whether the table declares the named command.
func (t *CapabilityTable) hasCommand(name string) bool {
	for _, c := range t.Commands {
		if c == name {
			return true
		}
	}
	return false
}

// emptyTable backs inert stand-ins for dangling references. It declares
// nothing, so subscriptions and commands fail softly instead of panicking.
var emptyTable = &CapabilityTable{}

// nested walks a chain of map keys and returns the value at the end.
func nested(raw map[string]any, path ...string) (any, bool) {
	var cur any = raw
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// boolAt extracts a boolean at the given path.
func boolAt(path ...string) func(map[string]any) (any, bool) {
	return func(raw map[string]any) (any, bool) {
		v, ok := nested(raw, path...)
		if !ok {
			return nil, false
		}
		b, ok := v.(bool)
		return b, ok
	}
}

// floatAt extracts a float64 at the given path. JSON numbers decode to
// float64, so integer fields pass through here too.
func floatAt(path ...string) func(map[string]any) (any, bool) {
	return func(raw map[string]any) (any, bool) {
		v, ok := nested(raw, path...)
		if !ok {
			return nil, false
		}
		f, ok := v.(float64)
		return f, ok
	}
}

// stringAt extracts a string at the given path.
func stringAt(path ...string) func(map[string]any) (any, bool) {
	return func(raw map[string]any) (any, bool) {
		v, ok := nested(raw, path...)
		if !ok {
			return nil, false
		}
		s, ok := v.(string)
		return s, ok
	}
}

// xyAt extracts a color coordinate pair at the given path.
func xyAt(path ...string) func(map[string]any) (any, bool) {
	return func(raw map[string]any) (any, bool) {
		v, ok := nested(raw, path...)
		if !ok {
			return nil, false
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		x, xok := m["x"].(float64)
		y, yok := m["y"].(float64)
		if !xok || !yok {
			return nil, false
		}
		return XY{X: x, Y: y}, true
	}
}

// firstOf tries extractors in order and returns the first hit. The
// bridge reports some values both as a plain field and a timestamped
// report; the report wins when present.
func firstOf(extractors ...func(map[string]any) (any, bool)) func(map[string]any) (any, bool) {
	return func(raw map[string]any) (any, bool) {
		for _, ex := range extractors {
			if v, ok := ex(raw); ok {
				return v, true
			}
		}
		return nil, false
	}
}

// alwaysChanged forces a publish on every delta carrying the key. Event
// sources like buttons repeat the same value for distinct presses, so
// equality-based suppression would swallow real input.
func alwaysChanged(old, new any) bool {
	return true
}

// never is an Extract that matches no delta. It declares a key as
// subscribable without binding it to a payload field; composite kinds
// use it for their synthetic aggregation key.
func never(raw map[string]any) (any, bool) {
	return nil, false
}
