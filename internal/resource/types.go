package resource

import "time"

// Ref is a weak reference to another resource. References are resolved
// through the registry at use time; they are never stored as direct
// pointers between nodes.
type Ref struct {
	RID   string `json:"rid"`
	RType Kind   `json:"rtype"`
}

// Metadata carries the display fields the bridge attaches to most resources.
type Metadata struct {
	Name      string `json:"name,omitempty"`
	Archetype string `json:"archetype,omitempty"`
}

// ProductData carries manufacturing details reported for devices.
type ProductData struct {
	ModelID          string `json:"model_id,omitempty"`
	ManufacturerName string `json:"manufacturer_name,omitempty"`
	ProductName      string `json:"product_name,omitempty"`
	ProductArchetype string `json:"product_archetype,omitempty"`
	SoftwareVersion  string `json:"software_version,omitempty"`
	Certified        bool   `json:"certified,omitempty"`
}

// XY is a point in the bridge's native color space. Coordinates are
// passed through as-is; no color-science conversion is performed.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Listener receives the new value of a property it is subscribed to.
// Listeners are invoked synchronously from the delta-dispatch goroutine;
// a slow listener stalls the pipeline.
type Listener func(value any)

// ChangeEvent describes one observed property change. Events are fanned
// out to the registry's change sink after per-node listeners have run.
type ChangeEvent struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Hooks are registry-level lifecycle callbacks. All hooks are optional
// and are invoked outside the registry's index lock, on the same
// goroutine that performed the mutation.
type Hooks struct {
	OnAdded    func(*Node)
	OnModified func(*Node)
	OnDeleted  func(*Node)
}
