package resource

// Kind identifies the type of a bridge resource.
//
// The set is closed: the mirror only constructs nodes for kinds it has
// a capability table for. Unknown kinds reported by the bridge are
// logged and skipped without failing the surrounding batch.
type Kind string

// Resource kinds served by the CLIP v2 API.
const (
	KindDevice         Kind = "device"
	KindBridge         Kind = "bridge"
	KindBridgeHome     Kind = "bridge_home"
	KindRoom           Kind = "room"
	KindZone           Kind = "zone"
	KindLight          Kind = "light"
	KindGroupedLight   Kind = "grouped_light"
	KindScene          Kind = "scene"
	KindSmartScene     Kind = "smart_scene"
	KindButton         Kind = "button"
	KindRelativeRotary Kind = "relative_rotary"
	KindMotion         Kind = "motion"
	KindTemperature    Kind = "temperature"
	KindLightLevel     Kind = "light_level"
	KindContact        Kind = "contact"
	KindDevicePower    Kind = "device_power"

	KindZigbeeConnectivity       Kind = "zigbee_connectivity"
	KindZgpConnectivity          Kind = "zgp_connectivity"
	KindZigbeeBridgeConnectivity Kind = "zigbee_bridge_connectivity"
)

// AllKinds returns all kinds the mirror constructs nodes for.
func AllKinds() []Kind {
	return []Kind{
		KindDevice, KindBridge, KindBridgeHome, KindRoom, KindZone,
		KindLight, KindGroupedLight, KindScene, KindSmartScene,
		KindButton, KindRelativeRotary, KindMotion, KindTemperature,
		KindLightLevel, KindContact, KindDevicePower,
		KindZigbeeConnectivity, KindZgpConnectivity, KindZigbeeBridgeConnectivity,
	}
}

// Known reports whether this kind has a registered capability table.
func (k Kind) Known() bool {
	_, ok := capabilityTables[k]
	return ok
}
