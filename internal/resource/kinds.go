package resource

// capabilityTables is the factory's closed kind set. Each entry maps a
// kind to its capability table; property order within a table is the
// first-writer-wins merge order and must not be reordered.
var capabilityTables = map[Kind]*CapabilityTable{
	KindLight: {
		Properties: []PropertyDef{
			{Key: "on", Extract: boolAt("on", "on")},
			{Key: "dimming", Extract: floatAt("dimming", "brightness")},
			{Key: "color_temperature", Extract: floatAt("color_temperature", "mirek")},
			{Key: "color", Extract: xyAt("color", "xy")},
		},
		Commands: []string{"on", "dimming", "color", "color_temperature"},
	},

	KindGroupedLight: {
		Properties: []PropertyDef{
			{Key: "on", Extract: boolAt("on", "on")},
			{Key: "dimming", Extract: floatAt("dimming", "brightness")},
			{Key: "color_temperature", Extract: floatAt("color_temperature", "mirek")},
			{Key: "color", Extract: xyAt("color", "xy")},
		},
		Commands: []string{"on", "dimming", "color", "color_temperature"},
	},

	KindScene: {
		Properties: []PropertyDef{
			{Key: "status", Extract: stringAt("status", "active")},
		},
		Commands: []string{"recall"},
	},

	KindSmartScene: {
		Properties: []PropertyDef{
			{Key: "state", Extract: stringAt("state")},
		},
		Commands: []string{"recall"},
	},

	// Input kinds republish every report: the bridge repeats identical
	// values for distinct physical events, so equality suppression
	// would swallow real presses and turns.
	KindButton: {
		Properties: []PropertyDef{
			{
				Key: "button",
				Extract: firstOf(
					stringAt("button", "button_report", "event"),
					stringAt("button", "last_event"),
				),
				Changed: alwaysChanged,
			},
		},
	},

	KindRelativeRotary: {
		Properties: []PropertyDef{
			{
				Key: "relative_rotary",
				Extract: firstOf(
					floatAt("relative_rotary", "rotary_report", "rotation", "steps"),
					floatAt("relative_rotary", "last_event", "rotation", "steps"),
				),
				Changed: alwaysChanged,
			},
		},
	},

	KindMotion: {
		Properties: []PropertyDef{
			{
				Key: "motion",
				Extract: firstOf(
					boolAt("motion", "motion_report", "motion"),
					boolAt("motion", "motion"),
				),
			},
			{Key: "enabled", Extract: boolAt("enabled")},
		},
	},

	KindTemperature: {
		Properties: []PropertyDef{
			{
				Key: "temperature",
				Extract: firstOf(
					floatAt("temperature", "temperature_report", "temperature"),
					floatAt("temperature", "temperature"),
				),
			},
			{Key: "enabled", Extract: boolAt("enabled")},
		},
	},

	KindLightLevel: {
		Properties: []PropertyDef{
			{
				Key: "light",
				Extract: firstOf(
					floatAt("light", "light_level_report", "light_level"),
					floatAt("light", "light_level"),
				),
			},
			{Key: "enabled", Extract: boolAt("enabled")},
		},
	},

	KindContact: {
		Properties: []PropertyDef{
			{Key: "contact_report", Extract: stringAt("contact_report", "state")},
			{Key: "enabled", Extract: boolAt("enabled")},
		},
	},

	KindDevicePower: {
		Properties: []PropertyDef{
			{Key: "power_state", Extract: floatAt("power_state", "battery_level")},
		},
	},

	KindZigbeeConnectivity: {
		Properties: []PropertyDef{
			{Key: "status", Extract: stringAt("status")},
		},
	},

	KindZgpConnectivity: {
		Properties: []PropertyDef{
			{Key: "status", Extract: stringAt("status")},
		},
	},

	KindZigbeeBridgeConnectivity: {
		Properties: []PropertyDef{
			{Key: "status", Extract: stringAt("status")},
		},
	},

	// Composite kinds aggregate services. Their override keeps framing
	// fields current instead of walking leaf properties, and the
	// synthetic child_changed key lets callers observe re-render points.
	KindDevice: {
		Properties: []PropertyDef{
			{Key: "name", Extract: never},
			{Key: "child_changed", Extract: never},
		},
		Override: compositeOverride,
	},

	KindRoom: {
		Properties: []PropertyDef{
			{Key: "name", Extract: never},
			{Key: "child_changed", Extract: never},
		},
		Override: compositeOverride,
	},

	KindZone: {
		Properties: []PropertyDef{
			{Key: "name", Extract: never},
			{Key: "child_changed", Extract: never},
		},
		Override: compositeOverride,
	},

	KindBridgeHome: {
		Properties: []PropertyDef{
			{Key: "child_changed", Extract: never},
		},
		Override: compositeOverride,
	},

	KindBridge: {
		Properties: []PropertyDef{
			{Key: "time_zone", Extract: stringAt("time_zone", "time_zone")},
		},
	},
}

// compositeOverride refreshes a composite node's framing from a delta.
// Composites have no leaf values of their own; a delta means the bridge
// changed the grouping itself (renamed, regrouped, services added).
func compositeOverride(n *Node, delta map[string]any) {
	oldName := n.Name()
	n.mergeFraming(delta)
	if name := n.Name(); name != oldName {
		n.publish("name", name)
	}
}
