package mqtt

import "fmt"

// Topic prefixes for the Huelink message bus.
//
// Resource topics use the flat scheme: huelink/{category}/{kind}/{id},
// where kind and id are the bridge's resource kind and uid.
const (
	// TopicPrefix is the base for all Huelink topics.
	TopicPrefix = "huelink"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "huelink/system"
)

// Topics provides builders for Huelink MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ResourceState("light", "7f4a...")
//	// Returns: "huelink/state/light/7f4a..."
type Topics struct{}

// ResourceState returns the topic property changes are published on.
//
// Example: huelink/state/light/7f4ad09c-7e19-4e3e-a14a-92f3e8a4b8d3
func (Topics) ResourceState(kind, id string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, kind, id)
}

// ResourceCommand returns the topic commands for a resource arrive on.
//
// Example: huelink/command/light/7f4ad09c-7e19-4e3e-a14a-92f3e8a4b8d3
func (Topics) ResourceCommand(kind, id string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, kind, id)
}

// SystemStatus returns the online/offline status topic carrying the
// Last Will and Testament.
//
// Example: huelink/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemReady returns the topic the one-shot ready announcement is
// published on after the first successful resync.
//
// Example: huelink/system/ready
func (Topics) SystemReady() string {
	return fmt.Sprintf("%s/ready", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: huelink/command/+/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+/+", TopicPrefix)
}

// AllStates returns a pattern matching every state topic.
//
// Pattern: huelink/state/+/+
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/state/+/+", TopicPrefix)
}
