package mqtt

import "fmt"

// Topic prefixes for the MDM topic hierarchy.
//
// All topics live under a single root: mdm/{category}/...
const (
	// TopicPrefix is the root of all MDM topics.
	TopicPrefix = "mdm"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "mdm/system"

	// TopicPrefixDevices is the base for device topics.
	TopicPrefixDevices = "mdm/devices"
)

// Topics provides builders for MDM MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.DeviceEvents()
//	// Returns: "mdm/devices/events"
type Topics struct{}

// SystemStatus returns the service status topic.
//
// Example: mdm/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// DeviceEvents returns the shared topic for device change events.
// Every created/deleted event is published here for fleet-wide consumers.
//
// Example: mdm/devices/events
func (Topics) DeviceEvents() string {
	return fmt.Sprintf("%s/events", TopicPrefixDevices)
}

// DeviceEvent returns the per-device event topic.
// Consumers interested in a single device subscribe here.
//
// Example: mdm/devices/42/event
func (Topics) DeviceEvent(deviceID int64) string {
	return fmt.Sprintf("%s/%d/event", TopicPrefixDevices, deviceID)
}

// AllDeviceEvents returns a pattern matching every per-device event topic.
//
// Pattern: mdm/devices/+/event
func (Topics) AllDeviceEvents() string {
	return fmt.Sprintf("%s/+/event", TopicPrefixDevices)
}
