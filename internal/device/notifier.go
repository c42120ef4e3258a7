package device

// ChangeType describes what happened to a device.
type ChangeType string

// Change kinds carried by notifications.
//
// ChangeUpdated is defined for wire completeness but is not emitted by the
// Manager: updates deliberately do not notify, matching the established
// contract with existing subscribers.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeNotification is the ephemeral message pushed to subscribers after a
// committed mutation. It is fire-and-forget and never persisted.
type ChangeNotification struct {
	DeviceID   int64      `json:"device_id"`
	ChangeType ChangeType `json:"change_type"`
}

// Notifier receives exactly one callback per committed mutation.
//
// Implementations must not block for long and must never return control-flow
// errors to the Manager: delivery is best-effort and failures stay inside
// the notifier.
type Notifier interface {
	DeviceChanged(deviceID int64, change ChangeType)
}

// Notifiers fans a notification out to multiple sinks in order.
type Notifiers []Notifier

// DeviceChanged implements Notifier.
func (ns Notifiers) DeviceChanged(deviceID int64, change ChangeType) {
	for _, n := range ns {
		n.DeviceChanged(deviceID, change)
	}
}

// noopNotifier is the default until SetNotifier is called.
type noopNotifier struct{}

func (noopNotifier) DeviceChanged(int64, ChangeType) {}
