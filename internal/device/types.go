package device

import "time"

// Type classifies the managed device's platform.
type Type string

// Supported device types.
const (
	TypeAndroid Type = "android"
	TypeWindows Type = "windows"
)

// AllTypes returns every supported device type.
func AllTypes() []Type {
	return []Type{TypeAndroid, TypeWindows}
}

// Status describes the device's current lifecycle state.
type Status string

// Supported statuses.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusOffline  Status = "offline"
)

// AllStatuses returns every supported status.
func AllStatuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusOffline}
}

// Device represents a managed endpoint tracked by the registry.
// This matches the devices table created by the embedded migrations.
type Device struct {
	// ID is system-assigned on insert and immutable afterwards.
	ID int64 `json:"id"`

	// Name is a free-text label; uniqueness is not enforced.
	Name string `json:"device_name"`

	Type   Type   `json:"device_type"`
	Status Status `json:"status"`

	// CreatedAt is set once at insert time.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt and LastSeenAt are nil until the first mutation.
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// Filter narrows ListDevices results. Zero-value fields are ignored;
// set fields are matched exactly, case-insensitively.
type Filter struct {
	Type   string
	Status string
}

// IsZero reports whether the filter has no constraints.
func (f Filter) IsZero() bool {
	return f.Type == "" && f.Status == ""
}

// Update carries a partial device mutation. Nil fields are left untouched;
// this is explicitly partial-update, not full-replace, semantics.
type Update struct {
	Name   *string
	Type   *Type
	Status *Status
}

// IsZero reports whether the update would change nothing.
func (u Update) IsZero() bool {
	return u.Name == nil && u.Type == nil && u.Status == nil
}
