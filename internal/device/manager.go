package device

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger defines the logging interface used by the Manager.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DefaultRebootDelay is how long a reboot command takes to complete.
const DefaultRebootDelay = 5 * time.Second

// CommandReboot is the only command devices currently understand.
const CommandReboot = "reboot"

// Manager provides device lifecycle management over a Repository.
//
// All reads go to the repository; the Manager holds no cache. Change
// notifications are emitted only after the repository write has committed,
// so an observer that reads back immediately always sees the new state.
// Concurrent writers follow last-write-wins semantics at the database.
//
// All public methods are thread-safe.
type Manager struct {
	repo        Repository
	notifier    Notifier
	logger      Logger
	rebootDelay time.Duration
}

// NewManager creates a new device manager.
// Notifications and logging are no-ops until wired with SetNotifier and SetLogger.
func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:        repo,
		notifier:    noopNotifier{},
		logger:      noopLogger{},
		rebootDelay: DefaultRebootDelay,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetNotifier sets the change notifier for the manager.
// Use Notifiers to fan out to multiple sinks.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifier = n
}

// SetRebootDelay overrides the simulated reboot duration. Primarily for tests.
func (m *Manager) SetRebootDelay(d time.Duration) {
	m.rebootDelay = d
}

// AddDevice validates and persists a new device, then announces it.
// The device's ID and CreatedAt are assigned during persistence.
func (m *Manager) AddDevice(ctx context.Context, d *Device) error {
	d.Type = Type(strings.ToLower(string(d.Type)))
	d.Status = Status(strings.ToLower(string(d.Status)))

	if err := ValidateDevice(d); err != nil {
		return err
	}

	if err := m.repo.Insert(ctx, d); err != nil {
		return err
	}

	m.notifier.DeviceChanged(d.ID, ChangeCreated)

	m.logger.Info("device added", "id", d.ID, "name", d.Name, "type", d.Type)
	return nil
}

// ListDevices retrieves devices matching the filter.
// A zero filter returns all devices.
func (m *Manager) ListDevices(ctx context.Context, f Filter) ([]Device, error) {
	return m.repo.List(ctx, f)
}

// FindDevice retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
func (m *Manager) FindDevice(ctx context.Context, id int64) (*Device, error) {
	return m.repo.GetByID(ctx, id)
}

// UpdateDevice applies a partial update to an existing device.
// Fields left nil in the update keep their current values. The updated
// device is returned. No change notification is emitted for updates.
func (m *Manager) UpdateDevice(ctx context.Context, id int64, u Update) (*Device, error) {
	existing, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		existing.Name = *u.Name
	}
	if u.Type != nil {
		existing.Type = Type(strings.ToLower(string(*u.Type)))
	}
	if u.Status != nil {
		existing.Status = Status(strings.ToLower(string(*u.Status)))
	}

	if err := ValidateDevice(existing); err != nil {
		return nil, err
	}

	if err := m.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	m.logger.Info("device updated", "id", existing.ID, "name", existing.Name)
	return existing, nil
}

// DeleteDevice removes a device, then announces the removal.
// Returns ErrDeviceNotFound if the device does not exist.
func (m *Manager) DeleteDevice(ctx context.Context, id int64) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}

	m.notifier.DeviceChanged(id, ChangeDeleted)

	m.logger.Info("device deleted", "id", id)
	return nil
}

// SendCommand dispatches a command to a device.
//
// The device must exist; absent devices yield ErrDeviceNotFound. The only
// recognised command is "reboot" (case-insensitive), which blocks for the
// configured reboot delay to simulate the device cycling. Cancelling the
// context aborts the wait early. Unknown commands yield ErrInvalidCommand.
func (m *Manager) SendCommand(ctx context.Context, id int64, command string) error {
	if _, err := m.repo.GetByID(ctx, id); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(command)) {
	case CommandReboot:
		m.logger.Info("rebooting device", "id", id, "delay", m.rebootDelay)

		timer := time.NewTimer(m.rebootDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			m.logger.Warn("reboot interrupted", "id", id, "reason", ctx.Err())
			return fmt.Errorf("rebooting device: %w", ctx.Err())
		}

		m.logger.Info("device rebooted", "id", id)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCommand, command)
	}
}
