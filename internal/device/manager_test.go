package device

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingNotifier captures emitted change notifications for assertions.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []ChangeNotification
}

func (n *recordingNotifier) DeviceChanged(deviceID int64, change ChangeType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, ChangeNotification{DeviceID: deviceID, ChangeType: change})
}

func (n *recordingNotifier) recorded() []ChangeNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ChangeNotification, len(n.changes))
	copy(out, n.changes)
	return out
}

func setupTestManager(t *testing.T) (*Manager, *recordingNotifier) {
	t.Helper()

	db := setupTestDB(t)
	mgr := NewManager(NewSQLiteRepository(db))
	notifier := &recordingNotifier{}
	mgr.SetNotifier(notifier)
	mgr.SetRebootDelay(10 * time.Millisecond)
	return mgr, notifier
}

func TestManager_AddDevice(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and notifies created", func(t *testing.T) {
		mgr, notifier := setupTestManager(t)

		device := &Device{Name: "Forklift Tablet", Type: TypeAndroid, Status: StatusActive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}
		if device.ID == 0 {
			t.Fatal("AddDevice() did not assign an ID")
		}

		got, err := mgr.FindDevice(ctx, device.ID)
		if err != nil {
			t.Fatalf("FindDevice() error = %v", err)
		}
		if got.Name != "Forklift Tablet" {
			t.Errorf("Name = %q, want %q", got.Name, "Forklift Tablet")
		}

		changes := notifier.recorded()
		if len(changes) != 1 {
			t.Fatalf("recorded %d notifications, want 1", len(changes))
		}
		if changes[0].DeviceID != device.ID || changes[0].ChangeType != ChangeCreated {
			t.Errorf("notification = %+v, want {%d created}", changes[0], device.ID)
		}
	})

	t.Run("normalises enum case before validation", func(t *testing.T) {
		mgr, _ := setupTestManager(t)

		device := &Device{Name: "Mixed Case", Type: Type("Android"), Status: Status("ACTIVE")}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}
		if device.Type != TypeAndroid {
			t.Errorf("Type = %q, want %q", device.Type, TypeAndroid)
		}
		if device.Status != StatusActive {
			t.Errorf("Status = %q, want %q", device.Status, StatusActive)
		}
	})

	t.Run("rejects invalid device without notifying", func(t *testing.T) {
		mgr, notifier := setupTestManager(t)

		device := &Device{Name: "Bad Type", Type: Type("ios"), Status: StatusActive}
		err := mgr.AddDevice(ctx, device)
		if !errors.Is(err, ErrInvalidDeviceType) {
			t.Fatalf("AddDevice() error = %v, want ErrInvalidDeviceType", err)
		}
		if len(notifier.recorded()) != 0 {
			t.Error("validation failure must not emit notifications")
		}
	})
}

func TestManager_UpdateDevice(t *testing.T) {
	ctx := context.Background()

	t.Run("applies partial update without notifying", func(t *testing.T) {
		mgr, notifier := setupTestManager(t)

		device := &Device{Name: "Dock Kiosk", Type: TypeWindows, Status: StatusActive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}

		newStatus := StatusOffline
		updated, err := mgr.UpdateDevice(ctx, device.ID, Update{Status: &newStatus})
		if err != nil {
			t.Fatalf("UpdateDevice() error = %v", err)
		}
		if updated.Status != StatusOffline {
			t.Errorf("Status = %q, want %q", updated.Status, StatusOffline)
		}
		if updated.Name != "Dock Kiosk" {
			t.Errorf("Name = %q, want unchanged %q", updated.Name, "Dock Kiosk")
		}
		if updated.UpdatedAt == nil {
			t.Error("UpdatedAt = nil, want timestamp after update")
		}

		// Only the creation should have been announced.
		changes := notifier.recorded()
		if len(changes) != 1 || changes[0].ChangeType != ChangeCreated {
			t.Errorf("recorded %+v, want only the created notification", changes)
		}
	})

	t.Run("rejects invalid field values", func(t *testing.T) {
		mgr, _ := setupTestManager(t)

		device := &Device{Name: "Valid", Type: TypeAndroid, Status: StatusActive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}

		bad := Status("broken")
		_, err := mgr.UpdateDevice(ctx, device.ID, Update{Status: &bad})
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("UpdateDevice() error = %v, want ErrInvalidStatus", err)
		}
	})

	t.Run("returns ErrDeviceNotFound for missing device", func(t *testing.T) {
		mgr, _ := setupTestManager(t)

		name := "Ghost"
		_, err := mgr.UpdateDevice(ctx, 9999, Update{Name: &name})
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("UpdateDevice() error = %v, want ErrDeviceNotFound", err)
		}
	})
}

func TestManager_DeleteDevice(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and notifies deleted", func(t *testing.T) {
		mgr, notifier := setupTestManager(t)

		device := &Device{Name: "Retired Handset", Type: TypeAndroid, Status: StatusInactive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}

		if err := mgr.DeleteDevice(ctx, device.ID); err != nil {
			t.Fatalf("DeleteDevice() error = %v", err)
		}

		if _, err := mgr.FindDevice(ctx, device.ID); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("FindDevice() after delete error = %v, want ErrDeviceNotFound", err)
		}

		changes := notifier.recorded()
		if len(changes) != 2 {
			t.Fatalf("recorded %d notifications, want 2", len(changes))
		}
		if changes[1].DeviceID != device.ID || changes[1].ChangeType != ChangeDeleted {
			t.Errorf("notification = %+v, want {%d deleted}", changes[1], device.ID)
		}
	})

	t.Run("missing device yields no notification", func(t *testing.T) {
		mgr, notifier := setupTestManager(t)

		err := mgr.DeleteDevice(ctx, 9999)
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Fatalf("DeleteDevice() error = %v, want ErrDeviceNotFound", err)
		}
		if len(notifier.recorded()) != 0 {
			t.Error("failed delete must not emit notifications")
		}
	})
}

func TestManager_SendCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("reboot blocks for the configured delay", func(t *testing.T) {
		mgr, _ := setupTestManager(t)
		mgr.SetRebootDelay(50 * time.Millisecond)

		device := &Device{Name: "Reboot Target", Type: TypeWindows, Status: StatusActive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}

		start := time.Now()
		if err := mgr.SendCommand(ctx, device.ID, "reboot"); err != nil {
			t.Fatalf("SendCommand() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
			t.Errorf("reboot returned after %v, want >= 50ms", elapsed)
		}
	})

	t.Run("reboot command is case-insensitive", func(t *testing.T) {
		mgr, _ := setupTestManager(t)

		device := &Device{Name: "Shouty Admin", Type: TypeAndroid, Status: StatusActive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}

		if err := mgr.SendCommand(ctx, device.ID, "REBOOT"); err != nil {
			t.Errorf("SendCommand() error = %v", err)
		}
	})

	t.Run("cancelled context aborts the reboot wait", func(t *testing.T) {
		mgr, _ := setupTestManager(t)
		mgr.SetRebootDelay(10 * time.Second)

		device := &Device{Name: "Slow Reboot", Type: TypeAndroid, Status: StatusActive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}

		cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := mgr.SendCommand(cancelCtx, device.ID, "reboot")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("SendCommand() error = %v, want context.DeadlineExceeded", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("cancelled reboot took %v, want prompt return", elapsed)
		}
	})

	t.Run("unknown command yields ErrInvalidCommand", func(t *testing.T) {
		mgr, _ := setupTestManager(t)

		device := &Device{Name: "Confused Device", Type: TypeWindows, Status: StatusActive}
		if err := mgr.AddDevice(ctx, device); err != nil {
			t.Fatalf("AddDevice() error = %v", err)
		}

		err := mgr.SendCommand(ctx, device.ID, "self-destruct")
		if !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("SendCommand() error = %v, want ErrInvalidCommand", err)
		}
	})

	t.Run("missing device yields ErrDeviceNotFound", func(t *testing.T) {
		mgr, _ := setupTestManager(t)

		err := mgr.SendCommand(ctx, 9999, "reboot")
		if !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("SendCommand() error = %v, want ErrDeviceNotFound", err)
		}
	})
}

func TestNotifiers_FanOut(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}

	fan := Notifiers{first, second}
	fan.DeviceChanged(42, ChangeCreated)

	for i, n := range []*recordingNotifier{first, second} {
		changes := n.recorded()
		if len(changes) != 1 {
			t.Fatalf("notifier %d recorded %d notifications, want 1", i, len(changes))
		}
		if changes[0].DeviceID != 42 || changes[0].ChangeType != ChangeCreated {
			t.Errorf("notifier %d recorded %+v", i, changes[0])
		}
	}
}
