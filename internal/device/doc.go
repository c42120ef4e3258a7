// Package device provides the device registry core for mdm-core.
//
// It owns the managed-device catalogue: the Device entity, its persistence
// via a Repository, and the Manager that orchestrates lifecycle mutations.
// Every successful mutation is followed by exactly one change notification
// dispatched through the Notifier interface, after the store write has
// committed and never before.
//
// # Key Types
//
//   - Device: a managed endpoint record (identity, type, status, timestamps)
//   - Repository: persistence interface with a SQLite implementation
//   - Manager: lifecycle orchestration (add/list/find/update/delete/command)
//   - Notifier: fan-out hook invoked after committed mutations
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//	mgr := device.NewManager(repo)
//	mgr.SetLogger(log)
//	mgr.SetNotifier(hub)
//
//	dev := &device.Device{Name: "Warehouse Scanner", Type: device.TypeAndroid, Status: device.StatusActive}
//	err := mgr.AddDevice(ctx, dev)
//
// # Thread Safety
//
// The Manager is stateless apart from its injected collaborators and is safe
// for concurrent use. The Repository implementation must also be thread-safe.
package device
