// Package api implements the HTTP REST API and WebSocket server for MDM Core.
//
// This package provides:
//   - REST endpoints for device CRUD and command dispatch
//   - WebSocket hub for real-time device change notifications
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// The API server sits between management consoles and the device registry.
// Mutations flow through the device Manager, which pushes change
// notifications back out to WebSocket clients (and any other notifier
// sinks, such as MQTT or the time-series recorder) after the database
// write commits.
//
// # Notifications
//
// WebSocket delivery is fire-and-forget: a slow or disconnected client is
// skipped for that broadcast but stays registered until its connection
// tears down. Clients that need a consistent view re-fetch over REST.
package api
