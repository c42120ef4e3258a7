// Package influxdb provides InfluxDB connectivity for the MDM core service.
//
// It wraps the official influxdb-client-go v2 library with the connection
// management, event writing, and health monitoring patterns used across the
// infrastructure packages.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Device lifecycle events (created, deleted)
//   - Command latency tracking
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "mdm",
//	    Bucket: "events",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record a device event
//	client.WriteDeviceEvent(42, "created")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps event recording off the request path.
package influxdb
