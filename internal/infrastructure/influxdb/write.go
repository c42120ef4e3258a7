package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceEvent records a device lifecycle event.
//
// This is the primary method for recording registry activity. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteDeviceEvent(42, "created")
//	client.WriteDeviceEvent(42, "deleted")
func (c *Client) WriteDeviceEvent(deviceID int64, changeType string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_events",
		map[string]string{
			"device_id":   strconv.FormatInt(deviceID, 10),
			"change_type": changeType,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandTiming records how long a device command took to complete.
//
// Used for tracking command latency across the fleet, in particular the
// simulated reboot cycle.
func (c *Client) WriteCommandTiming(deviceID int64, command string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_commands",
		map[string]string{
			"device_id": strconv.FormatInt(deviceID, 10),
			"command":   command,
		},
		map[string]interface{}{
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "mdm-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
