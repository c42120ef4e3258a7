// Package mqtt provides the optional MQTT event relay for the MDM core service.
//
// This package manages:
//   - Connection to a Mosquitto-compatible broker with auto-reconnect
//   - Publishing device change events with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The relay is publish-only. The registry is the source of truth for device
// state; MQTT exists so that external fleet tooling (dashboards, alerting,
// provisioning pipelines) can react to device changes without polling the
// REST API.
//
//	MDM Core → MQTT Broker → Fleet consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Publish a device change event
//	topic := mqtt.Topics{}.DeviceEvents()
//	client.PublishJSON(topic, event)
package mqtt
