package mqtt

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mdmlite/mdm-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "mdm-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"system status", topics.SystemStatus(), "mdm/system/status"},
		{"device events", topics.DeviceEvents(), "mdm/devices/events"},
		{"per-device event", topics.DeviceEvent(42), "mdm/devices/42/event"},
		{"all device events pattern", topics.AllDeviceEvents(), "mdm/devices/+/event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp broker", func(t *testing.T) {
		opts := buildClientOptions(testConfig())

		servers := opts.Servers
		if len(servers) != 1 {
			t.Fatalf("expected 1 broker, got %d", len(servers))
		}
		if got := servers[0].String(); got != "tcp://127.0.0.1:1883" {
			t.Errorf("broker URL = %q, want tcp://127.0.0.1:1883", got)
		}
		if opts.ClientID != "mdm-test" {
			t.Errorf("ClientID = %q, want mdm-test", opts.ClientID)
		}
	})

	t.Run("tls broker uses ssl scheme", func(t *testing.T) {
		cfg := testConfig()
		cfg.Broker.TLS = true
		opts := buildClientOptions(cfg)

		if got := opts.Servers[0].Scheme; got != "ssl" {
			t.Errorf("scheme = %q, want ssl", got)
		}
	})

	t.Run("credentials applied when set", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.Username = "relay"
		cfg.Auth.Password = "secret"
		opts := buildClientOptions(cfg)

		if opts.Username != "relay" {
			t.Errorf("Username = %q, want relay", opts.Username)
		}
		if opts.Password != "secret" {
			t.Errorf("Password = %q, want secret", opts.Password)
		}
	})
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("mdm-test")
	if !strings.Contains(online, `"status":"online"`) || !strings.Contains(online, `"client_id":"mdm-test"`) {
		t.Errorf("online payload = %s", online)
	}

	offline := buildOfflinePayload("mdm-test")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload = %s", offline)
	}
}

func TestPublishValidation(t *testing.T) {
	// A zero client is never connected; validation errors must surface
	// before any network activity.
	c := &Client{cfg: testConfig()}

	t.Run("empty topic", func(t *testing.T) {
		err := c.Publish("", []byte("x"), 1, false)
		if !errors.Is(err, ErrInvalidTopic) {
			t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
		}
	})

	t.Run("invalid qos", func(t *testing.T) {
		err := c.Publish("mdm/devices/events", []byte("x"), 3, false)
		if !errors.Is(err, ErrInvalidQoS) {
			t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		big := make([]byte, maxPayloadSize+1)
		err := c.Publish("mdm/devices/events", big, 1, false)
		if !errors.Is(err, ErrPublishFailed) {
			t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
		}
	})
}

func TestPublishJSON_EncodeError(t *testing.T) {
	c := &Client{cfg: testConfig()}

	// Channels cannot be marshalled; the error must wrap ErrPublishFailed.
	err := c.PublishJSON("mdm/devices/events", make(chan int))
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishJSON() error = %v, want ErrPublishFailed", err)
	}
}

func TestCloseNil(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestSetLogger(t *testing.T) {
	c := &Client{}
	logger := &mockLogger{}

	c.SetLogger(logger)
	if c.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}

	c.SetLogger(nil)
	if c.getLogger() != nil {
		t.Error("getLogger() should be nil after SetLogger(nil)")
	}
}

// mockLogger implements Logger interface for testing.
type mockLogger struct {
	errors []string
	warns  []string
	mu     sync.Mutex
}

func (l *mockLogger) Error(msg string, args ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}
