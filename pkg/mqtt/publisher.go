package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher owns an MQTT connection used for fire-and-wait publishes.
type Publisher struct {
	client paho.Client
	qos    byte
}

// Config holds MQTT connection settings.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// NewPublisher connects to the broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return &Publisher{client: client, qos: cfg.QoS}, nil
}

// NewPublisherWithClient wraps an existing client.
func NewPublisherWithClient(client paho.Client, qos byte) *Publisher {
	return &Publisher{client: client, qos: qos}
}

// Publish sends payload to topic and waits for the broker ack or ctx expiry.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsConnected returns whether the client is currently connected.
func (p *Publisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects, allowing 250ms for in-flight work.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// FormatTopic replaces {key} placeholders in a topic pattern.
func FormatTopic(pattern string, vars map[string]string) string {
	for k, v := range vars {
		pattern = strings.ReplaceAll(pattern, "{"+k+"}", v)
	}
	return pattern
}
