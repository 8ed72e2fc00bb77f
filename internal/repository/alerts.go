package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"SmartRental/internal/domain/models"
	"SmartRental/pkg/kafka"
	"SmartRental/pkg/mqtt"
)

// KafkaAlerts publishes risk alerts as JSON keyed by equipment id.
type KafkaAlerts struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaAlerts(p *kafka.Producer, topic string) *KafkaAlerts {
	return &KafkaAlerts{producer: p, topic: topic}
}

func (a *KafkaAlerts) Name() string { return "kafka" }

func (a *KafkaAlerts) Publish(ctx context.Context, alert models.RiskAlert) error {
	key := alert.EquipmentID
	if key == "" {
		key = alert.ID
	}
	if err := a.producer.Publish(ctx, a.topic, []byte(key), alert); err != nil {
		return fmt.Errorf("kafka publish %s: %w", alert.ID, err)
	}
	return nil
}

func (a *KafkaAlerts) Close() error {
	return a.producer.Close()
}

// MQTTAlerts publishes risk alerts to a topic built from a pattern such as
// "fleet/alerts/{kind}/{type}".
type MQTTAlerts struct {
	pub     *mqtt.Publisher
	pattern string
}

func NewMQTTAlerts(pub *mqtt.Publisher, pattern string) *MQTTAlerts {
	return &MQTTAlerts{pub: pub, pattern: pattern}
}

func (a *MQTTAlerts) Name() string { return "mqtt" }

func (a *MQTTAlerts) Publish(ctx context.Context, alert models.RiskAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	typ := alert.EquipmentType
	if typ == "" {
		typ = "unknown"
	}
	topic := mqtt.FormatTopic(a.pattern, map[string]string{
		"kind": alert.Kind,
		"type": typ,
	})
	return a.pub.Publish(ctx, topic, payload)
}

func (a *MQTTAlerts) Close() error {
	a.pub.Close()
	return nil
}
