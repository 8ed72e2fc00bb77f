package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]string{"kind": "anomaly"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != `{"kind":"anomaly"}` {
		t.Fatalf("unexpected payload %s", b)
	}
	if b, _ := encodeValue("raw"); string(b) != "raw" {
		t.Fatalf("strings should pass through, got %s", b)
	}
}

func TestParseCompression(t *testing.T) {
	if parseCompression("zstd") != kafka.Zstd {
		t.Fatalf("expected zstd")
	}
	if parseCompression("bogus") != kafka.Gzip {
		t.Fatalf("expected gzip fallback")
	}
}

func TestProducerConfigValidation(t *testing.T) {
	if _, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithRequiredAcks(2)); err == nil {
		t.Fatalf("expected error for acks=2")
	}
	if _, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithBatchSize(0)); err == nil {
		t.Fatalf("expected error for an empty batch")
	}

	cfg := defaultProducerConfig()
	WithTimeouts(0, time.Second)(cfg)
	WithMaxAttempts(0)(cfg)
	if cfg.WriteTimeout != 5*time.Second || cfg.ReadTimeout != time.Second || cfg.MaxAttempts != 3 {
		t.Fatalf("zero values should keep defaults: %+v", cfg)
	}

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithHashByKey(true))
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	if _, ok := p.writer.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("expected hash balancer, got %T", p.writer.Balancer)
	}
	_ = p.Close()
}
