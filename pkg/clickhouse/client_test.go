package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

func TestBuildOptions(t *testing.T) {
	cfg := ClientConfig{}
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithPort(9440),
		WithDatabase("smartrental"),
		WithCredentials("svc", "secret"),
		WithHTTP(true),
		WithMaxExecutionTime(90 * time.Second),
	} {
		opt(&cfg)
	}
	opts := buildOptions(cfg)
	if len(opts.Addr) != 1 || opts.Addr[0] != "ch.local:9440" {
		t.Fatalf("unexpected addr %v", opts.Addr)
	}
	if opts.Protocol != ch.HTTP {
		t.Fatalf("expected HTTP protocol")
	}
	if opts.Auth.Database != "smartrental" || opts.Auth.Username != "svc" {
		t.Fatalf("unexpected auth %+v", opts.Auth)
	}
	if opts.Settings["max_execution_time"] != 90 {
		t.Fatalf("unexpected settings %v", opts.Settings)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without host")
	}
}
