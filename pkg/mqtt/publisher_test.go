package mqtt

import "testing"

func TestFormatTopic(t *testing.T) {
	got := FormatTopic("fleet/alerts/{kind}/{type}", map[string]string{"kind": "anomaly", "type": "Crane"})
	if got != "fleet/alerts/anomaly/Crane" {
		t.Fatalf("unexpected topic %q", got)
	}
	if got := FormatTopic("fleet/alerts", map[string]string{"kind": "x"}); got != "fleet/alerts" {
		t.Fatalf("expected pattern without placeholders unchanged, got %q", got)
	}
}
