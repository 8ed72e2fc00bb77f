package codec

import "testing"

type stats struct {
	Mean map[string]float64 `json:"mean" cbor:"mean"`
	Std  map[string]float64 `json:"std" cbor:"std"`
}

func TestFormatFor(t *testing.T) {
	cases := map[string]string{
		"breakdown_stats.json":    FormatJSON,
		"breakdown_stats.CBOR":    FormatCBOR,
		"models/price.cbor":       FormatCBOR,
		"demand_forecaster_Crane": FormatJSON,
	}
	for name, want := range cases {
		if got := FormatFor(name); got != want {
			t.Fatalf("FormatFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestUnmarshalCBORMatchesJSON(t *testing.T) {
	in := stats{
		Mean: map[string]float64{"Operating_Hours": 100},
		Std:  map[string]float64{"Operating_Hours": 10},
	}
	b, err := MarshalCBOR(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fromCBOR stats
	if err := Unmarshal(FormatCBOR, b, &fromCBOR); err != nil {
		t.Fatalf("unmarshal cbor: %v", err)
	}
	var fromJSON stats
	if err := Unmarshal(FormatJSON, []byte(`{"mean":{"Operating_Hours":100},"std":{"Operating_Hours":10}}`), &fromJSON); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if fromCBOR.Mean["Operating_Hours"] != fromJSON.Mean["Operating_Hours"] || fromCBOR.Std["Operating_Hours"] != fromJSON.Std["Operating_Hours"] {
		t.Fatalf("cbor and json decode differ: %+v vs %+v", fromCBOR, fromJSON)
	}
}

func TestUnmarshalUnknownFormat(t *testing.T) {
	var v map[string]any
	if err := Unmarshal("yaml", []byte("a: 1"), &v); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
