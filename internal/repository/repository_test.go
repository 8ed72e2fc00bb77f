package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domrepo "SmartRental/internal/domain/repository"
	"SmartRental/pkg/codec"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const ledgerCSV = "\ufeffEquipment_ID,Customer_ID,Type,Model,GPS_Location,CheckOut_Date,Planned_Return_Date,CheckIn_Date,Operating_Hours,Breakdowns,Utilization_Rate,Extra\n" +
	"EQ1,C1,Crane,330C,Site_B,2024-01-01,2024-01-10,2024-01-09 00:00:00,5.5,1.0,0.4,x\n" +
	"EQ2,C2,Loader,950GC,Site_C,2024-02-01 13:45:00,2024-02-10,,7,0,0.6,y\n"

func TestReadLedgerCSV(t *testing.T) {
	events, err := ReadLedgerCSV(context.Background(), strings.NewReader(ledgerCSV))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	e1, e2 := events[0], events[1]
	if e1.EquipmentID != "EQ1" || e1.Site != "Site_B" || e1.OperatingHours != 5.5 || e1.Breakdowns != 1 {
		t.Fatalf("unexpected first event %+v", e1)
	}
	if e1.CheckIn == nil || !e1.CheckIn.Equal(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected check-in %v", e1.CheckIn)
	}
	if e2.CheckIn != nil {
		t.Fatalf("empty check-in must read as nil")
	}
	if !e2.CheckOut.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("checkout must be truncated to the day, got %v", e2.CheckOut)
	}
}

func TestReadLedgerCSVErrors(t *testing.T) {
	cases := map[string]string{
		"missing column": "Equipment_ID,CheckOut_Date\nEQ1,2024-01-01\n",
		"bad number":     "Equipment_ID,CheckOut_Date,Planned_Return_Date,Operating_Hours\nEQ1,2024-01-01,2024-01-02,lots\n",
		"bad date":       "Equipment_ID,CheckOut_Date,Planned_Return_Date\nEQ1,yesterday,2024-01-02\n",
		"no id":          "Equipment_ID,CheckOut_Date,Planned_Return_Date\n,2024-01-01,2024-01-02\n",
	}
	for name, in := range cases {
		if _, err := ReadLedgerCSV(context.Background(), strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFileArtifacts(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "breakdown_stats.json"), []byte(`{"mean":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rental_predictor.cbor"), []byte{0xa0}, 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewFileArtifacts(dir)
	ctx := context.Background()

	if _, format, err := src.Fetch(ctx, "breakdown_stats"); err != nil || format != codec.FormatJSON {
		t.Fatalf("json artifact: %q %v", format, err)
	}
	if _, format, err := src.Fetch(ctx, "rental_predictor"); err != nil || format != codec.FormatCBOR {
		t.Fatalf("cbor artifact: %q %v", format, err)
	}
	if _, _, err := src.Fetch(ctx, "price_predictor"); !errors.Is(err, domrepo.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

type fakeS3 map[string][]byte

func (f fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Artifacts(t *testing.T) {
	src := NewS3ArtifactsWithClient(fakeS3{
		"models/v3/demand_forecaster_Crane.cbor": {0xa0},
	}, "models", "v3")
	ctx := context.Background()

	data, format, err := src.Fetch(ctx, "demand_forecaster_Crane")
	if err != nil || format != codec.FormatCBOR || len(data) != 1 {
		t.Fatalf("fetch: %v %q %v", data, format, err)
	}
	if _, _, err := src.Fetch(ctx, "demand_forecaster_Loader"); !errors.Is(err, domrepo.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}
