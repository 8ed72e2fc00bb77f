package repository

import (
	"context"
	"errors"

	"SmartRental/internal/domain/models"
)

// ErrArtifactNotFound is returned by an ArtifactSource when no object exists under a name.
var ErrArtifactNotFound = errors.New("artifact not found")

// LedgerSource loads the full rental ledger snapshot.
type LedgerSource interface {
	Name() string
	Load(ctx context.Context) ([]models.RentalEvent, error)
}

// ArtifactSource fetches serialized trained artifacts by logical name
// (e.g. "breakdown_stats", "demand_forecaster_Crane"). Format is the codec
// the bytes are encoded with ("json" or "cbor").
type ArtifactSource interface {
	Name() string
	Fetch(ctx context.Context, name string) (data []byte, format string, err error)
}

// AlertPublisher delivers risk alerts to downstream consumers.
type AlertPublisher interface {
	Name() string
	Publish(ctx context.Context, alert models.RiskAlert) error
	Close() error
}

type Metrics interface {
	RecordPrediction(capability, outcome string)
	RecordAnomaly(equipmentType string, anomalous bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	SetCapability(capability string, available bool)
	SetLedgerSize(events, assets int)
	RecordAlert(backend string, ok bool)
}
