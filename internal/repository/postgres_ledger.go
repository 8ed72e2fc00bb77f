package repository

import (
	"context"
	"fmt"

	"SmartRental/internal/domain/models"
	pkgpg "SmartRental/pkg/postgres"

	"github.com/jmoiron/sqlx"
)

// PGLedger loads the rental ledger from a Postgres table through sqlx.
type PGLedger struct {
	db    *sqlx.DB
	table string
}

func NewPGLedger(pg *pkgpg.Client, table string) *PGLedger {
	return &PGLedger{db: pg.DB(), table: table}
}

func (s *PGLedger) Name() string { return "postgres" }

func (s *PGLedger) Load(ctx context.Context) ([]models.RentalEvent, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY checkout_date ASC`, ledgerColumns, s.table)
	var events []models.RentalEvent
	if err := s.db.SelectContext(ctx, &events, q); err != nil {
		return nil, fmt.Errorf("select ledger: %w", err)
	}
	return normalizeEvents(events)
}
