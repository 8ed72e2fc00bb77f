package usecase

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"SmartRental/internal/domain/models"
	"SmartRental/pkg/util"
)

const (
	DefaultUtilizationThreshold = 0.5
	DefaultReturnWindowDays     = 7
	maxReturnWindowDays         = 3650
)

// ErrEmptyLedger is returned when a ledger snapshot holds no events.
var ErrEmptyLedger = errors.New("rental ledger is empty")

// AssetLedger is a read-only, checkout-ordered view over the rental ledger.
// Every "current" answer is derived relative to ReferenceDate, the latest
// checkout in the snapshot.
type AssetLedger struct {
	events  []models.RentalEvent
	ref     time.Time
	latest  map[string]int
	byAsset map[string][]int
	ids     []string
}

// NewAssetLedger copies and stably sorts events by checkout date. Events that
// share a checkout date keep their input order, so the later one is "latest".
func NewAssetLedger(events []models.RentalEvent) (*AssetLedger, error) {
	if len(events) == 0 {
		return nil, ErrEmptyLedger
	}
	evs := make([]models.RentalEvent, len(events))
	copy(evs, events)
	sort.SliceStable(evs, func(i, j int) bool {
		return evs[i].CheckOut.Before(evs[j].CheckOut)
	})

	l := &AssetLedger{
		events:  evs,
		ref:     evs[len(evs)-1].CheckOut,
		latest:  make(map[string]int),
		byAsset: make(map[string][]int),
	}
	for i, e := range evs {
		if _, seen := l.byAsset[e.EquipmentID]; !seen {
			l.ids = append(l.ids, e.EquipmentID)
		}
		l.latest[e.EquipmentID] = i
		l.byAsset[e.EquipmentID] = append(l.byAsset[e.EquipmentID], i)
	}
	sort.Strings(l.ids)
	return l, nil
}

// ReferenceDate is the as-of date for every derived answer.
func (l *AssetLedger) ReferenceDate() time.Time {
	return l.ref
}

// Size returns the number of events and distinct assets.
func (l *AssetLedger) Size() (events, assets int) {
	return len(l.events), len(l.ids)
}

// Status derives every asset's state from its latest rental, ordered by id.
func (l *AssetLedger) Status(f models.StatusFilter) models.FleetStatus {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := models.FleetStatus{AsOf: l.ref, Assets: make([]models.AssetStatus, 0, len(l.ids))}
	for _, id := range l.ids {
		st := l.statusOf(l.events[l.latest[id]])
		if f.State != "" && st.State != f.State {
			continue
		}
		if f.Location != "" && st.Site != f.Location {
			continue
		}
		if search != "" && !matches(search, st.EquipmentID, st.Type, st.Model) {
			continue
		}
		out.Assets = append(out.Assets, st)
	}
	return out
}

func (l *AssetLedger) statusOf(e models.RentalEvent) models.AssetStatus {
	st := models.AssetStatus{
		EquipmentID:         e.EquipmentID,
		Type:                e.Type,
		Model:               e.Model,
		EquipmentAgeYears:   e.EquipmentAgeYears,
		Site:                e.Site,
		LastOperatingHours:  e.OperatingHours,
		LastUtilizationRate: e.UtilizationRate,
		LastBreakdowns:      e.Breakdowns,
	}
	if e.ActiveAt(l.ref) {
		planned := e.PlannedReturn
		st.State = models.StateActive
		st.CustomerID = e.CustomerID
		st.PlannedReturn = &planned
	} else {
		returned := *e.CheckIn
		st.State = models.StateIdle
		st.LastReturned = &returned
	}
	return st
}

func matches(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// History summarizes every rental of one asset, most recent first.
func (l *AssetLedger) History(equipmentID string) (models.AssetHistory, error) {
	idx, ok := l.byAsset[equipmentID]
	if !ok {
		return models.AssetHistory{}, &models.NotFoundError{Kind: "rental history", Key: equipmentID}
	}

	sum := models.HistorySummary{TotalRentals: len(idx), RentalsPerSite: map[string]int{}}
	var days, hours, idle, fuel float64
	rentals := make([]models.RentalEvent, 0, len(idx))
	for i := len(idx) - 1; i >= 0; i-- {
		e := l.events[idx[i]]
		days += e.RentalDurationDays
		hours += e.OperatingHours
		idle += e.IdleHours
		fuel += e.FuelConsumed
		sum.LifetimeBreakdowns += e.Breakdowns
		sum.RentalsPerSite[e.Site]++
		rentals = append(rentals, e)
	}
	// Totals truncate toward zero.
	sum.TotalRentalDays = int64(days)
	sum.TotalOperatingHours = int64(hours)
	sum.TotalIdleHours = int64(idle)
	sum.TotalFuelLiters = util.Round2(fuel)

	return models.AssetHistory{EquipmentID: equipmentID, Summary: sum, Rentals: rentals}, nil
}

// ParseThreshold reads a utilization threshold; empty means the default.
func ParseThreshold(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultUtilizationThreshold, nil
	}
	v, err := util.ParseFiniteFloat(raw)
	if err != nil {
		return 0, models.NewInvalidInput("threshold", "%q is not a number", raw)
	}
	return v, nil
}

// Underutilized lists assets whose mean utilization over all rentals is
// strictly below threshold, with their latest type, model and site.
func (l *AssetLedger) Underutilized(threshold float64) ([]models.UnderutilizedAsset, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, models.NewInvalidInput("threshold", "must be finite")
	}
	out := make([]models.UnderutilizedAsset, 0)
	for _, id := range l.ids {
		idx := l.byAsset[id]
		total := 0.0
		for _, i := range idx {
			total += l.events[i].UtilizationRate
		}
		avg := total / float64(len(idx))
		if !(avg < threshold) {
			continue
		}
		last := l.events[l.latest[id]]
		out = append(out, models.UnderutilizedAsset{
			EquipmentID:        id,
			AverageUtilization: avg,
			Type:               last.Type,
			Model:              last.Model,
			Site:               last.Site,
		})
	}
	return out, nil
}

// ParseDays reads a non-negative whole number of days; empty means the default.
func ParseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultReturnWindowDays, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewInvalidInput("days_out", "%q is not an integer", raw)
	}
	if n < 0 || n > maxReturnWindowDays {
		return 0, models.NewInvalidInput("days_out", "must be between 0 and %d", maxReturnWindowDays)
	}
	return n, nil
}

// ReturnsDue lists rentals still out at ReferenceDate whose planned return
// falls in [ReferenceDate, ReferenceDate+days].
func (l *AssetLedger) ReturnsDue(days int) (models.ReturnWindow, error) {
	if days < 0 {
		return models.ReturnWindow{}, models.NewInvalidInput("days_out", "must be non-negative")
	}
	to := util.AddDays(l.ref, days)
	w := models.ReturnWindow{Days: days, From: l.ref, To: to, Due: make([]models.ReturnDue, 0)}
	for _, e := range l.events {
		if !e.ActiveAt(l.ref) {
			continue
		}
		if e.PlannedReturn.Before(l.ref) || e.PlannedReturn.After(to) {
			continue
		}
		w.Due = append(w.Due, models.ReturnDue{
			EquipmentID:   e.EquipmentID,
			Type:          e.Type,
			Model:         e.Model,
			CustomerID:    e.CustomerID,
			Site:          e.Site,
			PlannedReturn: e.PlannedReturn,
		})
	}
	return w, nil
}

// FormatThreshold renders a threshold the way reports label it: 0.5 -> "<50%".
func FormatThreshold(threshold float64) string {
	return fmt.Sprintf("<%.0f%%", threshold*100)
}
