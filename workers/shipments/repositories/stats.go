package repositories

import (
	"context"

	"courier-bridge-service/workers/shipments/models"
	"github.com/shopspring/decimal"
)

type DayStats struct {
	Total       int             `json:"total"`
	Eshop       int             `json:"eshop"`
	Manual      int             `json:"manual"`
	WithVoucher int             `json:"withVoucher"`
	Ready       int             `json:"ready"`
	PickedUp    int             `json:"pickedUp"`
	CODTotal    decimal.Decimal `json:"codTotal"`
}

type PeriodStats struct {
	Days           int             `json:"days"`
	TotalShipments int             `json:"totalShipments"`
	EshopOrders    int             `json:"eshopOrders"`
	ManualEntries  int             `json:"manualEntries"`
	CODCollected   decimal.Decimal `json:"codCollected"`
	AveragePerDay  float64         `json:"averagePerDay"`
}

// TodayStats summarises the shipments created today.
func (r *Repository) TodayStats(ctx context.Context) (*DayStats, error) {
	start, end := dayBounds(r.now())
	shipments, err := r.ListShipments(ctx, ShipmentFilter{From: &start, To: &end})
	if err != nil {
		return nil, err
	}

	stats := &DayStats{CODTotal: decimal.Zero}
	for _, s := range shipments {
		stats.Total++
		switch s.Source {
		case models.SourceStore:
			stats.Eshop++
		case models.SourceManual:
			stats.Manual++
		}
		if s.HasVoucher() {
			stats.WithVoucher++
		}
		switch s.Status {
		case models.StatusReady:
			stats.Ready++
		case models.StatusPickedUp:
			stats.PickedUp++
		}
		stats.CODTotal = stats.CODTotal.Add(s.CODAmount)
	}
	return stats, nil
}

// PeriodStats summarises the last days days, today included.
func (r *Repository) PeriodStats(ctx context.Context, days int) (*PeriodStats, error) {
	if days <= 0 {
		days = 30
	}
	start, _ := dayBounds(r.now().AddDate(0, 0, -days))
	shipments, err := r.ListShipments(ctx, ShipmentFilter{From: &start})
	if err != nil {
		return nil, err
	}

	stats := &PeriodStats{Days: days, CODCollected: decimal.Zero}
	for _, s := range shipments {
		stats.TotalShipments++
		switch s.Source {
		case models.SourceStore:
			stats.EshopOrders++
		case models.SourceManual:
			stats.ManualEntries++
		}
		stats.CODCollected = stats.CODCollected.Add(s.CODAmount)
	}
	stats.AveragePerDay = float64(stats.TotalShipments) / float64(days)
	return stats, nil
}
