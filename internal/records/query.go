package records

import (
	"context"
	"sort"
	"time"

	"github.com/agroflow/logicapture/internal/models"
)

// ProcessedOn lists records with a processed_at inside the given local day
// (includes later-annulled ones), newest first, paginated.
func (s *Service) ProcessedOn(ctx context.Context, day time.Time, limit, offset int) ([]models.Record, int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).UTC()
	end := start.Add(24 * time.Hour)

	base := s.db.WithContext(ctx).Model(&models.Record{}).
		Where("processed_at IS NOT NULL AND processed_at >= ? AND processed_at < ?", start, end)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Record
	err := base.
		Preload("Driver").Preload("Vehicle").Preload("Carrier").
		Order("processed_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

// History lists records registered inside [from, to], newest first.
// Zero bounds are open ends.
func (s *Service) History(ctx context.Context, from, to time.Time, limit, offset int) ([]models.Record, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Record{})
	if !from.IsZero() {
		base = base.Where("registered_at >= ?", from)
	}
	if !to.IsZero() {
		base = base.Where("registered_at <= ?", to)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Record
	err := base.
		Preload("Driver").Preload("Vehicle").Preload("Carrier").
		Order("registered_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

// DayStats is one dashboard bucket.
type DayStats struct {
	Date      string `json:"fecha"`
	Total     int    `json:"total"`
	Pending   int    `json:"pendientes"`
	Processed int    `json:"procesados"`
	Annulled  int    `json:"anulados"`
}

type StateStats struct {
	State string `json:"estado"`
	Total int    `json:"total"`
}

type CarrierStats struct {
	Name  string `json:"nombre"`
	Total int    `json:"total"`
}

// DashboardStats aggregates the dashboard charts over [from, to].
type DashboardStats struct {
	PerDay     []DayStats     `json:"por_dia"`
	PerState   []StateStats   `json:"por_estado"`
	PerCarrier []CarrierStats `json:"por_transportista"`
	Total      int            `json:"total_registros"`
}

// Stats builds the dashboard aggregation: per-day totals with every day of
// the range present, per-state counts, and the top 10 carriers.
func (s *Service) Stats(ctx context.Context, from, to time.Time) (*DashboardStats, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)

	var rows []models.Record
	err := s.db.WithContext(ctx).
		Preload("Carrier").
		Where("registered_at >= ? AND registered_at <= ?", start, end).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	perDay := make(map[string]*DayStats)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		perDay[key] = &DayStats{Date: key}
	}

	perState := make(map[string]int)
	perCarrier := make(map[string]int)

	for i := range rows {
		r := &rows[i]
		key := r.RegisteredAt.UTC().Format("2006-01-02")
		if day, ok := perDay[key]; ok {
			day.Total++
			switch r.State {
			case models.StatePending:
				day.Pending++
			case models.StateProcessed:
				day.Processed++
			case models.StateAnnulled:
				day.Annulled++
			}
		}

		perState[r.State]++

		name := "Sin asignar"
		if r.Carrier != nil && r.Carrier.Name != "" {
			name = r.Carrier.Name
		}
		perCarrier[name]++
	}

	stats := &DashboardStats{Total: len(rows)}

	for _, day := range perDay {
		stats.PerDay = append(stats.PerDay, *day)
	}
	sort.Slice(stats.PerDay, func(i, j int) bool { return stats.PerDay[i].Date < stats.PerDay[j].Date })

	for state, n := range perState {
		stats.PerState = append(stats.PerState, StateStats{State: state, Total: n})
	}
	sort.Slice(stats.PerState, func(i, j int) bool { return stats.PerState[i].State < stats.PerState[j].State })

	for name, n := range perCarrier {
		stats.PerCarrier = append(stats.PerCarrier, CarrierStats{Name: name, Total: n})
	}
	sort.Slice(stats.PerCarrier, func(i, j int) bool {
		if stats.PerCarrier[i].Total != stats.PerCarrier[j].Total {
			return stats.PerCarrier[i].Total > stats.PerCarrier[j].Total
		}
		return stats.PerCarrier[i].Name < stats.PerCarrier[j].Name
	})
	if len(stats.PerCarrier) > 10 {
		stats.PerCarrier = stats.PerCarrier[:10]
	}

	return stats, nil
}

// ByIDs loads records with associations for the SAP export, newest first.
func (s *Service) ByIDs(ctx context.Context, ids []uint) ([]models.Record, error) {
	var rows []models.Record
	err := s.db.WithContext(ctx).
		Preload("Driver").Preload("Vehicle").Preload("Carrier").
		Where("id IN ?", ids).
		Order("registered_at DESC, id DESC").
		Find(&rows).Error
	return rows, err
}
