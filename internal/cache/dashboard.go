package cache

import (
	"fmt"
	"time"

	"cctracker/internal/core"
)

// Dashboard is the computed dashboard payload.
type Dashboard struct {
	Summary  core.Summary                `json:"summary"`
	Calendar []core.CalendarDay          `json:"calendar"`
	Metrics  map[string]core.CardMetrics `json:"metrics"`
	Display  DashboardDisplay            `json:"display"`
}

// DashboardDisplay carries the dashboard figures formatted for display.
type DashboardDisplay struct {
	TotalBalance   string                 `json:"totalBalance"`
	TotalAvailable string                 `json:"totalAvailable"`
	TotalRemaining string                 `json:"totalRemaining"`
	AvgUtilization string                 `json:"avgUtilization"`
	DueSoon        string                 `json:"dueSoon"`
	Cards          map[string]CardDisplay `json:"cards"`
}

type CardDisplay struct {
	Limit             string `json:"limit"`
	Balance           string `json:"balance"`
	Utilization       string `json:"utilization"`
	EstimatedInterest string `json:"estimatedInterest"`
}

// DashboardCache memoizes dashboards per store revision and calendar day.
// A new revision or a new day produces a new key, so entries never go stale.
type DashboardCache struct {
	lru *LRUCache[Dashboard]
}

func NewDashboardCache(size int, ttl time.Duration) *DashboardCache {
	return &DashboardCache{lru: NewLRUCache[Dashboard](size, ttl)}
}

// Get returns the cached dashboard or computes and stores it.
func (d *DashboardCache) Get(revision uint64, today string, compute func() Dashboard) (Dashboard, bool) {
	key := fmt.Sprintf("%d|%s", revision, today)
	if v, ok := d.lru.Get(key); ok {
		return v, true
	}
	v := compute()
	d.lru.Set(key, v)
	return v, false
}

func (d *DashboardCache) CleanExpired() int { return d.lru.CleanExpired() }

// BuildDashboard computes the dashboard for a snapshot.
func BuildDashboard(s core.Snapshot, today string) Dashboard {
	latest := core.LatestEntriesByCard(s.Cards, s.Entries)
	metrics := make(map[string]core.CardMetrics, len(s.Cards))
	cards := make(map[string]CardDisplay, len(s.Cards))
	for _, c := range s.Cards {
		var e *core.Entry
		var balance *float64
		if l, ok := latest[c.ID]; ok {
			e = &l
			balance = &l.CurrentBalance
		}
		m := core.MetricsFor(c, e, today)
		metrics[c.ID] = m
		cards[c.ID] = CardDisplay{
			Limit:             core.FormatCurrency(c.Limit),
			Balance:           core.FormatCurrencyPtr(balance),
			Utilization:       core.FormatPercent(m.Utilization),
			EstimatedInterest: core.FormatCurrency(m.EstimatedInterest),
		}
	}

	sum := core.Summarize(s.Cards, s.Entries, today)
	return Dashboard{
		Summary:  sum,
		Calendar: core.DueCalendar(s.Cards, s.Entries, today, core.CalendarWeeks),
		Metrics:  metrics,
		Display: DashboardDisplay{
			TotalBalance:   core.FormatCurrency(sum.TotalBalance),
			TotalAvailable: core.FormatCurrency(sum.TotalAvailable),
			TotalRemaining: core.FormatCurrency(sum.TotalRemaining),
			AvgUtilization: core.FormatPercent(sum.AvgUtilization),
			DueSoon:        core.FormatCurrency(sum.DueSoon),
			Cards:          cards,
		},
	}
}
