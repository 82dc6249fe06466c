package core

import "math"

const (
	// UtilizationCeiling caps displayed utilization; the real excess over the
	// limit is tracked by Entry.OverLimit.
	UtilizationCeiling = 999.9

	daysInYear          = 365.0
	averageDaysPerMonth = 30.44
)

// CardMetrics bundles the derived figures for a card and its latest entry.
type CardMetrics struct {
	CardID            string  `json:"cardId"`
	HasEntry          bool    `json:"hasEntry"`
	Utilization       float64 `json:"utilization"`
	OverTarget        bool    `json:"overTarget"`
	DaysTillDue       *int    `json:"daysTillDue"`
	DaysTillClose     *int    `json:"daysTillClose"`
	EstimatedInterest float64 `json:"estimatedInterest"`
}

// Utilization returns the balance as a percentage of the card limit. A
// missing entry, a missing or non-positive limit, and a credit balance all
// yield 0.
func Utilization(e *Entry, c *Card) float64 {
	if e == nil || c == nil || c.Limit <= 0 {
		return 0
	}
	if e.CurrentBalance < 0 {
		return 0
	}
	return math.Min(e.CurrentBalance/c.Limit*100, UtilizationCeiling)
}

// DaysTillDue returns the days from today until the entry's due date.
func DaysTillDue(e *Entry, today string) (int, bool) {
	if e == nil || e.DueDate == nil {
		return 0, false
	}
	return DaysBetween(today, *e.DueDate)
}

// DaysTillClose returns the days from today until the statement closes.
func DaysTillClose(e *Entry, today string) (int, bool) {
	if e == nil || e.StatementEnd == nil {
		return 0, false
	}
	return DaysBetween(today, *e.StatementEnd)
}

// EstimatedInterest projects one month of interest on the current balance
// with daily compounding over an average month:
//
//	balance * ((1 + apr/100/365)^30.44 - 1)
func EstimatedInterest(e *Entry, c *Card) float64 {
	if e == nil || c == nil || c.APR <= 0 {
		return 0
	}
	if e.CurrentBalance <= 0 {
		return 0
	}
	dailyRate := c.APR / 100 / daysInYear
	interest := e.CurrentBalance * (math.Pow(1+dailyRate, averageDaysPerMonth) - 1)
	return math.Max(0, interest)
}

// MetricsFor computes every derived figure for card given its latest entry
// (nil when the card has none).
func MetricsFor(c Card, latest *Entry, today string) CardMetrics {
	m := CardMetrics{
		CardID:            c.ID,
		HasEntry:          latest != nil,
		Utilization:       Utilization(latest, &c),
		EstimatedInterest: EstimatedInterest(latest, &c),
	}
	m.OverTarget = latest != nil && m.Utilization > c.UtilTarget
	if d, ok := DaysTillDue(latest, today); ok {
		m.DaysTillDue = &d
	}
	if d, ok := DaysTillClose(latest, today); ok {
		m.DaysTillClose = &d
	}
	return m
}
