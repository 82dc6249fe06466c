package core

import "github.com/shopspring/decimal"

// CalendarWeeks is the span of the payment calendar.
const CalendarWeeks = 4

// Summary holds the dashboard totals, computed over each card's latest entry.
type Summary struct {
	TotalBalance   float64 `json:"totalBalance"`
	TotalAvailable float64 `json:"totalAvailable"`
	TotalRemaining float64 `json:"totalRemaining"`
	AvgUtilization float64 `json:"avgUtilization"`
	DueSoon        float64 `json:"dueSoon"`
	OverLimitCount int     `json:"overLimitCount"`
	CardCount      int     `json:"cardCount"`
}

// CalendarItem is a card whose latest entry is due on a calendar day.
type CalendarItem struct {
	CardID string  `json:"cardId"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Amount float64 `json:"amount"`
}

type CalendarDay struct {
	Date  string         `json:"date"`
	Today bool           `json:"today"`
	Due   []CalendarItem `json:"due"`
}

// Summarize computes the dashboard totals. Average utilization is divided by
// the number of cards, including cards that have no entry yet. DueSoon counts
// remaining statement balances due within DaysForDueSoon days, overdue
// included.
func Summarize(cards []Card, entries []Entry, today string) Summary {
	latest := LatestEntriesByCard(cards, entries)

	var balance, available, remaining, dueSoon decimal.Decimal
	var utilSum float64
	s := Summary{CardCount: len(cards)}

	for i := range cards {
		c := &cards[i]
		e, ok := latest[c.ID]
		if !ok {
			continue
		}
		balance = balance.Add(decimal.NewFromFloat(e.CurrentBalance))
		available = available.Add(decimal.NewFromFloat(e.AvailableCredit))
		remaining = remaining.Add(decimal.NewFromFloat(e.RemainingStmt))
		utilSum += Utilization(&e, c)

		if d, ok := DaysTillDue(&e, today); ok && d <= DaysForDueSoon {
			dueSoon = dueSoon.Add(decimal.NewFromFloat(e.RemainingStmt))
		}
		if e.OverLimit != nil && *e.OverLimit > 0 {
			s.OverLimitCount++
		}
	}

	s.TotalBalance = balance.InexactFloat64()
	s.TotalAvailable = available.InexactFloat64()
	s.TotalRemaining = remaining.InexactFloat64()
	s.DueSoon = dueSoon.InexactFloat64()
	if len(cards) > 0 {
		s.AvgUtilization = utilSum / float64(len(cards))
	}
	return s
}

// DueCalendar lays out weeks*7 days starting on the Sunday of today's week and
// lists, per day, the cards whose latest entry is due that day. An invalid
// today yields nil.
func DueCalendar(cards []Card, entries []Entry, today string, weeks int) []CalendarDay {
	start, ok := StartOfWeek(today)
	if !ok || weeks <= 0 {
		return nil
	}
	latest := LatestEntriesByCard(cards, entries)

	byDate := make(map[string][]CalendarItem)
	for _, c := range cards {
		e, ok := latest[c.ID]
		if !ok || e.DueDate == nil {
			continue
		}
		byDate[*e.DueDate] = append(byDate[*e.DueDate], CalendarItem{
			CardID: c.ID,
			Name:   c.Name,
			Color:  c.Color,
			Amount: e.RemainingStmt,
		})
	}

	days := make([]CalendarDay, 0, weeks*7)
	for i := 0; i < weeks*7; i++ {
		date, _ := AddDays(start, i)
		days = append(days, CalendarDay{
			Date:  date,
			Today: date == today,
			Due:   byDate[date],
		})
	}
	return days
}
