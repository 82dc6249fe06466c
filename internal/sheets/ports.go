// Package sheets mirrors the tracker state into spreadsheet tabs. Row
// building lives here; google and memory provide the destinations.
package sheets

import (
	"context"

	"github.com/shopspring/decimal"

	"cctracker/internal/core"
)

// SnapshotMirror overwrites a destination with the rows of a snapshot.
type SnapshotMirror interface {
	Mirror(ctx context.Context, snap core.Snapshot, today string) error
}

// Row is one spreadsheet row. Cells are strings, float64 or int.
type Row []any

var CardHeader = Row{
	"ID", "Name", "Issuer", "Limit", "APR", "Color", "Util Target",
	"Latest Entry", "Current Balance", "Utilization %", "Over Target",
	"Days Till Due", "Days Till Close", "Est. Monthly Interest",
}

var EntryHeader = Row{
	"ID", "Card ID", "Card", "Date", "Current Balance", "Remaining Stmt",
	"Min Payment", "Available Credit", "Over Limit", "Statement End",
	"Due Date", "Notes",
}

// CardRows returns one row per card, in stored order, with the metrics of
// its latest entry. Metric cells are blank for cards without entries.
func CardRows(s core.Snapshot, today string) []Row {
	latest := core.LatestEntriesByCard(s.Cards, s.Entries)
	rows := make([]Row, 0, len(s.Cards))
	for _, c := range s.Cards {
		row := Row{c.ID, c.Name, string(c.Issuer), c.Limit, c.APR, c.Color, c.UtilTarget}
		e, ok := latest[c.ID]
		if !ok {
			rows = append(rows, append(row, "", "", "", "", "", "", ""))
			continue
		}
		m := core.MetricsFor(c, &e, today)
		row = append(row,
			e.Date,
			e.CurrentBalance,
			round(m.Utilization, 1),
			yesNo(m.OverTarget),
			optionalInt(m.DaysTillDue),
			optionalInt(m.DaysTillClose),
			round(m.EstimatedInterest, 2),
		)
		rows = append(rows, row)
	}
	return rows
}

// EntryRows returns one row per entry, newest first.
func EntryRows(s core.Snapshot) []Row {
	names := make(map[string]string, len(s.Cards))
	for _, c := range s.Cards {
		names[c.ID] = c.Name
	}
	entries := core.EntriesForCard("", s.Entries)
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			e.ID,
			e.CardID,
			names[e.CardID],
			e.Date,
			e.CurrentBalance,
			e.RemainingStmt,
			e.MinPayment,
			e.AvailableCredit,
			optionalFloat(e.OverLimit),
			optionalString(e.StatementEnd),
			optionalString(e.DueDate),
			e.Notes,
		})
	}
	return rows
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func optionalInt(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

func optionalFloat(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func optionalString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
