package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Draft is the entry being composed or edited. Every field holds the raw text
// the user typed; parsing happens only on save.
type Draft struct {
	Date            string `json:"date"`
	CurrentBalance  string `json:"currentBalance"`
	RemainingStmt   string `json:"remainingStmt"`
	MinPayment      string `json:"minPayment"`
	AvailableCredit string `json:"availableCredit"`
	OverLimit       string `json:"overLimit"`
	StatementEnd    string `json:"statementEnd"`
	DueDate         string `json:"dueDate"`
	Notes           string `json:"notes"`
}

// DraftUpdate is a partial change to a Draft; nil fields are left alone.
type DraftUpdate struct {
	Date            *string `json:"date,omitempty"`
	CurrentBalance  *string `json:"currentBalance,omitempty"`
	RemainingStmt   *string `json:"remainingStmt,omitempty"`
	MinPayment      *string `json:"minPayment,omitempty"`
	AvailableCredit *string `json:"availableCredit,omitempty"`
	OverLimit       *string `json:"overLimit,omitempty"`
	StatementEnd    *string `json:"statementEnd,omitempty"`
	DueDate         *string `json:"dueDate,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// NewDraft returns an empty draft dated today.
func NewDraft(today string) Draft {
	return Draft{Date: today}
}

// DraftFromEntry loads an entry's values into a draft for editing.
func DraftFromEntry(e Entry) Draft {
	d := Draft{
		Date:            e.Date,
		CurrentBalance:  FormatAmount(e.CurrentBalance),
		RemainingStmt:   FormatAmount(e.RemainingStmt),
		MinPayment:      FormatAmount(e.MinPayment),
		AvailableCredit: FormatAmount(e.AvailableCredit),
		Notes:           e.Notes,
	}
	if e.OverLimit != nil {
		d.OverLimit = FormatAmount(*e.OverLimit)
	}
	if e.StatementEnd != nil {
		d.StatementEnd = *e.StatementEnd
	}
	if e.DueDate != nil {
		d.DueDate = *e.DueDate
	}
	return d
}

// Apply returns d with every non-nil field of u copied over.
func (d Draft) Apply(u DraftUpdate) Draft {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.Date, u.Date)
	set(&d.CurrentBalance, u.CurrentBalance)
	set(&d.RemainingStmt, u.RemainingStmt)
	set(&d.MinPayment, u.MinPayment)
	set(&d.AvailableCredit, u.AvailableCredit)
	set(&d.OverLimit, u.OverLimit)
	set(&d.StatementEnd, u.StatementEnd)
	set(&d.DueDate, u.DueDate)
	set(&d.Notes, u.Notes)
	return d
}

// Entry parses the draft into an entry with the given identity. Checks run in
// a fixed order: date, balance, optional amounts, optional dates, notes. The
// first failure is returned as a *ValidationError.
//
// Blank RemainingStmt, MinPayment and AvailableCredit become 0; blank
// OverLimit, StatementEnd and DueDate become nil.
func (d Draft) Entry(id, cardID string) (Entry, error) {
	date := strings.TrimSpace(d.Date)
	if date == "" {
		return Entry{}, invalid("date", ErrNoDate)
	}
	if _, err := ParseDate(date); err != nil {
		return Entry{}, invalid("date", err)
	}

	balance, err := ParseAmount(d.CurrentBalance)
	if err != nil {
		return Entry{}, invalid("currentBalance", ErrNoBalance)
	}

	e := Entry{
		ID:             id,
		CardID:         cardID,
		Date:           date,
		CurrentBalance: balance.InexactFloat64(),
		Notes:          d.Notes,
	}

	amounts := []struct {
		field string
		raw   string
		dst   *float64
	}{
		{"remainingStmt", d.RemainingStmt, &e.RemainingStmt},
		{"minPayment", d.MinPayment, &e.MinPayment},
		{"availableCredit", d.AvailableCredit, &e.AvailableCredit},
	}
	for _, a := range amounts {
		v, _, err := ParseOptionalAmount(a.raw)
		if err != nil {
			return Entry{}, invalid(a.field, err)
		}
		*a.dst = v.InexactFloat64()
	}

	over, set, err := ParseOptionalAmount(d.OverLimit)
	if err != nil {
		return Entry{}, invalid("overLimit", err)
	}
	if set {
		v := over.InexactFloat64()
		e.OverLimit = &v
	}

	if e.StatementEnd, err = optionalDate(d.StatementEnd); err != nil {
		return Entry{}, invalid("statementEnd", err)
	}
	if e.DueDate, err = optionalDate(d.DueDate); err != nil {
		return Entry{}, invalid("dueDate", err)
	}

	if utf8.RuneCountInString(e.Notes) > MaxNotesLength {
		return Entry{}, invalid("notes", fmt.Errorf("%w (max %d characters)", ErrNotesTooLong, MaxNotesLength))
	}
	return e, nil
}

func optionalDate(s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if _, err := ParseDate(s); err != nil {
		return nil, err
	}
	return &s, nil
}
