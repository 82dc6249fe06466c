package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	IssuerChase      Issuer = "Chase"
	IssuerAmEx       Issuer = "AmEx"
	IssuerDiscover   Issuer = "Discover"
	IssuerCiti       Issuer = "Citi"
	IssuerCapitalOne Issuer = "Capital One"
	IssuerOther      Issuer = "Other"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const (
	ViewDashboard View = "dashboard"
	ViewCards     View = "cards"
	ViewLog       View = "log"
)

// Defaults for newly created cards.
const (
	DefaultCardName   = "New Card"
	DefaultIssuer     = IssuerChase
	DefaultLimit      = 10000.0
	DefaultAPR        = 19.99
	DefaultColor      = "#4F7CFF"
	DefaultUtilTarget = 30.0
)

const (
	MaxCardNameLength = 50
	MaxNotesLength    = 500
	DaysForDueSoon    = 7
)

var presetColors = []string{
	"#4F7CFF", "#FF6B6B", "#51CF66", "#FFD43B",
	"#9775FA", "#FF8787", "#339AF0", "#FFA94D",
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type (
	Issuer string
	Theme  string
	View   string

	Card struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		Issuer     Issuer  `json:"issuer"`
		Limit      float64 `json:"limit"`
		APR        float64 `json:"apr"`
		Color      string  `json:"color"`
		UtilTarget float64 `json:"utilTarget"`
	}

	// Entry is a dated snapshot of a card's balance. CurrentBalance may be
	// negative when the card carries a credit.
	Entry struct {
		ID              string   `json:"id"`
		CardID          string   `json:"cardId"`
		Date            string   `json:"date"`
		CurrentBalance  float64  `json:"currentBalance"`
		RemainingStmt   float64  `json:"remainingStmt"`
		MinPayment      float64  `json:"minPayment"`
		AvailableCredit float64  `json:"availableCredit"`
		OverLimit       *float64 `json:"overLimit"`
		StatementEnd    *string  `json:"statementEnd"`
		DueDate         *string  `json:"dueDate"`
		Notes           string   `json:"notes"`
	}

	// Snapshot is the complete persisted application state.
	Snapshot struct {
		Theme          Theme   `json:"theme"`
		View           View    `json:"view"`
		Cards          []Card  `json:"cards"`
		Entries        []Entry `json:"entries"`
		SelectedCardID string  `json:"selectedCardId"`
		Draft          Draft   `json:"draft"`
		EditingEntryID string  `json:"editingEntryId"`
	}
)

// Issuers lists the accepted card issuers in display order.
func Issuers() []Issuer {
	return []Issuer{IssuerChase, IssuerAmEx, IssuerDiscover, IssuerCiti, IssuerCapitalOne, IssuerOther}
}

// PresetColors returns the swatches offered for card colors. DefaultColor
// comes first.
func PresetColors() []string {
	return append([]string(nil), presetColors...)
}

func (i Issuer) IsValid() bool {
	for _, v := range Issuers() {
		if i == v {
			return true
		}
	}
	return false
}

func (t Theme) IsValid() bool { return t == ThemeLight || t == ThemeDark }

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (v View) IsValid() bool {
	switch v {
	case ViewDashboard, ViewCards, ViewLog:
		return true
	}
	return false
}

// NewCard returns a card carrying the documented defaults.
func NewCard(id string) Card {
	return Card{
		ID:         id,
		Name:       DefaultCardName,
		Issuer:     DefaultIssuer,
		Limit:      DefaultLimit,
		APR:        DefaultAPR,
		Color:      DefaultColor,
		UtilTarget: DefaultUtilTarget,
	}
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return invalid("id", ErrEmptyID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if utf8.RuneCountInString(c.Name) > MaxCardNameLength {
		return invalid("name", fmt.Errorf("%w (max %d characters)", ErrNameTooLong, MaxCardNameLength))
	}
	if !c.Issuer.IsValid() {
		return invalid("issuer", fmt.Errorf("%w: %q", ErrInvalidIssuer, c.Issuer))
	}
	if c.Limit < 0 {
		return invalid("limit", ErrNegativeValue)
	}
	if c.APR < 0 || c.APR > 100 {
		return invalid("apr", ErrOutOfRange)
	}
	if c.UtilTarget < 0 || c.UtilTarget > 100 {
		return invalid("utilTarget", ErrOutOfRange)
	}
	if !hexColor.MatchString(c.Color) {
		return invalid("color", fmt.Errorf("%w: %q", ErrInvalidColor, c.Color))
	}
	return nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return invalid("id", ErrEmptyID)
	}
	if strings.TrimSpace(e.CardID) == "" {
		return invalid("cardId", ErrEmptyID)
	}
	if _, err := ParseDate(e.Date); err != nil {
		return invalid("date", err)
	}
	if e.RemainingStmt < 0 {
		return invalid("remainingStmt", ErrNegativeValue)
	}
	if e.MinPayment < 0 {
		return invalid("minPayment", ErrNegativeValue)
	}
	if e.AvailableCredit < 0 {
		return invalid("availableCredit", ErrNegativeValue)
	}
	if e.OverLimit != nil && *e.OverLimit < 0 {
		return invalid("overLimit", ErrNegativeValue)
	}
	if e.StatementEnd != nil {
		if _, err := ParseDate(*e.StatementEnd); err != nil {
			return invalid("statementEnd", err)
		}
	}
	if e.DueDate != nil {
		if _, err := ParseDate(*e.DueDate); err != nil {
			return invalid("dueDate", err)
		}
	}
	if utf8.RuneCountInString(e.Notes) > MaxNotesLength {
		return invalid("notes", fmt.Errorf("%w (max %d characters)", ErrNotesTooLong, MaxNotesLength))
	}
	return nil
}

// FindCard returns the index of the card with the given id, or -1.
func (s Snapshot) FindCard(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return i
		}
	}
	return -1
}

// FindEntry returns the index of the entry with the given id, or -1.
func (s Snapshot) FindEntry(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Entries {
		if s.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers never share slices or pointers with
// the store.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Cards = append([]Card(nil), s.Cards...)
	out.Entries = make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		out.Entries[i] = e.Clone()
	}
	if s.Cards == nil {
		out.Cards = []Card{}
	}
	return out
}

func (e Entry) Clone() Entry {
	out := e
	if e.OverLimit != nil {
		v := *e.OverLimit
		out.OverLimit = &v
	}
	if e.StatementEnd != nil {
		v := *e.StatementEnd
		out.StatementEnd = &v
	}
	if e.DueDate != nil {
		v := *e.DueDate
		out.DueDate = &v
	}
	return out
}

// Repair enforces the reference invariants: every entry points at an existing
// card, the selection points at an existing card or is empty, and the editing
// id points at an existing entry or is empty. It returns one message per fix.
func (s *Snapshot) Repair(today string) []string {
	var fixes []string

	if s.Cards == nil {
		s.Cards = []Card{}
	}
	if s.Entries == nil {
		s.Entries = []Entry{}
	}
	if !s.Theme.IsValid() {
		fixes = append(fixes, fmt.Sprintf("theme %q reset to %q", s.Theme, ThemeLight))
		s.Theme = ThemeLight
	}
	if !s.View.IsValid() {
		fixes = append(fixes, fmt.Sprintf("view %q reset to %q", s.View, ViewDashboard))
		s.View = ViewDashboard
	}

	cardIDs := make(map[string]struct{}, len(s.Cards))
	for _, c := range s.Cards {
		cardIDs[c.ID] = struct{}{}
	}
	kept := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if _, ok := cardIDs[e.CardID]; !ok {
			fixes = append(fixes, fmt.Sprintf("dropped orphan entry %s (card %s)", e.ID, e.CardID))
			continue
		}
		kept = append(kept, e)
	}
	s.Entries = kept

	if s.SelectedCardID != "" {
		if _, ok := cardIDs[s.SelectedCardID]; !ok {
			next := ""
			if len(s.Cards) > 0 {
				next = s.Cards[0].ID
			}
			fixes = append(fixes, fmt.Sprintf("selection %s moved to %q", s.SelectedCardID, next))
			s.SelectedCardID = next
		}
	}

	if s.EditingEntryID != "" && s.FindEntry(s.EditingEntryID) < 0 {
		fixes = append(fixes, fmt.Sprintf("edit of missing entry %s cancelled", s.EditingEntryID))
		s.EditingEntryID = ""
		s.Draft = NewDraft(today)
	}
	return fixes
}
