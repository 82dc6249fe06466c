package core

// Seed values used when no stored state can be loaded.
const (
	SampleCardName  = "Sample Card"
	SampleEntryNote = "Sample entry."

	sampleStatementOffset = 19
	sampleDueOffset       = 33
)

// NewSnapshot returns an empty snapshot with default theme, view and draft.
func NewSnapshot(today string) Snapshot {
	return Snapshot{
		Theme:   ThemeLight,
		View:    ViewDashboard,
		Cards:   []Card{},
		Entries: []Entry{},
		Draft:   NewDraft(today),
	}
}

// SeedSnapshot returns the first-run state: one sample card, selected, with
// one sample entry dated today.
func SeedSnapshot(cardID, entryID, today string) Snapshot {
	card := NewCard(cardID)
	card.Name = SampleCardName

	stmt, _ := AddDays(today, sampleStatementOffset)
	due, _ := AddDays(today, sampleDueOffset)

	s := NewSnapshot(today)
	s.Cards = []Card{card}
	s.Entries = []Entry{{
		ID:              entryID,
		CardID:          cardID,
		Date:            today,
		CurrentBalance:  2500,
		RemainingStmt:   2500,
		MinPayment:      75,
		AvailableCredit: 7500,
		StatementEnd:    &stmt,
		DueDate:         &due,
		Notes:           SampleEntryNote,
	}}
	s.SelectedCardID = cardID
	return s
}
