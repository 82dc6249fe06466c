package dataio

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"cctracker/internal/core"
)

func sample() core.Snapshot {
	s := core.SeedSnapshot("c1", "e1", "2024-01-20")
	s.Theme = core.ThemeDark
	s.View = core.ViewLog
	s.Draft.Notes = "half typed"
	return s
}

func TestExportDocument(t *testing.T) {
	now := time.Date(2024, 1, 20, 15, 4, 5, 0, time.UTC)
	doc := Export(sample(), now)
	if doc.Version != "1.0" || doc.ExportDate != "2024-01-20T15:04:05Z" || doc.Theme != core.ThemeDark {
		t.Fatalf("unexpected header %+v", doc)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"version", "exportDate", "theme", "cards", "entries"} {
		if _, ok := raw[k]; !ok {
			t.Fatalf("exported document lacks %q", k)
		}
	}
	for _, k := range []string{"draft", "view", "selectedCardId"} {
		if _, ok := raw[k]; ok {
			t.Fatalf("exported document leaks session field %q", k)
		}
	}
}

func TestDecodeValidation(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		field string
	}{
		{"not json", `nope`, ""},
		{"not object", `[1,2]`, ""},
		{"cards missing", `{"entries":[]}`, "cards"},
		{"entries not list", `{"cards":[],"entries":{}}`, "entries"},
		{"card not object", `{"cards":[3],"entries":[]}`, "cards[0]"},
		{"card without name", `{"cards":[{"id":"a","name":"","limit":1,"apr":1}],"entries":[]}`, "cards[0].name"},
		{"card limit string", `{"cards":[{"id":"a","name":"A","limit":"1","apr":1}],"entries":[]}`, "cards[0].limit"},
		{"card without apr", `{"cards":[{"id":"a","name":"A","limit":1}],"entries":[]}`, "cards[0].apr"},
		{"entry without cardId", `{"cards":[],"entries":[{"id":"e","date":"2024-01-01","currentBalance":1}]}`, "entries[0].cardId"},
		{"entry without date", `{"cards":[],"entries":[{"id":"e","cardId":"a","currentBalance":1}]}`, "entries[0].date"},
		{"entry balance null", `{"cards":[],"entries":[{"id":"e","cardId":"a","date":"x","currentBalance":null}]}`, "entries[0].currentBalance"},
		{"card unknown issuer", `{"cards":[{"id":"a","name":"A","limit":1,"apr":1,"issuer":"Visa"}],"entries":[]}`, "cards[0].issuer"},
		{"card negative limit", `{"cards":[{"id":"a","name":"A","limit":-5,"apr":1}],"entries":[]}`, "cards[0].limit"},
		{"card apr above 100", `{"cards":[{"id":"a","name":"A","limit":1,"apr":250}],"entries":[]}`, "cards[0].apr"},
		{"card named color", `{"cards":[{"id":"a","name":"A","limit":1,"apr":1},{"id":"b","name":"B","limit":1,"apr":1,"color":"red"}],"entries":[]}`, "cards[1].color"},
		{"entry bad date", `{"cards":[],"entries":[{"id":"e","cardId":"a","date":"not-a-date","currentBalance":1}]}`, "entries[0].date"},
		{"entry negative statement", `{"cards":[],"entries":[{"id":"e","cardId":"a","date":"2024-01-01","currentBalance":1,"remainingStmt":-9}]}`, "entries[0].remainingStmt"},
		{"entry bad due date", `{"cards":[],"entries":[{"id":"e","cardId":"a","date":"2024-01-01","currentBalance":1,"dueDate":"soon"}]}`, "entries[0].dueDate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.doc))
			if !errors.Is(err, core.ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
			var ve *core.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("field = %v, want %q", err, tc.field)
			}
		})
	}
}

func TestDecodeDefaultsAndOptionalHeader(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"cards":[{"id":"a","name":"A","limit":500,"apr":0}],"entries":[]}`))
	if err != nil {
		t.Fatal(err)
	}
	c := doc.Cards[0]
	if c.Issuer != core.DefaultIssuer || c.Color != core.DefaultColor || c.UtilTarget != core.DefaultUtilTarget {
		t.Fatalf("defaults not applied to sparse card: %+v", c)
	}
	if c.Limit != 500 || c.APR != 0 {
		t.Fatalf("explicit values lost: %+v", c)
	}
	if doc.Version != "" || doc.Entries == nil {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestReconcileReplace(t *testing.T) {
	cur := sample()
	cur.EditingEntryID = "e1"
	doc := Document{
		Theme: core.ThemeLight,
		Cards: []core.Card{core.NewCard("x"), core.NewCard("y")},
		Entries: []core.Entry{
			{ID: "n1", CardID: "y", Date: "2024-01-01"},
			{ID: "n2", CardID: "x", Date: "2024-01-02"},
		},
	}
	next := Reconcile(cur, doc, ModeReplace)

	if len(next.Cards) != 2 || next.Cards[0].ID != "x" || len(next.Entries) != 2 || next.Entries[0].ID != "n1" {
		t.Fatalf("imported lists not adopted in order: %+v", next)
	}
	if next.SelectedCardID != "x" || next.EditingEntryID != "" {
		t.Fatalf("selection %q editing %q", next.SelectedCardID, next.EditingEntryID)
	}
	if next.Theme != core.ThemeLight || next.Draft.Notes != "half typed" {
		t.Fatalf("theme %s draft %+v", next.Theme, next.Draft)
	}
	if len(cur.Cards) != 1 || cur.Cards[0].ID != "c1" {
		t.Fatal("Reconcile mutated its input")
	}

	empty := Reconcile(cur, Document{Cards: []core.Card{}, Entries: []core.Entry{}}, ModeReplace)
	if empty.SelectedCardID != "" || empty.Theme != core.ThemeDark {
		t.Fatalf("empty replace: selection %q theme %s", empty.SelectedCardID, empty.Theme)
	}
}

func TestReconcileMergeDedupes(t *testing.T) {
	cur := sample()
	dup := core.NewCard("c1")
	dup.Name = "Imported"
	doc := Document{
		Theme: core.ThemeLight,
		Cards: []core.Card{dup, core.NewCard("z"), core.NewCard("z")},
		Entries: []core.Entry{
			{ID: "e1", CardID: "z", Date: "2023-01-01"},
			{ID: "m1", CardID: "z", Date: "2024-01-01"},
			{ID: "m1", CardID: "c1", Date: "2024-01-02"},
		},
	}
	next := Reconcile(cur, doc, ModeMerge)

	if len(next.Cards) != 2 || next.Cards[0].Name != core.SampleCardName || next.Cards[1].ID != "z" {
		t.Fatalf("unexpected cards %+v", next.Cards)
	}
	if len(next.Entries) != 2 || next.Entries[0].CardID != "c1" || next.Entries[1].CardID != "z" {
		t.Fatalf("unexpected entries %+v", next.Entries)
	}
	if next.Theme != core.ThemeDark || next.SelectedCardID != "c1" {
		t.Fatal("merge must keep theme and selection")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeReplace, "replace": ModeReplace, " Merge ": ModeMerge} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("append"); !errors.Is(err, core.ErrInvalidImportMode) {
		t.Fatalf("expected ErrInvalidImportMode, got %v", err)
	}
}
