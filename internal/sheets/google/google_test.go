package google

import (
	"context"
	"strings"
	"testing"

	"cctracker/internal/core"
	"cctracker/internal/log"
	"cctracker/internal/sheets"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		missing string
	}{
		{"complete", Config{SpreadsheetID: "id", CardsSheet: "Cards", EntriesSheet: "Entries", CredentialsJSON: []byte("{}")}, ""},
		{"no id", Config{CardsSheet: "Cards", EntriesSheet: "Entries", CredentialsJSON: []byte("{}")}, "spreadsheet id"},
		{"no credentials", Config{SpreadsheetID: "id", CardsSheet: "Cards", EntriesSheet: "Entries"}, "service account credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.missing == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.missing) {
				t.Fatalf("error %v should mention %q", err, tt.missing)
			}
		})
	}

	if _, err := New(context.Background(), Config{}, log.Discard()); err == nil {
		t.Fatal("New should reject an empty config")
	}
}

func TestA1Range(t *testing.T) {
	tests := map[string]string{
		"Cards":       "'Cards'!A1",
		"Card Ledger": "'Card Ledger'!A1",
		"Bob's":       "'Bob''s'!A1",
	}
	for tab, want := range tests {
		if got := a1Range(tab, "A1"); got != want {
			t.Errorf("a1Range(%q) = %q, want %q", tab, got, want)
		}
	}
}

func TestToValuesPrependsHeader(t *testing.T) {
	rows := sheets.CardRows(core.SeedSnapshot("c1", "e1", "2024-01-20"), "2024-01-20")
	values := toValues(sheets.CardHeader, rows)
	if len(values) != 2 || values[0][0] != "ID" || values[1][0] != "c1" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestMirrorWithoutService(t *testing.T) {
	c := &Client{}
	if err := c.Mirror(context.Background(), core.Snapshot{}, "2024-01-20"); err == nil {
		t.Fatal("expected error without service")
	}
}
