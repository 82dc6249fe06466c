// Package dataio converts application state to and from the portable JSON
// backup document and reconciles imported documents with current state.
package dataio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cctracker/internal/core"
)

const (
	// FormatVersion is written to every exported document.
	FormatVersion = "1.0"
	// DefaultFilename is suggested for downloads of an export.
	DefaultFilename = "cc-tracker-backup.json"
)

// Document is the backup format. Version and ExportDate are optional on
// import.
type Document struct {
	Version    string       `json:"version,omitempty"`
	ExportDate string       `json:"exportDate,omitempty"`
	Theme      core.Theme   `json:"theme,omitempty"`
	Cards      []core.Card  `json:"cards"`
	Entries    []core.Entry `json:"entries"`
}

// Export captures the cards, entries and theme of s. Draft, selection and
// view are session state and not exported.
func Export(s core.Snapshot, now time.Time) Document {
	s = s.Clone()
	return Document{
		Version:    FormatVersion,
		ExportDate: now.UTC().Format(time.RFC3339Nano),
		Theme:      s.Theme,
		Cards:      s.Cards,
		Entries:    s.Entries,
	}
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// Decode reads and validates a document. The raw JSON is checked before
// anything is converted: it must be an object with cards and entries lists,
// every card needs a non-empty id and name and numeric limit and apr, every
// entry a non-empty id, cardId and date and a numeric currentBalance.
// Decoded records must then satisfy core.Card.Validate and
// core.Entry.Validate.
// Failures wrap core.ErrInvalidDocument in a *core.ValidationError.
//
// Card fields absent from the document take the new-card defaults.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return Document{}, invalidDoc("", "not a JSON object")
	}
	rawCards, ok := raw["cards"].([]any)
	if !ok {
		return Document{}, invalidDoc("cards", "must be a list")
	}
	rawEntries, ok := raw["entries"].([]any)
	if !ok {
		return Document{}, invalidDoc("entries", "must be a list")
	}
	for i, c := range rawCards {
		if err := checkObject(c, fmt.Sprintf("cards[%d]", i),
			[]string{"id", "name"}, []string{"limit", "apr"}); err != nil {
			return Document{}, err
		}
	}
	for i, e := range rawEntries {
		if err := checkObject(e, fmt.Sprintf("entries[%d]", i),
			[]string{"id", "cardId", "date"}, []string{"currentBalance"}); err != nil {
			return Document{}, err
		}
	}

	var shape struct {
		Version    string            `json:"version"`
		ExportDate string            `json:"exportDate"`
		Theme      core.Theme        `json:"theme"`
		Cards      []json.RawMessage `json:"cards"`
		Entries    []core.Entry      `json:"entries"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return Document{}, invalidDoc("", err.Error())
	}

	doc := Document{
		Version:    shape.Version,
		ExportDate: shape.ExportDate,
		Theme:      shape.Theme,
		Cards:      make([]core.Card, len(shape.Cards)),
		Entries:    shape.Entries,
	}
	if doc.Entries == nil {
		doc.Entries = []core.Entry{}
	}
	for i, rc := range shape.Cards {
		card := core.NewCard("")
		if err := json.Unmarshal(rc, &card); err != nil {
			return Document{}, invalidDoc(fmt.Sprintf("cards[%d]", i), err.Error())
		}
		doc.Cards[i] = card
	}
	for i, c := range doc.Cards {
		if err := c.Validate(); err != nil {
			return Document{}, recordError(fmt.Sprintf("cards[%d]", i), err)
		}
	}
	for i, e := range doc.Entries {
		if err := e.Validate(); err != nil {
			return Document{}, recordError(fmt.Sprintf("entries[%d]", i), err)
		}
	}
	return doc, nil
}

// recordError reports a record that parsed but breaks the data model.
func recordError(path string, err error) error {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return invalidDoc(path+"."+ve.Field, ve.Err.Error())
	}
	return invalidDoc(path, err.Error())
}

func checkObject(v any, path string, strs, nums []string) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return invalidDoc(path, "must be an object")
	}
	for _, f := range strs {
		s, ok := obj[f].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return invalidDoc(path+"."+f, "must be a non-empty string")
		}
	}
	for _, f := range nums {
		if _, ok := obj[f].(float64); !ok {
			return invalidDoc(path+"."+f, "must be a number")
		}
	}
	return nil
}

func invalidDoc(field, msg string) error {
	return core.Invalid(field, fmt.Errorf("%w: %s", core.ErrInvalidDocument, msg))
}
