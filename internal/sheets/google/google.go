// Package google mirrors snapshots into a Google spreadsheet through the
// Sheets v4 API, authenticated with a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"cctracker/internal/core"
	"cctracker/internal/log"
	"cctracker/internal/sheets"
)

var _ sheets.SnapshotMirror = (*Client)(nil)

// Config selects the spreadsheet and tabs to write.
type Config struct {
	SpreadsheetID   string
	CardsSheet      string
	EntriesSheet    string
	CredentialsJSON []byte
}

func (c Config) validate() error {
	var missing []string
	if strings.TrimSpace(c.SpreadsheetID) == "" {
		missing = append(missing, "spreadsheet id")
	}
	if strings.TrimSpace(c.CardsSheet) == "" {
		missing = append(missing, "cards sheet")
	}
	if strings.TrimSpace(c.EntriesSheet) == "" {
		missing = append(missing, "entries sheet")
	}
	if len(c.CredentialsJSON) == 0 {
		missing = append(missing, "service account credentials")
	}
	if len(missing) > 0 {
		return fmt.Errorf("sheets config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	cardsSheet    string
	entriesSheet  string
	logger        *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(cfg.CredentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger = logger.WithComponent(log.ComponentSheets)
	logger.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", cfg.SpreadsheetID,
		"cards_sheet", cfg.CardsSheet,
		"entries_sheet", cfg.EntriesSheet)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		cardsSheet:    cfg.CardsSheet,
		entriesSheet:  cfg.EntriesSheet,
		logger:        logger,
	}, nil
}

// Mirror rewrites the cards and entries tabs concurrently. A failure in one
// tab cancels the other.
func (c *Client) Mirror(ctx context.Context, snap core.Snapshot, today string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	cards := sheets.CardRows(snap, today)
	entries := sheets.EntryRows(snap)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.replaceTab(gctx, c.cardsSheet, sheets.CardHeader, cards) })
	g.Go(func() error { return c.replaceTab(gctx, c.entriesSheet, sheets.EntryHeader, entries) })
	if err := g.Wait(); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Snapshot mirrored",
		log.FieldCards, len(cards), log.FieldEntries, len(entries))
	return nil
}

func (c *Client) replaceTab(ctx context.Context, tab string, header sheets.Row, rows []sheets.Row) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1Range(tab, "A:Z"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}

	// RAW keeps user text such as notes from being parsed as formulas.
	vr := &gsheet.ValueRange{Values: toValues(header, rows)}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1Range(tab, "A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}
	return nil
}

func toValues(header sheets.Row, rows []sheets.Row) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any(header))
	for _, r := range rows {
		values = append(values, []any(r))
	}
	return values
}

// a1Range quotes tab so names with spaces or quotes stay valid.
func a1Range(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}
