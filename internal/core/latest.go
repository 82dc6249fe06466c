package core

import "sort"

// LatestEntryFor returns the entry of cardID with the greatest date. Entries
// sharing that date resolve to the one stored last.
func LatestEntryFor(cardID string, entries []Entry) (Entry, bool) {
	var (
		latest Entry
		found  bool
	)
	for _, e := range entries {
		if e.CardID != cardID {
			continue
		}
		if !found || e.Date >= latest.Date {
			latest = e
			found = true
		}
	}
	return latest, found
}

// LatestEntriesByCard maps each card id to its latest entry. Cards without
// entries are absent from the map.
func LatestEntriesByCard(cards []Card, entries []Entry) map[string]Entry {
	out := make(map[string]Entry, len(cards))
	for _, c := range cards {
		if e, ok := LatestEntryFor(c.ID, entries); ok {
			out[c.ID] = e
		}
	}
	return out
}

// EntriesForCard returns the entries of cardID, or all entries when cardID is
// empty, newest first. Entries with equal dates keep the later-stored one first.
func EntriesForCard(cardID string, entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if cardID == "" || entries[i].CardID == cardID {
			out = append(out, entries[i].Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
