// Package sheets mirrors quotations into a Google Spreadsheet, one tab per
// year, one row per quotation.
package sheets

import "context"

// Client is the capability set the sync service needs from a spreadsheet
// backend. Implemented by GoogleClient over the Sheets v4 API and by a fake
// in tests. Ranges use A1 notation including the tab name,
// e.g. "Quotation 2026!A:A".
type Client interface {
	// SheetTitles returns tab title -> sheet ID for the spreadsheet.
	SheetTitles(ctx context.Context) (map[string]int64, error)

	// AddSheet creates a tab and returns its sheet ID. When the tab already
	// exists (a concurrent sync won the race) the existing ID is returned.
	AddSheet(ctx context.Context, title string) (int64, error)

	// FormatHeader bolds row 1 on a grey background and freezes it.
	FormatHeader(ctx context.Context, sheetID int64) error

	// UpdateRange overwrites the given range with one row of values.
	UpdateRange(ctx context.Context, rng string, values []any) error

	// AppendRow appends one row after the last row of the range's table.
	AppendRow(ctx context.Context, rng string, values []any) error

	// ReadColumn returns the first cell of every row in a column range.
	ReadColumn(ctx context.Context, rng string) ([]string, error)
}
