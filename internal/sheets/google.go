package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andriwij/planning-app/internal/config"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// GoogleClient implements Client over the Google Sheets v4 API.
type GoogleClient struct {
	svc           *sheetsv4.Service
	spreadsheetID string
}

// NewGoogleClient builds a Sheets API client from service-account
// credentials, supplied either inline (GOOGLE_CREDENTIALS_JSON) or as a file
// path (GOOGLE_CREDENTIALS_PATH).
func NewGoogleClient(ctx context.Context, cfg config.SheetsConfig) (*GoogleClient, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id not configured")
	}
	opts := []option.ClientOption{option.WithScopes(sheetsv4.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsPath != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	default:
		return nil, errors.New("google credentials not configured")
	}
	svc, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &GoogleClient{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func (c *GoogleClient) SheetTitles(ctx context.Context) (map[string]int64, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	titles := make(map[string]int64, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	return titles, nil
}

func (c *GoogleClient) AddSheet(ctx context.Context, title string) (int64, error) {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		// A concurrent sync may have created the tab between our existence
		// check and this call; resolve to the existing sheet instead.
		if isAlreadyExists(err) {
			titles, terr := c.SheetTitles(ctx)
			if terr != nil {
				return 0, terr
			}
			if id, ok := titles[title]; ok {
				return id, nil
			}
		}
		return 0, fmt.Errorf("add sheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %q: empty reply", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (c *GoogleClient) FormatHeader(ctx context.Context, sheetID int64) error {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{
			{
				RepeatCell: &sheetsv4.RepeatCellRequest{
					Range: &sheetsv4.GridRange{
						SheetId:       sheetID,
						StartRowIndex: 0,
						EndRowIndex:   1,
					},
					Cell: &sheetsv4.CellData{
						UserEnteredFormat: &sheetsv4.CellFormat{
							TextFormat:      &sheetsv4.TextFormat{Bold: true},
							BackgroundColor: &sheetsv4.Color{Red: 0.9, Green: 0.9, Blue: 0.9},
						},
					},
					Fields: "userEnteredFormat(textFormat,backgroundColor)",
				},
			},
			{
				UpdateSheetProperties: &sheetsv4.UpdateSheetPropertiesRequest{
					Properties: &sheetsv4.SheetProperties{
						SheetId:        sheetID,
						GridProperties: &sheetsv4.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("format header: %w", err)
	}
	return nil
}

func (c *GoogleClient) UpdateRange(ctx context.Context, rng string, values []any) error {
	vr := &sheetsv4.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update range %q: %w", rng, err)
	}
	return nil
}

func (c *GoogleClient) AppendRow(ctx context.Context, rng string, values []any) error {
	vr := &sheetsv4.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %q: %w", rng, err)
	}
	return nil
}

func (c *GoogleClient) ReadColumn(ctx context.Context, rng string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %q: %w", rng, err)
	}
	cells := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, fmt.Sprint(row[0]))
	}
	return cells, nil
}

func isAlreadyExists(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 400 && strings.Contains(gerr.Message, "already exists")
	}
	return false
}
