package ingest

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient imports items from a public Google Sheets spreadsheet.
type SheetsClient struct {
	svc *sheets.Service
}

// NewSheetsClient builds a Sheets API client authenticated by API key.
func NewSheetsClient(ctx context.Context, apiKey string) (*SheetsClient, error) {
	svc, err := sheets.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsClient{svc: svc}, nil
}

// Import fetches the given range and runs it through the row pipeline.
// An empty readRange fetches the whole first sheet.
func (c *SheetsClient) Import(ctx context.Context, spreadsheetID, readRange string) (*Result, error) {
	if readRange == "" {
		readRange = "A:Z"
	}

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch spreadsheet %s: %w", spreadsheetID, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, v := range raw {
			row = append(row, fmt.Sprint(v))
		}
		rows = append(rows, row)
	}

	return ParseRows(rows), nil
}
