package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lshigami/QuizBomber/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetTimestampLayout is the local-time layout written to the first column.
const SheetTimestampLayout = "2006-01-02 15:04:05"

type sheetsFeedbackRepository struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
	readRange     string
	location      *time.Location
}

// NewSheetsFeedbackRepository stores ratings as {timestamp, prompt, rating} rows of a spreadsheet.
func NewSheetsFeedbackRepository(ctx context.Context, spreadsheetID, readRange string, opts ...option.ClientOption) (FeedbackRepository, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &sheetsFeedbackRepository{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		location:      time.Local,
	}, nil
}

func (r *sheetsFeedbackRepository) Create(ctx context.Context, entry *model.FeedbackEntry) error {
	row := &sheets.ValueRange{
		Values: [][]interface{}{{
			entry.RecordedAt.In(r.location).Format(SheetTimestampLayout),
			entry.PromptText,
			entry.Rating,
		}},
	}
	_, err := r.values.Append(r.spreadsheetID, r.readRange, row).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append feedback row: %w", err)
	}
	log.Info().Str("prompt", entry.PromptText).Int("rating", entry.Rating).Msg("Spreadsheet row appended")
	return nil
}

func (r *sheetsFeedbackRepository) FindAll(ctx context.Context) ([]model.FeedbackEntry, error) {
	resp, err := r.values.Get(r.spreadsheetID, r.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback rows: %w", err)
	}
	entries := make([]model.FeedbackEntry, 0, len(resp.Values))
	for i, row := range resp.Values {
		entry, ok := ParseSheetRow(row, r.location)
		if !ok {
			log.Debug().Int("row", i+1).Msg("Skipping unparsable feedback row")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseSheetRow converts one spreadsheet row. Header rows and rows with an out-of-range rating are rejected.
func ParseSheetRow(row []interface{}, loc *time.Location) (model.FeedbackEntry, bool) {
	if len(row) < 3 {
		return model.FeedbackEntry{}, false
	}
	prompt := strings.TrimSpace(fmt.Sprint(row[1]))
	if prompt == "" {
		return model.FeedbackEntry{}, false
	}

	var rating int
	switch v := row[2].(type) {
	case float64:
		rating = int(v)
	case int:
		rating = v
	default:
		n, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(v)))
		if err != nil {
			return model.FeedbackEntry{}, false
		}
		rating = n
	}
	if rating < model.MinRating || rating > model.MaxRating {
		return model.FeedbackEntry{}, false
	}

	recordedAt, err := time.ParseInLocation(SheetTimestampLayout, strings.TrimSpace(fmt.Sprint(row[0])), loc)
	if err != nil {
		recordedAt = time.Time{}
	}
	return model.FeedbackEntry{RecordedAt: recordedAt, PromptText: prompt, Rating: rating}, true
}
