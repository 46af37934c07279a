package services

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"gym-booking/models"
)

const (
	sheetsBookingsRange  = "Bookings!A:F"
	sheetsTrainingsRange = "Trainings!A:G"
	sheetsTimeLayout     = "2006-01-02 15:04"
)

// SheetsSink appends an audit row to a Google Spreadsheet for every
// booking and training event. Rows are append only; a cancellation adds a
// new row rather than editing the original one.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewSheetsSink(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*SheetsSink, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsSink{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsSink) Name() string { return "google_sheets" }

func (s *SheetsSink) OnTrainingCreated(ctx context.Context, t *models.Training) error {
	return s.appendRow(ctx, sheetsTrainingsRange, []interface{}{
		t.ID,
		t.Title,
		string(t.Type),
		t.ScheduledAt.UTC().Format(sheetsTimeLayout),
		t.DurationMinutes,
		t.MaxParticipants,
		t.Location,
	})
}

func (s *SheetsSink) OnTrainingCancelled(ctx context.Context, t *models.Training) error {
	return s.appendRow(ctx, sheetsTrainingsRange, []interface{}{
		t.ID,
		t.Title,
		string(t.Type),
		t.ScheduledAt.UTC().Format(sheetsTimeLayout),
		"cancelled",
	})
}

func (s *SheetsSink) OnBookingCreated(ctx context.Context, b *models.Booking, m *models.Member, t *models.Training) error {
	return s.appendRow(ctx, sheetsBookingsRange, []interface{}{
		b.ID,
		m.Name,
		m.Phone,
		t.Title,
		t.ScheduledAt.UTC().Format(sheetsTimeLayout),
		string(models.BookingConfirmed),
	})
}

func (s *SheetsSink) OnBookingCancelled(ctx context.Context, b *models.Booking, m *models.Member, t *models.Training) error {
	return s.appendRow(ctx, sheetsBookingsRange, []interface{}{
		b.ID,
		m.Name,
		m.Phone,
		t.Title,
		t.ScheduledAt.UTC().Format(sheetsTimeLayout),
		string(models.BookingCancelled),
	})
}

func (s *SheetsSink) appendRow(ctx context.Context, rangeRef string, row []interface{}) error {
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, rangeRef, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", rangeRef, err)
	}
	return nil
}
