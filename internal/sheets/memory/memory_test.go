package memory

import (
	"context"
	"testing"
	"time"

	"afftrack/internal/core"
)

func TestAdapter_AppendAndReadBack(t *testing.T) {
	a := New()
	ctx := context.Background()

	conv := core.Conversion{
		ID:           "conv-1",
		DateOccurred: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:       250,
		Status:       core.StatusApproved,
		AffiliateLink: core.AffiliateLink{
			ID:         "link-1",
			ClientID:   "client-1",
			ClientName: "Acme Sports",
			Type:       core.ReferralSportsbook,
			Commission: 125,
		},
		Customer: core.Customer{ID: "cust-1", FullName: "Jordan Lee"},
	}

	ref, err := a.Append(ctx, conv)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "memory!A1" {
		t.Errorf("Append() ref = %q, want memory!A1", ref)
	}

	got := a.Appended()
	if len(got) != 1 || got[0].ID != "conv-1" {
		t.Errorf("Appended() = %+v, want one conversion conv-1", got)
	}
}

func TestAdapter_AppendRejectsInvalid(t *testing.T) {
	a := New()

	_, err := a.Append(context.Background(), core.Conversion{})
	if err == nil {
		t.Error("Append() should reject an invalid conversion")
	}
}

func TestAdapter_ReadRows(t *testing.T) {
	a := New()
	a.SetRows([][]string{
		{"Date", "Client", "Type", "Amount"},
		{"2024-06-01", "Acme Sports", "sportsbook", "250"},
	})

	rows, err := a.ReadRows(context.Background())
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ReadRows() returned %d rows, want 2", len(rows))
	}
	if rows[1][1] != "Acme Sports" {
		t.Errorf("rows[1][1] = %q, want Acme Sports", rows[1][1])
	}
}
