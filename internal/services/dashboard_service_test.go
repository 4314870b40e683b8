package services

import (
	"context"
	"testing"
	"time"

	"afftrack/internal/core"
)

func TestDashboardService_Summary(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	acme := testLink("link-1", "client-acme", "Acme Sports", 100)
	nova := testLink("link-2", "client-nova", "Nova Casino", 50)

	store := &fakeStore{
		links: []core.AffiliateLink{acme, nova},
		conversions: []core.Conversion{
			testConversion("c1", acme, now.AddDate(0, 0, -1), 400, core.StatusApproved),
			testConversion("c2", acme, now.AddDate(0, 0, -3), 200, core.StatusPending),
			testConversion("c3", nova, now.AddDate(0, 0, -2), 300, core.StatusRejected),
			// Outside the last week, must not count.
			testConversion("c4", acme, now.AddDate(0, 0, -30), 900, core.StatusApproved),
		},
		payouts: []core.Payout{
			{ID: "p1", ClientID: "client-acme", Amount: 80, DateOccurred: now.AddDate(0, 0, -1)},
		},
	}

	svc := NewDashboardService(store)
	svc.nowFn = func() time.Time { return now }

	t.Run("all clients over last week", func(t *testing.T) {
		got, err := svc.Summary(context.Background(), core.LastWeek, "")
		if err != nil {
			t.Fatalf("Summary() error = %v", err)
		}

		if got.ConversionCount != 3 {
			t.Errorf("ConversionCount = %d, want 3", got.ConversionCount)
		}
		if got.TotalCommission != 250 {
			t.Errorf("TotalCommission = %v, want 250", got.TotalCommission)
		}
		// Gross profit: (400-100) + (200-100) + (300-50) = 650.
		if got.GrossProfit != 650 {
			t.Errorf("GrossProfit = %v, want 650", got.GrossProfit)
		}
		// Owed: c1 and c2 (rejected c3 excluded) = 200, minus payout 80.
		if got.UnpaidCommission != 120 {
			t.Errorf("UnpaidCommission = %v, want 120", got.UnpaidCommission)
		}
		if len(got.Segments) != 7 {
			t.Errorf("Segments length = %d, want 7", len(got.Segments))
		}
		if len(got.ClientIDs) != 2 {
			t.Errorf("ClientIDs = %v, want both clients", got.ClientIDs)
		}
		if got.TimeframeLabel != "Last Week" {
			t.Errorf("TimeframeLabel = %q, want Last Week", got.TimeframeLabel)
		}
	})

	t.Run("filtered to one client", func(t *testing.T) {
		got, err := svc.Summary(context.Background(), core.LastWeek, "client-acme")
		if err != nil {
			t.Fatalf("Summary() error = %v", err)
		}

		if got.ConversionCount != 2 {
			t.Errorf("ConversionCount = %d, want 2", got.ConversionCount)
		}
		if got.TotalCommission != 200 {
			t.Errorf("TotalCommission = %v, want 200", got.TotalCommission)
		}
		if got.AverageBetSize != 300 {
			t.Errorf("AverageBetSize = %v, want 300", got.AverageBetSize)
		}
		// Client filter narrows the aggregates but not the filter choices.
		if len(got.ClientIDs) != 2 {
			t.Errorf("ClientIDs = %v, want both clients", got.ClientIDs)
		}
	})

	t.Run("empty timeframe yields zeros not NaN", func(t *testing.T) {
		empty := &fakeStore{}
		svc := NewDashboardService(empty)
		svc.nowFn = func() time.Time { return now }

		got, err := svc.Summary(context.Background(), core.LastYear, "")
		if err != nil {
			t.Fatalf("Summary() error = %v", err)
		}
		if got.AverageCommission != 0 || got.AverageBetSize != 0 {
			t.Errorf("averages = %v/%v, want 0/0", got.AverageCommission, got.AverageBetSize)
		}
		if len(got.Segments) != 12 {
			t.Errorf("Segments length = %d, want 12", len(got.Segments))
		}
		for _, seg := range got.Segments {
			if seg.Conversions == nil {
				t.Errorf("segment %q has nil conversions, want empty slice", seg.Label)
			}
		}
	})
}

func TestDashboardService_SummaryOverpaidClientGoesNegative(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	acme := testLink("link-1", "client-acme", "Acme Sports", 100)

	store := &fakeStore{
		conversions: []core.Conversion{
			testConversion("c1", acme, now.AddDate(0, 0, -1), 400, core.StatusApproved),
		},
		payouts: []core.Payout{
			{ID: "p1", ClientID: "client-acme", Amount: 150, DateOccurred: now},
		},
	}

	svc := NewDashboardService(store)
	svc.nowFn = func() time.Time { return now }

	got, err := svc.Summary(context.Background(), core.LastWeek, "client-acme")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if got.UnpaidCommission != -50 {
		t.Errorf("UnpaidCommission = %v, want -50", got.UnpaidCommission)
	}
}
