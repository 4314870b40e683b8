package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"afftrack/internal/core"
)

func TestConversionService_RecordConversion(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	acme := testLink("link-1", "client-acme", "Acme Sports", 100)

	t.Run("persists and publishes", func(t *testing.T) {
		store := &fakeStore{links: []core.AffiliateLink{acme}}
		pub := &fakePublisher{}
		svc := NewConversionService(store, pub)
		svc.nowFn = func() time.Time { return now }

		conv, err := svc.RecordConversion(context.Background(), RecordConversionInput{
			LinkID:       "link-1",
			Amount:       250,
			CustomerName: "Jordan Lee",
		})
		if err != nil {
			t.Fatalf("RecordConversion() error = %v", err)
		}

		if conv.ID == "" {
			t.Error("RecordConversion() should assign an id")
		}
		if conv.Status != core.StatusPending {
			t.Errorf("Status = %v, want pending default", conv.Status)
		}
		if !conv.DateOccurred.Equal(now) {
			t.Errorf("DateOccurred = %v, want now default", conv.DateOccurred)
		}
		if conv.AffiliateLink.ClientName != "Acme Sports" {
			t.Errorf("AffiliateLink snapshot = %+v, want Acme Sports link", conv.AffiliateLink)
		}
		if len(store.conversions) != 1 {
			t.Fatalf("stored %d conversions, want 1", len(store.conversions))
		}
		if len(pub.published) != 1 || pub.published[0] != conv.ID {
			t.Errorf("published = %v, want [%s]", pub.published, conv.ID)
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		store := &fakeStore{links: []core.AffiliateLink{acme}}
		pub := &fakePublisher{err: errors.New("broker down")}
		svc := NewConversionService(store, pub)
		svc.nowFn = func() time.Time { return now }

		_, err := svc.RecordConversion(context.Background(), RecordConversionInput{
			LinkID:       "link-1",
			Amount:       250,
			CustomerName: "Jordan Lee",
		})
		if err != nil {
			t.Fatalf("RecordConversion() error = %v, want nil", err)
		}
		if len(store.conversions) != 1 {
			t.Errorf("stored %d conversions, want 1", len(store.conversions))
		}
	})

	t.Run("nil publisher is tolerated", func(t *testing.T) {
		store := &fakeStore{links: []core.AffiliateLink{acme}}
		svc := NewConversionService(store, nil)
		svc.nowFn = func() time.Time { return now }

		_, err := svc.RecordConversion(context.Background(), RecordConversionInput{
			LinkID:       "link-1",
			Amount:       250,
			CustomerName: "Jordan Lee",
		})
		if err != nil {
			t.Fatalf("RecordConversion() error = %v, want nil", err)
		}
	})

	t.Run("unknown link fails", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewConversionService(store, &fakePublisher{})

		_, err := svc.RecordConversion(context.Background(), RecordConversionInput{
			LinkID:       "missing",
			Amount:       250,
			CustomerName: "Jordan Lee",
		})
		if err == nil {
			t.Error("RecordConversion() should fail for an unknown link")
		}
	})

	t.Run("invalid input fails validation", func(t *testing.T) {
		store := &fakeStore{links: []core.AffiliateLink{acme}}
		svc := NewConversionService(store, &fakePublisher{})
		svc.nowFn = func() time.Time { return now }

		_, err := svc.RecordConversion(context.Background(), RecordConversionInput{
			LinkID: "link-1",
			Amount: -5,
		})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("RecordConversion() error = %v, want ErrInvalidAmount", err)
		}
		if len(store.conversions) != 0 {
			t.Error("invalid conversion must not be stored")
		}
	})
}

func TestConversionService_CreatePayout(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	svc := NewConversionService(store, nil)
	svc.nowFn = func() time.Time { return now }

	p, err := svc.CreatePayout(context.Background(), core.Payout{
		ClientID: "client-acme",
		Amount:   80,
	})
	if err != nil {
		t.Fatalf("CreatePayout() error = %v", err)
	}
	if p.ID == "" {
		t.Error("CreatePayout() should assign an id")
	}
	if !p.DateOccurred.Equal(now) {
		t.Errorf("DateOccurred = %v, want now default", p.DateOccurred)
	}

	_, err = svc.CreatePayout(context.Background(), core.Payout{Amount: 80})
	if !errors.Is(err, core.ErrEmptyClientID) {
		t.Errorf("CreatePayout() error = %v, want ErrEmptyClientID", err)
	}
}
