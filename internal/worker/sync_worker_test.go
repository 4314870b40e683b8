package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"afftrack/internal/amqp"
	"afftrack/internal/core"
	"afftrack/internal/sheets/memory"
)

type fakeSyncStore struct {
	conversions map[string]core.Conversion
	pending     []core.Conversion
	synced      []string
	errored     []string
}

func (f *fakeSyncStore) GetConversion(_ context.Context, id string) (core.Conversion, error) {
	c, ok := f.conversions[id]
	if !ok {
		return core.Conversion{}, errors.New("not found")
	}
	return c, nil
}

func (f *fakeSyncStore) GetPendingSyncConversions(_ context.Context, limit int) ([]core.Conversion, error) {
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	return f.pending[:limit], nil
}

func (f *fakeSyncStore) MarkConversionSynced(_ context.Context, id string) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeSyncStore) MarkConversionSyncError(_ context.Context, id string) error {
	f.errored = append(f.errored, id)
	return nil
}

func validConversion(id string) core.Conversion {
	return core.Conversion{
		ID:           id,
		DateOccurred: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:       250,
		Status:       core.StatusApproved,
		AffiliateLink: core.AffiliateLink{
			ID:         "link-1",
			ClientID:   "client-acme",
			ClientName: "Acme Sports",
			Type:       core.ReferralSportsbook,
			Commission: 100,
		},
		Customer: core.Customer{ID: "cust-1", FullName: "Jordan Lee"},
	}
}

func TestSyncWorker_HandleSyncMessage(t *testing.T) {
	conv := validConversion("conv-1")
	store := &fakeSyncStore{conversions: map[string]core.Conversion{"conv-1": conv}}
	writer := memory.New()
	w := NewSyncWorker(store, writer, nil, 10)

	msg := amqp.NewConversionSyncMessage("conv-1", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	if got := writer.Appended(); len(got) != 1 || got[0].ID != "conv-1" {
		t.Errorf("appended = %+v, want conv-1", got)
	}
	if len(store.synced) != 1 || store.synced[0] != "conv-1" {
		t.Errorf("synced = %v, want [conv-1]", store.synced)
	}
}

func TestSyncWorker_HandleSyncMessageUnknownConversion(t *testing.T) {
	store := &fakeSyncStore{conversions: map[string]core.Conversion{}}
	w := NewSyncWorker(store, memory.New(), nil, 10)

	msg := amqp.NewConversionSyncMessage("missing", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Error("HandleSyncMessage() should fail for an unknown conversion")
	}
}

func TestSyncWorker_HandleSyncMessageWriterFailure(t *testing.T) {
	// An invalid conversion makes the memory adapter reject the append.
	bad := validConversion("conv-bad")
	bad.Customer.FullName = ""

	store := &fakeSyncStore{conversions: map[string]core.Conversion{"conv-bad": bad}}
	w := NewSyncWorker(store, memory.New(), nil, 10)

	msg := amqp.NewConversionSyncMessage("conv-bad", 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("HandleSyncMessage() should propagate the append failure")
	}
	if len(store.errored) != 1 || store.errored[0] != "conv-bad" {
		t.Errorf("errored = %v, want [conv-bad]", store.errored)
	}
}

func TestSyncWorker_StartupSyncCheck(t *testing.T) {
	good := validConversion("conv-1")
	bad := validConversion("conv-2")
	bad.Customer.FullName = ""

	store := &fakeSyncStore{pending: []core.Conversion{good, bad}}
	writer := memory.New()
	w := NewSyncWorker(store, writer, nil, 10)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}

	if got := writer.Appended(); len(got) != 1 || got[0].ID != "conv-1" {
		t.Errorf("appended = %+v, want only conv-1", got)
	}
	if len(store.synced) != 1 {
		t.Errorf("synced = %v, want one entry", store.synced)
	}
	if len(store.errored) != 1 {
		t.Errorf("errored = %v, want one entry", store.errored)
	}
}

func TestSyncWorker_ProcessPendingConversionsEmpty(t *testing.T) {
	store := &fakeSyncStore{}
	w := NewSyncWorker(store, memory.New(), nil, 10)

	if err := w.ProcessPendingConversions(context.Background()); err != nil {
		t.Fatalf("ProcessPendingConversions() error = %v", err)
	}
	if len(store.synced) != 0 {
		t.Errorf("synced = %v, want none", store.synced)
	}
}
