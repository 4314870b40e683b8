package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"afftrack/internal/core"
)

// ConversionStore is the storage surface the services need.
type ConversionStore interface {
	CreateConversion(ctx context.Context, c core.Conversion) error
	GetConversion(ctx context.Context, id string) (core.Conversion, error)
	ListConversions(ctx context.Context) ([]core.Conversion, error)
	ListConversionsSince(ctx context.Context, since time.Time) ([]core.Conversion, error)
	DeleteConversion(ctx context.Context, id string) error
	GetAffiliateLink(ctx context.Context, id string) (core.AffiliateLink, error)
	ListAffiliateLinks(ctx context.Context, enabledOnly bool) ([]core.AffiliateLink, error)
	CreateAffiliateLink(ctx context.Context, link core.AffiliateLink) error
	CreatePayout(ctx context.Context, p core.Payout) error
	ListPayouts(ctx context.Context, clientID string) ([]core.Payout, error)
}

// SyncPublisher queues a conversion for export to the spreadsheet.
type SyncPublisher interface {
	PublishConversionSync(ctx context.Context, id string, version int64) error
}

// RecordConversionInput carries the caller-supplied fields of a new
// conversion. The affiliate link snapshot is loaded from storage by LinkID.
type RecordConversionInput struct {
	LinkID              string
	Amount              float64
	Status              core.ConversionStatus
	DateOccurred        time.Time
	CustomerID          string
	CustomerName        string
	CompensationGroupID string
}

// ConversionService orchestrates conversion writes across SQLite and AMQP.
type ConversionService struct {
	store     ConversionStore
	publisher SyncPublisher
	nowFn     func() time.Time
}

func NewConversionService(store ConversionStore, publisher SyncPublisher) *ConversionService {
	return &ConversionService{
		store:     store,
		publisher: publisher,
		nowFn:     time.Now,
	}
}

// RecordConversion persists a new conversion locally and publishes a sync
// message. The sync publish is best-effort: the worker's startup check picks
// up anything that never made it onto the queue.
func (s *ConversionService) RecordConversion(ctx context.Context, in RecordConversionInput) (core.Conversion, error) {
	link, err := s.store.GetAffiliateLink(ctx, in.LinkID)
	if err != nil {
		return core.Conversion{}, fmt.Errorf("load affiliate link %s: %w", in.LinkID, err)
	}

	status := in.Status
	if status == "" {
		status = core.StatusPending
	}
	date := in.DateOccurred
	if date.IsZero() {
		date = s.nowFn()
	}

	conv := core.Conversion{
		ID:            uuid.NewString(),
		DateOccurred:  date,
		Amount:        in.Amount,
		Status:        status,
		AffiliateLink: link,
		Customer: core.Customer{
			ID:       in.CustomerID,
			FullName: in.CustomerName,
		},
		CompensationGroupID: in.CompensationGroupID,
	}

	if err := conv.Validate(); err != nil {
		return core.Conversion{}, err
	}

	if err := s.store.CreateConversion(ctx, conv); err != nil {
		return core.Conversion{}, fmt.Errorf("save conversion: %w", err)
	}

	if err := s.publishSyncMessage(ctx, conv.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", conv.ID, "error", err)
		// Conversion is saved locally; the worker catches up later.
	}

	return conv, nil
}

func (s *ConversionService) GetConversion(ctx context.Context, id string) (core.Conversion, error) {
	return s.store.GetConversion(ctx, id)
}

func (s *ConversionService) ListConversions(ctx context.Context) ([]core.Conversion, error) {
	return s.store.ListConversions(ctx)
}

func (s *ConversionService) DeleteConversion(ctx context.Context, id string) error {
	if err := s.store.DeleteConversion(ctx, id); err != nil {
		return fmt.Errorf("delete conversion: %w", err)
	}
	return nil
}

func (s *ConversionService) CreateAffiliateLink(ctx context.Context, link core.AffiliateLink) (core.AffiliateLink, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if err := link.Validate(); err != nil {
		return core.AffiliateLink{}, err
	}
	if err := s.store.CreateAffiliateLink(ctx, link); err != nil {
		return core.AffiliateLink{}, fmt.Errorf("save affiliate link: %w", err)
	}
	return link, nil
}

func (s *ConversionService) ListAffiliateLinks(ctx context.Context, enabledOnly bool) ([]core.AffiliateLink, error) {
	return s.store.ListAffiliateLinks(ctx, enabledOnly)
}

func (s *ConversionService) CreatePayout(ctx context.Context, p core.Payout) (core.Payout, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.DateOccurred.IsZero() {
		p.DateOccurred = s.nowFn()
	}
	if err := p.Validate(); err != nil {
		return core.Payout{}, err
	}
	if err := s.store.CreatePayout(ctx, p); err != nil {
		return core.Payout{}, fmt.Errorf("save payout: %w", err)
	}
	return p, nil
}

func (s *ConversionService) ListPayouts(ctx context.Context, clientID string) ([]core.Payout, error) {
	return s.store.ListPayouts(ctx, clientID)
}

func (s *ConversionService) publishSyncMessage(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishConversionSync(ctx, id, 1)
}
