package services

import (
	"context"
	"errors"
	"time"

	"afftrack/internal/core"
)

// fakeStore is an in-memory ConversionStore for service tests.
type fakeStore struct {
	links       []core.AffiliateLink
	conversions []core.Conversion
	payouts     []core.Payout

	listErr error
}

func (f *fakeStore) CreateConversion(_ context.Context, c core.Conversion) error {
	f.conversions = append(f.conversions, c)
	return nil
}

func (f *fakeStore) GetConversion(_ context.Context, id string) (core.Conversion, error) {
	for _, c := range f.conversions {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Conversion{}, errors.New("not found")
}

func (f *fakeStore) ListConversions(_ context.Context) ([]core.Conversion, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.conversions, nil
}

func (f *fakeStore) ListConversionsSince(_ context.Context, since time.Time) ([]core.Conversion, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []core.Conversion
	for _, c := range f.conversions {
		if !c.DateOccurred.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteConversion(_ context.Context, id string) error {
	for i, c := range f.conversions {
		if c.ID == id {
			f.conversions = append(f.conversions[:i], f.conversions[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) GetAffiliateLink(_ context.Context, id string) (core.AffiliateLink, error) {
	for _, l := range f.links {
		if l.ID == id {
			return l, nil
		}
	}
	return core.AffiliateLink{}, errors.New("not found")
}

func (f *fakeStore) ListAffiliateLinks(_ context.Context, enabledOnly bool) ([]core.AffiliateLink, error) {
	if !enabledOnly {
		return f.links, nil
	}
	var out []core.AffiliateLink
	for _, l := range f.links {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAffiliateLink(_ context.Context, link core.AffiliateLink) error {
	f.links = append(f.links, link)
	return nil
}

func (f *fakeStore) CreatePayout(_ context.Context, p core.Payout) error {
	f.payouts = append(f.payouts, p)
	return nil
}

func (f *fakeStore) ListPayouts(_ context.Context, clientID string) ([]core.Payout, error) {
	if clientID == "" {
		return f.payouts, nil
	}
	var out []core.Payout
	for _, p := range f.payouts {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishConversionSync(_ context.Context, id string, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func testLink(id, clientID, clientName string, commission float64) core.AffiliateLink {
	return core.AffiliateLink{
		ID:         id,
		ClientID:   clientID,
		ClientName: clientName,
		Type:       core.ReferralSportsbook,
		Commission: commission,
		Enabled:    true,
	}
}

func testConversion(id string, link core.AffiliateLink, date time.Time, amount float64, status core.ConversionStatus) core.Conversion {
	return core.Conversion{
		ID:            id,
		DateOccurred:  date,
		Amount:        amount,
		Status:        status,
		AffiliateLink: link,
		Customer:      core.Customer{ID: "cust-" + id, FullName: "Customer " + id},
	}
}
