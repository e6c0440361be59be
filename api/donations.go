package api

import (
	"context"
	"net/http"
	"time"

	"github.com/parishkit/parishkit/core/apiclient"
)

// Donation is a recorded gift.
type Donation struct {
	ID        string    `json:"id"`
	DonorName string    `json:"donorName"`
	Amount    int64     `json:"amount"` // minor currency units
	Fund      string    `json:"fund"`
	Method    string    `json:"method"`
	Date      time.Time `json:"date"`
}

// DonationFilter narrows a donation listing.
type DonationFilter struct {
	Fund string
	From time.Time
	To   time.Time
}

// DonationsService accesses giving records.
type DonationsService struct {
	client *apiclient.Client
}

// NewDonationsService creates the donations service.
func NewDonationsService(client *apiclient.Client) *DonationsService {
	return &DonationsService{client: client}
}

// List returns donations matching the filter.
func (s *DonationsService) List(ctx context.Context, filter DonationFilter) ([]Donation, error) {
	opts := []apiclient.RequestOption{}
	if filter.Fund != "" {
		opts = append(opts, apiclient.WithQuery("fund", filter.Fund))
	}
	if !filter.From.IsZero() {
		opts = append(opts, apiclient.WithQuery("from", filter.From.Format(time.RFC3339)))
	}
	if !filter.To.IsZero() {
		opts = append(opts, apiclient.WithQuery("to", filter.To.Format(time.RFC3339)))
	}

	var donations []Donation
	if err := s.client.DoJSON(ctx, http.MethodGet, "/donations", nil, &donations, opts...); err != nil {
		return nil, err
	}
	return donations, nil
}

// Record stores a new donation and returns the persisted record.
func (s *DonationsService) Record(ctx context.Context, donation Donation) (*Donation, error) {
	var recorded Donation
	if err := s.client.DoJSON(ctx, http.MethodPost, "/donations", donation, &recorded); err != nil {
		return nil, err
	}
	return &recorded, nil
}
