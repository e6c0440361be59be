package api

import (
	"context"
	"net/http"
	"time"

	"github.com/parishkit/parishkit/core/apiclient"
)

// Service is a scheduled worship service.
type Service struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	Venue    string    `json:"venue,omitempty"`
}

// SetlistItem is one entry in a service's order of worship.
type SetlistItem struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // hymn, reading, sermon, announcement
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// WorshipService accesses service schedules and setlists.
type WorshipService struct {
	client *apiclient.Client
}

// NewWorshipService creates the worship service.
func NewWorshipService(client *apiclient.Client) *WorshipService {
	return &WorshipService{client: client}
}

// ListServices returns upcoming services.
func (s *WorshipService) ListServices(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := s.client.DoJSON(ctx, http.MethodGet, "/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// GetService returns one service by ID.
func (s *WorshipService) GetService(ctx context.Context, id string) (*Service, error) {
	var service Service
	if err := s.client.DoJSON(ctx, http.MethodGet, "/services/"+id, nil, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// Setlist returns the order of worship for a service.
func (s *WorshipService) Setlist(ctx context.Context, serviceID string) ([]SetlistItem, error) {
	var items []SetlistItem
	if err := s.client.DoJSON(ctx, http.MethodGet, "/services/"+serviceID+"/setlist", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
