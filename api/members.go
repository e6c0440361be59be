package api

import (
	"context"
	"net/http"

	"github.com/parishkit/parishkit/core/apiclient"
)

// Member is a congregation member record.
type Member struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status"`
}

// MembersService accesses the membership roster.
type MembersService struct {
	client *apiclient.Client
}

// NewMembersService creates the members service.
func NewMembersService(client *apiclient.Client) *MembersService {
	return &MembersService{client: client}
}

// List returns the roster, optionally filtered by status.
func (s *MembersService) List(ctx context.Context, status string) ([]Member, error) {
	opts := []apiclient.RequestOption{}
	if status != "" {
		opts = append(opts, apiclient.WithQuery("status", status))
	}

	var members []Member
	if err := s.client.DoJSON(ctx, http.MethodGet, "/members", nil, &members, opts...); err != nil {
		return nil, err
	}
	return members, nil
}

// Get returns a single member by ID.
func (s *MembersService) Get(ctx context.Context, id string) (*Member, error) {
	var member Member
	if err := s.client.DoJSON(ctx, http.MethodGet, "/members/"+id, nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create registers a new member and returns the stored record.
func (s *MembersService) Create(ctx context.Context, member Member) (*Member, error) {
	var created Member
	if err := s.client.DoJSON(ctx, http.MethodPost, "/members", member, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
