package leave

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/phillip-england/leavedesk/internal/apiclient"
	"github.com/phillip-england/leavedesk/internal/listing"
)

type Service struct {
	client *apiclient.Client
	now    func() time.Time
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client, now: time.Now}
}

type usersResponse struct {
	Users      []User             `json:"users"`
	Pagination listing.Pagination `json:"pagination"`
}

type requestsResponse struct {
	Items      []Request          `json:"items"`
	Pagination listing.Pagination `json:"pagination"`
}

type analyticsResponse struct {
	Query   []AnalyticsRow `json:"query"`
	Total   int            `json:"total"`
	PerPage int            `json:"per_page"`
}

func (s *Service) Users(ctx context.Context, page int) (listing.Page[User], error) {
	var payload usersResponse
	if err := s.get(ctx, "/api/v1/users", pageQuery(page), &payload); err != nil {
		return listing.Page[User]{}, err
	}
	return listing.Page[User]{Items: payload.Users, Pagination: payload.Pagination}, nil
}

func (s *Service) Requests(ctx context.Context, page int) (listing.Page[Request], error) {
	var payload requestsResponse
	if err := s.get(ctx, "/api/v1/leave_requests", pageQuery(page), &payload); err != nil {
		return listing.Page[Request]{}, err
	}
	return listing.Page[Request]{Items: payload.Items, Pagination: payload.Pagination}, nil
}

func (s *Service) Create(ctx context.Context, in NewRequest) error {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/leave_requests",
		JSON:   map[string]NewRequest{"leave_request": in},
	})
	return err
}

func (s *Service) Approve(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusRejected)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   requestPath(id),
	})
	return err
}

// Analytics loads one page of per-employee totals. The endpoint reports a
// total count instead of a pagination block.
func (s *Service) Analytics(ctx context.Context, page int, f AnalyticsFilters) (listing.Page[AnalyticsRow], error) {
	var payload analyticsResponse
	if err := s.get(ctx, "/api/v1/leave_requests/analytics", f.Query(page, s.now()), &payload); err != nil {
		return listing.Page[AnalyticsRow]{}, err
	}
	perPage := payload.PerPage
	if perPage <= 0 {
		perPage = AnalyticsPerPage
	}
	return listing.Page[AnalyticsRow]{
		Items: payload.Query,
		Pagination: listing.Pagination{
			CurrentPage: page,
			TotalPages:  int(math.Ceil(float64(payload.Total) / float64(perPage))),
		},
	}, nil
}

func (s *Service) setStatus(ctx context.Context, id int64, status Status) error {
	_, err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   requestPath(id),
		JSON:   map[string]Status{"status": status},
	})
	return err
}

func (s *Service) get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := s.client.Send(ctx, apiclient.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func pageQuery(page int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}}
}

func requestPath(id int64) string {
	return "/api/v1/leave_requests/" + strconv.FormatInt(id, 10)
}
