package leave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phillip-england/leavedesk/internal/apiclient"
	"github.com/phillip-england/leavedesk/internal/listing"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	body   string
}

func newTestService(t *testing.T, status int, response string) (*Service, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, query: r.URL.Query(), body: string(body)})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	svc := NewService(apiclient.New(srv.URL, srv.Client(), nil))
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc, &calls
}

func TestUsersDecodesPagination(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{"users":[{"id":1,"name":"Ana","email":"ana@x.io","leader_name":"Bob","internal_id":4411}],"pagination":{"current_page":2,"total_pages":5}}`)
	page, err := svc.Users(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, listing.Pagination{CurrentPage: 2, TotalPages: 5}, page.Pagination)
	require.Equal(t, Text("4411"), page.Items[0].InternalID)
	require.Equal(t, "2", (*calls)[0].query.Get("page"))
	require.Equal(t, "/api/v1/users", (*calls)[0].path)
}

func TestRequestsDecodesItems(t *testing.T) {
	svc, _ := newTestService(t, http.StatusOK, `{"items":[{"id":7,"user_id":3,"user_name":"Ana","leave_type":"vacaciones","start_date":"2024-05-01","end_date":"2024-05-03","status":"pendiente","leader_name":"Bob"},{"id":8,"status":"aprobado"}],"pagination":{"current_page":1,"total_pages":1}}`)
	page, err := svc.Requests(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.True(t, page.Items[0].Actionable())
	require.False(t, page.Items[1].Actionable())
	require.Equal(t, "Vacation", page.Items[0].LeaveType.Label())
}

func TestStatusTransitionsUseWireValues(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{}`)
	require.NoError(t, svc.Approve(context.Background(), 7))
	require.NoError(t, svc.Reject(context.Background(), 8))
	require.NoError(t, svc.Delete(context.Background(), 9))

	require.Equal(t, http.MethodPut, (*calls)[0].method)
	require.Equal(t, "/api/v1/leave_requests/7", (*calls)[0].path)
	require.JSONEq(t, `{"status":"aprobado"}`, (*calls)[0].body)
	require.JSONEq(t, `{"status":"rechazado"}`, (*calls)[1].body)
	require.Equal(t, http.MethodDelete, (*calls)[2].method)
	require.Equal(t, "/api/v1/leave_requests/9", (*calls)[2].path)
}

func TestCreateWrapsPayload(t *testing.T) {
	svc, calls := newTestService(t, http.StatusCreated, `{}`)
	err := svc.Create(context.Background(), NewRequest{StartDate: "2024-05-01", EndDate: "2024-05-03", Notes: " trip ", LeaveType: TypeVacation})
	require.NoError(t, err)

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &body))
	require.Equal(t, map[string]string{
		"start_date": "2024-05-01",
		"end_date":   "2024-05-03",
		"notes":      "trip",
		"leave_type": "vacaciones",
	}, body["leave_request"])
}

func TestCreateValidatesLocally(t *testing.T) {
	svc, calls := newTestService(t, http.StatusCreated, `{}`)
	cases := []struct {
		in   NewRequest
		want error
	}{
		{NewRequest{StartDate: "", EndDate: "2024-05-03", LeaveType: TypeVacation}, ErrInvalidDates},
		{NewRequest{StartDate: "05/01/2024", EndDate: "2024-05-03", LeaveType: TypeVacation}, ErrInvalidDates},
		{NewRequest{StartDate: "2024-05-04", EndDate: "2024-05-03", LeaveType: TypeVacation}, ErrEndBeforeStart},
		{NewRequest{StartDate: "2024-05-01", EndDate: "2024-05-03", LeaveType: "holiday"}, ErrInvalidLeaveType},
	}
	for _, tc := range cases {
		require.ErrorIs(t, svc.Create(context.Background(), tc.in), tc.want)
	}
	require.Empty(t, *calls)
}

func TestAnalyticsQueryAndPagination(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{"query":[{"id":1,"name":"Ana","total_days":"12.0"}],"total":23,"per_page":10}`)
	page, err := svc.Analytics(context.Background(), 2, AnalyticsFilters{Name: "Ana", LeaderName: "Bob", Range: "2025", SortDays: OrderDesc})
	require.NoError(t, err)
	require.Equal(t, listing.Pagination{CurrentPage: 2, TotalPages: 3}, page.Pagination)
	require.Equal(t, Days(12), page.Items[0].TotalDays)

	q := (*calls)[0].query
	require.Equal(t, "u.name", q.Get("order_by"))
	require.Equal(t, "asc", q.Get("order"))
	require.Equal(t, "10", q.Get("per_page"))
	require.Equal(t, "2025-01-01", q.Get("start_date"))
	require.Equal(t, "2025-03-14", q.Get("end_date"))
	require.Equal(t, "Bob", q.Get("leader_name"))
}

func TestOrderingPriority(t *testing.T) {
	cases := []struct {
		f       AnalyticsFilters
		orderBy string
		order   Order
		toggle  bool
	}{
		{AnalyticsFilters{Name: "Ana", LeaderName: "Bob", SortDays: OrderDesc}, OrderByName, OrderAsc, false},
		{AnalyticsFilters{LeaderName: "Bob", SortDays: OrderDesc}, OrderByLeader, OrderAsc, false},
		{AnalyticsFilters{Name: "  ", SortDays: OrderAsc}, OrderByTotalDays, OrderAsc, true},
		{AnalyticsFilters{}, OrderByTotalDays, OrderDesc, true},
	}
	for _, tc := range cases {
		orderBy, order := tc.f.Ordering()
		require.Equal(t, tc.orderBy, orderBy)
		require.Equal(t, tc.order, order)
		require.Equal(t, tc.toggle, tc.f.ShowDaysSort())
	}
}

func TestAnalyticsRowPresentation(t *testing.T) {
	require.InDelta(t, 0.5, AnalyticsRow{TotalDays: 15}.Percentage(), 1e-9)
	require.Equal(t, 1.0, AnalyticsRow{TotalDays: 45}.Percentage())
	require.Equal(t, 30.0, AnalyticsRow{TotalDays: 45}.CappedDays())
	require.Equal(t, "error", AnalyticsRow{TotalDays: 9}.Level())
	require.Equal(t, "warning", AnalyticsRow{TotalDays: 10}.Level())
	require.Equal(t, "success", AnalyticsRow{TotalDays: 20}.Level())
}

func TestDateRangeUnknownPresetIsOpen(t *testing.T) {
	start, end := DateRange("1999", time.Now())
	require.Empty(t, start)
	require.Empty(t, end)
}
