package leave

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

const (
	OrderByName      = "u.name"
	OrderByLeader    = "u.leader_name"
	OrderByTotalDays = "total_days"

	AnalyticsPerPage = 10
	DefaultRange     = "2024"
)

type RangePreset struct {
	Value string
	Label string
}

var RangePresets = []RangePreset{
	{Value: "2022", Label: "01-01-2022 / 31-12-2022"},
	{Value: "2024", Label: "01-01-2024 / 31-12-2024"},
	{Value: "2025", Label: "01-01-2025 / today"},
}

// DateRange maps a preset to its start and end dates. Unknown presets give
// an open range.
func DateRange(preset string, now time.Time) (string, string) {
	switch preset {
	case "2022":
		return "2022-01-01", "2022-12-31"
	case "2024":
		return "2024-01-01", "2024-12-31"
	case "2025":
		return "2025-01-01", now.Format("2006-01-02")
	default:
		return "", ""
	}
}

type AnalyticsFilters struct {
	Name       string
	LeaderName string
	Range      string
	SortDays   Order
}

func DefaultAnalyticsFilters() AnalyticsFilters {
	return AnalyticsFilters{Range: DefaultRange, SortDays: OrderDesc}
}

// Ordering picks one sort column: name first, then leader, then total days
// in the direction of the sort toggle.
func (f AnalyticsFilters) Ordering() (string, Order) {
	if strings.TrimSpace(f.Name) != "" {
		return OrderByName, OrderAsc
	}
	if strings.TrimSpace(f.LeaderName) != "" {
		return OrderByLeader, OrderAsc
	}
	if f.SortDays == OrderAsc {
		return OrderByTotalDays, OrderAsc
	}
	return OrderByTotalDays, OrderDesc
}

// ShowDaysSort reports whether the total days sort toggle applies.
func (f AnalyticsFilters) ShowDaysSort() bool {
	orderBy, _ := f.Ordering()
	return orderBy == OrderByTotalDays
}

func (f AnalyticsFilters) Query(page int, now time.Time) url.Values {
	start, end := DateRange(f.Range, now)
	orderBy, order := f.Ordering()
	return url.Values{
		"page":        {strconv.Itoa(page)},
		"per_page":    {strconv.Itoa(AnalyticsPerPage)},
		"leader_name": {f.LeaderName},
		"name":        {f.Name},
		"start_date":  {start},
		"end_date":    {end},
		"order_by":    {orderBy},
		"order":       {string(order)},
	}
}
