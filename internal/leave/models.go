// Package leave talks to the leave request resources of the API.
package leave

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type Status string

const (
	StatusPending  Status = "pendiente"
	StatusApproved Status = "aprobado"
	StatusRejected Status = "rechazado"
)

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

type Type string

const (
	TypeVacation Type = "vacaciones"
	TypeMedical  Type = "incapacidad"
)

func (t Type) Label() string {
	switch t {
	case TypeVacation:
		return "Vacation"
	case TypeMedical:
		return "Medical leave"
	default:
		return string(t)
	}
}

var Types = []Type{TypeVacation, TypeMedical}

type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	LeaderName string `json:"leader_name"`
	InternalID Text   `json:"internal_id"`
}

type Request struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	UserName   string `json:"user_name"`
	LeaveType  Type   `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Notes      string `json:"notes"`
	Status     Status `json:"status"`
	LeaderName string `json:"leader_name"`
}

// Actionable reports whether approve, reject and delete are offered.
func (r Request) Actionable() bool {
	return r.Status == StatusPending
}

const analyticsDaysCap = 30

type AnalyticsRow struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	LeaderName string `json:"leader_name"`
	TotalDays  Days   `json:"total_days"`
}

// Percentage is total days over the 30 day cap, clamped to 1.
func (r AnalyticsRow) Percentage() float64 {
	return math.Min(float64(r.TotalDays)/analyticsDaysCap, 1)
}

func (r AnalyticsRow) CappedDays() float64 {
	return math.Min(float64(r.TotalDays), analyticsDaysCap)
}

// Level buckets the days taken for the progress bar colour.
func (r AnalyticsRow) Level() string {
	switch {
	case r.TotalDays < 10:
		return "error"
	case r.TotalDays < 20:
		return "warning"
	default:
		return "success"
	}
}

// Text accepts a JSON string, number or null.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// Days accepts a JSON number or a numeric string (aggregates often arrive
// as decimals encoded as strings).
type Days float64

func (d *Days) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*d = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*d = Days(v)
	return nil
}

func (d Days) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}
