package leave

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var (
	ErrInvalidDates     = errors.New("start and end dates must be valid dates (YYYY-MM-DD)")
	ErrEndBeforeStart   = errors.New("end date must not be before start date")
	ErrInvalidLeaveType = errors.New("leave type must be vacation or medical leave")
	ErrNotesTooLong     = errors.New("notes must be at most 500 characters")
)

// NewRequest is a leave request as submitted from the console. The API
// always creates it as pending.
type NewRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Notes     string `json:"notes" validate:"max=500"`
	LeaveType Type   `json:"leave_type" validate:"required,oneof=vacaciones incapacidad"`
}

func (n NewRequest) Normalize() NewRequest {
	return NewRequest{
		StartDate: strings.TrimSpace(n.StartDate),
		EndDate:   strings.TrimSpace(n.EndDate),
		Notes:     strings.TrimSpace(n.Notes),
		LeaveType: Type(strings.TrimSpace(string(n.LeaveType))),
	}
}

func (n NewRequest) Validate() error {
	if err := validate.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "LeaveType":
				return ErrInvalidLeaveType
			case "Notes":
				return ErrNotesTooLong
			}
		}
		return ErrInvalidDates
	}

	start, _ := time.Parse("2006-01-02", n.StartDate)
	end, _ := time.Parse("2006-01-02", n.EndDate)
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}
