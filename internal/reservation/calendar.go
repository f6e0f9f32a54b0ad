package reservation

import (
	"context"
	"time"

	"campus_fleet/internal/apperror"
	"campus_fleet/internal/models"
)

// imminentDays is how close a trip date has to be for the calendar to
// flag it as imminent.
const imminentDays = 2

// CalendarEntry is the presentation shape for calendar and listing
// responses. The derived flags are computed against "today" at query
// time and are not persisted.
type CalendarEntry struct {
	ID             uint                    `json:"id"`
	Reference      string                  `json:"reference"`
	VehicleID      uint                    `json:"vehicle_id"`
	DriverID       *uint                   `json:"driver_id,omitempty"`
	RequesterID    uint                    `json:"requester_id"`
	Date           string                  `json:"date"`
	StartTime      string                  `json:"start_time"`
	EndTime        string                  `json:"end_time"`
	Origin         string                  `json:"origin,omitempty"`
	Destination    string                  `json:"destination"`
	UnitName       string                  `json:"unit_name"`
	Reason         string                  `json:"reason"`
	PassengerCount int                     `json:"passenger_count"`
	State          models.ReservationState `json:"state"`
	Notes          string                  `json:"notes,omitempty"`

	RemainingDays int  `json:"remaining_days"`
	Cancellable   bool `json:"cancellable"`
	Modifiable    bool `json:"modifiable"`
	Imminent      bool `json:"imminent"`
}

// ToCalendarEntry maps a reservation to its presentation form, deriving
// the flags relative to today.
func ToCalendarEntry(r models.Reservation, today time.Time) CalendarEntry {
	today = dateOnly(today)
	date := dateOnly(r.Date)

	remaining := int(date.Sub(today).Hours() / 24)
	if remaining < 0 {
		remaining = 0
	}

	active := r.State == models.ReservationPending || r.State == models.ReservationApproved
	future := date.After(today)

	return CalendarEntry{
		ID:             r.ID,
		Reference:      r.Reference,
		VehicleID:      r.VehicleID,
		DriverID:       r.DriverID,
		RequesterID:    r.RequesterID,
		Date:           date.Format(dateLayout),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Origin:         r.Origin,
		Destination:    r.Destination,
		UnitName:       r.UnitName,
		Reason:         r.Reason,
		PassengerCount: r.PassengerCount,
		State:          r.State,
		Notes:          r.Notes,
		RemainingDays:  remaining,
		Cancellable:    active && future,
		Modifiable:     r.State == models.ReservationPending && future,
		Imminent:       active && remaining <= imminentDays,
	}
}

// ListCalendar returns the reservations between two dates, optionally
// narrowed to one vehicle, in presentation form ordered by date and
// start time.
func (s *Service) ListCalendar(ctx context.Context, fromStr, toStr string, vehicleID uint) ([]CalendarEntry, error) {
	from, err := ParseDate(fromStr)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	to, err := ParseDate(toStr)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if to.Before(from) {
		return nil, apperror.Validation("date_to must not be before date_from")
	}

	reservations, err := s.repo.ListBetween(ctx, from, to, vehicleID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Now()
	out := make([]CalendarEntry, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, ToCalendarEntry(r, today))
	}
	return out, nil
}
