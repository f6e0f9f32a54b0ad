package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus_fleet/internal/apperror"
	"campus_fleet/internal/clock"
	"campus_fleet/internal/models"
)

// minReasonLen is the shortest acceptable trip justification.
const minReasonLen = 10

// Notifier is the best-effort outbound side channel. Implementations
// must never block the caller or surface delivery failures.
type Notifier interface {
	NotifyCreated(r models.Reservation)
	NotifyApproved(r models.Reservation)
	NotifyRejected(r models.Reservation, reason string)
	NotifyCancelled(r models.Reservation, reason string)
}

// Auditor records state-changing actions. Best-effort: failures are the
// implementation's problem, not the caller's.
type Auditor interface {
	Record(action string, entityID uint, before, after string, actorID uint)
}

// Service owns the reservation lifecycle: creation with availability
// checking, the guarded state transitions, and the calendar queries.
type Service struct {
	repo     Repository
	clock    clock.Clock
	notifier Notifier
	audit    Auditor
}

func NewService(repo Repository, clk clock.Clock, notifier Notifier, audit Auditor) *Service {
	return &Service{repo: repo, clock: clk, notifier: notifier, audit: audit}
}

// CreateInput is the explicit DTO for a new reservation request.
type CreateInput struct {
	RequesterID    uint
	VehicleID      uint
	DriverID       *uint
	Date           string // "YYYY-MM-DD"
	StartTime      string // "HH:MM"
	EndTime        string // "HH:MM"
	Origin         string
	Destination    string
	UnitName       string
	Reason         string
	PassengerCount int
}

// Create validates a request, checks vehicle and driver availability and
// persists the reservation in PENDING. All checks and the insert run in
// one transaction that locks the vehicle (and driver) row first, so two
// concurrent requests for the same resource serialize and the loser sees
// the winner's booking. Nothing is written when any check fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Reservation, error) {
	date, start, end, err := s.validateCreate(in)
	if err != nil {
		return nil, err
	}

	passengers := in.PassengerCount
	if passengers == 0 {
		passengers = 1
	}
	if passengers < 1 {
		return nil, apperror.Validation("passenger_count must be at least 1")
	}

	res := &models.Reservation{
		Reference:      uuid.NewString(),
		VehicleID:      in.VehicleID,
		DriverID:       in.DriverID,
		RequesterID:    in.RequesterID,
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Origin:         strings.TrimSpace(in.Origin),
		Destination:    strings.TrimSpace(in.Destination),
		UnitName:       strings.TrimSpace(in.UnitName),
		Reason:         strings.TrimSpace(in.Reason),
		PassengerCount: passengers,
		State:          models.ReservationPending,
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetUser(txCtx, in.RequesterID); err != nil {
			return err
		}

		vehicle, err := s.repo.GetVehicleForUpdate(txCtx, in.VehicleID)
		if err != nil {
			return err
		}
		if vehicle.State != models.VehicleAvailable {
			return apperror.Conflict("vehicle is not available")
		}
		if passengers > vehicle.Capacity {
			return apperror.Validation(fmt.Sprintf("passenger_count exceeds vehicle capacity of %d", vehicle.Capacity))
		}

		if in.DriverID != nil {
			driver, err := s.repo.GetDriverForUpdate(txCtx, *in.DriverID)
			if err != nil {
				return err
			}
			if !driver.Enabled {
				return apperror.Validation("driver is not enabled")
			}
		}

		n, err := s.repo.CountOverlapping(txCtx, ResourceVehicle, in.VehicleID, date, start, end, 0)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperror.Conflict("reservation conflicts with an existing booking")
		}

		if in.DriverID != nil {
			n, err := s.repo.CountOverlapping(txCtx, ResourceDriver, *in.DriverID, date, start, end, 0)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperror.Conflict("driver already booked for an overlapping window")
			}
		}

		return s.repo.Create(txCtx, res)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("reservation.create", res.ID, "", string(models.ReservationPending), in.RequesterID)
	s.notifier.NotifyCreated(*res)
	return res, nil
}

func (s *Service) validateCreate(in CreateInput) (time.Time, string, string, error) {
	if in.VehicleID == 0 {
		return time.Time{}, "", "", apperror.Validation("vehicle_id is required")
	}
	if in.RequesterID == 0 {
		return time.Time{}, "", "", apperror.Validation("requester_id is required")
	}
	for field, v := range map[string]string{
		"date":        in.Date,
		"start_time":  in.StartTime,
		"end_time":    in.EndTime,
		"destination": in.Destination,
		"unit_name":   in.UnitName,
		"reason":      in.Reason,
	} {
		if strings.TrimSpace(v) == "" {
			return time.Time{}, "", "", apperror.Validation(field + " is required")
		}
	}
	if len(strings.TrimSpace(in.Reason)) < minReasonLen {
		return time.Time{}, "", "", apperror.Validation(fmt.Sprintf("reason must be at least %d characters", minReasonLen))
	}

	date, start, end, err := parseWindow(in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return time.Time{}, "", "", err
	}
	if date.Before(dateOnly(s.clock.Now())) {
		return time.Time{}, "", "", apperror.Validation("date must not be in the past")
	}
	return date, start, end, nil
}

func parseWindow(dateStr, startStr, endStr string) (time.Time, string, string, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return time.Time{}, "", "", apperror.Validation(err.Error())
	}
	startMin, err := ParseTimeOfDay(startStr)
	if err != nil {
		return time.Time{}, "", "", apperror.Validation(err.Error())
	}
	endMin, err := ParseTimeOfDay(endStr)
	if err != nil {
		return time.Time{}, "", "", apperror.Validation(err.Error())
	}
	if startMin >= endMin {
		return time.Time{}, "", "", apperror.Validation("start_time must be before end_time")
	}
	return date, FormatTimeOfDay(startMin), FormatTimeOfDay(endMin), nil
}

// Approve moves a PENDING reservation to APPROVED. Admin only. The
// update is guarded by the current state, so of two concurrent approvals
// exactly one succeeds.
func (s *Service) Approve(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Permission("only administrators may approve reservations")
	}

	var out *models.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetReservation(txCtx, id)
		if err != nil {
			return err
		}
		if !CanTransition(res.State, models.ReservationApproved) {
			return invalidTransition(res.State, models.ReservationApproved)
		}

		now := s.clock.Now()
		rows, err := s.repo.UpdateGuarded(txCtx, id,
			[]models.ReservationState{models.ReservationPending},
			map[string]interface{}{
				"state":         models.ReservationApproved,
				"approved_by":   actor.UserID,
				"approval_date": now,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return invalidTransition(res.State, models.ReservationApproved)
		}

		res.State = models.ReservationApproved
		res.ApprovedBy = &actor.UserID
		res.ApprovalDate = &now
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("reservation.approve", id, string(models.ReservationPending), string(models.ReservationApproved), actor.UserID)
	s.notifier.NotifyApproved(*out)
	return out, nil
}

// Reject moves a PENDING reservation to REJECTED. Admin only; a reason
// is mandatory and is appended to the reservation notes.
func (s *Service) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Permission("only administrators may reject reservations")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.Validation("a rejection reason is required")
	}

	var out *models.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetReservation(txCtx, id)
		if err != nil {
			return err
		}
		if !CanTransition(res.State, models.ReservationRejected) {
			return invalidTransition(res.State, models.ReservationRejected)
		}

		notes := appendNote(res.Notes, "Rejected: "+reason)
		rows, err := s.repo.UpdateGuarded(txCtx, id,
			[]models.ReservationState{models.ReservationPending},
			map[string]interface{}{
				"state": models.ReservationRejected,
				"notes": notes,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return invalidTransition(res.State, models.ReservationRejected)
		}

		res.State = models.ReservationRejected
		res.Notes = notes
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("reservation.reject", id, string(models.ReservationPending), string(models.ReservationRejected), actor.UserID)
	s.notifier.NotifyRejected(*out, reason)
	return out, nil
}

// Cancel moves a PENDING or APPROVED reservation to CANCELLED. Allowed
// for the owning requester or an admin, and only while the trip date is
// strictly in the future: same-day cancellation is blocked.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uint, reason string) (*models.Reservation, error) {
	reason = strings.TrimSpace(reason)

	var out *models.Reservation
	var before models.ReservationState
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetReservation(txCtx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && res.RequesterID != actor.UserID {
			return apperror.Permission("only the requester or an administrator may cancel this reservation")
		}
		if !CanTransition(res.State, models.ReservationCancelled) {
			return invalidTransition(res.State, models.ReservationCancelled)
		}
		if !dateOnly(res.Date).After(dateOnly(s.clock.Now())) {
			return apperror.Validation("same-day cancellation is not allowed")
		}

		before = res.State
		updates := map[string]interface{}{"state": models.ReservationCancelled}
		notes := res.Notes
		if reason != "" {
			notes = appendNote(res.Notes, "Cancelled: "+reason)
			updates["notes"] = notes
		}

		rows, err := s.repo.UpdateGuarded(txCtx, id, activeStates, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return invalidTransition(res.State, models.ReservationCancelled)
		}

		res.State = models.ReservationCancelled
		res.Notes = notes
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("reservation.cancel", id, string(before), string(models.ReservationCancelled), actor.UserID)
	s.notifier.NotifyCancelled(*out, reason)
	return out, nil
}

// Complete moves an APPROVED reservation to COMPLETED once its date has
// arrived. Allowed for admins and for the assigned driver.
func (s *Service) Complete(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	var out *models.Reservation
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetReservation(txCtx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			if err := s.requireAssignedDriver(txCtx, actor, res); err != nil {
				return err
			}
		}
		if !CanTransition(res.State, models.ReservationCompleted) {
			return invalidTransition(res.State, models.ReservationCompleted)
		}
		if dateOnly(res.Date).After(dateOnly(s.clock.Now())) {
			return apperror.Validation("reservation cannot be completed before its date")
		}

		rows, err := s.repo.UpdateGuarded(txCtx, id,
			[]models.ReservationState{models.ReservationApproved},
			map[string]interface{}{"state": models.ReservationCompleted})
		if err != nil {
			return err
		}
		if rows == 0 {
			return invalidTransition(res.State, models.ReservationCompleted)
		}

		res.State = models.ReservationCompleted
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record("reservation.complete", id, string(models.ReservationApproved), string(models.ReservationCompleted), actor.UserID)
	return out, nil
}

func (s *Service) requireAssignedDriver(ctx context.Context, actor Actor, res *models.Reservation) error {
	if actor.Role != RoleDriver || res.DriverID == nil {
		return apperror.Permission("only an administrator or the assigned driver may complete this reservation")
	}
	driver, err := s.repo.GetDriver(ctx, *res.DriverID)
	if err != nil {
		return err
	}
	if driver.UserID != actor.UserID {
		return apperror.Permission("only an administrator or the assigned driver may complete this reservation")
	}
	return nil
}

// UpdateWindow lets an administrator move a reservation to a new date or
// time window. Unlike transitions, this re-runs the availability checks
// (excluding the reservation itself) so an edit cannot introduce a
// double booking.
func (s *Service) UpdateWindow(ctx context.Context, actor Actor, id uint, dateStr, startStr, endStr string) (*models.Reservation, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Permission("only administrators may modify a reservation window")
	}
	date, start, end, err := parseWindow(dateStr, startStr, endStr)
	if err != nil {
		return nil, err
	}
	if date.Before(dateOnly(s.clock.Now())) {
		return nil, apperror.Validation("date must not be in the past")
	}

	var out *models.Reservation
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetReservation(txCtx, id)
		if err != nil {
			return err
		}
		if IsTerminal(res.State) {
			return apperror.InvalidTransition(fmt.Sprintf("cannot modify a %s reservation", res.State))
		}

		if _, err := s.repo.GetVehicleForUpdate(txCtx, res.VehicleID); err != nil {
			return err
		}
		n, err := s.repo.CountOverlapping(txCtx, ResourceVehicle, res.VehicleID, date, start, end, res.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperror.Conflict("reservation conflicts with an existing booking")
		}
		if res.DriverID != nil {
			if _, err := s.repo.GetDriverForUpdate(txCtx, *res.DriverID); err != nil {
				return err
			}
			n, err := s.repo.CountOverlapping(txCtx, ResourceDriver, *res.DriverID, date, start, end, res.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperror.Conflict("driver already booked for an overlapping window")
			}
		}

		rows, err := s.repo.UpdateGuarded(txCtx, id, activeStates, map[string]interface{}{
			"date":       date,
			"start_time": start,
			"end_time":   end,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperror.InvalidTransition(fmt.Sprintf("cannot modify a %s reservation", res.State))
		}

		res.Date = date
		res.StartTime = start
		res.EndTime = end
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	window := fmt.Sprintf("%s %s-%s", date.Format(dateLayout), start, end)
	s.audit.Record("reservation.update_window", id, "", window, actor.UserID)
	return out, nil
}

// CheckAvailability reports whether the resource is free for the window.
func (s *Service) CheckAvailability(ctx context.Context, kind ResourceKind, resourceID uint, dateStr, startStr, endStr string) (bool, error) {
	if kind != ResourceVehicle && kind != ResourceDriver {
		return false, apperror.Validation("resource kind must be VEHICLE or DRIVER")
	}
	if resourceID == 0 {
		return false, apperror.Validation("resource id is required")
	}
	date, start, end, err := parseWindow(dateStr, startStr, endStr)
	if err != nil {
		return false, err
	}

	n, err := s.repo.CountOverlapping(ctx, kind, resourceID, date, start, end, 0)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Get returns a single reservation visible to the actor: admins see
// everything, requesters their own, drivers their assignments.
func (s *Service) Get(ctx context.Context, actor Actor, id uint) (*models.Reservation, error) {
	res, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || res.RequesterID == actor.UserID {
		return res, nil
	}
	if actor.Role == RoleDriver && res.DriverID != nil {
		driver, err := s.repo.GetDriver(ctx, *res.DriverID)
		if err == nil && driver.UserID == actor.UserID {
			return res, nil
		}
	}
	return nil, apperror.Permission("not allowed to view this reservation")
}

// List pages reservations for the admin overview.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Reservation, int64, error) {
	return s.repo.List(ctx, f)
}

func invalidTransition(from, to models.ReservationState) *apperror.Error {
	return apperror.InvalidTransition(fmt.Sprintf("cannot move reservation from %s to %s", from, to))
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
