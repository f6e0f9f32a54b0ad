package reservation

import (
	"testing"

	"campus_fleet/internal/models"
)

func TestCanTransition(t *testing.T) {
	all := []models.ReservationState{
		models.ReservationPending,
		models.ReservationApproved,
		models.ReservationRejected,
		models.ReservationCancelled,
		models.ReservationCompleted,
	}

	allowed := map[[2]models.ReservationState]bool{
		{models.ReservationPending, models.ReservationApproved}:   true,
		{models.ReservationPending, models.ReservationRejected}:   true,
		{models.ReservationPending, models.ReservationCancelled}:  true,
		{models.ReservationApproved, models.ReservationCancelled}: true,
		{models.ReservationApproved, models.ReservationCompleted}: true,
	}

	// Every pair not in the table, including self-transitions, must be
	// refused.
	for _, from := range all {
		for _, to := range all {
			got := CanTransition(from, to)
			want := allowed[[2]models.ReservationState{from, to}]
			if got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	if CanTransition("UNKNOWN", models.ReservationApproved) {
		t.Errorf("unknown source state must not transition")
	}
}

func TestIsTerminal(t *testing.T) {
	terminals := []models.ReservationState{
		models.ReservationRejected,
		models.ReservationCancelled,
		models.ReservationCompleted,
	}
	for _, s := range terminals {
		if !IsTerminal(s) {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	if IsTerminal(models.ReservationPending) || IsTerminal(models.ReservationApproved) {
		t.Errorf("active states are not terminal")
	}
}
