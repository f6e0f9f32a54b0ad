package reservation

import "campus_fleet/internal/models"

// Actor roles as carried in JWT claims.
const (
	RoleAdmin     = "admin"
	RoleRequester = "requester"
	RoleDriver    = "driver"
)

// Actor identifies the authenticated user attempting an operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// allowTransition is the reservation state machine as a directed graph.
// Terminal states map to an empty slice. Self-transitions are not
// allowed: a second approve or complete on the same reservation fails.
var allowTransition = map[models.ReservationState][]models.ReservationState{
	models.ReservationPending: {
		models.ReservationApproved,
		models.ReservationRejected,
		models.ReservationCancelled,
	},
	models.ReservationApproved: {
		models.ReservationCancelled,
		models.ReservationCompleted,
	},
	models.ReservationRejected:  {},
	models.ReservationCancelled: {},
	models.ReservationCompleted: {},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to models.ReservationState) bool {
	allowed, ok := allowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave the state.
func IsTerminal(s models.ReservationState) bool {
	return len(allowTransition[s]) == 0
}

// activeStates are the states that hold a claim on the vehicle and
// driver for availability purposes.
var activeStates = []models.ReservationState{
	models.ReservationPending,
	models.ReservationApproved,
}
