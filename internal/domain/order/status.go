package order

// Status enumerates the order fulfillment lifecycle.
type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCanceled  Status = "CANCELED"
)

// transitions is the complete status graph. DELIVERED and CANCELED are
// terminal. This table is the only place transition legality is defined.
var transitions = map[Status][]Status{
	StatusReceived:  {StatusPreparing, StatusCanceled},
	StatusPreparing: {StatusReady, StatusCanceled},
	StatusReady:     {StatusDelivered},
	StatusDelivered: {},
	StatusCanceled:  {},
}

// AllowedNext returns the legal next statuses for current. An unknown current
// status yields an empty set, so the state machine fails closed.
func AllowedNext(current Status) []Status {
	return transitions[current]
}

// CanTransition reports whether current may move to next.
func CanTransition(current, next Status) bool {
	for _, s := range transitions[current] {
		if s == next {
			return true
		}
	}
	return false
}
