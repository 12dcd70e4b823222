package tables

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusSeated    ReservationStatus = "seated"
	StatusNoShow    ReservationStatus = "no_show"
	StatusCanceled  ReservationStatus = "canceled"
	// completed is only written by day closure
	StatusCompleted ReservationStatus = "completed"
)

// ActiveStatuses hold a table
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusSeated}

// transitions lists the moves staff may make; seated only ends at day closure
var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCanceled},
	StatusConfirmed: {StatusSeated, StatusNoShow, StatusCanceled},
	StatusSeated:    {},
}

// IsValid reports whether staff may set this status directly
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated, StatusNoShow, StatusCanceled:
		return true
	}
	return false
}

func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusSeated
}

func (s ReservationStatus) IsTerminal() bool {
	return s == StatusNoShow || s == StatusCanceled || s == StatusCompleted
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ReservationStatus) String() string {
	return string(s)
}

type TableState string

const (
	TableAvailable TableState = "available"
	TableOccupied  TableState = "occupied"
	TableInactive  TableState = "inactive"
)
