package tickets

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
	// completed is only written by day closure
	OrderStatusCompleted OrderStatus = "completed"
)

// IsValid reports whether staff may set this status directly
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// IsOpen reports whether day closure still has to settle the order
func (s OrderStatus) IsOpen() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type CodeStatus string

const (
	CodeStatusIssued    CodeStatus = "issued"
	CodeStatusConfirmed CodeStatus = "confirmed"
	CodeStatusCancelled CodeStatus = "cancelled"
)

func (s CodeStatus) String() string {
	return string(s)
}
