package model

const (
	OrderPendingPay = "PENDING_PAY"
	OrderPaid       = "PAID"
	OrderPending    = "PENDING"
	OrderInProgress = "IN_PROGRESS"
	OrderCompleted  = "COMPLETED"
	OrderCancelled  = "CANCELLED"
)

type Order struct {
	ID            string  `json:"id"`
	OrderNo       string  `json:"orderNo"`
	OrderType     string  `json:"orderType"`
	Status        string  `json:"status"`
	ServiceType   string  `json:"serviceType"`
	ChildName     string  `json:"childName,omitempty"`
	CompanionID   string  `json:"companionId,omitempty"`
	CompanionName string  `json:"companionName,omitempty"`
	ServiceDate   string  `json:"serviceDate"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Address       string  `json:"address"`
	Hours         float64 `json:"hours"`
	Amount        float64 `json:"amount"`
	CreatedAt     string  `json:"createdAt"`
	CancelReason  string  `json:"cancelReason,omitempty"`
	CancelledAt   string  `json:"cancelledAt,omitempty"`
}
