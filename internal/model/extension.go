package model

const (
	ExtensionPending   = "PENDING"
	ExtensionConfirmed = "CONFIRMED"
	ExtensionRejected  = "REJECTED"
	ExtensionCancelled = "CANCELLED"
)

type Extension struct {
	ID             string  `json:"id"`
	OrderID        string  `json:"orderId"`
	OrderNo        string  `json:"orderNo,omitempty"`
	CompanionName  string  `json:"companionName,omitempty"`
	ChildName      string  `json:"childName,omitempty"`
	ServiceDate    string  `json:"serviceDate,omitempty"`
	ExtensionHours float64 `json:"extensionHours"`
	ExtensionFee   float64 `json:"extensionFee"`
	Status         string  `json:"status"`
	Remark         string  `json:"remark"`
	CreatedAt      string  `json:"createdAt"`
	CancelReason   string  `json:"cancelReason,omitempty"`
	CancelledAt    string  `json:"cancelledAt,omitempty"`
	ConfirmedAt    string  `json:"confirmedAt,omitempty"`
	RejectReason   string  `json:"rejectReason,omitempty"`
	RejectedAt     string  `json:"rejectedAt,omitempty"`
}
