package model

const (
	DemandPendingAssign = "PENDING_ASSIGN"
	DemandPendingAccept = "PENDING_ACCEPT"
	DemandAssigned      = "ASSIGNED"
	DemandCompleted     = "COMPLETED"
	DemandCancelled     = "CANCELLED"

	MatchStatusMatched   = "MATCHED"
	MatchStatusMatching  = "MATCHING"
	MatchStatusUnmatched = "UNMATCHED"
)

type Demand struct {
	ID            string        `json:"id"`
	TaskNo        string        `json:"taskNo"`
	ParentID      string        `json:"parentId"`
	Status        string        `json:"status"`
	MatchStatus   string        `json:"matchStatus,omitempty"`
	ServiceType   string        `json:"serviceType,omitempty"`
	Children      []DemandChild `json:"children"`
	ServiceItems  []ServiceItem `json:"serviceItems"`
	AddressID     string        `json:"addressId,omitempty"`
	AddressDetail string        `json:"addressDetail"`
	ServiceDate   string        `json:"serviceDate,omitempty"`
	StartTime     string        `json:"startTime,omitempty"`
	EndTime       string        `json:"endTime,omitempty"`
	Duration      float64       `json:"duration,omitempty"`
	Budget        float64       `json:"budget,omitempty"`
	Remark        string        `json:"remark,omitempty"`
	CompanionName *string       `json:"companionName"`
	CreatedAt     string        `json:"createdAt"`
	CancelledAt   string        `json:"cancelledAt,omitempty"`

	Extra Extra `json:"-"`
}

func (d *Demand) UnmarshalJSON(b []byte) error {
	type plain Demand
	return decodeLenient(b, (*plain)(d), &d.Extra)
}

func (d Demand) MarshalJSON() ([]byte, error) {
	type plain Demand
	return encodeWithExtra(plain(d), d.Extra)
}

type DemandChild struct {
	ChildID   string `json:"childId"`
	ChildName string `json:"childName"`
	Age       int    `json:"age,omitempty"`
}

type ServiceItem struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Duration float64 `json:"duration,omitempty"`
}
