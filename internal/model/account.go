package model

type AuthUser struct {
	UserID    string `json:"userId"`
	UserType  string `json:"userType"`
	Phone     string `json:"phone"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	IsNewUser bool   `json:"isNewUser"`
}

type ParentProfile struct {
	UserID              string `json:"userId"`
	RealName            string `json:"realName"`
	IDCard              string `json:"idCard"`
	CertificationStatus string `json:"certificationStatus"`
	Phone               string `json:"phone"`
	Nickname            string `json:"nickname"`
	Avatar              string `json:"avatar"`
}

type ParentWallet struct {
	Balance       float64 `json:"balance"`
	PendingAmount float64 `json:"pendingAmount"`
	TotalIncome   float64 `json:"totalIncome"`
	TotalWithdraw float64 `json:"totalWithdraw"`
}

type PaymentWallet struct {
	Balance        float64 `json:"balance"`
	RemainingHours float64 `json:"remainingHours"`
	TotalRecharge  float64 `json:"totalRecharge"`
	TotalConsume   float64 `json:"totalConsume"`
}
