package model

const (
	PackageActive   = "ACTIVE"
	PackageInactive = "INACTIVE"

	PaymentMethodWallet = "WALLET"
	PaymentMethodWechat = "WECHAT"
)

type CoursePackage struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Hours         float64  `json:"hours"`
	OriginalPrice float64  `json:"originalPrice"`
	SalePrice     float64  `json:"salePrice"`
	ValidDays     int      `json:"validDays"`
	Tags          []string `json:"tags,omitempty"`
	Status        string   `json:"status"`
}

type PaymentRecord struct {
	ID            string  `json:"id"`
	PaymentNo     string  `json:"paymentNo"`
	PaymentType   string  `json:"paymentType"`
	PaymentMethod string  `json:"paymentMethod"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Description   string  `json:"description"`
	CreatedAt     string  `json:"createdAt"`
}
