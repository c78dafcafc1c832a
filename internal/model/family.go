package model

type Child struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname,omitempty"`
	Gender   string   `json:"gender"`
	Birthday string   `json:"birthday,omitempty"`
	Age      *int     `json:"age"`
	Grade    string   `json:"grade,omitempty"`
	School   string   `json:"school,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
	Hobbies  []string `json:"hobbies,omitempty"`
	Remark   string   `json:"remark,omitempty"`

	Extra Extra `json:"-"`
}

func (c *Child) UnmarshalJSON(b []byte) error {
	type plain Child
	return decodeLenient(b, (*plain)(c), &c.Extra)
}

func (c Child) MarshalJSON() ([]byte, error) {
	type plain Child
	return encodeWithExtra(plain(c), c.Extra)
}

type Address struct {
	ID           string  `json:"id"`
	ContactName  string  `json:"contactName"`
	ContactPhone string  `json:"contactPhone"`
	Province     string  `json:"province"`
	City         string  `json:"city"`
	District     string  `json:"district"`
	Detail       string  `json:"detail"`
	FullAddress  string  `json:"fullAddress"`
	Latitude     float64 `json:"latitude,omitempty"`
	Longitude    float64 `json:"longitude,omitempty"`
	Label        string  `json:"label,omitempty"`
	IsDefault    bool    `json:"isDefault"`

	Extra Extra `json:"-"`
}

func (a *Address) UnmarshalJSON(b []byte) error {
	type plain Address
	return decodeLenient(b, (*plain)(a), &a.Extra)
}

func (a Address) MarshalJSON() ([]byte, error) {
	type plain Address
	return encodeWithExtra(plain(a), a.Extra)
}

// Compose rebuilds FullAddress from its parts.
func (a *Address) Compose() {
	a.FullAddress = a.Province + a.City + a.District + a.Detail
}
