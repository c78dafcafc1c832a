package model

const (
	ReviewTypeService = "SERVICE"
	ReviewTypeChild   = "CHILD"
)

type Review struct {
	ID         string           `json:"id"`
	ReviewType string           `json:"reviewType"`
	OrderID    string           `json:"orderId"`
	Rating     int              `json:"rating"`
	Content    string           `json:"content"`
	Tags       []string         `json:"tags,omitempty"`
	Images     []string         `json:"images,omitempty"`
	Anonymous  bool             `json:"anonymous,omitempty"`
	Companion  *ReviewCompanion `json:"companion,omitempty"`
	Child      *ReviewChild     `json:"child,omitempty"`
	CreatedAt  string           `json:"createdAt"`
}

type ReviewCompanion struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type ReviewChild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
