package model

type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
	UsageCount  int    `json:"usageCount"`
	CreatedAt   string `json:"createdAt"`
}
