package model

const (
	NotificationSystem  = "SYSTEM"
	NotificationTask    = "TASK"
	NotificationOrder   = "ORDER"
	NotificationFinance = "FINANCE"
)

type Notification struct {
	ID               string `json:"id"`
	NotificationType string `json:"notificationType"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	IsRead           bool   `json:"isRead"`
	BizType          string `json:"bizType,omitempty"`
	BizID            string `json:"bizId,omitempty"`
	CreatedAt        string `json:"createdAt"`
}
