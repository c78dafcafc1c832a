package model

// CalendarTemplate is the fixed service schedule. Day is the two-digit day of
// month; the requested month is prefixed when it is served.
type CalendarTemplate struct {
	Days    []CalendarTemplateDay `json:"days"`
	Summary CalendarSummary       `json:"summary"`
}

type CalendarTemplateDay struct {
	Day   string         `json:"day"`
	Tasks []CalendarTask `json:"tasks"`
}

type CalendarTask struct {
	ID              string `json:"id"`
	TaskNo          string `json:"taskNo"`
	ServiceType     string `json:"serviceType"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	ChildName       string `json:"childName"`
	CompanionName   string `json:"companionName"`
	CompanionLevel  string `json:"companionLevel"`
	CompanionAvatar string `json:"companionAvatar"`
	CompanionPhone  string `json:"companionPhone"`
	Address         string `json:"address"`
	Status          string `json:"status"`
}

type CalendarSummary struct {
	TotalTasks      int `json:"totalTasks"`
	CompletedTasks  int `json:"completedTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	PendingTasks    int `json:"pendingTasks"`
}

type CalendarDay struct {
	Date  string         `json:"date"`
	Tasks []CalendarTask `json:"tasks"`
}

type Calendar struct {
	Tasks   []CalendarDay   `json:"tasks"`
	Summary CalendarSummary `json:"summary"`
}

// ForMonth renders the template for month ("YYYY-MM").
func (c CalendarTemplate) ForMonth(month string) Calendar {
	out := Calendar{Tasks: make([]CalendarDay, 0, len(c.Days)), Summary: c.Summary}
	for _, d := range c.Days {
		out.Tasks = append(out.Tasks, CalendarDay{Date: month + "-" + d.Day, Tasks: d.Tasks})
	}
	return out
}
