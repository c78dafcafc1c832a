package mourning

import "time"

type rule struct {
	month  time.Month
	day    int
	reason string
}

// 清明节按固定公历日期处理，不计算节气。
var rules = []rule{
	{time.December, 13, "南京大屠杀死难者国家公祭日"},
	{time.May, 12, "汶川地震纪念日"},
	{time.April, 4, "清明节"},
	{time.July, 28, "唐山大地震纪念日"},
}

type Status struct {
	IsMourningDay bool    `json:"isMourningDay"`
	Reason        *string `json:"reason"`
	StartDate     *string `json:"startDate"`
	EndDate       *string `json:"endDate"`
}

// Check evaluates the calendar date of t in t's own location.
func Check(t time.Time) Status {
	_, month, day := t.Date()
	for _, r := range rules {
		if r.month != month || r.day != day {
			continue
		}
		reason := r.reason
		date := t.Format(time.DateOnly)
		return Status{
			IsMourningDay: true,
			Reason:        &reason,
			StartDate:     &date,
			EndDate:       &date,
		}
	}
	return Status{}
}
