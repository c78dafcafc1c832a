package model

import (
	"math"
	"slices"
)

type Companion struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Avatar       string   `json:"avatar"`
	Gender       string   `json:"gender"`
	Age          int      `json:"age"`
	Level        string   `json:"level"`
	Education    string   `json:"education,omitempty"`
	School       string   `json:"school,omitempty"`
	Introduction string   `json:"introduction,omitempty"`
	Tags         []string `json:"tags"`
	ServiceTypes []string `json:"serviceTypes"`
	CreditScore  float64  `json:"creditScore"`
	GoodRate     float64  `json:"goodRate"`
	Distance     float64  `json:"distance"`
	ServiceCount int      `json:"serviceCount"`
	HourlyRate   float64  `json:"hourlyRate"`
	MatchScore   *int     `json:"matchScore,omitempty"`
}

// Score is the match heuristic: round(0.4*creditScore + 0.4*goodRate + 2*(10-distance)).
// Halves round toward positive infinity.
func (c Companion) Score() int {
	raw := 0.4*c.CreditScore + 0.4*c.GoodRate + 2*(10-c.Distance)
	return int(math.Floor(raw + 0.5))
}

// Reputation ranks companions recommended for a demand.
func (c Companion) Reputation() float64 {
	return c.CreditScore*0.5 + c.GoodRate*0.5
}

func (c Companion) HasAnyTag(tags []string) bool {
	return containsAny(c.Tags, tags)
}

func (c Companion) HasAnyServiceType(types []string) bool {
	return containsAny(c.ServiceTypes, types)
}

func containsAny(have, want []string) bool {
	for _, v := range have {
		if slices.Contains(want, v) {
			return true
		}
	}
	return false
}
