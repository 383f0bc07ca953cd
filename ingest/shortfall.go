package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// ErrSkipRecord marks a shortfall row that should be dropped rather than
// turned into an order, such as warehouse-internal moves or closed lanes.
var ErrSkipRecord = errors.New("shortfall record filtered out")

// ShortfallRecord is one rollcage shortfall as it arrives from the
// registration sheet or the broker feed.
type ShortfallRecord struct {
	CallTime    string `json:"call_time"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	A           int    `json:"a"`
	B           int    `json:"b"`
	C           int    `json:"c"`
	D           int    `json:"d"`
	BE          int    `json:"be"`
	Status      string `json:"status,omitempty"`
	Solution    string `json:"solution,omitempty"`
}

// excluded lanes never become flex orders.
var excludedLocations = []string{"SCB", "ECS"}

// ParseClock parses a registration clock value. The sheets use both
// "08:15" and "08u15", with an optional seconds part.
func ParseClock(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "u", ":")
	s = strings.ReplaceAll(s, "U", ":")
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse clock %q", raw)
}

// ToOrder converts the record into an order called in on the given day.
// Belgium rollcages count toward priority A. Records on excluded lanes,
// self loops, and empty records return ErrSkipRecord.
func (r ShortfallRecord) ToOrder(day time.Time, classes model.Classifier) (*model.Order, error) {
	origin := NormalizeLocation(r.Origin)
	dest := NormalizeLocation(r.Destination)
	if origin == "" || dest == "" || origin == dest {
		return nil, ErrSkipRecord
	}
	if dest == "FR" {
		return nil, ErrSkipRecord
	}
	for _, ex := range excludedLocations {
		if strings.Contains(string(origin), ex) || strings.Contains(string(dest), ex) {
			return nil, ErrSkipRecord
		}
	}
	q := model.Quantities{A: r.A + r.BE, B: r.B, C: r.C, D: r.D}
	if q.Total() <= 0 {
		return nil, ErrSkipRecord
	}
	clock, err := ParseClock(r.CallTime)
	if err != nil {
		return nil, err
	}
	callTime := time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0, day.Location())
	order, err := model.NewOrder(callTime, origin, dest, q, classes)
	if err != nil {
		return nil, err
	}
	order.ReportedSolver = reportedSolver(r.Status, r.Solution)
	return order, nil
}

// reportedSolver extracts the truck name the control room recorded as the
// actual solution, for comparing planned against reported assignments.
func reportedSolver(status, solution string) string {
	if !strings.EqualFold(strings.TrimSpace(status), "opgelost") {
		return ""
	}
	s := strings.ToUpper(strings.TrimSpace(solution))
	s = strings.ReplaceAll(s, "FLEX", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}
