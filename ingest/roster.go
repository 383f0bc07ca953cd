package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/infra/logger"
)

// ReadRoster loads the flex truck roster for the given process day.
// Expected columns: flex;wagencode;start;eind plus an optional status.
//
// Shift times are clock values. A shift starting before 06:00 belongs to
// the next calendar day, and once one shift rolls over every later row does
// as well since the roster is ordered by start time. A shift ending at or
// before its start crosses midnight.
func ReadRoster(path string, day time.Time) ([]*model.Truck, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	if err := t.require("flex", "wagencode", "start", "eind"); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	log := logger.New("ingest")

	var trucks []*model.Truck
	startDay := day
	for i, row := range t.rows {
		name := strings.ToUpper(strings.TrimSpace(t.get(row, "flex")))
		if name == "" || t.get(row, "start") == "" || t.get(row, "eind") == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(t.get(row, "status")), "UITGELEEND") {
			log.Debugf("skipping loaned out truck %s", name)
			continue
		}
		startClock, err := ParseClock(t.get(row, "start"))
		if err != nil {
			return nil, fmt.Errorf("roster %s row %d: %w", path, i+2, err)
		}
		endClock, err := ParseClock(t.get(row, "eind"))
		if err != nil {
			return nil, fmt.Errorf("roster %s row %d: %w", path, i+2, err)
		}
		if startClock.Hour() < 6 {
			startDay = day.Add(24 * time.Hour)
		}
		start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(),
			startClock.Hour(), startClock.Minute(), 0, 0, day.Location())
		endDay := startDay
		if !endClock.After(startClock) {
			endDay = day.Add(24 * time.Hour)
		}
		end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(),
			endClock.Hour(), endClock.Minute(), 0, 0, day.Location())

		base := TruckBase(name)
		external := len(t.get(row, "wagencode")) != 3
		homeBaseOnly := strings.Contains(name, "BLUE") || strings.Contains(name, "BOL")
		truck := model.NewTruck(strings.ReplaceAll(name, " ", ""), base, start, end, external, homeBaseOnly)
		trucks = append(trucks, truck)
	}
	return trucks, nil
}
