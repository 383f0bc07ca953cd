package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/core/scoring"
	"github.com/flexfleet/flexdispatch/core/traveltime"
)

// ReadTravelTimes loads the travel time matrix export. Expected columns:
// from;to;minutes. Decimal commas are accepted.
func ReadTravelTimes(path string) (*traveltime.Matrix, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("travel times %s: %w", path, err)
	}
	if err := t.require("from", "to", "minutes"); err != nil {
		return nil, fmt.Errorf("travel times %s: %w", path, err)
	}
	var records []traveltime.Record
	for i, row := range t.rows {
		raw := strings.ReplaceAll(t.get(row, "minutes"), ",", ".")
		minutes, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("travel times %s row %d: %w", path, i+2, err)
		}
		records = append(records, traveltime.Record{
			From:    NormalizeLocation(t.get(row, "from")),
			To:      NormalizeLocation(t.get(row, "to")),
			Minutes: minutes,
		})
	}
	return traveltime.New(records), nil
}

// ReadDepotClasses loads the depot classification export. Expected columns:
// location;class where class is DEPOT or CROSS.
func ReadDepotClasses(path string) (model.Classifier, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("depot classes %s: %w", path, err)
	}
	if err := t.require("location", "class"); err != nil {
		return nil, fmt.Errorf("depot classes %s: %w", path, err)
	}
	classes := make(model.Classifier, len(t.rows))
	for i, row := range t.rows {
		loc := NormalizeLocation(t.get(row, "location"))
		switch strings.ToUpper(t.get(row, "class")) {
		case "DEPOT":
			classes[loc] = model.ClassDepot
		case "CROSS", "CROSSDOCK":
			classes[loc] = model.ClassCross
		default:
			return nil, fmt.Errorf("depot classes %s row %d: unknown class %q", path, i+2, t.get(row, "class"))
		}
	}
	return classes, nil
}

// ReadDeadlines loads per-lane delivery deadlines for the given process day.
// Expected columns: origin;destination;priority;inter;deadline with the
// deadline as a clock value. Deadlines before 04:00 belong to the next day.
func ReadDeadlines(path string, day time.Time) (scoring.DeadlineTable, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("deadlines %s: %w", path, err)
	}
	if err := t.require("origin", "destination", "priority", "inter", "deadline"); err != nil {
		return nil, fmt.Errorf("deadlines %s: %w", path, err)
	}
	table := make(scoring.DeadlineTable, len(t.rows))
	for i, row := range t.rows {
		prio, err := parsePriority(t.get(row, "priority"))
		if err != nil {
			return nil, fmt.Errorf("deadlines %s row %d: %w", path, i+2, err)
		}
		inter, err := strconv.ParseBool(strings.ToLower(t.get(row, "inter")))
		if err != nil {
			return nil, fmt.Errorf("deadlines %s row %d: %w", path, i+2, err)
		}
		clock, err := ParseClock(t.get(row, "deadline"))
		if err != nil {
			return nil, fmt.Errorf("deadlines %s row %d: %w", path, i+2, err)
		}
		deadline := time.Date(day.Year(), day.Month(), day.Day(),
			clock.Hour(), clock.Minute(), 0, 0, day.Location())
		if clock.Hour() < 4 {
			deadline = deadline.Add(24 * time.Hour)
		}
		key := scoring.DeadlineKey{
			Origin:      NormalizeLocation(t.get(row, "origin")),
			Destination: NormalizeLocation(t.get(row, "destination")),
			Priority:    prio,
			Inter:       inter,
		}
		table[key] = deadline
	}
	return table, nil
}

func parsePriority(s string) (model.Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return model.PrioA, nil
	case "B":
		return model.PrioB, nil
	case "C":
		return model.PrioC, nil
	case "D":
		return model.PrioD, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}
