// Package report turns a finished dispatch run into exportable summaries.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

// OrderSummary is the exported view of one order.
type OrderSummary struct {
	ID          string `json:"id"`
	CallTime    string `json:"call_time"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Rollcages   int    `json:"rollcages"`
	Inter       bool   `json:"inter"`
	SolvedBy    string `json:"solved_by,omitempty"`
	Reported    string `json:"reported_solver,omitempty"`
}

// TruckSummary is the exported view of one truck shift.
type TruckSummary struct {
	Name     string                `json:"name"`
	Base     string                `json:"base"`
	Start    string                `json:"shift_start"`
	End      string                `json:"shift_end"`
	External bool                  `json:"external"`
	Trips    int                   `json:"trips"`
	Timeline []model.TimelineEntry `json:"timeline"`
}

// Report is a complete run summary.
type Report struct {
	Day       string         `json:"day"`
	Fulfilled []OrderSummary `json:"fulfilled"`
	Backlog   []OrderSummary `json:"backlog"`
	Trucks    []TruckSummary `json:"trucks"`
}

// Build assembles a report from the run outcome.
func Build(day time.Time, fulfilled, backlog [][]*model.Order, trucks []*model.Truck) Report {
	r := Report{Day: day.Format("2006-01-02")}
	for _, batch := range fulfilled {
		for _, o := range batch {
			r.Fulfilled = append(r.Fulfilled, summarize(o))
		}
	}
	for _, batch := range backlog {
		for _, o := range batch {
			r.Backlog = append(r.Backlog, summarize(o))
		}
	}
	for _, t := range trucks {
		r.Trucks = append(r.Trucks, TruckSummary{
			Name:     t.Name,
			Base:     string(t.Base),
			Start:    t.Start.Format(time.RFC3339),
			End:      t.End.Format(time.RFC3339),
			External: t.External,
			Trips:    len(t.Completed),
			Timeline: t.Timeline,
		})
	}
	return r
}

func summarize(o *model.Order) OrderSummary {
	return OrderSummary{
		ID:          o.ID.String(),
		CallTime:    o.CallTime.Format(time.RFC3339),
		Origin:      string(o.Origin),
		Destination: string(o.Destination),
		Rollcages:   o.Total,
		Inter:       o.Inter,
		SolvedBy:    o.SolvedBy,
		Reported:    o.ReportedSolver,
	}
}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteOrdersCSV writes the fulfilled and backlog orders to w in CSV format.
func WriteOrdersCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"order_id", "call_time", "origin", "destination", "rollcages", "inter", "status", "solved_by", "reported_solver"}); err != nil {
		return err
	}
	write := func(o OrderSummary, status string) error {
		return cw.Write([]string{
			o.ID,
			o.CallTime,
			o.Origin,
			o.Destination,
			strconv.Itoa(o.Rollcages),
			strconv.FormatBool(o.Inter),
			status,
			o.SolvedBy,
			o.Reported,
		})
	}
	for _, o := range r.Fulfilled {
		if err := write(o, "fulfilled"); err != nil {
			return err
		}
	}
	for _, o := range r.Backlog {
		if err := write(o, "backlog"); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTimelineCSV writes every truck movement to w in CSV format.
func WriteTimelineCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"truck", "location", "time", "action"}); err != nil {
		return err
	}
	for _, t := range r.Trucks {
		for _, e := range t.Timeline {
			rec := []string{
				t.Name,
				string(e.Location),
				e.Time.Format(time.RFC3339),
				e.Action,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
