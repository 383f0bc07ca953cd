package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.Local)
}

var classes = model.Classifier{"ALR": model.ClassDepot, "XWW": model.ClassCross}

func order(t *testing.T, callTime time.Time, origin, dest model.Location, rc int) *model.Order {
	t.Helper()
	o, err := model.NewOrder(callTime, origin, dest, model.Quantities{A: rc}, classes)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	return o
}

// runOutcome fabricates a finished single-trip day: one fulfilled order, one
// backlog order, one truck that ran the trip.
func runOutcome(t *testing.T) ([][]*model.Order, [][]*model.Order, []*model.Truck) {
	t.Helper()
	done := order(t, at(8, 0), "ALR", "XWW", 24)
	done.Fulfilled = true
	done.SolvedBy = "ALR1"
	done.ReportedSolver = "ALR2"

	waiting := order(t, at(9, 0), "XWW", "ALR", 12)

	tr := model.NewTruck("ALR1", "ALR", at(8, 0), at(16, 0), false, false)
	tr.StartShift()
	tr.Completed = append(tr.Completed, []*model.Order{done})
	tr.Record("ALR", at(8, 0), model.ActionLoad)
	tr.Record("XWW", at(10, 10), model.ActionUnload)
	tr.FinishShift(at(16, 0))

	return [][]*model.Order{{done}}, [][]*model.Order{{waiting}}, []*model.Truck{tr}
}

func TestBuild(t *testing.T) {
	fulfilled, backlog, trucks := runOutcome(t)
	r := Build(day, fulfilled, backlog, trucks)

	if r.Day != "2026-03-02" {
		t.Errorf("day = %q", r.Day)
	}
	if len(r.Fulfilled) != 1 || len(r.Backlog) != 1 || len(r.Trucks) != 1 {
		t.Fatalf("report sizes: %d fulfilled, %d backlog, %d trucks",
			len(r.Fulfilled), len(r.Backlog), len(r.Trucks))
	}
	f := r.Fulfilled[0]
	if f.Origin != "ALR" || f.Destination != "XWW" || f.Rollcages != 24 || !f.Inter {
		t.Errorf("fulfilled summary = %+v", f)
	}
	if f.SolvedBy != "ALR1" || f.Reported != "ALR2" {
		t.Errorf("solver fields = %+v", f)
	}
	ts := r.Trucks[0]
	if ts.Name != "ALR1" || ts.Trips != 1 || ts.External {
		t.Errorf("truck summary = %+v", ts)
	}
	if len(ts.Timeline) == 0 {
		t.Errorf("truck timeline must be exported")
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	fulfilled, backlog, trucks := runOutcome(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Build(day, fulfilled, backlog, trucks)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Day != "2026-03-02" || len(got.Fulfilled) != 1 {
		t.Fatalf("decoded report = %+v", got)
	}
}

func TestWriteOrdersCSV(t *testing.T) {
	fulfilled, backlog, trucks := runOutcome(t)
	var buf bytes.Buffer
	if err := WriteOrdersCSV(&buf, Build(day, fulfilled, backlog, trucks)); err != nil {
		t.Fatalf("WriteOrdersCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus two orders", len(rows))
	}
	if rows[0][0] != "order_id" || rows[0][6] != "status" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][6] != "fulfilled" || rows[1][7] != "ALR1" {
		t.Errorf("fulfilled row = %v", rows[1])
	}
	if rows[2][6] != "backlog" || rows[2][7] != "" {
		t.Errorf("backlog row = %v", rows[2])
	}
}

func TestWriteTimelineCSV(t *testing.T) {
	fulfilled, backlog, trucks := runOutcome(t)
	var buf bytes.Buffer
	if err := WriteTimelineCSV(&buf, Build(day, fulfilled, backlog, trucks)); err != nil {
		t.Fatalf("WriteTimelineCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "truck,location,time,action\n") {
		t.Errorf("header missing: %q", out)
	}
	if !strings.Contains(out, model.ActionUnload) {
		t.Errorf("unload entry missing: %q", out)
	}
}
