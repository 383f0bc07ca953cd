package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flexfleet/flexdispatch/core/model"
	"github.com/flexfleet/flexdispatch/infra/logger"
)

// ReadOrders loads the shortfall registration export for the given process
// day and converts each usable row into an order. Expected columns:
// tijd;van;naar;a;b;c;d;be plus optional status;oplossing.
//
// Call times before 04:00 are night shortfalls belonging to the next
// calendar day. The sheet is ordered by call time, so once one row rolls
// over every later row does as well.
func ReadOrders(path string, day time.Time, classes model.Classifier) ([]*model.Order, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("orders %s: %w", path, err)
	}
	if err := t.require("tijd", "van", "naar"); err != nil {
		return nil, fmt.Errorf("orders %s: %w", path, err)
	}
	log := logger.New("ingest")

	var orders []*model.Order
	rolled := false
	for i, row := range t.rows {
		rec := ShortfallRecord{
			CallTime:    t.get(row, "tijd"),
			Origin:      t.get(row, "van"),
			Destination: t.get(row, "naar"),
			A:           atoiOrZero(t.get(row, "a")),
			B:           atoiOrZero(t.get(row, "b")),
			C:           atoiOrZero(t.get(row, "c")),
			D:           atoiOrZero(t.get(row, "d")),
			BE:          atoiOrZero(t.get(row, "be")),
			Status:      t.get(row, "status"),
			Solution:    t.get(row, "oplossing"),
		}
		if rec.CallTime == "" {
			continue
		}
		if !rolled {
			clock, err := ParseClock(rec.CallTime)
			if err != nil {
				return nil, fmt.Errorf("orders %s row %d: %w", path, i+2, err)
			}
			if clock.Hour() < 4 {
				day = day.Add(24 * time.Hour)
				rolled = true
			}
		}
		order, err := rec.ToOrder(day, classes)
		if errors.Is(err, ErrSkipRecord) {
			log.Debugf("skipping shortfall row %d (%s -> %s)", i+2, rec.Origin, rec.Destination)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("orders %s row %d: %w", path, i+2, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
