package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/event"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/hotstore"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/rowkey"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/warehouse"
)

// FormatCold projects an event into the warehouse's flat row. It is a pure
// projection: absent user_id or event_timestamp become NULL columns, the
// warehouse tolerates them.
func FormatCold(e *event.AdEvent) warehouse.HistoricalRow {
	row := warehouse.HistoricalRow{
		EventType: e.EventType,
		ProductID: e.ProductID,
		Revenue:   e.Revenue,
	}

	if e.UserID != "" {
		userID := e.UserID
		row.UserID = &userID
	}
	if e.HasTimestamp() {
		// Full source precision; only the hot-path key truncates to ms.
		sec, frac := math.Modf(*e.EventTimestamp)
		ts := time.Unix(int64(sec), int64(frac*1e9)).UTC()
		row.EventTimestamp = &ts
	}

	return row
}

// FormatHot builds the hot-path row mutation for an event. Unlike the cold
// path it requires user_id and a finite event_timestamp, since both go into
// the row key; a user_id containing the key separator is also rejected to keep
// prefix-scan boundaries unambiguous. Failures here drop only the hot branch.
func FormatHot(e *event.AdEvent) (hotstore.RowMutation, error) {
	if e.UserID == "" {
		return hotstore.RowMutation{}, fmt.Errorf("hot path requires user_id (event_id=%s)", e.EventID)
	}
	if strings.Contains(e.UserID, rowkey.Separator) {
		return hotstore.RowMutation{}, fmt.Errorf("user_id %q contains the row key separator", e.UserID)
	}
	if !e.HasTimestamp() {
		return hotstore.RowMutation{}, fmt.Errorf("hot path requires event_timestamp (event_id=%s)", e.EventID)
	}
	ts := *e.EventTimestamp
	if math.IsNaN(ts) || math.IsInf(ts, 0) {
		return hotstore.RowMutation{}, fmt.Errorf("event_timestamp %v is not a finite number", ts)
	}

	return hotstore.RowMutation{
		Key: rowkey.Encode(e.UserID, ts),
		Cells: map[string]string{
			hotstore.CellEventType: e.EventType,
			hotstore.CellProductID: e.ProductID,
			hotstore.CellRevenue:   strconv.FormatFloat(e.Revenue, 'f', -1, 64),
		},
	}, nil
}
