package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javierturcios2607/Proyecto-Tifon/internal/event"
	"github.com/javierturcios2607/Proyecto-Tifon/internal/hotstore"
)

func ts(v float64) *float64 {
	return &v
}

func TestFormatColdFullEvent(t *testing.T) {
	e := &event.AdEvent{
		EventID:        "evt-1",
		UserID:         "user_123",
		EventType:      "click",
		ProductID:      "PROD-A",
		EventTimestamp: ts(1700000000.5),
		Revenue:        0.75,
	}

	row := FormatCold(e)

	require.NotNil(t, row.UserID)
	assert.Equal(t, "user_123", *row.UserID)
	assert.Equal(t, "click", row.EventType)
	assert.Equal(t, "PROD-A", row.ProductID)
	assert.Equal(t, 0.75, row.Revenue)

	require.NotNil(t, row.EventTimestamp)
	assert.Equal(t, time.Unix(1700000000, 500000000).UTC(), *row.EventTimestamp)
	assert.Equal(t, time.UTC, row.EventTimestamp.Location())
}

func TestFormatColdKeepsSubMillisecondPrecision(t *testing.T) {
	e := &event.AdEvent{
		EventID:        "evt-1b",
		UserID:         "user_123",
		EventType:      "click",
		EventTimestamp: ts(1700000000.0004999),
	}

	row := FormatCold(e)
	require.NotNil(t, row.EventTimestamp)

	// 499.9µs past the second must survive into the column value.
	assert.WithinDuration(t, time.Unix(1700000000, 499900).UTC(), *row.EventTimestamp, time.Microsecond)
	assert.NotZero(t, row.EventTimestamp.Nanosecond()%int(time.Millisecond))
}

func TestFormatColdMissingFieldsBecomeNulls(t *testing.T) {
	e := &event.AdEvent{
		EventID:   "evt-2",
		EventType: "impression",
	}

	row := FormatCold(e)

	assert.Nil(t, row.UserID)
	assert.Nil(t, row.EventTimestamp)
	assert.Equal(t, "impression", row.EventType)
	assert.Equal(t, 0.0, row.Revenue)
}

func TestFormatHotCells(t *testing.T) {
	e := &event.AdEvent{
		EventID:        "evt-3",
		UserID:         "user_7",
		EventType:      "conversion",
		ProductID:      "PROD-B",
		EventTimestamp: ts(1000.0),
		Revenue:        1.5,
	}

	m, err := FormatHot(e)
	require.NoError(t, err)

	assert.Equal(t, "user_7#32503679000000", string(m.Key))
	assert.Equal(t, "conversion", m.Cells[hotstore.CellEventType])
	assert.Equal(t, "PROD-B", m.Cells[hotstore.CellProductID])
	assert.Equal(t, "1.5", m.Cells[hotstore.CellRevenue])
}

func TestFormatHotRevenueString(t *testing.T) {
	e := &event.AdEvent{
		UserID:         "u1",
		EventTimestamp: ts(1.0),
		Revenue:        0.0,
	}

	m, err := FormatHot(e)
	require.NoError(t, err)
	assert.Equal(t, "0", m.Cells[hotstore.CellRevenue])

	e.Revenue = 0.01
	m, err = FormatHot(e)
	require.NoError(t, err)
	assert.Equal(t, "0.01", m.Cells[hotstore.CellRevenue])
}

func TestFormatHotRejections(t *testing.T) {
	tests := []struct {
		name string
		e    *event.AdEvent
	}{
		{
			name: "missing user_id",
			e:    &event.AdEvent{EventTimestamp: ts(1.0)},
		},
		{
			name: "separator in user_id",
			e:    &event.AdEvent{UserID: "user#1", EventTimestamp: ts(1.0)},
		},
		{
			name: "missing timestamp",
			e:    &event.AdEvent{UserID: "u1"},
		},
		{
			name: "NaN timestamp",
			e:    &event.AdEvent{UserID: "u1", EventTimestamp: ts(math.NaN())},
		},
		{
			name: "infinite timestamp",
			e:    &event.AdEvent{UserID: "u1", EventTimestamp: ts(math.Inf(1))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FormatHot(tt.e)
			assert.Error(t, err)
		})
	}
}

func TestFormatColdAcceptsWhatHotRejects(t *testing.T) {
	e := &event.AdEvent{
		EventID:   "evt-4",
		UserID:    "",
		EventType: "impression",
	}

	_, err := FormatHot(e)
	require.Error(t, err)

	row := FormatCold(e)
	assert.Equal(t, "impression", row.EventType)
}
