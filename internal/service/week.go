package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// WeekDays is the length of the availability window.
const WeekDays = 7

// DayAvailability is the free-table count of both sittings of one day.
type DayAvailability struct {
	Date   string `json:"-"`
	Lunch  int    `json:"lunch"`
	Dinner int    `json:"dinner"`
}

// WeekAvailability is ordered by date.  It encodes as a JSON object keyed
// by date, keeping that order.
type WeekAvailability []DayAvailability

func (w WeekAvailability) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Date)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WeekReporter builds the seven-day lunch/dinner availability report.
type WeekReporter struct {
	availability *Availability
}

func NewWeekReporter(availability *Availability) *WeekReporter {
	return &WeekReporter{availability: availability}
}

// WeekAvailability reports start through start+6 days.  Only lunch and
// dinner are reported, whatever sittings exist in storage.
func (w *WeekReporter) WeekAvailability(ctx context.Context, start time.Time) (WeekAvailability, error) {
	out := make(WeekAvailability, 0, WeekDays)
	for i := 0; i < WeekDays; i++ {
		day := start.AddDate(0, 0, i)
		lunch, err := w.availability.FreeSeatCount(ctx, day, model.ServiceLunch)
		if err != nil {
			return nil, err
		}
		dinner, err := w.availability.FreeSeatCount(ctx, day, model.ServiceDinner)
		if err != nil {
			return nil, err
		}
		out = append(out, DayAvailability{
			Date:   day.Format(model.DateLayout),
			Lunch:  lunch,
			Dinner: dinner,
		})
	}
	return out, nil
}
