// =============================================================================
// BRO.AI - Dashboard Periods
// =============================================================================
//
// A Period is the reporting window of the dashboard: an inclusive date range
// plus an optional comparison range. Dates travel as YYYY-MM-DD strings on
// the wire; here they are time.Time values at midnight UTC.
//
// =============================================================================

package dashboard

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/broai/internal/types"
)

// DateLayout is the wire format of period dates.
const DateLayout = "2006-01-02"

// MonthLayout is the format of a month argument.
const MonthLayout = "2006-01"

// CompareLabel names the comparison window built by WithCompare.
const CompareLabel = "vs previous period"

// Range is an inclusive date range.
type Range struct {
	From  time.Time
	To    time.Time
	Label string
}

// Days is the number of calendar days in the range, both ends included.
func (r Range) Days() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.From.Format(DateLayout), r.To.Format(DateLayout))
}

// Period is a reporting window with an optional comparison range.
type Period struct {
	Range
	Compare *Range
}

// day truncates t to midnight UTC of its calendar date.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return t, nil
}

// MonthRange covers the whole calendar month of the given date.
func MonthRange(month time.Time) Range {
	y, m, _ := month.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return Range{From: first, To: first.AddDate(0, 1, -1)}
}

// PreviousMonthRange covers the calendar month before the given date's.
func PreviousMonthRange(month time.Time) Range {
	y, m, _ := month.Date()
	return MonthRange(time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC))
}

// Last12Range runs from the first day of the month eleven months before now
// to the last day of now's month.
func Last12Range(now time.Time) Range {
	y, m, _ := now.Date()
	first := time.Date(y, m-11, 1, 0, 0, 0, 0, time.UTC)
	return Range{From: first, To: MonthRange(now).To}
}

// NewPeriod builds a period without comparison. It fails when from is
// after to.
func NewPeriod(from, to time.Time) (Period, error) {
	from, to = day(from), day(to)
	if from.After(to) {
		return Period{}, fmt.Errorf("period start %s is after end %s", from.Format(DateLayout), to.Format(DateLayout))
	}
	return Period{Range: Range{From: from, To: to}}, nil
}

// WithCompare returns the period with a comparison window of the same
// length that ends the day before From.
func (p Period) WithCompare() Period {
	span := p.To.Sub(p.From)
	prevTo := p.From.AddDate(0, 0, -1)
	p.Compare = &Range{From: prevTo.Add(-span), To: prevTo, Label: CompareLabel}
	return p
}

// WithoutCompare drops the comparison window.
func (p Period) WithoutCompare() Period {
	p.Compare = nil
	return p
}

// Params converts the period to KPI query parameters.
func (p Period) Params() types.KPIParams {
	params := types.KPIParams{
		From: p.From.Format(DateLayout),
		To:   p.To.Format(DateLayout),
	}
	if p.Compare != nil {
		params.CompareFrom = p.Compare.From.Format(DateLayout)
		params.CompareTo = p.Compare.To.Format(DateLayout)
	}
	return params
}
