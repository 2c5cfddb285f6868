// Package markethours decides whether an exchange session is open and
// whether a candle series contains a still-forming candle that must not be
// fed to the detectors.
//
// The table covers regular sessions only. There is no holiday calendar: a
// holiday looks like an open weekday, which at worst strips one completed
// candle.
package markethours

import (
	"fmt"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/pkg/util"
)

// Hours describes one exchange's regular trading session in its local
// timezone.
type Hours struct {
	Timezone string
	Open     string // "HH:MM" local
	Close    string // "HH:MM" local
}

// Table maps exchange name to session hours.
type Table map[string]Hours

// DefaultTable returns the built-in exchange sessions.
func DefaultTable() Table {
	return Table{
		"NYSE":   {Timezone: "America/New_York", Open: "09:30", Close: "16:00"},
		"NASDAQ": {Timezone: "America/New_York", Open: "09:30", Close: "16:00"},
		"ASX":    {Timezone: "Australia/Sydney", Open: "10:00", Close: "16:00"},
	}
}

// Oracle answers market-hours questions against a session table.
type Oracle struct {
	table Table
}

// NewOracle builds an oracle over the given table, falling back to the
// defaults when the table is nil.
func NewOracle(table Table) *Oracle {
	if table == nil {
		table = DefaultTable()
	}
	return &Oracle{table: table}
}

// session resolves an exchange's hours in its local timezone for the
// calendar day containing at.
func (o *Oracle) session(exchange string, at time.Time) (open, close time.Time, ok bool) {
	hours, found := o.table[exchange]
	if !found {
		return time.Time{}, time.Time{}, false
	}
	loc, err := time.LoadLocation(hours.Timezone)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	oh, om, err := util.ParseClock(hours.Open)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	ch, cm, err := util.ParseClock(hours.Close)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	local := at.In(loc)
	y, m, d := local.Date()
	open = time.Date(y, m, d, oh, om, 0, 0, loc)
	close = time.Date(y, m, d, ch, cm, 0, 0, loc)
	return open, close, true
}

// IsOpen reports whether the exchange's regular session is in progress at
// the given instant. Both session boundaries count as open: the closing
// auction prints at the close time, so that candle is still forming.
// Unknown exchanges and weekends are closed.
func (o *Oracle) IsOpen(exchange string, at time.Time) bool {
	open, close, ok := o.session(exchange, at)
	if !ok {
		return false
	}
	local := at.In(open.Location())
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !local.Before(open) && !local.After(close)
}

// known reports whether the exchange appears in the table.
func (o *Oracle) known(exchange string) bool {
	_, ok := o.table[exchange]
	return ok
}

// Validate inspects a series against the exchange session at the given
// instant and returns the candles safe to analyze, the signal date (always
// the current UTC day), and the reason for the decision.
//
// A candle stamped today while the market is open is still forming and is
// stripped, unless it is the only candle, in which case it is kept and the
// result is flagged low confidence. An empty series is a normal outcome,
// returned with an explanatory reason.
func (o *Oracle) Validate(s models.Series, exchange string, now time.Time) models.Validation {
	v := models.Validation{Series: s, SignalDate: util.DateUTC(now)}

	if len(s) == 0 {
		v.Reason = "no valid data available"
		return v
	}

	last := s.Last().Timestamp
	lastDay := util.DateUTC(last).Format("2006-01-02")

	if !util.SameUTCDate(last, now) {
		v.Reason = fmt.Sprintf("using full series, last candle from %s", lastDay)
		return v
	}

	if !o.known(exchange) {
		// Not in the session table: treat as closed and keep the full
		// series rather than guess at a session.
		v.Reason = fmt.Sprintf("exchange %q not in session table, assumed closed, using full series through %s", exchange, lastDay)
		return v
	}

	if o.IsOpen(exchange, now) {
		if len(s) > 1 {
			v.Series = s[:len(s)-1]
			prev := util.DateUTC(v.Series.Last().Timestamp).Format("2006-01-02")
			v.Reason = fmt.Sprintf("market open, dropped today's forming candle, using data through %s", prev)
		} else {
			v.LowConfidence = true
			v.Reason = "market open, only today's candle available, using it with caution"
		}
		return v
	}

	v.Reason = fmt.Sprintf("market closed, using today's completed candle (%s)", lastDay)
	return v
}
