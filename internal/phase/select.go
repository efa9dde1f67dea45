package phase

import (
	"log/slog"

	"github.com/Mirshida/sf-dta/internal/model"
)

// SelectPeriod picks the operating period applicable to the query window.
// Tier one takes the period whose recorded window contains the query start,
// excluding degenerate sentinel windows. Tier two falls back to a 0:00-0:00
// period (the all-other-times marker), tier three to a 0:00-23:59 full-day
// period. The tier order is load-bearing: historical cards depend on it.
func SelectPeriod(card *model.SignalCard, start, end model.TimeOfDay) (*model.OperatingPeriod, bool) {
	for _, p := range card.OrderedPeriods() {
		if !start.Before(p.Start) && !start.After(p.End) && p.End.After(p.Start) {
			return p, true
		}
	}
	for _, p := range card.OrderedPeriods() {
		if p.Start == model.Midnight && p.End == model.Midnight {
			return p, true
		}
	}
	for _, p := range card.OrderedPeriods() {
		if p.Start == model.Midnight && p.End == model.EndOfDay {
			return p, true
		}
	}
	return nil, false
}

// CountMatchingPeriods reports how many periods cover the whole query
// window. More than one is an ambiguity requiring manual correction of the
// card; it is flagged, not fatal.
func CountMatchingPeriods(card *model.SignalCard, start, end model.TimeOfDay, log *slog.Logger) int {
	matches := 0
	for _, p := range card.OrderedPeriods() {
		if !start.Before(p.Start) && !end.After(p.End) && p.End.After(p.Start) {
			matches++
		}
	}
	if matches > 1 {
		for _, p := range card.OrderedPeriods() {
			log.Error("ambiguous period timing", "file", card.FileName, "cso", p.CSO, "start", p.Start.String(), "end", p.End.String())
		}
	}
	return matches
}
