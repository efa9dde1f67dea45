package parser

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/Mirshida/sf-dta/internal/grid"
	"github.com/Mirshida/sf-dta/internal/model"
)

// The weekday/clock-time block sits a dozen rows below the anchor; the CYCLE
// keyword that heads it is searched in a small window around that estimate.
const (
	cycleRowOffset   = 12
	cycleRowBack     = 5
	cycleRowForward  = 7
	cycleColumnScan  = 13
	csoCompositeSpan = 6
)

// ParseOperatingTimes reads the weekday-applicability block: for each row it
// assembles the composite CSO code, matches it to an already-read operating
// period (first character only) and fills that period's clock start/end time
// from the free-text cells on the row.
func ParseOperatingTimes(s grid.Sheet, card *model.SignalCard, log *slog.Logger) error {
	log.Debug("parsing operating times", "file", card.FileName)

	estimate := card.TopLeft.Row + cycleRowOffset
	found := false

	for x := estimate - cycleRowBack; x < estimate+cycleRowForward; x++ {
		for y := card.FirstStateCol; y < card.FirstStateCol+cycleColumnScan; y++ {
			c, err := s.Cell(x, y)
			if err != nil {
				continue
			}
			if strings.ToUpper(strings.TrimSpace(cellText(c))) != "CYCLE" {
				continue
			}
			found = true
			cycleCol := y

			for k := x + 1; k < card.PhaseHeader.Row; k++ {
				code := readCompositeCSO(s, k, y)
				if code == "" {
					continue
				}
				cso, ok := matchCSO(card, code)
				if !ok {
					// Rows labeled P* in the margin are period captions, not
					// CSO records.
					label, err := s.Cell(k, y-11)
					if err == nil && strings.HasPrefix(strings.TrimSpace(cellText(label)), "P") {
						continue
					}
					log.Error("CSO does not exist in the timing section, correct the signal manually", "file", card.FileName, "cso", code)
					continue
				}
				setPeriodTimes(s, card, card.Periods[cso], k, cycleCol)
			}
		}
	}
	if !found {
		return model.NewParsingError("cannot find start and end times")
	}
	return nil
}

// readCompositeCSO concatenates up to six adjacent cells into the composite
// CSO code: numeric cells coerced to integer strings, text cells verbatim.
func readCompositeCSO(s grid.Sheet, row, col int) string {
	var parts []string
	for l := col; l < col+csoCompositeSpan; l++ {
		c, err := s.Cell(row, l)
		if err != nil {
			continue
		}
		if c.IsBlank() {
			continue
		}
		parts = append(parts, coerceCSO(c))
	}
	return strings.Join(parts, "")
}

// matchCSO resolves a composite code from the weekday block against the
// periods read from the timing section. Codes are matched on first character
// only; FREE and dashed codes merge into the period beginning with "1" (the
// designated all-other-times period) or, absent one, into the last period.
func matchCSO(card *model.SignalCard, code string) (string, bool) {
	first := code[:1]
	for _, cso := range card.PeriodOrder {
		if strings.HasPrefix(cso, first) {
			return cso, true
		}
	}
	if first == "F" || first == "-" {
		for _, cso := range card.PeriodOrder {
			if strings.HasPrefix(cso, "1") {
				return cso, true
			}
		}
		if len(card.PeriodOrder) > 0 {
			return card.PeriodOrder[len(card.PeriodOrder)-1], true
		}
	}
	return "", false
}

// setPeriodTimes walks the cells left of the interval columns on one weekday
// row and fills the period's clock window. Non-weekday rows are forced to the
// inactive 23:59 sentinel. Weekday rows are interpreted by a prioritized set
// of literal and format rules; a cell that matches no rule leaves the time
// unset rather than failing the card.
func setPeriodTimes(s grid.Sheet, card *model.SignalCard, period *model.OperatingPeriod, row, cycleCol int) {
	gotStart := false
	gotBareClockStart := false

	for col := card.TopLeft.Col; col < card.FirstStateCol; col++ {
		c, err := s.Cell(row, col)
		if err != nil || c.IsBlank() {
			continue
		}

		if !isWeekdayPlan(s, row, cycleCol) {
			period.Start = model.EndOfDay
			period.End = model.EndOfDay
			gotStart = true
			continue
		}

		switch {
		case c.Kind == grid.Number:
			var t model.TimeOfDay
			if c.Number == 1.0 {
				t = model.TimeOfDay{}
			} else {
				t = model.FromDateSerial(c.Number)
			}
			if !gotStart {
				period.Start = t
				gotStart = true
			} else {
				period.End = t
			}

		case strings.Contains(c.Text, "event"), strings.Contains(c.Text, "Event"), strings.Contains(c.Text, "Game"):
			// Event-only plans are excluded from normal operation.
			period.Start = model.EndOfDay
			period.End = model.EndOfDay

		case strings.Contains(c.Text, "TIMES"), strings.Contains(c.Text, "Times"):
			// "ALL OTHER TIMES" marker.
			period.Start = model.Midnight
			period.End = model.Midnight
			gotStart = true

		case !gotStart:
			gotStart = parseTimeRangeCell(c.Text, period, &gotBareClockStart) || gotStart
		}
	}
}

// isWeekdayPlan checks the two weekday columns (Thursday and Friday) three
// and two cells left of the CYCLE column for "X" marks.
func isWeekdayPlan(s grid.Sheet, row, cycleCol int) bool {
	thu, err := s.Cell(row, cycleCol-3)
	if err != nil {
		return false
	}
	fri, err := s.Cell(row, cycleCol-2)
	if err != nil {
		return false
	}
	t := strings.TrimSpace(cellText(thu))
	f := strings.TrimSpace(cellText(fri))
	return strings.EqualFold(t, "X") && strings.EqualFold(f, "X")
}

// parseTimeRangeCell applies the textual time-range grammars in priority
// order against one cell. It returns true once the period start is resolved.
// The grammars tolerate hand-entered free text; an unparseable cell is simply
// skipped.
func parseTimeRangeCell(text string, period *model.OperatingPeriod, gotBareClockStart *bool) bool {
	gotStart := false

	// HHMM-HHMM with no colon and no spaced dash.
	if strings.Contains(text, "-") && !strings.Contains(text, ":") && !strings.Contains(text, " - ") {
		v := strings.TrimSpace(text)
		if len(v) >= 9 {
			start, ok1 := clockFromDigits(v[:2], v[2:4])
			end, ok2 := clockFromDigits(v[5:7], v[7:])
			if ok1 && ok2 {
				period.Start = start
				period.End = end
				gotStart = true
			}
		}
	}
	// HHMM - HHMM with a spaced dash; an end hour of 24 clamps to 23:59.
	if strings.Contains(text, " - ") && !strings.Contains(text, ":") {
		v := strings.TrimSpace(text)
		if len(v) >= 11 {
			start, ok1 := clockFromDigits(v[:2], v[2:4])
			endH, err1 := strconv.Atoi(v[7:9])
			endM, err2 := strconv.Atoi(strings.TrimSpace(v[9:]))
			if ok1 && err1 == nil && err2 == nil {
				if endH == 24 {
					endH, endM = 23, 59
				}
				period.Start = start
				period.End = model.TimeOfDay{Hour: endH, Minute: endM}
				gotStart = true
			}
		}
	}

	switch {
	case strings.Contains(text, "-") && strings.Contains(text, ":"):
		if start, end, ok := splitClockRange(text, "-"); ok {
			period.Start = start
			period.End = end
		}
	case strings.Contains(text, ":") && len(text) == 5:
		// A bare HH:MM appears twice across two cells: first occurrence is
		// the start, the second the end.
		if t, ok := clockFromDigits(text[:2], text[3:]); ok {
			if !*gotBareClockStart {
				period.Start = t
				*gotBareClockStart = true
			} else {
				period.End = t
			}
		}
	case strings.Contains(text, ":") && strings.Contains(text, "TO"):
		if start, end, ok := splitClockRange(text, "TO"); ok {
			period.Start = start
			period.End = end
		}
	case strings.Contains(text, ":") && strings.Contains(text, "to"):
		if start, end, ok := splitClockRange(text, "to"); ok {
			period.Start = start
			period.End = end
		}
	}
	return gotStart
}

// splitClockRange parses "HH:MM <sep> HH:MM" where sep is a dash or TO/to.
func splitClockRange(text, sep string) (model.TimeOfDay, model.TimeOfDay, bool) {
	idx := strings.Index(text, sep)
	if idx < 0 {
		return model.TimeOfDay{}, model.TimeOfDay{}, false
	}
	startPart := text[:idx]
	endPart := text[idx+len(sep):]
	start, ok1 := clockFromColonText(startPart)
	end, ok2 := clockFromColonText(endPart)
	if !ok1 || !ok2 {
		return model.TimeOfDay{}, model.TimeOfDay{}, false
	}
	return start, end, true
}

func clockFromColonText(part string) (model.TimeOfDay, bool) {
	idx := strings.Index(part, ":")
	if idx < 0 {
		return model.TimeOfDay{}, false
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(part[:idx]))
	rest := part[idx+1:]
	if len(rest) > 2 {
		rest = rest[:2]
	}
	m, err2 := strconv.Atoi(strings.TrimSpace(rest))
	if err1 != nil || err2 != nil {
		return model.TimeOfDay{}, false
	}
	return model.TimeOfDay{Hour: h, Minute: m}, true
}

func clockFromDigits(hh, mm string) (model.TimeOfDay, bool) {
	h, err1 := strconv.Atoi(strings.TrimSpace(hh))
	m, err2 := strconv.Atoi(strings.TrimSpace(mm))
	if err1 != nil || err2 != nil {
		return model.TimeOfDay{}, false
	}
	return model.TimeOfDay{Hour: h, Minute: m}, true
}
