// Package phase turns a movement state grid and an operating period's raw
// interval durations into the ordered phase sequence of a signal: maximal
// runs of intervals sharing an active movement set, with summed green,
// yellow and all-red durations.
package phase

import (
	"github.com/Mirshida/sf-dta/internal/model"
)

// accumulator is the in-progress phase while walking the interval axis.
type accumulator struct {
	movs   []string
	green  float64
	yellow float64
	allRed float64
}

func (a *accumulator) phase() model.Phase {
	return model.Phase{Movements: a.movs, Green: a.green, Yellow: a.yellow, AllRed: a.allRed}
}

func countIn(set []string, movs []string) int {
	matches := 0
	for _, m := range movs {
		for _, s := range set {
			if m == s {
				matches++
				break
			}
		}
	}
	return matches
}

// Synthesize walks the intervals in order and merges consecutive intervals
// into phases. An interval extends the current phase while its green/yellow
// movements fully overlap the accumulated active set; a movement-set
// discontinuity closes the phase and seeds the next one. Redundant interval
// boundaries (a yellow clearance recorded as several near-identical
// intervals) collapse into one phase with summed durations.
func Synthesize(grid *model.MovementGrid, durations []float64) ([]model.Phase, error) {
	if grid.NumIntervals() != len(durations) {
		return nil, model.NewConversionError("grid has %d intervals but the operating period records %d durations",
			grid.NumIntervals(), len(durations))
	}

	movements := grid.Movements()
	lastIndex := grid.NumIntervals()

	var phases []model.Phase
	var cur *accumulator

	for i := 1; i <= lastIndex; i++ {
		d := durations[i-1]

		var greens, yellows, reds []string
		for _, m := range movements {
			switch grid.State(m, i) {
			case model.StateGreen:
				greens = append(greens, m)
			case model.StateYellow:
				yellows = append(yellows, m)
			case model.StateRed:
				reds = append(reds, m)
			}
		}

		if cur == nil {
			cur = &accumulator{movs: greens, green: d}
			continue
		}

		gMatches := countIn(cur.movs, greens)
		yMatches := countIn(cur.movs, yellows)
		rMatches := countIn(cur.movs, reds)

		switch {
		case len(greens)+len(yellows) > gMatches+yMatches:
			// Movements are turning green without full continuity from the
			// accumulated set: a new phase starts here.
			phases = append(phases, cur.phase())
			cur = &accumulator{movs: greens, green: d}

		case gMatches+yMatches == len(cur.movs):
			// Full continuity: fold the interval into the current phase.
			switch {
			case yMatches > 0:
				cur.yellow += d
			case rMatches > 0:
				cur.allRed += d
			default:
				cur.green += d
			}

		case gMatches+yMatches > 0 && gMatches+yMatches < len(cur.movs):
			phases = append(phases, cur.phase())
			if yMatches == 0 {
				cur = &accumulator{movs: greens, green: d}
			} else {
				cur = &accumulator{movs: yellows, yellow: d}
			}

		case rMatches == len(cur.movs) && len(greens) == 0:
			// All active movements cleared to red: all-red clearance.
			cur.allRed += d

		case rMatches == len(cur.movs) && len(greens) > 0:
			phases = append(phases, cur.phase())
			cur = &accumulator{movs: greens, green: d}

		default:
			phases = append(phases, cur.phase())
			cur = &accumulator{movs: greens, green: d}
		}
	}

	if cur != nil {
		phases = append(phases, cur.phase())
	}
	return phases, nil
}
