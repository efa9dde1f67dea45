package model

import (
	"fmt"
	"strings"

	"github.com/Mirshida/sf-dta/internal/grid"
)

// IntervalState is the normalized signal indication of one movement group
// during one time interval.
type IntervalState string

const (
	StateGreen  IntervalState = "G"
	StateYellow IntervalState = "Y"
	StateRed    IntervalState = "R"
)

// MovementGrid is the movement-group-by-interval state table of one card.
// Every row has exactly the same number of intervals.
type MovementGrid struct {
	movements []string
	states    map[string][]IntervalState
	intervals int
}

// NewMovementGrid builds a grid from ordered rows. Rows must be rectangular
// and non-empty.
func NewMovementGrid(movements []string, rows [][]IntervalState) (*MovementGrid, error) {
	if len(movements) != len(rows) {
		return nil, fmt.Errorf("movement grid: %d labels for %d rows", len(movements), len(rows))
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("movement grid: no rows")
	}
	n := len(rows[0])
	states := make(map[string][]IntervalState, len(rows))
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("movement grid: row %q has %d intervals, want %d", movements[i], len(row), n)
		}
		states[movements[i]] = row
	}
	return &MovementGrid{movements: append([]string(nil), movements...), states: states, intervals: n}, nil
}

// Movements returns the ordered movement-group labels.
func (g *MovementGrid) Movements() []string {
	return g.movements
}

// NumIntervals returns the shared interval count N.
func (g *MovementGrid) NumIntervals() int {
	return g.intervals
}

// State returns the indication of a movement group in interval i (1-based).
func (g *MovementGrid) State(movement string, i int) IntervalState {
	return g.states[movement][i-1]
}

// OperatingPeriod is one CSO record: cycle/offset, weekday clock window and
// the raw per-interval durations. Cycle is negative while unset; actuated
// periods may never receive one.
type OperatingPeriod struct {
	CSO      string
	Cycle    float64
	Offset   float64
	Actuated bool
	Start    TimeOfDay
	End      TimeOfDay

	Durations []float64
}

// NewOperatingPeriod returns a period with the unresolved defaults: no cycle,
// zero offset and the 23:59 sentinel window.
func NewOperatingPeriod(cso string) *OperatingPeriod {
	return &OperatingPeriod{
		CSO:    cso,
		Cycle:  -1,
		Offset: 0,
		Start:  EndOfDay,
		End:    EndOfDay,
	}
}

// NumIntervals returns the number of raw interval durations.
func (p *OperatingPeriod) NumIntervals() int {
	return len(p.Durations)
}

// TotalTime returns the sum of the raw interval durations.
func (p *OperatingPeriod) TotalTime() float64 {
	var total float64
	for _, d := range p.Durations {
		total += d
	}
	return total
}

func (p *OperatingPeriod) String() string {
	return fmt.Sprintf("cso=%s cycle=%.1f offset=%.1f start=%s end=%s actuated=%v times=%v",
		p.CSO, p.Cycle, p.Offset, p.Start, p.End, p.Actuated, p.Durations)
}

// MovementRef identifies a network movement by its upstream node, the
// signalized node and the downstream node.
type MovementRef struct {
	Up   int
	Node int
	Down int
}

func (r MovementRef) String() string {
	return fmt.Sprintf("%d %d %d", r.Up, r.Node, r.Down)
}

// Phase is one synthesized signal phase: the movement groups active during
// it and the aggregated durations of the intervals folded into it.
type Phase struct {
	Movements []string
	Green     float64
	Yellow    float64
	AllRed    float64
}

// SignalCard is one parsed signal-timing workbook plus the mapping state
// accumulated while resolving it against the network.
type SignalCard struct {
	FileName string

	// Name is the raw intersection name; CanonicalName joins the cleaned
	// street names.
	Name          string
	CanonicalName string
	StreetNames   []string

	// Anchor coordinates located in the sheet.
	TopLeft      grid.Coord
	PhaseHeader  grid.Coord
	PedPhaseRow  int
	HasPedPhase  bool
	PeriodHeader grid.Coord

	// FirstStateCol and LastStateCol bound the interval columns.
	FirstStateCol int
	LastStateCol  int

	Grid *SignalGrid

	// Periods are keyed by CSO; PeriodOrder preserves reading order, which
	// drives merge tie-breaks and selector determinism.
	Periods     map[string]*OperatingPeriod
	PeriodOrder []string

	MappedNodeID   int
	MappedNodeName string
	// MappedStreet maps a cleaned card street name to the network street name.
	MappedStreet map[string]string
	// MappedMovements maps a movement-group label to its ordered network
	// movement references.
	MappedMovements map[string][]MovementRef
}

// SignalGrid aliases MovementGrid to keep call sites short.
type SignalGrid = MovementGrid

// NewSignalCard returns a card with empty mapping state. Anchor coordinates
// start at the invalid -1 sentinel: row/column 0 is a legitimate header
// position on cards without a title margin.
func NewSignalCard(fileName string) *SignalCard {
	return &SignalCard{
		FileName:        fileName,
		PhaseHeader:     grid.Coord{Row: -1, Col: -1},
		PeriodHeader:    grid.Coord{Row: -1, Col: -1},
		PedPhaseRow:     -1,
		FirstStateCol:   -1,
		LastStateCol:    -1,
		Periods:         make(map[string]*OperatingPeriod),
		MappedStreet:    make(map[string]string),
		MappedMovements: make(map[string][]MovementRef),
	}
}

// AddPeriod registers a new operating period under its CSO.
func (c *SignalCard) AddPeriod(p *OperatingPeriod) {
	if _, ok := c.Periods[p.CSO]; !ok {
		c.PeriodOrder = append(c.PeriodOrder, p.CSO)
	}
	c.Periods[p.CSO] = p
}

// OrderedPeriods returns the periods in reading order.
func (c *SignalCard) OrderedPeriods() []*OperatingPeriod {
	out := make([]*OperatingPeriod, 0, len(c.PeriodOrder))
	for _, cso := range c.PeriodOrder {
		out = append(out, c.Periods[cso])
	}
	return out
}

// NumTimeIntervals returns the interval count recorded by the first period,
// or zero when no period has been read.
func (c *SignalCard) NumTimeIntervals() int {
	if len(c.PeriodOrder) == 0 {
		return 0
	}
	return c.Periods[c.PeriodOrder[0]].NumIntervals()
}

func (c *SignalCard) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "file=%s name=%q node=%d (%s)", c.FileName, c.Name, c.MappedNodeID, c.MappedNodeName)
	for _, p := range c.OrderedPeriods() {
		fmt.Fprintf(&b, "\n  %s", p)
	}
	return b.String()
}
