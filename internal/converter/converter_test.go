package converter

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Mirshida/sf-dta/internal/config"
	"github.com/Mirshida/sf-dta/internal/mapper"
	"github.com/Mirshida/sf-dta/internal/model"
	"github.com/Mirshida/sf-dta/internal/network"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testNetwork is one intersection of MAIN ST (eastbound through node 10)
// and CROSS ST (northbound), with a left off MAIN and a right off CROSS.
func testNetwork(t *testing.T) *network.Network {
	t.Helper()
	net := network.NewNetwork()
	for _, id := range []int{2, 3, 4, 5, 10} {
		net.AddNode(id)
	}
	links := []struct {
		id, from, to int
		label        string
		orientation  float64
	}{
		{100, 2, 10, "MAIN ST", 90},
		{101, 10, 4, "MAIN ST", 90},
		{200, 3, 10, "CROSS ST", 0},
		{201, 10, 5, "CROSS ST", 0},
	}
	for _, l := range links {
		if _, err := net.AddLink(l.id, l.from, l.to, l.label, l.orientation); err != nil {
			t.Fatalf("AddLink(%d): %v", l.id, err)
		}
	}
	movs := []struct {
		in, out  int
		turnType string
	}{
		{100, 101, network.TurnThru},
		{100, 201, network.TurnLeft},
		{200, 201, network.TurnThru},
		{200, 101, network.TurnRight},
	}
	for _, m := range movs {
		if _, err := net.AddMovement(m.in, m.out, m.turnType, false); err != nil {
			t.Fatalf("AddMovement(%d->%d): %v", m.in, m.out, err)
		}
	}
	return net
}

func testCard(t *testing.T) *model.SignalCard {
	t.Helper()
	card := model.NewSignalCard("main_cross.xls")
	card.Name = "MAIN AND CROSS"
	card.StreetNames = []string{"CROSS", "MAIN"}
	card.CanonicalName = "CROSS,MAIN"

	g, err := model.NewMovementGrid(
		[]string{"MAIN ST EB THRU", "CROSS ST NB THRU"},
		[][]model.IntervalState{
			{model.StateGreen, model.StateGreen, model.StateYellow, model.StateRed,
				model.StateRed, model.StateRed, model.StateRed, model.StateRed},
			{model.StateRed, model.StateRed, model.StateRed, model.StateRed,
				model.StateGreen, model.StateGreen, model.StateYellow, model.StateRed},
		})
	if err != nil {
		t.Fatalf("NewMovementGrid: %v", err)
	}
	card.Grid = g

	p := model.NewOperatingPeriod("1")
	p.Cycle = 90
	p.Offset = 10
	p.Start = model.TimeOfDay{Hour: 7}
	p.End = model.TimeOfDay{Hour: 19}
	p.Durations = []float64{47, 6, 3.5, 0.5, 8, 20, 3.5, 1.5}
	card.AddPeriod(p)
	return card
}

func mappedContext(t *testing.T) (*Context, *model.SignalCard) {
	t.Helper()
	net := testNetwork(t)
	cfg := config.DefaultConfig()
	cx := New(net, cfg, nil, "", discardLogger())

	card := testCard(t)
	if !mapper.MapNode(net, card, cx.MappedNodes, cx.Log) {
		t.Fatal("MapNode failed")
	}
	if err := mapper.MapMovements(net, card, cfg.Mapping.AddRightToThru); err != nil {
		t.Fatalf("MapMovements: %v", err)
	}
	return cx, card
}

func TestBuildTimePlan(t *testing.T) {
	t.Parallel()

	cx, card := mappedContext(t)
	plan, err := cx.buildTimePlan(card, model.TimeOfDay{Hour: 7, Minute: 30}, model.TimeOfDay{Hour: 9})
	if err != nil {
		t.Fatalf("buildTimePlan: %v", err)
	}
	if plan.NodeID != 10 || plan.Offset != 10 {
		t.Fatalf("plan node=%d offset=%.1f", plan.NodeID, plan.Offset)
	}
	if len(plan.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(plan.Phases))
	}

	p := plan.Phases[0]
	if p.Green != 53 || p.Yellow != 3.5 || p.AllRed != 0.5 {
		t.Fatalf("phase 1 = g%.1f y%.1f r%.1f", p.Green, p.Yellow, p.AllRed)
	}
	if len(p.Movements) != 1 {
		t.Fatalf("phase 1 movements = %v", p.Movements)
	}
	if p.Movements[0].Ref != (model.MovementRef{Up: 2, Node: 10, Down: 4}) || !p.Movements[0].Protected {
		t.Fatalf("phase 1 movement = %+v", p.Movements[0])
	}

	// Phase 2 carries the northbound thru plus the right it shares a group
	// with. The thru is protected, the right stays permitted.
	p = plan.Phases[1]
	if p.Green != 28 || p.Yellow != 3.5 || p.AllRed != 1.5 {
		t.Fatalf("phase 2 = g%.1f y%.1f r%.1f", p.Green, p.Yellow, p.AllRed)
	}
	if len(p.Movements) != 2 {
		t.Fatalf("phase 2 movements = %v", p.Movements)
	}
	if p.Movements[0].Ref != (model.MovementRef{Up: 3, Node: 10, Down: 4}) || p.Movements[0].Protected {
		t.Fatalf("phase 2 right = %+v", p.Movements[0])
	}
	if p.Movements[1].Ref != (model.MovementRef{Up: 3, Node: 10, Down: 5}) || !p.Movements[1].Protected {
		t.Fatalf("phase 2 thru = %+v", p.Movements[1])
	}

	if err := plan.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestBuildTimePlanAllOtherTimesFallback(t *testing.T) {
	t.Parallel()

	cx, card := mappedContext(t)
	p := card.Periods["1"]
	p.Start = model.Midnight
	p.End = model.Midnight

	// No recorded window covers the query; the all-other-times record wins.
	plan, err := cx.buildTimePlan(card, model.TimeOfDay{Hour: 7, Minute: 30}, model.TimeOfDay{Hour: 9})
	if err != nil {
		t.Fatalf("buildTimePlan: %v", err)
	}
	if len(plan.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(plan.Phases))
	}
}

func TestBuildTimePlanNoMatchingPeriod(t *testing.T) {
	t.Parallel()

	cx, card := mappedContext(t)
	p := card.Periods["1"]
	p.Start = model.TimeOfDay{Hour: 16}
	p.End = model.TimeOfDay{Hour: 18}

	_, err := cx.buildTimePlan(card, model.TimeOfDay{Hour: 7, Minute: 30}, model.TimeOfDay{Hour: 9})
	if err == nil {
		t.Fatal("a card with no applicable period must fail")
	}
	if model.KindOf(err) != model.KindConversion {
		t.Fatalf("kind = %v, want KindConversion", model.KindOf(err))
	}
}

func TestBuildTimePlanSkipsProhibited(t *testing.T) {
	t.Parallel()

	cx, card := mappedContext(t)
	node, _ := cx.Net.Node(10)
	mov, ok := node.Movement(3, 4)
	if !ok {
		t.Fatal("movement 3->4 missing")
	}
	mov.Prohibited = true

	plan, err := cx.buildTimePlan(card, model.TimeOfDay{Hour: 7, Minute: 30}, model.TimeOfDay{Hour: 9})
	if err != nil {
		t.Fatalf("buildTimePlan: %v", err)
	}
	p := plan.Phases[1]
	if len(p.Movements) != 1 || p.Movements[0].Ref != (model.MovementRef{Up: 3, Node: 10, Down: 5}) {
		t.Fatalf("phase 2 movements = %v", p.Movements)
	}
}

func TestRunEmptyDirectory(t *testing.T) {
	t.Parallel()

	cx := New(testNetwork(t), config.DefaultConfig(), nil, "", discardLogger())
	if err := cx.Run(t.TempDir(), model.TimeOfDay{Hour: 7}, model.TimeOfDay{Hour: 9}); err != nil {
		t.Fatalf("Run on an empty directory: %v", err)
	}
	if cx.Counters != (Counters{}) {
		t.Fatalf("counters = %+v", cx.Counters)
	}

	if err := cx.Run("does-not-exist", model.TimeOfDay{Hour: 7}, model.TimeOfDay{Hour: 9}); err == nil {
		t.Fatal("a missing cards directory must fail")
	}
}
