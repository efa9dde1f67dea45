package mapper

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Mirshida/sf-dta/internal/model"
	"github.com/Mirshida/sf-dta/internal/network"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// crossNetwork builds one signalized intersection of MAIN ST (eastbound)
// and CROSS ST (northbound) with through movements in both directions.
func crossNetwork(t *testing.T) *network.Network {
	t.Helper()
	net := network.NewNetwork()
	for _, id := range []int{2, 3, 4, 5, 10} {
		net.AddNode(id)
	}
	mustLink := func(id, from, to int, label string, orientation float64) {
		t.Helper()
		if _, err := net.AddLink(id, from, to, label, orientation); err != nil {
			t.Fatalf("AddLink(%d): %v", id, err)
		}
	}
	mustLink(100, 2, 10, "MAIN ST", 90)
	mustLink(101, 10, 4, "MAIN ST", 90)
	mustLink(200, 3, 10, "CROSS ST", 0)
	mustLink(201, 10, 5, "CROSS ST", 0)

	mustMov := func(in, out int, turnType string) {
		t.Helper()
		if _, err := net.AddMovement(in, out, turnType, false); err != nil {
			t.Fatalf("AddMovement(%d->%d): %v", in, out, err)
		}
	}
	mustMov(100, 101, network.TurnThru)
	mustMov(100, 201, network.TurnLeft)
	mustMov(200, 201, network.TurnThru)
	mustMov(200, 101, network.TurnRight)
	return net
}

func testCard(labels []string) *model.SignalCard {
	card := model.NewSignalCard("main_cross.xls")
	card.Name = "MAIN AND CROSS"
	card.StreetNames = []string{"CROSS", "MAIN"}
	card.CanonicalName = "CROSS,MAIN"

	rows := make([][]model.IntervalState, len(labels))
	for i := range rows {
		rows[i] = []model.IntervalState{model.StateGreen, model.StateRed}
	}
	g, err := model.NewMovementGrid(labels, rows)
	if err != nil {
		panic(err)
	}
	card.Grid = g
	return card
}

func TestResolveStreetName(t *testing.T) {
	t.Parallel()

	streets := []string{"CROSS", "MAIN"}
	got, err := ResolveStreetName("MAIN ST EB THRU", streets)
	if err != nil || got != "MAIN" {
		t.Fatalf("ResolveStreetName = %q, %v", got, err)
	}

	// Numbered streets disambiguate on the 3-vs-23 containment rule.
	got, err = ResolveStreetName("23RD ST NB", []string{"23RD", "3RD"})
	if err != nil || got != "23RD" {
		t.Fatalf("ResolveStreetName(23RD) = %q, %v", got, err)
	}
	got, err = ResolveStreetName("3RD ST NB", []string{"23RD", "3RD"})
	if err != nil || got != "3RD" {
		t.Fatalf("ResolveStreetName(3RD) = %q, %v", got, err)
	}

	// The tunnel and the surface street are distinct BROADWAYs.
	got, err = ResolveStreetName("BROADWAY TUNNEL EB", []string{"BROADWAY", "BROADWAY TUNNEL"})
	if err != nil || got != "BROADWAY TUNNEL" {
		t.Fatalf("ResolveStreetName(tunnel) = %q, %v", got, err)
	}

	// Close but inexact labels fall back to fuzzy matching.
	got, err = ResolveStreetName("MISION", []string{"MISSION", "24TH"})
	if err != nil || got != "MISSION" {
		t.Fatalf("ResolveStreetName(fuzzy) = %q, %v", got, err)
	}

	if _, err := ResolveStreetName("ZZZZZZZZ", []string{"MISSION", "24TH"}); err == nil {
		t.Fatal("an unrelated label should not resolve")
	} else if model.KindOf(err) != model.KindStreetMapping {
		t.Fatalf("kind = %v, want KindStreetMapping", model.KindOf(err))
	}
}

func TestMapNode(t *testing.T) {
	t.Parallel()

	net := crossNetwork(t)
	card := testCard([]string{"MAIN ST EB THRU", "CROSS ST NB THRU"})
	registry := make(map[string]int)

	if !MapNode(net, card, registry, discardLogger()) {
		t.Fatal("MapNode found no match")
	}
	if card.MappedNodeID != 10 {
		t.Fatalf("MappedNodeID = %d, want 10", card.MappedNodeID)
	}
	if card.MappedStreet["MAIN"] != "MAIN" || card.MappedStreet["CROSS"] != "CROSS" {
		t.Fatalf("MappedStreet = %v", card.MappedStreet)
	}
	if registry[card.CanonicalName] != 10 {
		t.Fatalf("registry = %v", registry)
	}

	// A second card for the same streets must not claim the node again.
	second := testCard([]string{"MAIN ST EB THRU", "CROSS ST NB THRU"})
	if MapNode(net, second, registry, discardLogger()) {
		t.Fatal("a claimed node must not be mapped twice")
	}
}

func TestMapNodeRejectsDifferentStreetCount(t *testing.T) {
	t.Parallel()

	net := crossNetwork(t)
	card := testCard([]string{"MAIN ST EB THRU"})
	card.StreetNames = []string{"CROSS", "MAIN", "THIRD"}
	card.CanonicalName = "CROSS,MAIN,THIRD"

	if MapNode(net, card, make(map[string]int), discardLogger()) {
		t.Fatal("street-count mismatch should not map")
	}
}

func TestMapMovements(t *testing.T) {
	t.Parallel()

	net := crossNetwork(t)
	card := testCard([]string{"MAIN ST EB THRU", "CROSS ST NB THRU"})
	if !MapNode(net, card, make(map[string]int), discardLogger()) {
		t.Fatal("MapNode failed")
	}

	if err := MapMovements(net, card, true); err != nil {
		t.Fatalf("MapMovements: %v", err)
	}

	// The eastbound left is not a thru or right, so MAIN maps one movement.
	refs := card.MappedMovements["MAIN ST EB THRU"]
	if len(refs) != 1 {
		t.Fatalf("MAIN refs = %v", refs)
	}
	if refs[0] != (model.MovementRef{Up: 2, Node: 10, Down: 4}) {
		t.Fatalf("MAIN ref = %v", refs[0])
	}

	// CROSS picks up both its thru and its right turn, ordered by endpoints.
	refs = card.MappedMovements["CROSS ST NB THRU"]
	if len(refs) != 2 {
		t.Fatalf("CROSS refs = %v", refs)
	}
	if refs[0] != (model.MovementRef{Up: 3, Node: 10, Down: 4}) {
		t.Fatalf("first CROSS ref = %v", refs[0])
	}
	if refs[1] != (model.MovementRef{Up: 3, Node: 10, Down: 5}) {
		t.Fatalf("second CROSS ref = %v", refs[1])
	}
}

func TestMapMovementsRejectsSingleMappedGroup(t *testing.T) {
	t.Parallel()

	net := crossNetwork(t)
	// The second group is denylisted, leaving one mapped group.
	card := testCard([]string{"MAIN ST EB THRU", "CROSS ST PEDS "})
	if !MapNode(net, card, make(map[string]int), discardLogger()) {
		t.Fatal("MapNode failed")
	}

	err := MapMovements(net, card, true)
	if err == nil {
		t.Fatal("a card with one mapped group must be rejected")
	}
	if model.KindOf(err) != model.KindMovementMapping {
		t.Fatalf("kind = %v, want KindMovementMapping", model.KindOf(err))
	}
}

func TestMapMovementsUnknownApproach(t *testing.T) {
	t.Parallel()

	net := crossNetwork(t)
	card := testCard([]string{"MAIN ST EB THRU", "CROSS ST SB THRU"})
	if !MapNode(net, card, make(map[string]int), discardLogger()) {
		t.Fatal("MapNode failed")
	}

	// CROSS ST only enters northbound; a southbound group has no links.
	err := MapMovements(net, card, true)
	if err == nil {
		t.Fatal("a direction with no approach links must be rejected")
	}
	if model.KindOf(err) != model.KindMovementMapping {
		t.Fatalf("kind = %v, want KindMovementMapping", model.KindOf(err))
	}
}
