package parser

import (
	"strings"
	"testing"

	"github.com/Mirshida/sf-dta/internal/grid"
	"github.com/Mirshida/sf-dta/internal/model"
)

// phasingFixture builds a sheet with the STREET header at row 0 and the CSO
// header below the movement rows, and a card with one six-interval period.
func phasingFixture(movementRows ...[]any) (grid.Sheet, *model.SignalCard) {
	rows := [][]any{{"STREET", 1, 2, 3, 4, 5, 6}}
	rows = append(rows, movementRows...)
	rows = append(rows, []any{"CSO"})

	card := model.NewSignalCard("phasing.xls")
	card.PhaseHeader = grid.Coord{Row: 0, Col: 0}
	card.PeriodHeader = grid.Coord{Row: len(rows) - 1, Col: 0}
	card.FirstStateCol = 1
	card.LastStateCol = 6

	p := model.NewOperatingPeriod("1")
	p.Durations = []float64{30, 3, 2, 25, 3, 2}
	card.AddPeriod(p)
	return grid.NewMemorySheet(rows), card
}

func TestParseMovementGrid(t *testing.T) {
	t.Parallel()

	s, card := phasingFixture(
		[]any{"OAK ST EB", "G", "G", "Y", "R", "R", "R"},
		[]any{"FRANKLIN ST NB", "R", "R", "R", "G", "G", "Y"},
	)
	if err := ParseMovementGrid(s, card); err != nil {
		t.Fatalf("ParseMovementGrid: %v", err)
	}
	movs := card.Grid.Movements()
	if len(movs) != 2 {
		t.Fatalf("movements = %v", movs)
	}
	if card.Grid.State("OAK ST EB", 1) != model.StateGreen ||
		card.Grid.State("FRANKLIN ST NB", 6) != model.StateYellow {
		t.Fatal("states not normalized")
	}
}

func TestParseMovementGridAliases(t *testing.T) {
	t.Parallel()

	// Hand-written state aliases normalize to G/Y/R.
	s, card := phasingFixture(
		[]any{"OAK ST EB", "G+G", "FY", "SY", "RH", "OFF", "FR"},
		[]any{"FRANKLIN ST NB", "ON", "T", "U", "Y", "R", "R"},
	)
	if err := ParseMovementGrid(s, card); err != nil {
		t.Fatalf("ParseMovementGrid: %v", err)
	}
	wantOak := []model.IntervalState{"G", "G", "Y", "R", "R", "R"}
	for i, w := range wantOak {
		if got := card.Grid.State("OAK ST EB", i+1); got != w {
			t.Fatalf("OAK interval %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestParseMovementGridFillsGaps(t *testing.T) {
	t.Parallel()

	// Blank interval cells inherit from the nearest neighbor, forward first.
	s, card := phasingFixture(
		[]any{"OAK ST EB", "G", nil, "Y", "R", nil, nil},
		[]any{"FRANKLIN ST NB", nil, "R", "R", "G", "G", "Y"},
	)
	if err := ParseMovementGrid(s, card); err != nil {
		t.Fatalf("ParseMovementGrid: %v", err)
	}
	if got := card.Grid.State("OAK ST EB", 2); got != model.StateGreen {
		t.Fatalf("forward fill: interval 2 = %v, want G", got)
	}
	if got := card.Grid.State("OAK ST EB", 6); got != model.StateRed {
		t.Fatalf("forward fill: interval 6 = %v, want R", got)
	}
	if got := card.Grid.State("FRANKLIN ST NB", 1); got != model.StateRed {
		t.Fatalf("backward fill: interval 1 = %v, want R", got)
	}
}

func TestParseMovementGridDropsUnknownTokenRows(t *testing.T) {
	t.Parallel()

	s, card := phasingFixture(
		[]any{"OAK ST EB", "G", "G", "Y", "R", "R", "R"},
		[]any{"FRANKLIN ST NB", "R", "R", "R", "G", "G", "Y"},
		[]any{"GOUGH ST SB", "G", "??", "Y", "R", "R", "R"},
	)
	if err := ParseMovementGrid(s, card); err != nil {
		t.Fatalf("ParseMovementGrid: %v", err)
	}
	if len(card.Grid.Movements()) != 2 {
		t.Fatalf("row with unknown token should be dropped, movements = %v", card.Grid.Movements())
	}
}

func TestParseMovementGridExcludesNonVehicleRows(t *testing.T) {
	t.Parallel()

	s, card := phasingFixture(
		[]any{"OAK ST EB", "G", "G", "Y", "R", "R", "R"},
		[]any{"PEDS OAK", "G", "G", "G", "G", "G", "G"},
		[]any{"MUNI", "G", "G", "G", "G", "G", "G"},
		[]any{"FRANKLIN ST NB", "R", "R", "R", "G", "G", "Y"},
	)
	if err := ParseMovementGrid(s, card); err != nil {
		t.Fatalf("ParseMovementGrid: %v", err)
	}
	for _, m := range card.Grid.Movements() {
		if strings.Contains(m, "PEDS") || m == "MUNI" {
			t.Fatalf("non-vehicle row %q kept", m)
		}
	}
}

func TestParseMovementGridUnlocatedHeaders(t *testing.T) {
	t.Parallel()

	// A fresh card still carries the -1 header sentinels and must be
	// rejected, while a header at the sheet origin (as in phasingFixture)
	// is a legitimate position.
	s, _ := phasingFixture(
		[]any{"OAK ST EB", "G", "G", "Y", "R", "R", "R"},
	)
	card := model.NewSignalCard("phasing.xls")
	card.FirstStateCol = 1
	card.LastStateCol = 6

	err := ParseMovementGrid(s, card)
	if err == nil {
		t.Fatal("unlocated headers must fail")
	}
	if !model.IsParsing(err) {
		t.Fatalf("kind = %v", model.KindOf(err))
	}
}

func TestParseMovementGridSingleMovement(t *testing.T) {
	t.Parallel()

	s, card := phasingFixture(
		[]any{"OAK ST EB", "G", "G", "Y", "R", "R", "R"},
	)
	err := ParseMovementGrid(s, card)
	if err == nil {
		t.Fatal("a single movement group should fail")
	}
	if !model.IsParsing(err) {
		t.Fatalf("kind = %v", model.KindOf(err))
	}
}

func TestParseMovementGridIntervalCountMismatch(t *testing.T) {
	t.Parallel()

	s, card := phasingFixture(
		[]any{"OAK ST EB", "G", "G", "Y", "R", "R", "R"},
		[]any{"FRANKLIN ST NB", "R", "R", "R", "G", "G", "Y"},
	)
	// The operating period disagrees about the interval count.
	card.Periods["1"].Durations = []float64{30, 3, 2}

	if err := ParseMovementGrid(s, card); err == nil {
		t.Fatal("interval count mismatch should fail")
	}
}
