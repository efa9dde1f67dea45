// Package converter runs the batch pipeline: walk a directory of signal
// cards, parse each workbook, map it onto the network and attach a time
// plan to the mapped node.
package converter

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Mirshida/sf-dta/internal/config"
	"github.com/Mirshida/sf-dta/internal/grid"
	"github.com/Mirshida/sf-dta/internal/mapper"
	"github.com/Mirshida/sf-dta/internal/model"
	"github.com/Mirshida/sf-dta/internal/network"
	"github.com/Mirshida/sf-dta/internal/parser"
	"github.com/Mirshida/sf-dta/internal/phase"
	"github.com/Mirshida/sf-dta/internal/store"
)

// Counters summarizes a run.
type Counters struct {
	Parsed         int
	Mapped         int
	MovementMapped int
	Plans          int
	Ambiguous      int
}

// Context carries the batch state for one run. Mapped nodes are tracked
// here so two cards never claim the same intersection.
type Context struct {
	Net   *network.Network
	Cfg   *config.AppConfig
	Store *store.Store // nil disables the import log
	RunID string
	Log   *slog.Logger

	MappedNodes map[string]int
	Counters    Counters
}

// New builds a run context.
func New(net *network.Network, cfg *config.AppConfig, st *store.Store, runID string, log *slog.Logger) *Context {
	return &Context{
		Net:         net,
		Cfg:         cfg,
		Store:       st,
		RunID:       runID,
		Log:         log,
		MappedNodes: make(map[string]int),
	}
}

// Run processes every card file in cardsDir in name order.
func (cx *Context) Run(cardsDir string, start, end model.TimeOfDay) error {
	entries, err := os.ReadDir(cardsDir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ok, err := doublestar.Match(cx.Cfg.Cards.Pattern, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if cx.Cfg.Cards.SkipPrefix != "" && strings.HasPrefix(name, cx.Cfg.Cards.SkipPrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cx.processCard(cardsDir, name, start, end)
	}

	cx.Log.Info("run finished",
		"parsed", cx.Counters.Parsed,
		"mapped", cx.Counters.Mapped,
		"movement_mapped", cx.Counters.MovementMapped,
		"plans", cx.Counters.Plans,
		"ambiguous", cx.Counters.Ambiguous)
	return nil
}

// processCard takes one card through parse, node mapping, movement mapping
// and plan conversion. Failures are logged and recorded; they never stop
// the run.
func (cx *Context) processCard(dir, name string, start, end model.TimeOfDay) {
	sheet, err := grid.OpenWorkbook(filepath.Join(dir, name))
	if err != nil {
		cx.Log.Error("cannot open workbook", "file", name, "error", err)
		cx.record(name, nil, store.CardStatusFailed, err)
		return
	}

	card, err := parser.ParseCard(sheet, name, cx.Log)
	if err != nil {
		cx.Log.Error("cannot parse card", "file", name, "kind", model.KindOf(err).String(), "error", err)
		cx.record(name, nil, store.CardStatusFailed, err)
		return
	}
	cx.Counters.Parsed++
	parser.AssignCardNames(card)

	if !mapper.MapNode(cx.Net, card, cx.MappedNodes, cx.Log) {
		cx.Log.Error("failed to map card to a node", "file", name, "intersection", card.CanonicalName)
		cx.record(name, card, store.CardStatusSkipped, nil)
		return
	}
	cx.Counters.Mapped++

	if err := mapper.MapMovements(cx.Net, card, cx.Cfg.Mapping.AddRightToThru); err != nil {
		cx.Log.Error("cannot map movements", "file", name, "kind", model.KindOf(err).String(), "error", err)
		cx.record(name, card, store.CardStatusFailed, err)
		return
	}
	cx.Counters.MovementMapped++

	plan, err := cx.buildTimePlan(card, start, end)
	if err != nil {
		cx.Log.Error("cannot convert card to a time plan", "file", name, "kind", model.KindOf(err).String(), "error", err)
		cx.record(name, card, store.CardStatusFailed, err)
		return
	}
	if err := plan.Validate(); err != nil {
		cx.Log.Error("time plan is invalid", "file", name, "node", card.MappedNodeID, "error", err)
		cx.record(name, card, store.CardStatusFailed, err)
		return
	}
	if err := cx.Net.AttachPlan(plan); err != nil {
		cx.Log.Error("cannot attach time plan", "file", name, "node", card.MappedNodeID, "error", err)
		cx.record(name, card, store.CardStatusFailed, err)
		return
	}
	cx.Counters.Plans++

	if phase.CountMatchingPeriods(card, start, end, cx.Log) > 1 {
		cx.Counters.Ambiguous++
	}
	cx.Log.Info("converted signal", "file", name, "node", card.MappedNodeID, "intersection", card.CanonicalName)
	cx.record(name, card, store.CardStatusConverted, nil)
}

// buildTimePlan picks the card's operating period for the requested window
// and synthesizes its phases into a network time plan.
func (cx *Context) buildTimePlan(card *model.SignalCard, start, end model.TimeOfDay) (*network.TimePlan, error) {
	period, ok := phase.SelectPeriod(card, start, end)
	if !ok {
		// Cards with only an all-day record match the zero window.
		period, ok = phase.SelectPeriod(card, model.Midnight, model.Midnight)
	}
	if !ok {
		return nil, model.NewConversionError("unable to find CSO for signal %s", card.FileName)
	}
	cx.Log.Debug("selected CSO", "file", card.FileName, "cso", period.CSO,
		"start", period.Start.String(), "end", period.End.String())

	phases, err := phase.Synthesize(card.Grid, period.Durations)
	if err != nil {
		return nil, err
	}

	node, ok := cx.Net.Node(card.MappedNodeID)
	if !ok {
		return nil, model.NewConversionError("signal %s: node %d is not in the network", card.FileName, card.MappedNodeID)
	}

	plan := &network.TimePlan{NodeID: card.MappedNodeID, Offset: period.Offset}
	for _, ph := range phases {
		pp := network.PlanPhase{Green: ph.Green, Yellow: ph.Yellow, AllRed: ph.AllRed}
		for _, label := range ph.Movements {
			dedicated := mapper.ClassifyTurnTypes(label, false)
			for _, ref := range card.MappedMovements[label] {
				mov, ok := node.Movement(ref.Up, ref.Down)
				if !ok {
					return nil, model.NewConversionError("signal %s: movement %s is not in the network", card.FileName, ref.String())
				}
				if mov.Prohibited {
					continue
				}
				protected := mov.IsThru()
				if turnIn(mov.TurnType, dedicated) {
					cx.Log.Warn("PERMITTED should be PROTECTED?",
						"group", label, "turn_type", mov.TurnType,
						"in", mov.In.Label, "out", mov.Out.Label)
					protected = true
				}
				if !pp.HasMovement(ref.Up, ref.Down) {
					pp.Movements = append(pp.Movements, network.PlanMovement{Ref: ref, Protected: protected})
				}
			}
		}
		plan.Phases = append(plan.Phases, pp)
	}
	return plan, nil
}

func (cx *Context) record(fileName string, card *model.SignalCard, status string, cause error) {
	if cx.Store == nil {
		return
	}
	intersection, nodeID := "", 0
	if card != nil {
		intersection, nodeID = card.CanonicalName, card.MappedNodeID
	}
	kind, detail := "", ""
	if cause != nil {
		kind, detail = model.KindOf(cause).String(), cause.Error()
	}
	if err := cx.Store.RecordCard(cx.RunID, fileName, intersection, nodeID, status, kind, detail); err != nil {
		cx.Log.Error("cannot record card outcome", "file", fileName, "error", err)
	}
}

func turnIn(turnType string, set []string) bool {
	for _, t := range set {
		if t == turnType {
			return true
		}
	}
	return false
}
