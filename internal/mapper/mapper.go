// Package mapper matches parsed signal cards onto road-network nodes and
// resolves each movement-group label to concrete network movements.
package mapper

import (
	"log/slog"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/Mirshida/sf-dta/internal/model"
	"github.com/Mirshida/sf-dta/internal/network"
	"github.com/Mirshida/sf-dta/internal/parser"
)

// Some street pairs meet twice in the network. These cards must land on the
// node that carries the turns the phasing names.
var pinnedNodes = map[string]int{
	"19TH,WINSTON":  23069,
	"23RD,POTRERO":  23962,
	"25TH,POTRERO":  23952,
	"DONAHUE,INNES": 51690,
}

// MapNode finds the network node whose incoming street names match the
// card's cleaned street names and records the match on the card. Nodes
// already claimed by another card (per the registry, keyed by canonical
// intersection name) are skipped. Returns false when no node matches.
func MapNode(net *network.Network, card *model.SignalCard, registry map[string]int, log *slog.Logger) bool {
	log.Debug("street names for mapping", "streets", card.StreetNames)

	claimed := make(map[int]bool, len(registry))
	for _, id := range registry {
		claimed[id] = true
	}

	for _, node := range net.Nodes() {
		if claimed[node.ID] {
			continue
		}
		baseNames := cleanedNodeStreets(node)
		if len(baseNames) != len(card.StreetNames) {
			continue
		}
		if id, pinned := pinnedNodes[card.CanonicalName]; pinned && node.ID != id {
			continue
		}
		matched := true
		for i := range baseNames {
			if fuzzy.Ratio(baseNames[i], card.StreetNames[i]) < nodeMatchCutoff {
				matched = false
				break
			}
			card.MappedStreet[card.StreetNames[i]] = baseNames[i]
		}
		if !matched {
			continue
		}
		registry[card.CanonicalName] = node.ID
		card.MappedNodeID = node.ID
		card.MappedNodeName = strings.Join(baseNames, ",")
		return true
	}
	return false
}

// cleanedNodeStreets returns the node's distinct incoming street names after
// the same cleaning applied to card street names, sorted.
func cleanedNodeStreets(node *network.Node) []string {
	seen := make(map[string]bool)
	var names []string
	for _, raw := range node.StreetNames() {
		name := parser.CleanStreetName(strings.ToUpper(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MapMovements resolves every movement-group label on the card's grid to the
// network movements it governs, populating card.MappedMovements. A card is
// rejected when no label maps, only one maps, or any non-skipped label is
// left unmapped.
func MapMovements(net *network.Network, card *model.SignalCard, addRightToThru bool) error {
	if card.MappedNodeID == 0 || card.Grid == nil {
		return model.NewMovementMappingError("signal %s: card is not mapped to a node", card.FileName)
	}
	node, ok := net.Node(card.MappedNodeID)
	if !ok {
		return model.NewMovementMappingError("signal %s: node %d is not in the network", card.FileName, card.MappedNodeID)
	}

	active := 0
	for _, label := range card.Grid.Movements() {
		if SkipMovement(label) {
			continue
		}
		dirs := Directions(label)
		if SkipInContext(label, dirs, card.StreetNames) {
			continue
		}
		active++

		stName, err := ResolveStreetName(label, card.StreetNames)
		if err != nil {
			return model.NewStreetMappingError("%s#%d#%v", card.FileName, card.MappedNodeID, err)
		}
		turnTypes := ClassifyTurnTypes(label, addRightToThru)

		links := approachLinks(node, card.MappedStreet[stName], dirs)
		if len(links) == 0 {
			return model.NewMovementMappingError(
				"%s#%d#cannot identify the links for the group movement #%s# in node #%s# stored as #%s#",
				card.FileName, card.MappedNodeID, label, card.Name, card.CanonicalName)
		}

		movs := approachMovements(links, turnTypes)
		if len(movs) == 0 {
			return model.NewMovementMappingError(
				"%s#%d#cannot identify the movements for the group movement %s in node %s stored as %s: streets %v directions %v",
				card.FileName, card.MappedNodeID, label, card.Name, card.CanonicalName, card.StreetNames, dirs)
		}

		refs := make([]model.MovementRef, len(movs))
		for i, m := range movs {
			refs[i] = m.Ref()
		}
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].Up != refs[j].Up {
				return refs[i].Up < refs[j].Up
			}
			return refs[i].Down < refs[j].Down
		})
		card.MappedMovements[label] = refs
	}

	switch {
	case len(card.MappedMovements) == 0:
		return model.NewMovementMappingError("signal %s: no mapped movements", card.FileName)
	case len(card.MappedMovements) == 1:
		return model.NewMovementMappingError("signal %s: only one of the group movements has been mapped", card.FileName)
	case len(card.MappedMovements) != active:
		return model.NewMovementMappingError("signal %s: not all movements have been mapped", card.FileName)
	}
	return nil
}

// approachLinks collects the node's incoming links serving one street name,
// filtered to the given compass directions when any were named. Numbered
// streets and the BROADWAY tunnel need the same containment disambiguation
// as street resolution.
func approachLinks(node *network.Node, street string, dirs []string) []*network.Link {
	var cands []*network.Link
	for _, l := range node.IncomingLinks() {
		label := strings.ToUpper(l.Label)
		switch {
		case strings.Contains(street, "3") && !strings.Contains(street, "23"):
			if strings.Contains(label, "3") && !strings.Contains(label, "23") {
				cands = append(cands, l)
			}
		case strings.Contains(street, "3") && strings.Contains(street, "23"):
			if strings.Contains(label, "3") && strings.Contains(label, "23") {
				cands = append(cands, l)
			}
		case strings.Contains(street, "BROADWAY") && !strings.Contains(street, "TUNNEL"):
			if strings.Contains(label, "BROADWAY") && !strings.Contains(label, "TUNNEL") {
				cands = append(cands, l)
			}
		case strings.Contains(street, "BROADWAY") && strings.Contains(street, "TUNNEL"):
			if strings.Contains(label, "BROADWAY") && strings.Contains(label, "TUNNEL") {
				cands = append(cands, l)
			}
		default:
			if strings.Contains(label, street) {
				cands = append(cands, l)
			}
		}
	}
	if len(dirs) == 0 {
		return cands
	}
	var out []*network.Link
	for _, l := range cands {
		d := l.Directions()
		if containsString(dirs, d[0]) || containsString(dirs, d[1]) {
			out = append(out, l)
		}
	}
	return out
}

// approachMovements gathers the outgoing movements of the approach links,
// restricted to the classified turn types when any were recognized.
func approachMovements(links []*network.Link, turnTypes []string) []*network.Movement {
	var out []*network.Movement
	for _, l := range links {
		for _, m := range l.OutgoingMovements() {
			if len(turnTypes) == 0 || containsString(turnTypes, m.TurnType) {
				out = append(out, m)
			}
		}
	}
	return out
}
