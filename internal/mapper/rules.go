package mapper

import (
	"strings"

	"github.com/Mirshida/sf-dta/internal/network"
)

// turnRule binds one turn type to the label substrings that indicate it.
// Rules are evaluated in order so classification output is deterministic.
type turnRule struct {
	turnTypes  []string
	indicators []string
}

var turnRules = []turnRule{
	{
		turnTypes: []string{network.TurnLeft, network.TurnLeft2},
		indicators: []string{
			"LT'S", "-L", "WB-L", "EB-L", "SB-L", "NB-L", "LEFT TURN", " LT",
			"NBLT", "SBLT", "WBLT", "EBLT", "(NBLT)", "(SBLT)", "(WBLT)", "(EBLT)",
		},
	},
	{
		turnTypes:  []string{network.TurnThru, network.TurnThru2},
		indicators: []string{" THRU", " THROUGH", "(THRU)"},
	},
	{
		turnTypes:  []string{network.TurnRight, network.TurnRight2},
		indicators: []string{"RIGHT TURN", "BRT", " RT"},
	},
}

// ClassifyTurnTypes returns the network turn types a movement-group label
// refers to. With addRightToThru set, a through match also brings along the
// right-turn types, matching field practice where curbside rights run with
// the through indication.
func ClassifyTurnTypes(label string, addRightToThru bool) []string {
	var result []string
	thruMatched := false
	for _, rule := range turnRules {
		for _, ind := range rule.indicators {
			if strings.Contains(label, ind) {
				result = append(result, rule.turnTypes...)
				if rule.turnTypes[0] == network.TurnThru {
					thruMatched = true
				}
				break
			}
		}
	}
	if thruMatched && addRightToThru {
		result = append(result, network.TurnRight, network.TurnRight2)
	}
	return result
}

// directionRule binds one compass direction to its label indicators.
type directionRule struct {
	direction  string
	indicators []string
}

var directionRules = []directionRule{
	{network.DirWB, []string{"WB-", "WB,", ",WB", "WB/", "/WB", "WB&", "&WB", " WB", "WB ", "W/B", "(WB", "WB)", "(WB)", "(WESTBOUND)", "WESTBOUND", "WEST "}},
	{network.DirEB, []string{"EB-", "EB,", ",EB", "EB/", "/EB", "EB&", "&EB", " EB", "EB ", "E/B", "(EB", "(EB)", "EB)", "(EASTBOUND)", "EASTBOUND", "EAST "}},
	{network.DirNB, []string{"NB-", "NB,", ",NB", "NB/", "/NB", "NB&", "&NB", " NB", "NB ", "N/B", "(NB", "NB)", "(NORTHBOUND)", "NORTHBOUND", "NORTH "}},
	{network.DirSB, []string{"SB-", "SB,", ",SB", "SB/", "/SB", "SB&", "&SB", " SB", "SB ", "S/B", "(SB", "SB)", "(SOUTHBOUND)", "SOUTHBOUND", "SOUTH "}},
}

// Street names that contain a compass word without meaning a direction.
var directionExemptLabels = map[string]bool{
	"SOUTH VAN NESS":          true,
	"WEST PORTAL":             true,
	"NORTH POINT":             true,
	"I-80 E OFF-RAMP":         true,
	"HWY 101 SOUTHBOUND RAMP": true,
}

// Directions returns the compass directions named in a movement-group label,
// in WB, EB, NB, SB order.
func Directions(label string) []string {
	if directionExemptLabels[label] {
		return nil
	}
	var result []string
	for _, rule := range directionRules {
		for _, ind := range rule.indicators {
			if strings.Contains(label, ind) {
				result = append(result, rule.direction)
				break
			}
		}
	}
	return result
}

// denyRule skips a movement-group label when Contains matches and the
// Unless substring (if any) is absent.
type denyRule struct {
	contains string
	unless   string
}

var denyRules = []denyRule{
	{contains: "DRIVEWAY"},
	{contains: "FIRE HOUSE"},
	{contains: "BRIDGE ", unless: "CAMBRIDGE"},
	{contains: "RESTRICTION"},
	{contains: "PIER 39"},
	{contains: " PEDS"},
	{contains: "SERVICE ROAD"},
	{contains: "PARKING", unless: "CHURCH"},
	{contains: "GARAGE"},
	{contains: "(EMS"},
	{contains: "LRV PREEMPT"},
	{contains: "AT BRIDGE"},
	{contains: "BLIND "},
	{contains: "STREETCAR"},
	{contains: "(FAR"},
	{contains: "SHRADER PATH"},
	{contains: " WBRT"},
	{contains: " RT. TURN"},
	{contains: "XING"},
	{contains: "PEDS "},
}

// SkipMovement reports whether a movement-group label names something other
// than a vehicular signal group (driveways, preempts, pedestrian heads).
func SkipMovement(label string) bool {
	for _, rule := range denyRules {
		if !strings.Contains(label, rule.contains) {
			continue
		}
		if rule.unless != "" && strings.Contains(label, rule.unless) {
			continue
		}
		return true
	}
	return false
}

// contextRule skips a label at intersections where the card groups a
// movement the network does not carry. All set conditions must hold.
type contextRule struct {
	labelContains string
	withDir       string
	withoutDir    string
	withStreet    string
	withoutStreet string
}

var contextRules = []contextRule{
	{labelContains: "BUSH", withDir: network.DirWB},
	{labelContains: "FELL", withDir: network.DirEB, withoutDir: network.DirWB, withoutStreet: "FRANKLIN"},
	{labelContains: "PINE", withDir: network.DirEB},
	{labelContains: "PIERCE", withDir: network.DirNB, withStreet: "FELL"},
	{labelContains: "LEE", withDir: network.DirSB, withStreet: "OCEAN"},
}

// SkipInContext reports whether a label should be dropped given its parsed
// directions and the card's street names.
func SkipInContext(label string, dirs []string, streetNames []string) bool {
	for _, rule := range contextRules {
		if !strings.Contains(label, rule.labelContains) {
			continue
		}
		if rule.withDir != "" && !containsString(dirs, rule.withDir) {
			continue
		}
		if rule.withoutDir != "" && containsString(dirs, rule.withoutDir) {
			continue
		}
		if rule.withStreet != "" && !containsString(streetNames, rule.withStreet) {
			continue
		}
		if rule.withoutStreet != "" && containsString(streetNames, rule.withoutStreet) {
			continue
		}
		return true
	}
	return false
}

func containsString(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
