package mapper

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/Mirshida/sf-dta/internal/model"
)

// Fuzzy-match cutoffs on the 0..100 ratio scale. Node matching is strict;
// resolving a movement label to one of a card's few street names is loose.
const (
	nodeMatchCutoff   = 90
	streetMatchCutoff = 60
)

// ResolveStreetName finds which of the card's street names a movement-group
// label refers to. Numbered streets and the two BROADWAYs need containment
// rules before the fuzzy fallback: "3RD" is inside "23RD", and BROADWAY
// names both the surface street and the tunnel.
func ResolveStreetName(label string, streetNames []string) (string, error) {
	for _, name := range streetNames {
		switch {
		case strings.Contains(label, "3") && !strings.Contains(label, "23"):
			if strings.Contains(name, "3") && !strings.Contains(name, "23") {
				return name, nil
			}
		case strings.Contains(label, "23"):
			if strings.Contains(name, "23") {
				return name, nil
			}
		case strings.Contains(label, "BROADWAY"):
			if strings.Contains(label, "TUNNEL") {
				if strings.Contains(name, "BROADWAY") && strings.Contains(name, "TUNNEL") {
					return name, nil
				}
			} else if strings.Contains(name, "BROADWAY") && !strings.Contains(name, "TUNNEL") {
				return name, nil
			}
		default:
			if strings.Contains(label, name) {
				return name, nil
			}
		}
	}

	if best, ok := closestMatch(label, streetNames, streetMatchCutoff); ok {
		return best, nil
	}
	return "", model.NewStreetMappingError(
		"the group movement is not associated with any of the street names that identify the intersection#%s#%v",
		label, streetNames)
}

// closestMatch returns the candidate with the highest similarity ratio to s,
// provided it meets the cutoff.
func closestMatch(s string, candidates []string, cutoff int) (string, bool) {
	best, bestRatio := "", 0
	for _, cand := range candidates {
		if r := fuzzy.Ratio(s, cand); r > bestRatio {
			best, bestRatio = cand, r
		}
	}
	return best, bestRatio >= cutoff
}
