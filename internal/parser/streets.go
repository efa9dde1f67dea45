package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Mirshida/sf-dta/internal/model"
)

var intersectionSplit = regexp.MustCompile(`,| AND|&|@| AT|/`)

// ExtractStreetNames splits a card intersection name into its street names.
func ExtractStreetNames(intersection string) []string {
	parts := intersectionSplit.Split(strings.ToUpper(intersection), -1)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	sort.Strings(names)
	return names
}

// streetCorrections fixes spelled-out ordinals, zero-padded ordinals and a
// handful of recurring typos before suffix stripping.
var streetCorrections = []struct{ from, to string }{
	{"TWELFTH", "12TH"},
	{"ELEVENTH", "11TH"},
	{"TENTH", "10TH"},
	{"NINTH", "9TH"},
	{"EIGHTH", "8TH"},
	{"SEVENTH", "7TH"},
	{"SIXTH", "6TH"},
	{"FIFTH", "5TH"},
	{"FOURTH", "4TH"},
	{"THIRD", "3RD"},
	{"SECOND", "2ND"},
	{"FIRST", "1ST"},
	{"O'FARRELL", "O FARRELL"},
	{"3RDREET", "3RD"},
	{"EMBARCADERO/KING", "THE EMBARCADERO"},
	{"VAN NESSNUE", "VAN NESS"},
	{"3RD #3", "3RD"},
	{"BAYSHORE #3", "BAYSHORE"},
	{"09TH", "9TH"},
	{"08TH", "8TH"},
	{"07TH", "7TH"},
	{"06TH", "6TH"},
	{"05TH", "5TH"},
	{"04TH", "4TH"},
	{"03RD", "3RD"},
	{"02ND", "2ND"},
	{"01ST", "1ST"},
}

var streetSuffixes = []string{
	" STREETS",
	" STREET",
	" STS.",
	" STS",
	" ST.",
	" ST",
	" ROAD",
	" RD.",
	" RD",
	" AVENUE",
	" AVE.",
	" AVES",
	" AVE",
	" BLVD.",
	" BLVD",
	" BOULEVARD",
	"MASTER:",
	" DRIVE",
	" DR.",
	" WAY",
	" WY",
	" CT",
	" TERR",
	" HWY",
}

// CleanStreetName canonicalizes one street name from a card.
func CleanStreetName(name string) string {
	cleaned := strings.TrimSpace(name)

	for _, c := range streetCorrections {
		if strings.Contains(name, c.from) {
			cleaned = strings.ReplaceAll(name, c.from, c.to)
		}
	}
	if name == "EMBARCADERO" {
		cleaned = "THE EMBARCADERO"
	}
	if strings.HasSuffix(name, " DR") {
		cleaned = name[:len(name)-3]
	}
	if strings.HasSuffix(name, " AV") {
		cleaned = name[:len(name)-3]
	}
	if idx := strings.Index(name, " TO "); idx >= 0 {
		cleaned = name[:idx]
	}

	for _, suffix := range streetSuffixes {
		cleaned = strings.ReplaceAll(cleaned, suffix, "")
	}
	return strings.TrimSpace(cleaned)
}

// CleanStreetNames canonicalizes a street-name list, dropping a leading
// empty entry left over from splitting.
func CleanStreetNames(names []string) []string {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		cleaned = append(cleaned, CleanStreetName(n))
	}
	if len(cleaned) > 1 && cleaned[0] == "" {
		cleaned = cleaned[1:]
	}
	return cleaned
}

// AssignCardNames derives the cleaned, sorted street-name set and the
// canonical intersection name for a parsed card.
func AssignCardNames(card *model.SignalCard) {
	names := CleanStreetNames(ExtractStreetNames(card.Name))
	sort.Strings(names)
	card.StreetNames = names
	card.CanonicalName = strings.Join(names, ",")
}
