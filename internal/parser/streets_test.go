package parser

import (
	"reflect"
	"testing"

	"github.com/Mirshida/sf-dta/internal/model"
)

func TestExtractStreetNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"Mission and 24th", []string{"24TH", "MISSION"}},
		{"GEARY & FILLMORE", []string{"FILLMORE", "GEARY"}},
		{"MARKET @ CASTRO", []string{"CASTRO", "MARKET"}},
		{"OAK AT FRANKLIN", []string{"FRANKLIN", "OAK"}},
		{"TURK/GOUGH", []string{"GOUGH", "TURK"}},
		{"A, B AND C", []string{"A", "B", "C"}},
	}
	for _, c := range cases {
		if got := ExtractStreetNames(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ExtractStreetNames(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCleanStreetName(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"TWELFTH STREET", "12TH"},
		{"THIRD ST", "3RD"},
		{"03RD ST", "3RD"},
		{"MISSION STREET", "MISSION"},
		{"GEARY BLVD", "GEARY"},
		{"VAN NESS AVE", "VAN NESS"},
		{"EMBARCADERO", "THE EMBARCADERO"},
		{"PORTOLA DR", "PORTOLA"},
		{"LOMBARD AV", "LOMBARD"},
		{"O'FARRELL ST", "O FARRELL"},
		{"BAY TO BREAKERS", "BAY"},
		{"JUNIPERO SERRA", "JUNIPERO SERRA"},
	}
	for _, c := range cases {
		if got := CleanStreetName(c.in); got != c.want {
			t.Fatalf("CleanStreetName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanStreetNamesDropsLeadingEmpty(t *testing.T) {
	t.Parallel()

	got := CleanStreetNames([]string{"", "MISSION ST", "24TH ST"})
	want := []string{"MISSION", "24TH"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CleanStreetNames = %v, want %v", got, want)
	}
}

func TestAssignCardNames(t *testing.T) {
	t.Parallel()

	card := model.NewSignalCard("mission_24th.xls")
	card.Name = "MISSION AND 24TH STREETS"
	AssignCardNames(card)

	if !reflect.DeepEqual(card.StreetNames, []string{"24TH", "MISSION"}) {
		t.Fatalf("StreetNames = %v", card.StreetNames)
	}
	if card.CanonicalName != "24TH,MISSION" {
		t.Fatalf("CanonicalName = %q", card.CanonicalName)
	}
}
