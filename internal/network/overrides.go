package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// TurnTypeOverride rewrites one movement's turn type before conversion.
// Movements are matched by incoming/outgoing link label and direction.
type TurnTypeOverride struct {
	FromDir   string
	FromLabel string
	ToDir     string
	ToLabel   string
	TurnType  string
}

// LoadTurnTypeOverrides reads an override CSV. The header row beginning with
// "From Dir" is skipped, and a literal "Thru" in the turn-type column is
// normalized to the through-turn constant.
func LoadTurnTypeOverrides(path string) ([]TurnTypeOverride, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var out []TurnTypeOverride
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("%s: override record %v has %d fields, want 6", path, rec, len(rec))
		}
		if rec[0] == "From Dir" {
			continue
		}
		turnType := strings.TrimSpace(rec[5])
		if turnType == "Thru" {
			turnType = TurnThru
		}
		out = append(out, TurnTypeOverride{
			FromDir:   strings.TrimSpace(rec[0]),
			FromLabel: strings.ToUpper(strings.TrimSpace(rec[1])),
			ToDir:     strings.TrimSpace(rec[3]),
			ToLabel:   strings.ToUpper(strings.TrimSpace(rec[4])),
			TurnType:  strings.ToUpper(turnType),
		})
	}
}

// ApplyTurnTypeOverrides rewrites matching movements in place and returns
// how many movements were changed.
func (net *Network) ApplyTurnTypeOverrides(overrides []TurnTypeOverride) int {
	changed := 0
	for _, o := range overrides {
		for _, l := range net.links {
			if l.Label != o.FromLabel || !linkHasDirection(l, o.FromDir) {
				continue
			}
			for _, m := range l.outgoing {
				if m.Out.Label != o.ToLabel || !linkHasDirection(m.Out, o.ToDir) {
					continue
				}
				if m.TurnType != o.TurnType {
					m.TurnType = o.TurnType
					changed++
				}
			}
		}
	}
	return changed
}

func linkHasDirection(l *Link, dir string) bool {
	if dir == "" {
		return true
	}
	d := l.Directions()
	return d[0] == dir || d[1] == dir
}
