package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Read loads a network from <dir>/<prefix>_nodes.csv, <prefix>_links.csv and
// <prefix>_movements.csv.
//
// nodes.csv:     id
// links.csv:     id,from,to,label,orientation
// movements.csv: in_link,out_link,turn_type,prohibited
func Read(dir, prefix string) (*Network, error) {
	net := NewNetwork()

	err := readCSV(filepath.Join(dir, prefix+"_nodes.csv"), 1, func(rec []string) error {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("node id %q: %w", rec[0], err)
		}
		net.AddNode(id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = readCSV(filepath.Join(dir, prefix+"_links.csv"), 5, func(rec []string) error {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("link id %q: %w", rec[0], err)
		}
		from, err := strconv.Atoi(rec[1])
		if err != nil {
			return fmt.Errorf("link %d from %q: %w", id, rec[1], err)
		}
		to, err := strconv.Atoi(rec[2])
		if err != nil {
			return fmt.Errorf("link %d to %q: %w", id, rec[2], err)
		}
		orientation, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return fmt.Errorf("link %d orientation %q: %w", id, rec[4], err)
		}
		_, err = net.AddLink(id, from, to, strings.ToUpper(strings.TrimSpace(rec[3])), orientation)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = readCSV(filepath.Join(dir, prefix+"_movements.csv"), 4, func(rec []string) error {
		in, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("movement in_link %q: %w", rec[0], err)
		}
		out, err := strconv.Atoi(rec[1])
		if err != nil {
			return fmt.Errorf("movement out_link %q: %w", rec[1], err)
		}
		prohibited := strings.EqualFold(strings.TrimSpace(rec[3]), "true") || rec[3] == "1"
		_, err = net.AddMovement(in, out, strings.ToUpper(strings.TrimSpace(rec[2])), prohibited)
		return err
	})
	if err != nil {
		return nil, err
	}

	return net, nil
}

// readCSV streams the records of one file, skipping a header line when the
// first field is not numeric.
func readCSV(path string, minFields int, consume func([]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(rec) < minFields {
			return fmt.Errorf("%s: record %v has %d fields, want %d", path, rec, len(rec), minFields)
		}
		if first {
			first = false
			if _, err := strconv.Atoi(strings.TrimSpace(rec[0])); err != nil {
				continue // header
			}
		}
		if err := consume(rec); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}
