package network

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// WritePlans writes every attached time plan to <dir>/<prefix>_plans.txt in
// node order. The format is line-oriented: a PLAN record per node, a PHASE
// record per phase and one movement triple per line.
func (net *Network) WritePlans(dir, prefix string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, prefix+"_plans.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, tp := range net.Plans() {
		fmt.Fprintf(w, "PLAN %d OFFSET %.1f\n", tp.NodeID, tp.Offset)
		for i, ph := range tp.Phases {
			fmt.Fprintf(w, "PHASE %d GREEN %.1f YELLOW %.1f RED %.1f\n", i+1, ph.Green, ph.Yellow, ph.AllRed)
			for _, m := range ph.Movements {
				class := "PERMITTED"
				if m.Protected {
					class = "PROTECTED"
				}
				fmt.Fprintf(w, "  MOV %s %s\n", m.Ref, class)
			}
		}
	}
	return w.Flush()
}
