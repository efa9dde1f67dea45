// Package network holds the road-network model the signal cards are mapped
// onto: nodes, their incoming links and each link's outgoing turning
// movements, plus the time plans attached to signalized nodes.
package network

import (
	"fmt"
	"sort"

	"github.com/Mirshida/sf-dta/internal/model"
)

// Turn types as stored on movements. The secondary variants mark movements
// that share an approach with another movement of the same kind.
const (
	TurnLeft   = "LT"
	TurnLeft2  = "LT2"
	TurnThru   = "TH"
	TurnThru2  = "TH2"
	TurnRight  = "RT"
	TurnRight2 = "RT2"
)

// Compass directions as used by movement-group labels and link orientations.
const (
	DirNB = "NB"
	DirSB = "SB"
	DirEB = "EB"
	DirWB = "WB"
)

// Node is an intersection.
type Node struct {
	ID       int
	incoming []*Link
	plan     *TimePlan
}

// Link is a directed road segment ending at a node.
type Link struct {
	ID          int
	From        int
	To          int
	Label       string
	Orientation float64 // compass degrees of travel

	outgoing []*Movement
}

// Movement is one turning movement from a link through its downstream node.
type Movement struct {
	In         *Link
	Out        *Link
	TurnType   string
	Prohibited bool
}

// Ref identifies the movement by its node triple.
func (m *Movement) Ref() model.MovementRef {
	return model.MovementRef{Up: m.In.From, Node: m.In.To, Down: m.Out.To}
}

// IsThru reports whether the movement is a through movement.
func (m *Movement) IsThru() bool {
	return m.TurnType == TurnThru || m.TurnType == TurnThru2
}

// Directions buckets a link's orientation into its two possible compass
// directions, e.g. (NB, WB).
func (l *Link) Directions() [2]string {
	var ns, ew string
	if l.Orientation >= 270 || l.Orientation < 90 {
		ns = DirNB
	} else {
		ns = DirSB
	}
	if l.Orientation >= 0 && l.Orientation < 180 {
		ew = DirEB
	} else {
		ew = DirWB
	}
	return [2]string{ns, ew}
}

// IncomingLinks returns the links ending at the node, in load order.
func (n *Node) IncomingLinks() []*Link {
	return n.incoming
}

// OutgoingMovements returns the movements leaving the link, in load order.
func (l *Link) OutgoingMovements() []*Movement {
	return l.outgoing
}

// StreetNames returns the distinct labels of the node's incoming links.
func (n *Node) StreetNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range n.incoming {
		if !seen[l.Label] {
			seen[l.Label] = true
			names = append(names, l.Label)
		}
	}
	sort.Strings(names)
	return names
}

// Plan returns the time plan attached to the node, if any.
func (n *Node) Plan() *TimePlan {
	return n.plan
}

// Movement finds the node's movement by upstream and downstream node ids.
func (n *Node) Movement(up, down int) (*Movement, bool) {
	for _, l := range n.incoming {
		if l.From != up {
			continue
		}
		for _, m := range l.outgoing {
			if m.Out.To == down {
				return m, true
			}
		}
	}
	return nil, false
}

// Network is the full node/link/movement graph.
type Network struct {
	nodes map[int]*Node
	order []int
	links map[int]*Link
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{nodes: make(map[int]*Node), links: make(map[int]*Link)}
}

// Node looks a node up by id.
func (net *Network) Node(id int) (*Node, bool) {
	n, ok := net.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order; mapping iterates them in this
// stable order so that the mapped-node registry is reproducible.
func (net *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(net.order))
	for _, id := range net.order {
		out = append(out, net.nodes[id])
	}
	return out
}

// AddNode inserts a node.
func (net *Network) AddNode(id int) *Node {
	if n, ok := net.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id}
	net.nodes[id] = n
	net.order = append(net.order, id)
	return n
}

// AddLink inserts a directed link between existing nodes.
func (net *Network) AddLink(id, from, to int, label string, orientation float64) (*Link, error) {
	dst, ok := net.nodes[to]
	if !ok {
		return nil, fmt.Errorf("link %d ends at unknown node %d", id, to)
	}
	if _, ok := net.nodes[from]; !ok {
		return nil, fmt.Errorf("link %d starts at unknown node %d", id, from)
	}
	l := &Link{ID: id, From: from, To: to, Label: label, Orientation: orientation}
	net.links[id] = l
	dst.incoming = append(dst.incoming, l)
	return l, nil
}

// AddMovement inserts a turning movement between two existing links.
func (net *Network) AddMovement(inLink, outLink int, turnType string, prohibited bool) (*Movement, error) {
	in, ok := net.links[inLink]
	if !ok {
		return nil, fmt.Errorf("movement references unknown incoming link %d", inLink)
	}
	out, ok := net.links[outLink]
	if !ok {
		return nil, fmt.Errorf("movement references unknown outgoing link %d", outLink)
	}
	if in.To != out.From {
		return nil, fmt.Errorf("movement %d->%d does not pass through a shared node", inLink, outLink)
	}
	m := &Movement{In: in, Out: out, TurnType: turnType, Prohibited: prohibited}
	in.outgoing = append(in.outgoing, m)
	return m, nil
}

// TimePlan is the signal plan attached to one node for a plan window.
type TimePlan struct {
	NodeID int
	Offset float64
	Phases []PlanPhase
}

// PlanPhase is one emitted phase with its member movements.
type PlanPhase struct {
	Green  float64
	Yellow float64
	AllRed float64

	Movements []PlanMovement
}

// PlanMovement is a movement inside a phase with its protection class.
type PlanMovement struct {
	Ref       model.MovementRef
	Protected bool
}

// HasMovement reports whether the phase already carries the movement between
// the given endpoints.
func (p *PlanPhase) HasMovement(up, down int) bool {
	for _, m := range p.Movements {
		if m.Ref.Up == up && m.Ref.Down == down {
			return true
		}
	}
	return false
}

// Validate rejects structurally unusable plans.
func (tp *TimePlan) Validate() error {
	if len(tp.Phases) < 2 {
		return fmt.Errorf("time plan for node %d has %d phases, need at least 2", tp.NodeID, len(tp.Phases))
	}
	var total float64
	for i, ph := range tp.Phases {
		if len(ph.Movements) == 0 {
			return fmt.Errorf("time plan for node %d: phase %d has no movements", tp.NodeID, i+1)
		}
		total += ph.Green + ph.Yellow + ph.AllRed
	}
	if total <= 0 {
		return fmt.Errorf("time plan for node %d has zero total time", tp.NodeID)
	}
	return nil
}

// AttachPlan validates and attaches a plan to its node.
func (net *Network) AttachPlan(tp *TimePlan) error {
	n, ok := net.nodes[tp.NodeID]
	if !ok {
		return fmt.Errorf("time plan references unknown node %d", tp.NodeID)
	}
	if err := tp.Validate(); err != nil {
		return err
	}
	n.plan = tp
	return nil
}

// Plans returns every attached plan in node insertion order.
func (net *Network) Plans() []*TimePlan {
	var out []*TimePlan
	for _, id := range net.order {
		if p := net.nodes[id].plan; p != nil {
			out = append(out, p)
		}
	}
	return out
}
