package physics

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the category of a node. It only changes the rendered shape.
type Kind int

const (
	Organization Kind = iota
	People
	Project
)

var kindNames = [...]string{"Organization", "People", "Project"}

// Kinds lists every kind in display order.
func Kinds() []Kind { return []Kind{Organization, People, Project} }

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(i), nil
		}
	}
	return Organization, fmt.Errorf("unknown node kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown node kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Node is a simulated particle. Mass and radius are always derived from the
// member count, so they cannot drift apart.
type Node struct {
	ID       string
	Kind     Kind
	Members  int
	Position Vector2
	// Links holds directed edges by target id. Physics ignores them.
	Links []string
}

// Mass returns MinimalMass + member count. Negative counts are treated as zero.
func (n *Node) Mass(p Params) float64 {
	return p.MinimalMass + float64(max(n.Members, 0))
}

// Radius returns sqrt(mass) * ObjectsDensity.
func (n *Node) Radius(p Params) float64 {
	return math.Sqrt(n.Mass(p)) * p.ObjectsDensity
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Links = append([]string(nil), n.Links...)
	return &c
}
