package physics

// ForceModel computes node velocities. It holds no state besides its
// parameters and never mutates the nodes it reads.
type ForceModel struct {
	Params Params
}

// NewForceModel returns a ForceModel using p.
func NewForceModel(p Params) ForceModel {
	return ForceModel{Params: p}
}

// MarginSum is the distance at which a and b neither attract nor repel.
func (m ForceModel) MarginSum(a, b *Node) float64 {
	return a.Radius(m.Params) + b.Radius(m.Params) + m.Params.ObjectsMargin()
}

// Blend returns (x-1)/x², the pairwise factor for a normalised distance x.
// It is strongly negative (repulsive) below 1, zero at 1 and weakly positive
// (attractive) beyond.
func Blend(x float64) float64 {
	return (x - 1) / (x * x)
}

// Pairwise returns the contribution of other to target's velocity.
func (m ForceModel) Pairwise(target, other *Node) Vector2 {
	margin := m.MarginSum(target, other)
	diff := Sub(other.Position, target.Position)
	d := Norm(diff)
	if floor := m.Params.MinSeparation * margin; d < floor {
		if d == 0 {
			diff = separationAxis(target, other)
		} else {
			diff = Scale(diff, 1/d)
		}
		d = floor
		diff = Scale(diff, d)
	}
	f := Blend(d / margin)
	return Scale(diff, f/d)
}

// Center returns the pull of the origin on target. Heavier nodes are pulled
// harder.
func (m ForceModel) Center(target *Node) Vector2 {
	return Scale(target.Position, m.Params.CenterAttraction*target.Mass(m.Params))
}

// ComputeVelocity returns the velocity of target given every node of the
// graph, target included. Nodes sharing target's id are skipped.
// The cost is O(len(all)).
func (m ForceModel) ComputeVelocity(target *Node, all []*Node) Vector2 {
	var s Vector2
	for _, n := range all {
		if n.ID == target.ID {
			continue
		}
		s = Add(s, m.Pairwise(target, n))
	}
	return Add(s, m.Center(target))
}

// separationAxis gives coincident nodes opposite unit directions, decided by
// id order so that the result does not depend on iteration order.
func separationAxis(target, other *Node) Vector2 {
	if target.ID < other.ID {
		return Vec(1, 0)
	}
	return Vec(-1, 0)
}
