package boost

import "math"

// Node is a single node of a Tree, stored in the tree's node arena.
// Internal nodes route x[Feature] <= Threshold to Left, otherwise to
// Right. Cover is the hessian weight of the training samples that
// passed through the node; attribution uses it as the background
// distribution for untaken branches.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Cover     float64
	Leaf      bool
}

// Tree is one regression tree over normalized features. Nodes[0] is
// the root. Trees are immutable once trained.
type Tree struct {
	Nodes []Node
}

// Leaf returns the value of the leaf reached by x.
func (tree *Tree) Leaf(x []float64) float64 {
	node := &tree.Nodes[0]
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = &tree.Nodes[node.Left]
		} else {
			node = &tree.Nodes[node.Right]
		}
	}
	return node.Value
}

// ExpectedValue is the cover-weighted mean leaf value, the tree's
// output under the training distribution.
func (tree *Tree) ExpectedValue() float64 {
	return tree.expectedValue(0)
}

func (tree *Tree) expectedValue(idx int) float64 {
	node := &tree.Nodes[idx]
	if node.Leaf {
		return node.Value
	}
	if node.Cover <= 0 {
		return 0
	}
	left := tree.Nodes[node.Left].Cover * tree.expectedValue(node.Left)
	right := tree.Nodes[node.Right].Cover * tree.expectedValue(node.Right)
	return (left + right) / node.Cover
}

// MaxFeature returns the highest feature index the tree splits on, or
// -1 for a single-leaf tree.
func (tree *Tree) MaxFeature() int {
	max := -1
	for i := range tree.Nodes {
		if node := &tree.Nodes[i]; !node.Leaf && node.Feature > max {
			max = node.Feature
		}
	}
	return max
}

// Ensemble is a trained boosted model. It is immutable after training
// and safe for concurrent readers.
type Ensemble struct {
	BaseScore float64
	Trees     []Tree
}

// Margin returns the raw additive score of x before the sigmoid.
func (ens *Ensemble) Margin(x []float64) float64 {
	margin := ens.BaseScore
	for i := range ens.Trees {
		margin += ens.Trees[i].Leaf(x)
	}
	return margin
}

// Probability maps Margin through the logistic function into (0, 1).
func (ens *Ensemble) Probability(x []float64) float64 {
	return Sigmoid(ens.Margin(x))
}

// NumFeatures returns the input width the ensemble requires, the
// highest split feature index plus one.
func (ens *Ensemble) NumFeatures() int {
	max := -1
	for i := range ens.Trees {
		if mf := ens.Trees[i].MaxFeature(); mf > max {
			max = mf
		}
	}
	return max + 1
}

func Sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
