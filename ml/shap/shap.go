// Package shap attributes ensemble margins to input features with the
// exact TreeSHAP recursion. Covers recorded during training stand in
// for the background distribution, so no reference dataset is needed
// at scoring time.
package shap

import (
	"xaisentinel.com/xrs/ml/boost"
	"errors"
	"fmt"
)

var ErrShapeMismatch = errors.New("feature vector shape mismatch")

type Explainer struct {
	ens         *boost.Ensemble
	numFeatures int
	baseValue   float64
}

// NewExplainer binds an explainer to a trained ensemble. numFeatures
// is the schema width inputs will have; an ensemble splitting on
// features beyond that width cannot be attributed against it.
func NewExplainer(ens *boost.Ensemble, numFeatures int) (*Explainer, error) {
	if required := ens.NumFeatures(); required > numFeatures {
		return nil, fmt.Errorf(
			"%w: ensemble splits on %d features, explainer built for %d",
			ErrShapeMismatch, required, numFeatures,
		)
	}
	base := ens.BaseScore
	for i := range ens.Trees {
		base += ens.Trees[i].ExpectedValue()
	}
	return &Explainer{ens: ens, numFeatures: numFeatures, baseValue: base}, nil
}

// BaseValue is the expected margin under the training distribution.
// For every input x, BaseValue plus the sum of Attribute(x) equals
// Margin(x).
func (ex *Explainer) BaseValue() float64 {
	return ex.baseValue
}

// Attribute returns one phi per feature in schema order.
func (ex *Explainer) Attribute(x []float64) ([]float64, error) {
	if len(x) != ex.numFeatures {
		return nil, fmt.Errorf(
			"%w: got %d features, expected %d",
			ErrShapeMismatch, len(x), ex.numFeatures,
		)
	}
	phi := make([]float64, ex.numFeatures)
	for i := range ex.ens.Trees {
		treeShap(&ex.ens.Trees[i], x, phi)
	}
	return phi, nil
}

// pathElement is one unique feature conditioned on along the current
// descent. pweight carries the permutation weights of all subset sizes
// folded together.
type pathElement struct {
	feature      int
	zeroFraction float64
	oneFraction  float64
	pweight      float64
}

func treeShap(tree *boost.Tree, x []float64, phi []float64) {
	if len(tree.Nodes) == 0 {
		return
	}
	recurse(tree, x, phi, 0, nil, 1, 1, -1)
}

func recurse(
	tree *boost.Tree,
	x []float64,
	phi []float64,
	nodeIdx int,
	parentPath []pathElement,
	parentZero, parentOne float64,
	parentFeature int,
) {
	path := make([]pathElement, len(parentPath), len(parentPath)+1)
	copy(path, parentPath)
	path = extendPath(path, parentZero, parentOne, parentFeature)

	node := &tree.Nodes[nodeIdx]
	if node.Leaf {
		// path[0] is the root's sentinel entry and carries no feature.
		for i := 1; i < len(path); i++ {
			w := unwoundPathSum(path, i)
			el := path[i]
			phi[el.feature] += w * (el.oneFraction - el.zeroFraction) * node.Value
		}
		return
	}

	hot, cold := node.Right, node.Left
	if x[node.Feature] <= node.Threshold {
		hot, cold = node.Left, node.Right
	}
	hotZero := tree.Nodes[hot].Cover / node.Cover
	coldZero := tree.Nodes[cold].Cover / node.Cover

	// A feature met twice on one path must not occupy two path slots:
	// unwind the earlier element and fold its fractions into this one.
	incomingZero, incomingOne := 1.0, 1.0
	for i := 0; i < len(path); i++ {
		if path[i].feature == node.Feature {
			incomingZero = path[i].zeroFraction
			incomingOne = path[i].oneFraction
			path = unwindPath(path, i)
			break
		}
	}

	recurse(tree, x, phi, hot, path, hotZero*incomingZero, incomingOne, node.Feature)
	recurse(tree, x, phi, cold, path, coldZero*incomingZero, 0, node.Feature)
}

func extendPath(path []pathElement, zeroFraction, oneFraction float64, feature int) []pathElement {
	l := len(path)
	pweight := 0.0
	if l == 0 {
		pweight = 1
	}
	path = append(path, pathElement{
		feature:      feature,
		zeroFraction: zeroFraction,
		oneFraction:  oneFraction,
		pweight:      pweight,
	})
	for i := l - 1; i >= 0; i-- {
		path[i+1].pweight += oneFraction * path[i].pweight * float64(i+1) / float64(l+1)
		path[i].pweight = zeroFraction * path[i].pweight * float64(l-i) / float64(l+1)
	}
	return path
}

func unwindPath(path []pathElement, index int) []pathElement {
	depth := len(path) - 1
	oneFraction := path[index].oneFraction
	zeroFraction := path[index].zeroFraction
	nextOnePortion := path[depth].pweight

	for i := depth - 1; i >= 0; i-- {
		if oneFraction != 0 {
			tmp := path[i].pweight
			path[i].pweight = nextOnePortion * float64(depth+1) / (float64(i+1) * oneFraction)
			nextOnePortion = tmp - path[i].pweight*zeroFraction*float64(depth-i)/float64(depth+1)
		} else {
			path[i].pweight = path[i].pweight * float64(depth+1) / (zeroFraction * float64(depth-i))
		}
	}
	for i := index; i < depth; i++ {
		path[i].feature = path[i+1].feature
		path[i].zeroFraction = path[i+1].zeroFraction
		path[i].oneFraction = path[i+1].oneFraction
	}
	return path[:depth]
}

func unwoundPathSum(path []pathElement, index int) float64 {
	depth := len(path) - 1
	oneFraction := path[index].oneFraction
	zeroFraction := path[index].zeroFraction
	nextOnePortion := path[depth].pweight
	total := 0.0

	for i := depth - 1; i >= 0; i-- {
		if oneFraction != 0 {
			tmp := nextOnePortion * float64(depth+1) / (float64(i+1) * oneFraction)
			total += tmp
			nextOnePortion = path[i].pweight - tmp*zeroFraction*float64(depth-i)/float64(depth+1)
		} else if zeroFraction != 0 {
			total += path[i].pweight / zeroFraction * float64(depth+1) / float64(depth-i)
		}
	}
	return total
}
