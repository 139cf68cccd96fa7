package boost

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrInvalidDataset = errors.New("invalid training dataset")
	ErrInvalidConfig  = errors.New("invalid trainer config")
)

// Config controls a single training run.
type Config struct {
	Rounds         int
	MaxDepth       int
	LearningRate   float64
	Lambda         float64
	MinSplitGain   float64
	MinChildWeight float64
}

// Train fits an Ensemble to binary labels with logistic loss. Each
// round grows one tree on the gradient statistics of the current
// predictions. Training is a pure function of its inputs: the same
// dataset and config always produce the same model.
func Train(x [][]float64, y []int, cfg Config) (*Ensemble, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := validateDataset(x, y); err != nil {
		return nil, err
	}

	prior := labelPrior(y)
	base := math.Log(prior / (1 - prior))

	raw := make([]float64, len(x))
	for i := range raw {
		raw[i] = base
	}

	builder := treeBuilder{
		x:           x,
		grads:       make([]float64, len(x)),
		hess:        make([]float64, len(x)),
		numFeatures: len(x[0]),
		cfg:         cfg,
	}
	samples := make([]int, len(x))
	for i := range samples {
		samples[i] = i
	}

	ens := &Ensemble{BaseScore: base, Trees: make([]Tree, 0, cfg.Rounds)}
	for round := 0; round < cfg.Rounds; round++ {
		for i := range x {
			p := Sigmoid(raw[i])
			builder.grads[i] = p - float64(y[i])
			builder.hess[i] = p * (1 - p)
		}
		tree := builder.build(samples)
		for i := range x {
			raw[i] += tree.Leaf(x[i])
		}
		ens.Trees = append(ens.Trees, tree)
	}
	return ens, nil
}

func validateConfig(cfg Config) error {
	if cfg.Rounds <= 0 {
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrInvalidConfig, cfg.Rounds)
	}
	if cfg.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidConfig, cfg.MaxDepth)
	}
	if cfg.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be positive, got %v", ErrInvalidConfig, cfg.LearningRate)
	}
	if cfg.Lambda < 0 {
		return fmt.Errorf("%w: lambda must not be negative, got %v", ErrInvalidConfig, cfg.Lambda)
	}
	return nil
}

func validateDataset(x [][]float64, y []int) error {
	if len(x) == 0 {
		return fmt.Errorf("%w: empty feature matrix", ErrInvalidDataset)
	}
	if len(x) != len(y) {
		return fmt.Errorf("%w: got %d rows and %d labels", ErrInvalidDataset, len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return fmt.Errorf("%w: rows have no features", ErrInvalidDataset)
	}
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, expected %d", ErrInvalidDataset, i, len(row), width)
		}
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("%w: label at row %d is %d, expected 0 or 1", ErrInvalidDataset, i, label)
		}
	}
	return nil
}

func labelPrior(y []int) float64 {
	pos := 0
	for _, label := range y {
		pos += label
	}
	prior := float64(pos) / float64(len(y))
	if prior < 1e-6 {
		prior = 1e-6
	}
	if prior > 1-1e-6 {
		prior = 1 - 1e-6
	}
	return prior
}

type treeBuilder struct {
	x           [][]float64
	grads       []float64
	hess        []float64
	numFeatures int
	cfg         Config
	nodes       []Node
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func (b *treeBuilder) build(samples []int) Tree {
	b.nodes = nil
	b.grow(samples, 0)
	return Tree{Nodes: b.nodes}
}

// grow appends the node for samples to the arena and returns its
// index. Children are grown before the parent's links are filled in,
// so the pointer into the arena is re-taken after both appends.
func (b *treeBuilder) grow(samples []int, depth int) int {
	var gSum, hSum float64
	for _, i := range samples {
		gSum += b.grads[i]
		hSum += b.hess[i]
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Cover: hSum})

	if depth < b.cfg.MaxDepth && hSum >= 2*b.cfg.MinChildWeight {
		if best, ok := b.bestSplit(samples, gSum, hSum); ok {
			left, right := partition(b.x, samples, best.feature, best.threshold)
			leftIdx := b.grow(left, depth+1)
			rightIdx := b.grow(right, depth+1)
			node := &b.nodes[idx]
			node.Feature = best.feature
			node.Threshold = best.threshold
			node.Left = leftIdx
			node.Right = rightIdx
			return idx
		}
	}
	node := &b.nodes[idx]
	node.Leaf = true
	node.Value = -gSum / (hSum + b.cfg.Lambda) * b.cfg.LearningRate
	return idx
}

// bestSplit runs an exact greedy search: per feature, samples are
// sorted by value and prefix sums scanned, with candidate thresholds
// at midpoints between distinct adjacent values. Ties keep the first
// candidate in feature then threshold order.
func (b *treeBuilder) bestSplit(samples []int, gSum, hSum float64) (split, bool) {
	best := split{gain: b.cfg.MinSplitGain}
	found := false
	order := make([]int, len(samples))
	parentScore := gSum * gSum / (hSum + b.cfg.Lambda)
	for feature := 0; feature < b.numFeatures; feature++ {
		copy(order, samples)
		sort.Slice(order, func(i, j int) bool {
			return b.x[order[i]][feature] < b.x[order[j]][feature]
		})
		var gLeft, hLeft float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			gLeft += b.grads[i]
			hLeft += b.hess[i]
			curr, next := b.x[i][feature], b.x[order[pos+1]][feature]
			if curr == next {
				continue
			}
			hRight := hSum - hLeft
			if hLeft < b.cfg.MinChildWeight || hRight < b.cfg.MinChildWeight {
				continue
			}
			gRight := gSum - gLeft
			gain := 0.5 * (gLeft*gLeft/(hLeft+b.cfg.Lambda) +
				gRight*gRight/(hRight+b.cfg.Lambda) - parentScore)
			if gain > best.gain {
				best = split{feature: feature, threshold: (curr + next) / 2, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

// partition reorders samples in place so that rows routed left come
// first, and returns the two halves. Both halves are nonempty because
// thresholds sit between actual sample values.
func partition(x [][]float64, samples []int, feature int, threshold float64) (left, right []int) {
	lo, hi := 0, len(samples)
	for lo < hi {
		i := samples[lo]
		if x[i][feature] <= threshold {
			lo++
			continue
		}
		hi--
		samples[lo], samples[hi] = samples[hi], samples[lo]
	}
	return samples[:lo], samples[lo:]
}
