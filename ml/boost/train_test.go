package boost

import (
	"errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"math"
	"math/rand"
	"testing"
)

func testConfig() Config {
	return Config{
		Rounds:         5,
		MaxDepth:       3,
		LearningRate:   0.1,
		Lambda:         1,
		MinSplitGain:   1e-6,
		MinChildWeight: 1,
	}
}

func TestTrainValidation(t *testing.T) {
	x := [][]float64{{0.1}, {0.9}}
	y := []int{0, 1}

	t.Run("Empty dataset", func(t *testing.T) {
		_, err := Train(nil, nil, testConfig())
		require.True(t, errors.Is(err, ErrInvalidDataset), "got %v", err)
	})
	t.Run("Row and label count mismatch", func(t *testing.T) {
		_, err := Train(x, []int{0}, testConfig())
		require.True(t, errors.Is(err, ErrInvalidDataset), "got %v", err)
	})
	t.Run("Ragged rows", func(t *testing.T) {
		_, err := Train([][]float64{{0.1}, {0.9, 0.2}}, y, testConfig())
		require.True(t, errors.Is(err, ErrInvalidDataset), "got %v", err)
	})
	t.Run("Label outside {0,1}", func(t *testing.T) {
		_, err := Train(x, []int{0, 2}, testConfig())
		require.True(t, errors.Is(err, ErrInvalidDataset), "got %v", err)
	})
	t.Run("Zero rounds", func(t *testing.T) {
		cfg := testConfig()
		cfg.Rounds = 0
		_, err := Train(x, y, cfg)
		require.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
	})
	t.Run("Zero depth", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxDepth = 0
		_, err := Train(x, y, cfg)
		require.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
	})
	t.Run("Zero learning rate", func(t *testing.T) {
		cfg := testConfig()
		cfg.LearningRate = 0
		_, err := Train(x, y, cfg)
		require.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
	})
}

// Four perfectly separable samples, one round, no regularization. The
// optimal split is at the midpoint 0.5 and the leaf values follow
// -G/H scaled by the learning rate.
func TestTrainSingleTreeExact(t *testing.T) {
	x := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	y := []int{0, 0, 1, 1}
	cfg := Config{Rounds: 1, MaxDepth: 1, LearningRate: 1, Lambda: 0}

	ens, err := Train(x, y, cfg)
	require.NoError(t, err)
	require.InDelta(t, 0, ens.BaseScore, 1e-12, "balanced labels give zero log odds")
	require.Len(t, ens.Trees, 1)

	tree := ens.Trees[0]
	require.Len(t, tree.Nodes, 3)
	root := tree.Nodes[0]
	require.False(t, root.Leaf)
	require.Equal(t, 0, root.Feature)
	require.InDelta(t, 0.5, root.Threshold, 1e-12)
	require.InDelta(t, 1.0, root.Cover, 1e-12, "four samples with hessian 0.25 each")

	left, right := tree.Nodes[root.Left], tree.Nodes[root.Right]
	require.True(t, left.Leaf)
	require.True(t, right.Leaf)
	require.InDelta(t, -2, left.Value, 1e-12)
	require.InDelta(t, 2, right.Value, 1e-12)
	require.InDelta(t, 0.5, left.Cover, 1e-12)
	require.InDelta(t, 0.5, right.Cover, 1e-12)
}

func TestTrainLearningRateScalesLeaves(t *testing.T) {
	x := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	y := []int{0, 0, 1, 1}
	cfg := Config{Rounds: 1, MaxDepth: 1, LearningRate: 0.1, Lambda: 0}

	ens, err := Train(x, y, cfg)
	require.NoError(t, err)
	tree := ens.Trees[0]
	root := tree.Nodes[0]
	require.InDelta(t, -0.2, tree.Nodes[root.Left].Value, 1e-12)
	require.InDelta(t, 0.2, tree.Nodes[root.Right].Value, 1e-12)
}

func TestTrainMinChildWeightBlocksSplit(t *testing.T) {
	x := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	y := []int{0, 0, 1, 1}
	cfg := Config{Rounds: 1, MaxDepth: 3, LearningRate: 1, Lambda: 0, MinChildWeight: 0.6}

	ens, err := Train(x, y, cfg)
	require.NoError(t, err)
	require.Len(t, ens.Trees[0].Nodes, 1, "no split can give both children enough weight")
	require.True(t, ens.Trees[0].Nodes[0].Leaf)
}

func TestTrainDepthBound(t *testing.T) {
	x, y := separableDataset(200, 4)
	cfg := testConfig()
	cfg.MaxDepth = 2

	ens, err := Train(x, y, cfg)
	require.NoError(t, err)
	for _, tree := range ens.Trees {
		require.LessOrEqual(t, maxDepth(&tree, 0), 2)
	}
}

func maxDepth(tree *Tree, idx int) int {
	node := tree.Nodes[idx]
	if node.Leaf {
		return 0
	}
	left := maxDepth(tree, node.Left)
	right := maxDepth(tree, node.Right)
	if left > right {
		return left + 1
	}
	return right + 1
}

func TestTrainBaseScoreClampsPrior(t *testing.T) {
	x := [][]float64{{0.1}, {0.2}, {0.3}}
	y := []int{1, 1, 1}

	ens, err := Train(x, y, testConfig())
	require.NoError(t, err)
	expected := math.Log((1 - 1e-6) / 1e-6)
	require.InDelta(t, expected, ens.BaseScore, 1e-9)
}

func TestTrainDeterminism(t *testing.T) {
	x, y := separableDataset(300, 5)

	first, err := Train(x, y, testConfig())
	require.NoError(t, err)
	second, err := Train(x, y, testConfig())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Training twice on the same inputs diverged (-first +second):\n%s", diff)
	}
}

func TestTrainMonotonicSanity(t *testing.T) {
	x, y := separableDataset(400, 3)
	ens, err := Train(x, y, testConfig())
	require.NoError(t, err)

	low := []float64{0.5, 0.1, 0.5}
	high := []float64{0.5, 0.9, 0.5}
	require.Greater(
		t,
		ens.Probability(high),
		ens.Probability(low),
		"the label-driving feature should push risk upward",
	)
}

func TestTrainProbabilityBounds(t *testing.T) {
	x, y := separableDataset(300, 3)
	cfg := testConfig()
	cfg.Rounds = 40
	ens, err := Train(x, y, cfg)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		probe := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		p := ens.Probability(probe)
		require.Greater(t, p, 0.0)
		require.Less(t, p, 1.0)
		require.False(t, math.IsNaN(ens.Margin(probe)))
	}
}

// separableDataset labels rows by whether feature 1 exceeds 0.5.
func separableDataset(n, width int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(41))
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		row := make([]float64, width)
		for j := range row {
			row[j] = rng.Float64()
		}
		x[i] = row
		if row[1] > 0.5 {
			y[i] = 1
		}
	}
	return x, y
}
